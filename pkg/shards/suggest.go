package shards

import (
	"strings"

	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 3

// Suggest returns up to three known shard names close to name
func Suggest(name string, known []string) []string {
	var out []string
	for _, match := range fuzzy.Find(strings.ToLower(name), known) {
		if match.Str == name {
			continue
		}
		out = append(out, match.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func (m *Manager) notFound(name string) error {
	err := errors.Newf(errors.ErrNotFound, "shard %s not found", name).WithDetail("shard", name)
	known, listErr := m.Names()
	if listErr != nil {
		return err
	}
	if suggestions := Suggest(name, known); len(suggestions) > 0 {
		err.Message += "; did you mean " + strings.Join(suggestions, ", ") + "?"
		err = err.WithDetail("suggestions", suggestions)
	}
	return err
}
