package output

import "github.com/pterm/pterm"

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// PromptConfirmer asks interactively on the terminal, defaulting to no
type PromptConfirmer struct{}

func (PromptConfirmer) Confirm(prompt string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(false).
		Show(prompt)
}

// StaticConfirmer always gives the same answer
type StaticConfirmer bool

func (s StaticConfirmer) Confirm(string) (bool, error) {
	return bool(s), nil
}
