// Package styles holds the lipgloss styles used for terminal output.
//
// Styles are defined in an embedded YAML file with adaptive light/dark
// colors and looked up by semantic name:
//
//	styles.Default().Get("Install").Render("jq")
package styles

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef is an adaptive color
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is one named style
type StyleDef struct {
	Bold        bool   `yaml:"bold,omitempty"`
	Italic      bool   `yaml:"italic,omitempty"`
	Underline   bool   `yaml:"underline,omitempty"`
	Foreground  string `yaml:"foreground,omitempty"`
	Background  string `yaml:"background,omitempty"`
	PaddingLeft int    `yaml:"paddingLeft,omitempty"`
}

// Config is the YAML document
type Config struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// Theme maps semantic names to styles
type Theme struct {
	styles map[string]lipgloss.Style
}

//go:embed styles.yaml
var embeddedStyles []byte

var (
	defaultOnce  sync.Once
	defaultTheme *Theme
)

// Default returns the embedded theme. A broken embedded file yields a
// theme of unstyled text rather than a failure.
func Default() *Theme {
	defaultOnce.Do(func() {
		t, err := Parse(embeddedStyles)
		if err != nil {
			t = &Theme{styles: map[string]lipgloss.Style{}}
		}
		defaultTheme = t
	})
	return defaultTheme
}

// Load reads a theme from a YAML file
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read styles file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a theme from YAML. Styles naming an unknown color are
// rejected.
func Parse(data []byte) (*Theme, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse styles: %w", err)
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}
	color := func(style, name string) (lipgloss.AdaptiveColor, error) {
		c, ok := colors[name]
		if !ok {
			return c, fmt.Errorf("style %s uses unknown color %q", style, name)
		}
		return c, nil
	}

	t := &Theme{styles: make(map[string]lipgloss.Style, len(cfg.Styles))}
	for name, def := range cfg.Styles {
		s := lipgloss.NewStyle().
			Bold(def.Bold).
			Italic(def.Italic).
			Underline(def.Underline)
		if def.Foreground != "" {
			c, err := color(name, def.Foreground)
			if err != nil {
				return nil, err
			}
			s = s.Foreground(c)
		}
		if def.Background != "" {
			c, err := color(name, def.Background)
			if err != nil {
				return nil, err
			}
			s = s.Background(c)
		}
		if def.PaddingLeft > 0 {
			s = s.PaddingLeft(def.PaddingLeft)
		}
		t.styles[name] = s
	}
	return t, nil
}

// Get returns the named style, or a plain one
func (t *Theme) Get(name string) lipgloss.Style {
	if s, ok := t.styles[name]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// Has reports whether the theme defines name
func (t *Theme) Has(name string) bool {
	_, ok := t.styles[name]
	return ok
}
