// Package topics adds free-form help topics to a cobra command tree.
// Topics are text or markdown files read from an fs.FS, usually an embedded
// directory, and are shown by "help <topic>" next to the command help.
package topics

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// ListKeyword lists every topic when given to the help command
const ListKeyword = "topics"

// optionPrefix marks topics that document a flag
const optionPrefix = "option-"

// Topic is one help file
type Topic struct {
	Name    string
	Ext     string
	Content string
}

// Options configures a Manager
type Options struct {
	// Extensions are the file extensions read as topics, [".txt", ".md"]
	// when empty
	Extensions []string

	// Renderer formats topic content, PlainRenderer when nil
	Renderer Renderer
}

// Manager holds the topics of one command tree
type Manager struct {
	topics   map[string]*Topic
	renderer Renderer
}

// Load reads every topic file under the root of fsys
func Load(fsys fs.FS, opts Options) (*Manager, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".txt", ".md"}
	}
	m := &Manager{topics: make(map[string]*Topic), renderer: opts.Renderer}
	if m.renderer == nil {
		m.renderer = PlainRenderer{}
	}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := path.Ext(p)
		if d.IsDir() || !slices.Contains(exts, ext) {
			return nil
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(path.Base(p), ext)
		m.topics[name] = &Topic{Name: name, Ext: ext, Content: string(content)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read help topics: %w", err)
	}
	return m, nil
}

// Get finds a topic by name. Flag spellings such as --dry-run resolve to
// the option-dry-run topic.
func (m *Manager) Get(name string) (*Topic, bool) {
	name = strings.TrimLeft(name, "-")
	if t, ok := m.topics[name]; ok {
		return t, true
	}
	t, ok := m.topics[optionPrefix+name]
	return t, ok
}

// Names returns every topic name, sorted
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteList prints the topic index
func (m *Manager) WriteList(w io.Writer, program string) {
	if len(m.topics) == 0 {
		fmt.Fprintln(w, "No help topics available.")
		return
	}
	var general, options []string
	for _, name := range m.Names() {
		if opt, ok := strings.CutPrefix(name, optionPrefix); ok {
			options = append(options, "--"+opt)
		} else {
			general = append(general, name)
		}
	}

	fmt.Fprintln(w, "Available help topics:")
	if len(general) > 0 {
		fmt.Fprintln(w, "\nGeneral topics:")
		for _, name := range general {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	if len(options) > 0 {
		fmt.Fprintln(w, "\nOption topics:")
		for _, name := range options {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	fmt.Fprintf(w, "\nUse '%s help <topic>' to read about a specific topic.\n", program)
}

// Write renders a topic
func (m *Manager) Write(w io.Writer, t *Topic) error {
	_, err := io.WriteString(w, m.renderer.Render(t.Content, t.Ext))
	return err
}

// Install replaces the help command of root with one that also knows
// topics. groupID places it in the usage listing and may be empty.
func (m *Manager) Install(root *cobra.Command, groupID string) {
	original := root.HelpFunc()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: `Help provides help for any command or topic.
Type ` + root.Name() + ` help [path to command or topic] for full details.

To see all available help topics:
  ` + root.Name() + ` help ` + ListKeyword,
		GroupID: groupID,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{ListKeyword}
			for _, c := range root.Commands() {
				if c.IsAvailableCommand() {
					completions = append(completions, c.Name())
				}
			}
			completions = append(completions, m.Names()...)
			return completions, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				original(root, args)
				return nil
			}
			if args[0] == ListKeyword {
				m.WriteList(cmd.OutOrStdout(), root.Name())
				return nil
			}
			if t, ok := m.Get(args[0]); ok {
				return m.Write(cmd.OutOrStdout(), t)
			}
			target, _, err := root.Find(args)
			if target == nil || err != nil {
				return fmt.Errorf("unknown help topic %q", strings.Join(args, " "))
			}
			original(target, args)
			return nil
		},
	}

	root.SetHelpCommand(helpCmd)
}
