// Package output renders plans, results and shard listings for people
// (styled terminal or plain text) and for machines (JSON, YAML).
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/arthur-debert/shard/pkg/commands/packages"
	"github.com/arthur-debert/shard/pkg/output/styles"
	"github.com/arthur-debert/shard/pkg/reconcile"
	"github.com/arthur-debert/shard/pkg/types"
	"gopkg.in/yaml.v3"
)

// Renderer writes command output in one format
type Renderer struct {
	w      io.Writer
	format Format
	theme  *styles.Theme
}

// New creates a Renderer. FormatAuto is treated as plain text; resolve it
// against the output device first.
func New(w io.Writer, format Format) *Renderer {
	if format == FormatAuto {
		format = FormatText
	}
	return &Renderer{w: w, format: format, theme: styles.Default()}
}

// WithTheme replaces the terminal styles
func (r *Renderer) WithTheme(t *styles.Theme) *Renderer {
	r.theme = t
	return r
}

// Format returns the format in use
func (r *Renderer) Format() Format {
	return r.format
}

func (r *Renderer) paint(style, s string) string {
	if r.format != FormatTerminal {
		return s
	}
	return r.theme.Get(style).Render(s)
}

func (r *Renderer) structured(v any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("format %s is not structured", r.format)
}

func (r *Renderer) print(s string) error {
	_, err := io.WriteString(r.w, s)
	return err
}

// Plan renders a reconciliation plan
func (r *Renderer) Plan(plan *types.ReconciliationPlan) error {
	if r.format.Structured() {
		return r.structured(plan)
	}
	var b strings.Builder
	r.writePlan(&b, plan)
	return r.print(b.String())
}

func (r *Renderer) writePlan(b *strings.Builder, plan *types.ReconciliationPlan) {
	mode := "merged"
	if plan.AdditiveOnly {
		mode = "additive only"
	}
	fmt.Fprintf(b, "%s %s %s\n", r.paint("Header", "Plan for"), r.paint("Target", plan.Target), r.paint("Muted", "("+mode+")"))

	if plan.Empty() {
		fmt.Fprintf(b, "  %s\n", r.paint("Success", "Nothing to change"))
	}
	if len(plan.TapsToAdd) > 0 {
		fmt.Fprintf(b, "%s\n", r.paint("Section", "Taps"))
		for _, t := range plan.TapsToAdd {
			fmt.Fprintf(b, "  %s %s\n", r.paint("Tap", "+"), t)
		}
	}
	for _, kind := range types.Kinds {
		ops := plan.Ops(kind)
		if ops.Empty() {
			continue
		}
		fmt.Fprintf(b, "%s\n", r.paint("Section", strings.ToUpper(kind.Plural()[:1])+kind.Plural()[1:]))
		for _, n := range ops.ToInstall {
			fmt.Fprintf(b, "  %s %s\n", r.paint("Install", "+"), n)
		}
		for _, n := range ops.ToUpgrade {
			fmt.Fprintf(b, "  %s %s\n", r.paint("Upgrade", "^"), n)
		}
		for _, p := range ops.WithOptions {
			fmt.Fprintf(b, "  %s %s %s\n", r.paint("Options", "*"), p.Name, r.paint("Muted", strings.Join(p.Options, " ")))
		}
		for _, n := range ops.ToUninstall {
			fmt.Fprintf(b, "  %s %s\n", r.paint("Uninstall", "-"), n)
		}
	}
	if plan.Cleanup {
		fmt.Fprintf(b, "%s\n", r.paint("Muted", "Cleanup afterwards"))
	}
}

type failureView struct {
	Item  string `json:"item" yaml:"item"`
	Op    string `json:"op" yaml:"op"`
	Error string `json:"error" yaml:"error"`
}

type resultView struct {
	RunID     string                    `json:"run_id" yaml:"run_id"`
	Plan      *types.ReconciliationPlan `json:"plan" yaml:"plan"`
	Succeeded int                       `json:"succeeded" yaml:"succeeded"`
	Failures  []failureView             `json:"failures" yaml:"failures"`
}

func newResultView(res *reconcile.Result) resultView {
	v := resultView{RunID: res.RunID, Plan: res.Plan, Succeeded: res.Succeeded(), Failures: []failureView{}}
	for _, f := range res.Failures {
		v.Failures = append(v.Failures, failureView{Item: f.Item, Op: f.Op, Error: f.Err.Error()})
	}
	return v
}

// Result renders the outcome of an apply
func (r *Renderer) Result(res *reconcile.Result) error {
	if r.format.Structured() {
		return r.structured(newResultView(res))
	}
	var b strings.Builder
	r.writeResult(&b, res)
	return r.print(b.String())
}

func (r *Renderer) writeResult(b *strings.Builder, res *reconcile.Result) {
	r.writePlan(b, res.Plan)
	if len(res.Failures) == 0 {
		fmt.Fprintf(b, "%s %d operations\n", r.paint("Success", "Done:"), res.Succeeded())
		return
	}
	fmt.Fprintf(b, "%s %d succeeded, %d failed\n", r.paint("Warning", "Done with failures:"), res.Succeeded(), len(res.Failures))
	for _, f := range res.Failures {
		fmt.Fprintf(b, "  %s %s %s: %v\n", r.paint("Error", "x"), f.Op, f.Item, f.Err)
	}
}

// Shards renders a shard listing
func (r *Renderer) Shards(records []types.ShardRecord) error {
	if r.format.Structured() {
		if records == nil {
			records = []types.ShardRecord{}
		}
		return r.structured(records)
	}
	if len(records) == 0 {
		return r.print(r.paint("Muted", "No shards yet. Create one with 'shard grow <name>'.") + "\n")
	}

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, r.paint("Header", "NAME")+"\t"+r.paint("Header", "STATUS")+"\t"+r.paint("Header", "PACKAGES")+"\t"+r.paint("Header", "DESCRIPTION"))
	for _, rec := range records {
		status := r.paint("Active", string(rec.Status))
		if rec.Status == types.StatusDisabled {
			status = r.paint("Disabled", string(rec.Status))
		}
		name := rec.Name
		if rec.Protected {
			name += " " + r.paint("Protected", "[protected]")
		}
		count, desc := "-", ""
		if rec.Manifest != nil {
			count = fmt.Sprint(rec.Manifest.PackageCount())
			desc = rec.Manifest.Metadata.Description
		} else if rec.LoadError != "" {
			desc = r.paint("Error", rec.LoadError)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, status, count, desc)
	}
	return tw.Flush()
}

// Change renders the outcome of add or remove
func (r *Renderer) Change(res *packages.ChangeResult) error {
	if r.format.Structured() {
		return r.structured(res)
	}
	var b strings.Builder
	verb := "Updated"
	if res.DryRun {
		verb = "Would update"
	}
	fmt.Fprintf(&b, "%s %s\n", r.paint("Header", verb), r.paint("Target", strings.Join(res.Shards, ", ")))
	for _, name := range sortedKeys(res.Added) {
		fmt.Fprintf(&b, "  %s %s %s\n", r.paint("Install", "+"), name, r.paint("Muted", string(res.Added[name])))
	}
	for _, name := range sortedKeys(res.Removed) {
		fmt.Fprintf(&b, "  %s %s %s\n", r.paint("Uninstall", "-"), name, r.paint("Muted", string(res.Removed[name])))
	}
	for _, name := range sortedKeys(res.Skipped) {
		fmt.Fprintf(&b, "  %s %s %s\n", r.paint("Muted", "="), name, r.paint("Muted", res.Skipped[name]))
	}
	for _, name := range sortedKeys(res.Kept) {
		fmt.Fprintf(&b, "  %s %s %s\n", r.paint("Muted", "~"), name, r.paint("Muted", res.Kept[name]))
	}
	if !res.Changed() {
		fmt.Fprintf(&b, "  %s\n", r.paint("Muted", "Nothing to change"))
	}
	if res.Apply != nil {
		r.writeResult(&b, res.Apply)
	}
	return r.print(b.String())
}

// Event reports a lifecycle operation on one shard
type Event struct {
	Shard   string `json:"shard" yaml:"shard"`
	Action  string `json:"action" yaml:"action"`
	Changed bool   `json:"changed" yaml:"changed"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Event renders a lifecycle event
func (r *Renderer) Event(e Event) error {
	if r.format.Structured() {
		return r.structured(e)
	}
	if !e.Changed {
		return r.print(fmt.Sprintf("%s %s\n", r.paint("Target", e.Shard), r.paint("Muted", "is already "+e.Action)))
	}
	line := fmt.Sprintf("%s %s", r.paint("Success", strings.ToUpper(e.Action[:1])+e.Action[1:]), r.paint("Target", e.Shard))
	if e.Path != "" {
		line += " " + r.paint("Muted", e.Path)
	}
	return r.print(line + "\n")
}

// Events renders several lifecycle events as one document
func (r *Renderer) Events(events []Event) error {
	if r.format.Structured() {
		if events == nil {
			events = []Event{}
		}
		return r.structured(events)
	}
	for _, e := range events {
		if err := r.Event(e); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
