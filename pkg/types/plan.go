package types

// ReconciliationPlan is everything one pass intends to do. Apply executes
// it, diff only reports it.
type ReconciliationPlan struct {
	Target       string     `json:"target" yaml:"target"`
	AdditiveOnly bool       `json:"additive_only" yaml:"additive_only"`
	TapsToAdd    []string   `json:"taps_to_add" yaml:"taps_to_add"`
	Formulae     PackageOps `json:"formulae" yaml:"formulae"`
	Casks        PackageOps `json:"casks" yaml:"casks"`
	Cleanup      bool       `json:"cleanup" yaml:"cleanup"`
}

// Ops returns the operations for one kind
func (p *ReconciliationPlan) Ops(kind PackageKind) *PackageOps {
	if kind == Cask {
		return &p.Casks
	}
	return &p.Formulae
}

// Count is the number of tap and package operations, ignoring cleanup
func (p *ReconciliationPlan) Count() int {
	return len(p.TapsToAdd) + p.Formulae.Count() + p.Casks.Count()
}

// Empty reports whether the system already matches the desired state
func (p *ReconciliationPlan) Empty() bool {
	return p.Count() == 0
}
