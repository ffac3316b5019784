package reconcile

// Stage names one step of a reconciliation pass
type Stage string

const (
	StageSnapshot         Stage = "snapshot"
	StageValidate         Stage = "validate"
	StageSyncTaps         Stage = "sync_taps"
	StageClassifyFormulae Stage = "classify_formulae"
	StageExecuteFormulae  Stage = "execute_formulae"
	StageClassifyCasks    Stage = "classify_casks"
	StageExecuteCasks     Stage = "execute_casks"
	StageImpliedUninstall Stage = "implied_uninstall"
	StageCleanup          Stage = "cleanup"
	StageDone             Stage = "done"
)

// criticalPackages are never removed by implied uninstall, whatever the
// manifests say. Configuration can extend this list but not shrink it.
var criticalPackages = []string{
	"bash",
	"zsh",
	"fish",
	"git",
	"openssl",
	"openssl@3",
	"openssl@1.1",
	"ca-certificates",
	"curl",
	"readline",
}

// CriticalPackages returns a copy of the built-in allowlist
func CriticalPackages() []string {
	return append([]string(nil), criticalPackages...)
}
