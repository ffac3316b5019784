package processor

import (
	"context"

	"github.com/arthur-debert/shard/pkg/errors"
	"github.com/arthur-debert/shard/pkg/types"
	"github.com/rs/zerolog"
)

// Execute carries out ops for one kind. It is best effort: every failure
// is logged with the package name, collected, and the remaining operations
// still run.
//
// Installs are tried as one batch first. When the batch fails each package
// is retried on its own so failures can be attributed by name.
func Execute(ctx context.Context, k Kind, ops types.PackageOps, inv *types.Inventory, logger zerolog.Logger) []errors.ItemError {
	logger = logger.With().Str("kind", string(k.Kind)).Logger()
	var failures []errors.ItemError

	fail := func(op, name string, err error) {
		logger.Error().Err(err).Str("package", name).Str("op", op).Msg("Package operation failed")
		failures = append(failures, errors.ItemError{Item: name, Op: op + " " + string(k.Kind), Err: err})
	}

	if len(ops.ToInstall) > 0 {
		logger.Info().Strs("packages", ops.ToInstall).Msg("Installing packages")
		if err := k.BatchInstall(ctx, ops.ToInstall); err != nil {
			logger.Warn().Err(err).Msg("Batch install failed, retrying packages one at a time")
			for _, name := range ops.ToInstall {
				if err := k.Install(ctx, name, nil); err != nil {
					fail("install", name, err)
				}
			}
		}
	}

	for _, name := range ops.ToUpgrade {
		logger.Info().Str("package", name).Msg("Upgrading package")
		if err := k.Upgrade(ctx, name, nil); err != nil {
			fail("upgrade", name, err)
		}
	}

	for _, p := range ops.WithOptions {
		op, run := "install", k.Install
		if inv.Installed(k.Kind, p.Name) {
			op, run = "upgrade", k.Upgrade
		}
		logger.Info().Str("package", p.Name).Strs("options", p.Options).Str("op", op).Msg("Applying package with options")
		if err := run(ctx, p.Name, p.Options); err != nil {
			fail(op, p.Name, err)
		}
	}

	for _, name := range ops.ToUninstall {
		logger.Info().Str("package", name).Msg("Uninstalling package")
		if err := k.Uninstall(ctx, name, true); err != nil {
			fail("uninstall", name, err)
		}
	}

	return failures
}
