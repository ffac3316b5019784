package config

import (
	"os"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the decoded, validated configuration of one invocation
type Config struct {
	Paths      Paths      `koanf:"paths"`
	Brew       Brew       `koanf:"brew"`
	Protection Protection `koanf:"protection"`
	Apply      Apply      `koanf:"apply"`
	Add        Add        `koanf:"add"`

	// Source is the user config file that was loaded, empty if none
	Source string `koanf:"-"`
}

// Paths overrides the default on-disk layout
type Paths struct {
	Home        string `koanf:"home"`
	ShardsDir   string `koanf:"shards_dir"`
	DisabledDir string `koanf:"disabled_dir"`
	BackupsDir  string `koanf:"backups_dir"`
}

// Brew configures the package manager actuator
type Brew struct {
	Path            string        `koanf:"path" validate:"required"`
	Timeout         time.Duration `koanf:"timeout" validate:"min=1s"`
	CleanupPruneAll bool          `koanf:"cleanup_prune_all"`
}

// Protection lists shard names protected in addition to system and user
type Protection struct {
	Names []string `koanf:"names" validate:"dive,shardname"`
}

// Apply tunes merged reconciliation
type Apply struct {
	CriticalPackages []string `koanf:"critical_packages" validate:"dive,required"`
	UninstallCasks   bool     `koanf:"uninstall_casks"`
}

// Add tunes package kind detection
type Add struct {
	DefaultKind string `koanf:"default_kind" validate:"oneof=formula cask"`
}

var shardNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func newValidator() *validator.Validate {
	v := validator.New()
	// RegisterValidation only fails for empty tags or reserved names
	_ = v.RegisterValidation("shardname", func(fl validator.FieldLevel) bool {
		return shardNamePattern.MatchString(fl.Field().String())
	})
	return v
}

// CurrentUser is the acting user for protection checks
func CurrentUser() string {
	for _, env := range []string{"SHARD_USER", "USER", "LOGNAME"} {
		if u := os.Getenv(env); u != "" {
			return u
		}
	}
	return ""
}
