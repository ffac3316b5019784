package config

import (
	_ "embed"
	"errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	shardErrors "github.com/arthur-debert/shard/pkg/errors"
)

// EnvPrefix is the prefix of environment overrides. Sections are separated
// by a double underscore: SHARD_BREW__TIMEOUT=30s sets brew.timeout.
const EnvPrefix = "SHARD_"

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Load builds the configuration from defaults, the user file at path and
// the environment. A missing file is only an error when required is set,
// which is the case for an explicit --config flag.
func Load(path string, required bool) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, shardErrors.Wrap(err, shardErrors.ErrConfig, "failed to load defaults")
	}

	// 2. User config file
	var source string
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, shardErrors.Wrapf(err, shardErrors.ErrConfig, "failed to load config from %s", path).
					WithDetail("path", path)
			}
			source = path
		} else if required {
			return nil, shardErrors.Wrapf(err, shardErrors.ErrConfig, "config file %s not found", path).
				WithDetail("path", path)
		}
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, shardErrors.Wrap(err, shardErrors.ErrConfig, "failed to load env vars")
	}

	// 4. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, shardErrors.Wrap(err, shardErrors.ErrConfig, "failed to unmarshal configuration")
	}
	cfg.Source = source

	// 5. Validate
	if err := newValidator().Struct(&cfg); err != nil {
		return nil, shardErrors.Wrap(err, shardErrors.ErrConfig, "invalid configuration")
	}

	return &cfg, nil
}

// envKey maps SHARD_BREW__TIMEOUT to brew.timeout. Variables without a
// section separator are left at the top level, where nothing reads them.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
