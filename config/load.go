package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

const defaultEnvPrefix = "DECORICE"

type loadConfig struct {
	envPrefix  string
	configType string
}

// Option customises Load and Watch.
type Option func(*loadConfig)

// WithEnvPrefix overrides the DECORICE env prefix.
func WithEnvPrefix(prefix string) Option {
	return func(c *loadConfig) { c.envPrefix = prefix }
}

// WithConfigType sets the format when path has no recognised extension.
func WithConfigType(typ string) Option {
	return func(c *loadConfig) { c.configType = typ }
}

// Load reads path (YAML, TOML or JSON), applies env overrides such as
// DECORICE_LOG_LEVEL and validates the result. An empty path loads
// defaults and env only.
func Load(path string, opts ...Option) (Config, error) {
	v, err := loadViper(path, opts...)
	if err != nil {
		return Config{}, err
	}
	return decode(v)
}

// Watch loads path and calls onChange with the reloaded config each time the
// file is written.
func Watch(path string, onChange func(Config, error), opts ...Option) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config: watch requires a file path")
	}
	v, err := loadViper(path, opts...)
	if err != nil {
		return Config{}, err
	}
	cfg, err := decode(v)
	if err != nil {
		return Config{}, err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(decode(v))
	})
	v.WatchConfig()
	return cfg, nil
}

func loadViper(path string, opts ...Option) (*viper.Viper, error) {
	cfg := loadConfig{envPrefix: defaultEnvPrefix}
	for _, opt := range opts {
		opt(&cfg)
	}
	v := viper.New()
	v.SetEnvPrefix(cfg.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("log.level", "")
	v.SetDefault("chains", []any{})
	if cfg.configType != "" {
		v.SetConfigType(cfg.configType)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return v, nil
}

func decode(v *viper.Viper) (Config, error) {
	var out Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
		),
		Result: &out,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report mapstructure keys, which match the file.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the manifest shape. Registry names are checked when
// chains are built.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config: %w", err)
	}
	var out error
	for _, fe := range fieldErrs {
		out = multierr.Append(out, fmt.Errorf("config: %s: failed %q validation", fe.Namespace(), fe.Tag()))
	}
	return out
}
