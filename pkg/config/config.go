// Package config loads screener settings from struct defaults and
// SCREENER_* environment variables.
package config

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/goliatone/go-screener/pkg/logger"
)

// EnvPrefix is the default environment prefix.
const EnvPrefix = "SCREENER_"

// DefaultSyncStates lists the states where only synchronous consults are
// offered.
var DefaultSyncStates = []string{
	"AR", "DC", "DE", "ID", "KS", "LA", "MS", "NM", "RI", "WV", "NC", "SC", "ME",
}

// Config is the full runtime configuration.
type Config struct {
	Log       Log       `koanf:"log"`
	Loader    Loader    `koanf:"loader"`
	Transport Transport `koanf:"transport"`
	Consult   Consult   `koanf:"consult"`
}

// Log controls logger construction.
type Log struct {
	Level     string `koanf:"level" validate:"oneof=debug info warn error disabled"`
	Format    string `koanf:"format" validate:"oneof=text json"`
	AddSource bool   `koanf:"add_source"`
}

// Loader controls descriptor loading.
type Loader struct {
	AllowHTTP bool          `koanf:"allow_http"`
	Timeout   time.Duration `koanf:"timeout" validate:"gte=0"`
	CacheSize int           `koanf:"cache_size" validate:"gte=0"`
}

// Transport configures webhook delivery. An empty endpoint means records are
// printed instead of delivered.
type Transport struct {
	Endpoint  string        `koanf:"endpoint" validate:"omitempty,url"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	Retries   int           `koanf:"retries" validate:"gte=0,lte=10"`
	RetryWait time.Duration `koanf:"retry_wait" validate:"gte=0"`
}

// Consult configures consult type resolution.
type Consult struct {
	Default    string   `koanf:"default" validate:"oneof=async sync"`
	SyncStates []string `koanf:"sync_states" validate:"dive,len=2,alpha"`
}

// SyncOnly reports whether state is in the sync-only list.
func (c Consult) SyncOnly(state string) bool {
	state = strings.ToUpper(strings.TrimSpace(state))
	if state == "" {
		return false
	}
	return slices.ContainsFunc(c.SyncStates, func(s string) bool {
		return strings.EqualFold(s, state)
	})
}

// Default returns the built in configuration.
func Default() *Config {
	return &Config{
		Log: Log{
			Level:  string(logger.InfoLevel),
			Format: "text",
		},
		Loader: Loader{
			Timeout:   10 * time.Second,
			CacheSize: 16,
		},
		Transport: Transport{
			Timeout:   15 * time.Second,
			RetryWait: 500 * time.Millisecond,
		},
		Consult: Consult{
			Default:    "async",
			SyncStates: slices.Clone(DefaultSyncStates),
		},
	}
}

// LoggerConfig maps the log section onto a logger configuration writing to out.
func (c *Config) LoggerConfig(out io.Writer) *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.ParseLevel(c.Log.Level)
	cfg.JSON = c.Log.Format == "json"
	cfg.AddSource = c.Log.AddSource
	if out != nil {
		cfg.Output = out
	}
	return cfg
}

// Option customises Load.
type Option func(*options)

type options struct {
	prefix   string
	defaults *Config
}

// WithEnvPrefix replaces the SCREENER_ environment prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithDefaults replaces the built in defaults.
func WithDefaults(cfg *Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.defaults = cfg
		}
	}
}

// Load merges defaults with the environment and validates the result.
func Load(opts ...Option) (*Config, error) {
	o := options{prefix: EnvPrefix, defaults: Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(o.defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	prefix := o.prefix
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: prefix,
		TransformFunc: func(key, value string) (string, any) {
			return envKey(strings.TrimPrefix(key, prefix)), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.normalize()
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: configuration cannot be nil")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Consult.Default = strings.ToLower(strings.TrimSpace(c.Consult.Default))
	states := c.Consult.SyncStates[:0]
	for _, s := range c.Consult.SyncStates {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			states = append(states, s)
		}
	}
	c.Consult.SyncStates = states
}

// envKey turns TRANSPORT_RETRY_WAIT into transport.retry_wait.
func envKey(s string) string {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return r == '_' })
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[0] + "." + strings.Join(parts[1:], "_")
	}
}
