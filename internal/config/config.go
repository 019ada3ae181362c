// Package config provides configuration management for docsift.
//
// Configuration is loaded from three sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (DOCSIFT_ prefix, e.g. DOCSIFT_FILTER_TARGET_VERBOSITY)
//  3. Config file (.docsift.yaml)
//
// Besides the global settings the file carries the defaults of the filter
// and collapse passes:
//
//	filter:
//	  target-verbosity: 2
//	  exclude-tags: [private]
//	collapse:
//	  user-key: de
//	  lenient: true
//
// and may define named profiles, see [ParseProfiles].
package config

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/docsift/internal/collapse"
	"github.com/hupe1980/docsift/internal/filter"
)

// KeyAnnotation is the flag annotation naming the configuration key a flag
// is bound to. Flags without it bind to the key of their own name.
const KeyAnnotation = "docsift_config_key"

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the global configuration for docsift.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// NoColor disables colored output.
	NoColor bool `mapstructure:"no-color" json:"noColor"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// Requires is a semantic version constraint the running binary must
	// satisfy, e.g. ">= 1.2". Empty accepts every version.
	Requires string `mapstructure:"requires" json:"requires,omitempty"`

	// Profile names the filter profile applied when --profile is not given.
	Profile string `mapstructure:"profile" json:"profile,omitempty"`

	// Filter holds the defaults of the compound filter.
	Filter FilterConfig `mapstructure:"filter" json:"filter"`

	// Collapse holds the defaults of the key collapser.
	Collapse CollapseConfig `mapstructure:"collapse" json:"collapse"`

	// ConfigFile is the resolved path to the config file used.
	// Set after Load(), not read from config itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// FilterConfig configures the compound filter.
type FilterConfig struct {
	ConfigKey    string `mapstructure:"config-key" json:"configKey"`
	ContentKey   string `mapstructure:"content-key" json:"contentKey"`
	VerbosityKey string `mapstructure:"verbosity-key" json:"verbosityKey"`
	TagsKey      string `mapstructure:"tags-key" json:"tagsKey"`

	// TargetVerbosity is the highest verbosity level kept; .inf keeps all.
	TargetVerbosity float64  `mapstructure:"target-verbosity" json:"targetVerbosity"`
	IncludeTags     []string `mapstructure:"include-tags" json:"includeTags,omitempty"`
	ExcludeTags     []string `mapstructure:"exclude-tags" json:"excludeTags,omitempty"`
	IncludeMode     string   `mapstructure:"include-mode" json:"includeMode"`
	ExcludeMode     string   `mapstructure:"exclude-mode" json:"excludeMode"`

	// NoUnwrap keeps content wrappers and their metadata.
	NoUnwrap bool `mapstructure:"no-unwrap" json:"noUnwrap"`
}

// Keys returns the filter key names.
func (c FilterConfig) Keys() filter.Keys {
	return filter.Keys{
		ConfigKey:    c.ConfigKey,
		ContentKey:   c.ContentKey,
		VerbosityKey: c.VerbosityKey,
		TagsKey:      c.TagsKey,
	}
}

// CollapseConfig configures the key collapser.
type CollapseConfig struct {
	ConfigKey  string `mapstructure:"config-key" json:"configKey"`
	KeysKey    string `mapstructure:"keys-key" json:"keysKey"`
	DefaultKey string `mapstructure:"default-key" json:"defaultKey"`

	// UserKey selects the variant; empty selects the configured default.
	UserKey string `mapstructure:"user-key" json:"userKey,omitempty"`

	// Lenient falls back to the default key for user keys that are not
	// collapsible.
	Lenient bool `mapstructure:"lenient" json:"lenient"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	keys := filter.DefaultKeys()
	co := collapse.DefaultOptions()

	return &Config{
		LogLevel:  LogLevelInfo,
		LogFormat: LogFormatText,
		Filter: FilterConfig{
			ConfigKey:       keys.ConfigKey,
			ContentKey:      keys.ContentKey,
			VerbosityKey:    keys.VerbosityKey,
			TagsKey:         keys.TagsKey,
			TargetVerbosity: 1,
			IncludeMode:     string(filter.ModeAny),
			ExcludeMode:     string(filter.ModeAny),
		},
		Collapse: CollapseConfig{
			ConfigKey:  co.ConfigKey,
			KeysKey:    co.KeysKey,
			DefaultKey: co.DefaultKey,
		},
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
		// valid
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat)
	}

	if c.Requires != "" {
		if _, err := semver.NewConstraint(c.Requires); err != nil {
			return fmt.Errorf("invalid version constraint %q in requires: %w", c.Requires, err)
		}
	}

	if math.IsNaN(c.Filter.TargetVerbosity) {
		return fmt.Errorf("invalid filter.target-verbosity: must be a number")
	}

	// Tag modes are checked by the filter itself so that they fail with
	// its configuration error.
	for key, val := range map[string]string{
		"filter.config-key":    c.Filter.ConfigKey,
		"filter.content-key":   c.Filter.ContentKey,
		"filter.verbosity-key": c.Filter.VerbosityKey,
		"filter.tags-key":      c.Filter.TagsKey,
		"collapse.config-key":  c.Collapse.ConfigKey,
		"collapse.keys-key":    c.Collapse.KeysKey,
		"collapse.default-key": c.Collapse.DefaultKey,
	} {
		if val == "" {
			return fmt.Errorf("invalid %s: must not be empty", key)
		}
	}

	return nil
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Store the resolved config file path so downstream code can locate it.
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values in viper. Every key needs one so
// that AutomaticEnv can find it on Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("no-color", false)
	v.SetDefault("quiet", false)
	v.SetDefault("requires", "")
	v.SetDefault("profile", "")

	v.SetDefault("filter.config-key", d.Filter.ConfigKey)
	v.SetDefault("filter.content-key", d.Filter.ContentKey)
	v.SetDefault("filter.verbosity-key", d.Filter.VerbosityKey)
	v.SetDefault("filter.tags-key", d.Filter.TagsKey)
	v.SetDefault("filter.target-verbosity", d.Filter.TargetVerbosity)
	v.SetDefault("filter.include-tags", []string{})
	v.SetDefault("filter.exclude-tags", []string{})
	v.SetDefault("filter.include-mode", d.Filter.IncludeMode)
	v.SetDefault("filter.exclude-mode", d.Filter.ExcludeMode)
	v.SetDefault("filter.no-unwrap", false)

	v.SetDefault("collapse.config-key", d.Collapse.ConfigKey)
	v.SetDefault("collapse.keys-key", d.Collapse.KeysKey)
	v.SetDefault("collapse.default-key", d.Collapse.DefaultKey)
	v.SetDefault("collapse.user-key", "")
	v.SetDefault("collapse.lenient", false)
}

// configureEnv sets up environment variable support.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("DOCSIFT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
}

// configureFile sets up the config file source.
func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	// Auto-discovery mode.
	v.SetConfigName(".docsift")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "docsift"))
	}

	if err := v.ReadInConfig(); err != nil {
		// No config file found → perfectly fine in auto-discovery.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}

		// Found a file but it was malformed.
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags binds the command's own flags, honouring KeyAnnotation, then
// walks from cmd up to the root and binds all PersistentFlags.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	var bindErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}

		if err := v.BindPFlag(FlagKey(f), f); err != nil {
			bindErr = fmt.Errorf("binding flag %q: %w", f.Name, err)
		}
	})

	if bindErr != nil {
		return bindErr
	}

	// Walk up to root and bind all persistent flags at each level.
	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}

// FlagKey returns the configuration key f is bound to.
func FlagKey(f *pflag.Flag) string {
	if keys := f.Annotations[KeyAnnotation]; len(keys) > 0 {
		return keys[0]
	}

	return f.Name
}

// BindFlag ties the named flag of cmd to a configuration key.
func BindFlag(cmd *cobra.Command, name, key string) {
	if err := cmd.Flags().SetAnnotation(name, KeyAnnotation, []string{key}); err != nil {
		panic(fmt.Sprintf("config: binding unknown flag %q", name))
	}
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}
type ctxFileKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}

// NewContextWithConfigFile returns a child context carrying the resolved
// config file path. This allows downstream code to locate the config file
// without re-discovering it.
func NewContextWithConfigFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, ctxFileKey{}, path)
}

// ConfigFileFromContext extracts the config file path from ctx.
// Returns empty string if no config file was resolved.
func ConfigFileFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(ctxFileKey{}).(string); ok {
		return p
	}

	return ""
}
