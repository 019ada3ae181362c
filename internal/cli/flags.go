package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/docsift/internal/collapse"
	"github.com/hupe1980/docsift/internal/config"
	"github.com/hupe1980/docsift/internal/filter"
	"github.com/hupe1980/docsift/internal/pipeline"
	"github.com/hupe1980/docsift/internal/unwrap"
)

// ioOptions selects where documents come from and go to.
type ioOptions struct {
	output       string
	inputFormat  string
	outputFormat string
}

// filterOptions holds the settings of the compound filter.
type filterOptions struct {
	keys            filter.Keys
	targetVerbosity float64
	includeTags     []string
	excludeTags     []string
	includeMode     string
	excludeMode     string
	noUnwrap        bool
}

// collapseOptions holds the settings of the key collapser.
type collapseOptions struct {
	configKey  string
	keysKey    string
	defaultKey string
	userKey    string
	lenient    bool
}

func newFilterOptions(c config.FilterConfig) filterOptions {
	return filterOptions{
		keys:            c.Keys(),
		targetVerbosity: c.TargetVerbosity,
		includeTags:     c.IncludeTags,
		excludeTags:     c.ExcludeTags,
		includeMode:     c.IncludeMode,
		excludeMode:     c.ExcludeMode,
		noUnwrap:        c.NoUnwrap,
	}
}

func newCollapseOptions(c config.CollapseConfig) collapseOptions {
	return collapseOptions{
		configKey:  c.ConfigKey,
		keysKey:    c.KeysKey,
		defaultKey: c.DefaultKey,
		userKey:    c.UserKey,
		lenient:    c.Lenient,
	}
}

// registerIOFlags adds the output and format flags to a cobra command.
func registerIOFlags(cmd *cobra.Command, opts *ioOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file path (default: stdout)")
	f.StringVar(&opts.inputFormat, "input-format", "", "input format: yaml, goccy, json (default: from file extension)")
	f.StringVar(&opts.outputFormat, "output-format", "", "output format: yaml, goccy, json (default: from output path or input format)")
}

// registerKeyFlags adds the filter key name flags shared by filter, run and
// unwrap.
func registerKeyFlags(cmd *cobra.Command, withMetadata bool) {
	d := config.Default().Filter

	f := cmd.Flags()
	f.String("config-key", d.ConfigKey, "key of the embedded filter configuration")
	f.String("content-key", d.ContentKey, "key holding the content of a content node")
	config.BindFlag(cmd, "config-key", "filter.config-key")
	config.BindFlag(cmd, "content-key", "filter.content-key")

	if !withMetadata {
		return
	}

	f.String("verbosity-key", d.VerbosityKey, "key holding the verbosity level of a content node")
	f.String("tags-key", d.TagsKey, "key holding the tags of a content node")
	config.BindFlag(cmd, "verbosity-key", "filter.verbosity-key")
	config.BindFlag(cmd, "tags-key", "filter.tags-key")
}

// registerFilterFlags adds the compound filter flags to a cobra command.
// They are bound to the filter section of the configuration, so unset
// flags fall back to DOCSIFT_FILTER_* and the config file.
func registerFilterFlags(cmd *cobra.Command) {
	d := config.Default().Filter

	registerKeyFlags(cmd, true)

	f := cmd.Flags()
	f.Float64("target-verbosity", d.TargetVerbosity, "highest verbosity level kept (inf keeps all)")
	f.StringSlice("include-tags", nil, "keep only content nodes carrying these tags")
	f.StringSlice("exclude-tags", nil, "prune content nodes carrying these tags")
	f.String("include-mode", d.IncludeMode, "include tag mode: any, all")
	f.String("exclude-mode", d.ExcludeMode, "exclude tag mode: any, all")
	f.Bool("no-unwrap", false, "keep content wrappers and their metadata")

	for _, name := range []string{"target-verbosity", "include-tags", "exclude-tags", "include-mode", "exclude-mode", "no-unwrap"} {
		config.BindFlag(cmd, name, "filter."+name)
	}
}

// registerCollapseFlags adds the key collapser flags to a cobra command.
// configKeyFlag names the flag for the configuration key so that commands
// combining both passes can tell the two apart.
func registerCollapseFlags(cmd *cobra.Command, configKeyFlag string) {
	d := config.Default().Collapse

	f := cmd.Flags()
	f.String(configKeyFlag, d.ConfigKey, "key of the embedded collapse configuration")
	f.String("keys-key", d.KeysKey, "configuration entry listing the collapsible keys")
	f.String("default-key", d.DefaultKey, "configuration entry naming the fallback key")
	f.StringP("user-key", "k", "", "variant to select (default: the configured default)")
	f.Bool("lenient", false, "fall back to the default key for unknown user keys")

	config.BindFlag(cmd, configKeyFlag, "collapse.config-key")

	for _, name := range []string{"keys-key", "default-key", "user-key", "lenient"} {
		config.BindFlag(cmd, name, "collapse."+name)
	}
}

// registerProfileFlag adds --profile. Its value reaches the command through
// the loaded configuration so that DOCSIFT_PROFILE and the config file work
// as well.
func registerProfileFlag(cmd *cobra.Command) {
	cmd.Flags().String("profile", "", "apply a named profile (built-in: full, short)")
}

// rules builds the tag rules. Modes are validated even without tags.
func (o *filterOptions) rules() (filter.TagRules, error) {
	var rules filter.TagRules

	includeMode, err := filter.ParseMode(o.includeMode)
	if err != nil {
		return rules, fmt.Errorf("include: %w", err)
	}

	excludeMode, err := filter.ParseMode(o.excludeMode)
	if err != nil {
		return rules, fmt.Errorf("exclude: %w", err)
	}

	if len(o.includeTags) > 0 {
		rules.Include = filter.Include(includeMode, o.includeTags...)
	}

	if len(o.excludeTags) > 0 {
		rules.Exclude = filter.Exclude(excludeMode, o.excludeTags...)
	}

	return rules, nil
}

func (o *filterOptions) stage() (*pipeline.FilterStage, error) {
	rules, err := o.rules()
	if err != nil {
		return nil, err
	}

	return &pipeline.FilterStage{
		Target:  o.targetVerbosity,
		Rules:   rules,
		Options: filter.Options{Keys: o.keys, Unwrap: !o.noUnwrap},
	}, nil
}

func (o *collapseOptions) stage() *pipeline.CollapseStage {
	return &pipeline.CollapseStage{Options: collapse.Options{
		ConfigKey:  o.configKey,
		KeysKey:    o.keysKey,
		DefaultKey: o.defaultKey,
		UserKey:    o.userKey,
		Strict:     !o.lenient,
	}}
}

func unwrapStage(keys filter.Keys) *pipeline.UnwrapStage {
	if keys.ConfigKey == "" {
		keys.ConfigKey = unwrap.DefaultConfigKey
	}

	if keys.ContentKey == "" {
		keys.ContentKey = unwrap.DefaultContentKey
	}

	return &pipeline.UnwrapStage{ConfigKey: keys.ConfigKey, ContentKey: keys.ContentKey}
}

// resolveProfile returns the profile selected by --profile, DOCSIFT_PROFILE
// or the config file, or nil when none is selected.
func resolveProfile(ctx context.Context) (*config.ProfileConfig, error) {
	cfg := config.FromContext(ctx)
	if cfg.Profile == "" {
		return nil, nil
	}

	custom, err := config.LoadProfiles(config.ConfigFileFromContext(ctx))
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Err: err}
	}

	p, err := config.ResolveProfile(cfg.Profile, custom)
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Err: err}
	}

	return &p, nil
}

// applyProfile copies profile settings into the options for every flag the
// user did not set explicitly. Either options pointer may be nil.
func applyProfile(cmd *cobra.Command, p *config.ProfileConfig, fo *filterOptions, co *collapseOptions) {
	if p == nil {
		return
	}

	changed := cmd.Flags().Changed

	if fo != nil {
		if p.TargetVerbosity != nil && !changed("target-verbosity") {
			fo.targetVerbosity = *p.TargetVerbosity
		}

		if len(p.IncludeTags) > 0 && !changed("include-tags") {
			fo.includeTags = p.IncludeTags
		}

		if len(p.ExcludeTags) > 0 && !changed("exclude-tags") {
			fo.excludeTags = p.ExcludeTags
		}

		if p.IncludeMode != "" && !changed("include-mode") {
			fo.includeMode = p.IncludeMode
		}

		if p.ExcludeMode != "" && !changed("exclude-mode") {
			fo.excludeMode = p.ExcludeMode
		}

		if p.Unwrap != nil && !changed("no-unwrap") {
			fo.noUnwrap = !*p.Unwrap
		}
	}

	if co != nil {
		if p.UserKey != "" && !changed("user-key") {
			co.userKey = p.UserKey
		}

		if p.Lenient != nil && !changed("lenient") {
			co.lenient = *p.Lenient
		}
	}
}
