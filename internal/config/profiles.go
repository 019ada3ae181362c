package config

import (
	"fmt"
	"math"
	"os"
	"sort"

	"sigs.k8s.io/yaml"
)

// ProfileConfig is a named set of filter and collapse settings that can be
// applied via --profile. Unset fields leave the command defaults alone.
type ProfileConfig struct {
	// TargetVerbosity is the highest verbosity level kept.
	TargetVerbosity *float64 `json:"targetVerbosity,omitempty"`
	// IncludeTags lists the tags a node needs to be kept.
	IncludeTags []string `json:"includeTags,omitempty"`
	// IncludeMode is "any" or "all".
	IncludeMode string `json:"includeMode,omitempty"`
	// ExcludeTags lists the tags that prune a node.
	ExcludeTags []string `json:"excludeTags,omitempty"`
	// ExcludeMode is "any" or "all".
	ExcludeMode string `json:"excludeMode,omitempty"`
	// UserKey is the preferred key when collapsing.
	UserKey string `json:"userKey,omitempty"`
	// Lenient falls back to the default key for unknown user keys.
	Lenient *bool `json:"lenient,omitempty"`
	// Unwrap replaces content nodes by their content after filtering.
	Unwrap *bool `json:"unwrap,omitempty"`
	// Extends names another profile whose settings this one starts from.
	Extends string `json:"extends,omitempty"`
}

var builtinProfiles = map[string]ProfileConfig{
	"full": {
		TargetVerbosity: ptr(math.Inf(1)),
	},
	"short": {
		TargetVerbosity: ptr(1.0),
	},
}

// maxExtendsDepth bounds profile inheritance chains so cycles fail fast.
const maxExtendsDepth = 16

// BuiltinProfileNames returns the sorted names of the built-in profiles.
func BuiltinProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// ResolveProfile looks a profile up by name, custom profiles shadowing
// built-in ones, and folds its extends chain into a single configuration.
func ResolveProfile(name string, custom map[string]ProfileConfig) (ProfileConfig, error) {
	return resolveProfile(name, custom, 0)
}

func resolveProfile(name string, custom map[string]ProfileConfig, depth int) (ProfileConfig, error) {
	if depth > maxExtendsDepth {
		return ProfileConfig{}, fmt.Errorf("profile %q: extends chain too deep or cyclic", name)
	}

	p, ok := custom[name]
	if !ok {
		p, ok = builtinProfiles[name]
	}

	if !ok {
		return ProfileConfig{}, fmt.Errorf("unknown profile %q", name)
	}

	if p.Extends == "" {
		return p, nil
	}

	// A custom profile may extend the built-in it shadows.
	lookup := custom
	if p.Extends == name {
		lookup = nil
	}

	base, err := resolveProfile(p.Extends, lookup, depth+1)
	if err != nil {
		return ProfileConfig{}, fmt.Errorf("profile %q extends %q: %w", name, p.Extends, err)
	}

	return mergeProfiles(base, p), nil
}

// mergeProfiles lays ext on top of base. Tag lists are concatenated.
func mergeProfiles(base, ext ProfileConfig) ProfileConfig {
	merged := base
	merged.Extends = ""
	merged.IncludeTags = append(append([]string{}, base.IncludeTags...), ext.IncludeTags...)
	merged.ExcludeTags = append(append([]string{}, base.ExcludeTags...), ext.ExcludeTags...)

	if ext.TargetVerbosity != nil {
		merged.TargetVerbosity = ext.TargetVerbosity
	}

	if ext.IncludeMode != "" {
		merged.IncludeMode = ext.IncludeMode
	}

	if ext.ExcludeMode != "" {
		merged.ExcludeMode = ext.ExcludeMode
	}

	if ext.UserKey != "" {
		merged.UserKey = ext.UserKey
	}

	if ext.Lenient != nil {
		merged.Lenient = ext.Lenient
	}

	if ext.Unwrap != nil {
		merged.Unwrap = ext.Unwrap
	}

	return merged
}

// LoadProfiles reads custom profile definitions from a YAML file. An empty
// path yields no profiles.
func LoadProfiles(path string) (map[string]ProfileConfig, error) {
	if path == "" {
		return map[string]ProfileConfig{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}

	return ParseProfiles(data)
}

// ParseProfiles parses profile definitions from YAML bytes. Profiles live
// under a top-level "profiles" key; all other keys are ignored.
func ParseProfiles(data []byte) (map[string]ProfileConfig, error) {
	var raw struct {
		Profiles map[string]ProfileConfig `json:"profiles"`
	}

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}

	if raw.Profiles == nil {
		return make(map[string]ProfileConfig), nil
	}

	return raw.Profiles, nil
}

func ptr[T any](v T) *T { return &v }
