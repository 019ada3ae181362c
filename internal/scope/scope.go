// Package scope resolves the effective configuration of a subtree.
//
// Documents may embed a configuration mapping under a well-known key
// (for example "filter_config"). The mapping is shallow-merged over the
// configuration inherited from the ancestors, the most local value winning
// per role, and the result applies to the whole subtree until a descendant
// embeds a new one.
package scope

import (
	"fmt"

	"github.com/hupe1980/docsift/internal/tree"
)

// Roles understood by the filter passes. Their values name the document
// keys used for the role in the current subtree.
const (
	RoleContentKey   = "content_key"
	RoleVerbosityKey = "verbosity_key"
	RoleTagsKey      = "tags_key"
)

// Config is an immutable role-to-value mapping. The zero value is empty
// and ready to use.
type Config struct {
	values tree.Map
}

// Empty returns a configuration without any roles.
func Empty() Config {
	return Config{}
}

// New returns a configuration holding a copy of values.
func New(values tree.Map) Config {
	return Config{values: tree.DeepCopyMap(values)}
}

// Resolve returns the configuration in force for node. When node embeds a
// mapping under configKey it is merged over inherited; otherwise inherited
// is returned unchanged. A non-mapping configuration entry is malformed.
func Resolve(inherited Config, node tree.Map, configKey string) (Config, error) {
	raw, ok := node.Get(configKey)
	if !ok {
		return inherited, nil
	}

	local, ok := raw.(tree.Map)
	if !ok {
		return inherited, tree.AtKey(
			tree.Errorf(tree.ErrMalformed, "configuration entry must be a mapping, got %T", raw),
			configKey,
		)
	}

	return inherited.Merge(local), nil
}

// Merge returns a new configuration with local layered over c.
func (c Config) Merge(local tree.Map) Config {
	merged := tree.NewMap(len(c.values) + len(local))
	merged = append(merged, c.values...)

	for _, e := range local {
		merged = merged.Set(e.Key, e.Value)
	}

	return Config{values: merged}
}

// Lookup returns the raw value of role.
func (c Config) Lookup(role string) (any, bool) {
	return c.values.Get(role)
}

// Key returns the document key configured for role, or fallback when the
// role is unset or not a string.
func (c Config) Key(role, fallback string) string {
	if v, ok := c.values.Get(role); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	return fallback
}

// String returns the scalar configured for role in its textual form, or ""
// when unset or null.
func (c Config) String(role string) string {
	v, ok := c.values.Get(role)
	if !ok || v == nil {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}

// Strings returns the list configured for role. A lone scalar counts as a
// one-element list.
func (c Config) Strings(role string) []string {
	v, ok := c.values.Get(role)
	if !ok || v == nil {
		return nil
	}

	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}

			out = append(out, fmt.Sprint(item))
		}

		return out
	case []string:
		return append([]string(nil), val...)
	case tree.Map:
		return nil
	default:
		return []string{fmt.Sprint(val)}
	}
}

// Values returns a copy of the underlying role mapping.
func (c Config) Values() tree.Map {
	return tree.DeepCopyMap(c.values)
}
