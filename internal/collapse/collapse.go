// Package collapse resolves multi-variant mappings, such as per-language
// translations, down to a single selected variant.
//
// The set of variant keys and the default variant are read from an
// embedded configuration mapping that may be overridden per subtree:
//
//	multi_lang_config:
//	  lang_keys: [en, es, fr]
//	  default_lang: en
//	greeting:
//	  en: Hello
//	  es: Hola
//
// Collapsing the document above for "es" yields {greeting: Hola}.
package collapse

import (
	"fmt"
	"slices"

	"github.com/hupe1980/docsift/internal/scope"
	"github.com/hupe1980/docsift/internal/tree"
)

// Options configures a collapse pass.
type Options struct {
	// ConfigKey names the embedded configuration mapping.
	ConfigKey string
	// KeysKey is the configuration role holding the collapsible keys.
	KeysKey string
	// DefaultKey is the configuration role holding the fallback key.
	DefaultKey string
	// UserKey is the variant to select. Empty selects the default.
	UserKey string
	// Inherited is the configuration in force at the document root.
	Inherited scope.Config
	// Strict rejects a UserKey missing from the collapsible keys. When
	// false the default key is selected instead.
	Strict bool
}

// DefaultOptions returns strict options with the default key names.
func DefaultOptions() Options {
	return Options{
		ConfigKey:  "multi_lang_config",
		KeysKey:    "lang_keys",
		DefaultKey: "default_lang",
		Strict:     true,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()

	if o.ConfigKey == "" {
		o.ConfigKey = d.ConfigKey
	}

	if o.KeysKey == "" {
		o.KeysKey = d.KeysKey
	}

	if o.DefaultKey == "" {
		o.DefaultKey = d.DefaultKey
	}

	return o
}

// Keys collapses every collapsible mapping of doc to its selected variant
// and drops the configuration entries. doc is not modified.
func Keys(doc any, opts Options) (any, error) {
	c := collapser{opts: opts.withDefaults()}

	return c.walk(doc, opts.Inherited, opts.UserKey, 0)
}

type collapser struct {
	opts Options
}

func (c collapser) walk(node any, cfg scope.Config, selection string, depth int) (any, error) {
	if err := tree.CheckDepth(depth); err != nil {
		return nil, err
	}

	switch n := node.(type) {
	case tree.Map:
		return c.walkMap(n, cfg, selection, depth)
	case []any:
		out := make([]any, 0, len(n))

		for i, item := range n {
			v, err := c.walk(item, cfg, selection, depth+1)
			if err != nil {
				return nil, tree.AtIndex(err, i)
			}

			out = append(out, v)
		}

		return out, nil
	default:
		return node, nil
	}
}

func (c collapser) walkMap(node tree.Map, inherited scope.Config, selection string, depth int) (any, error) {
	cfg, err := scope.Resolve(inherited, node, c.opts.ConfigKey)
	if err != nil {
		return nil, err
	}

	variants := cfg.Strings(c.opts.KeysKey)
	defaultKey := cfg.String(c.opts.DefaultKey)

	if selection != "" && len(variants) > 0 && !slices.Contains(variants, selection) {
		if c.opts.Strict {
			return nil, tree.Errorf(tree.ErrConfig,
				"user key %q is not in %s %v, add it to %q", selection, c.opts.KeysKey, variants, c.opts.KeysKey)
		}

		selection = defaultKey
	}

	var inside, outside []string

	for _, k := range node.Keys() {
		if slices.Contains(variants, k) {
			inside = append(inside, k)
		} else {
			outside = append(outside, k)
		}
	}

	if len(inside) > 0 && len(outside) > 0 {
		return nil, tree.Errorf(tree.ErrMalformed,
			"mapping mixes collapsible keys %v with other keys %v", inside, outside)
	}

	if len(outside) == 0 {
		return pick(node, selection, defaultKey)
	}

	out := tree.NewMap(len(node))

	for _, e := range node {
		if e.Key == c.opts.ConfigKey {
			continue
		}

		v, err := c.walk(e.Value, cfg, selection, depth+1)
		if err != nil {
			return nil, tree.AtKey(err, e.Key)
		}

		out = append(out, tree.Entry{Key: e.Key, Value: v})
	}

	return out, nil
}

// pick returns the selected variant of a collapsible mapping, falling back
// to the default variant. The value is returned as is.
func pick(node tree.Map, selection, defaultKey string) (any, error) {
	if selection != "" {
		if v, ok := node.Get(selection); ok {
			return tree.DeepCopy(v), nil
		}
	}

	if defaultKey != "" {
		if v, ok := node.Get(defaultKey); ok {
			return tree.DeepCopy(v), nil
		}
	}

	return nil, tree.Errorf(tree.ErrMissingValue,
		"no value for either user key %s or default key %s", quote(selection), quote(defaultKey))
}

func quote(k string) string {
	if k == "" {
		return "(none)"
	}

	return fmt.Sprintf("%q", k)
}
