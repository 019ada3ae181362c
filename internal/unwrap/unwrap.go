// Package unwrap flattens content wrappers left behind by the filter passes.
//
// Any mapping holding the effective content key is replaced by its
// (recursively unwrapped) content value; the sibling metadata is discarded.
// Other mappings are rebuilt without the configuration key. Unwrapping an
// already unwrapped document returns an equal document, except where a
// subtree overrode content_key: the override is dropped with its
// configuration, so a second pass unwraps with the default key.
package unwrap

import (
	"github.com/hupe1980/docsift/internal/scope"
	"github.com/hupe1980/docsift/internal/tree"
)

// DefaultConfigKey and DefaultContentKey are the key names used when the
// caller does not choose others.
const (
	DefaultConfigKey  = "filter_config"
	DefaultContentKey = "content"
)

// Content unwraps doc. contentKey may be overridden per subtree through the
// content_key role of an embedded configKey mapping. doc is not modified.
func Content(doc any, configKey, contentKey string, inherited scope.Config) (any, error) {
	if configKey == "" {
		configKey = DefaultConfigKey
	}

	if contentKey == "" {
		contentKey = DefaultContentKey
	}

	u := unwrapper{configKey: configKey, contentKey: contentKey}

	return u.walk(doc, inherited, 0)
}

type unwrapper struct {
	configKey  string
	contentKey string
}

func (u unwrapper) walk(node any, cfg scope.Config, depth int) (any, error) {
	if err := tree.CheckDepth(depth); err != nil {
		return nil, err
	}

	switch n := node.(type) {
	case tree.Map:
		return u.walkMap(n, cfg, depth)
	case []any:
		out := make([]any, 0, len(n))

		for i, item := range n {
			v, err := u.walk(item, cfg, depth+1)
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

func (u unwrapper) walkMap(node tree.Map, inherited scope.Config, depth int) (any, error) {
	cfg, err := scope.Resolve(inherited, node, u.configKey)
	if err != nil {
		return nil, err
	}

	contentKey := cfg.Key(scope.RoleContentKey, u.contentKey)

	if content, ok := node.Get(contentKey); ok {
		v, err := u.walk(content, cfg, depth+1)
		if err != nil {
			return nil, tree.AtKey(err, contentKey)
		}

		return v, nil
	}

	out := tree.NewMap(len(node))

	for _, e := range node {
		if e.Key == u.configKey {
			continue
		}

		v, err := u.walk(e.Value, cfg, depth+1)
		if err != nil {
			return nil, tree.AtKey(err, e.Key)
		}

		out = append(out, tree.Entry{Key: e.Key, Value: v})
	}

	return out, nil
}
