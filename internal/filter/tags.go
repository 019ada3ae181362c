package filter

import (
	"github.com/hupe1980/docsift/internal/scope"
	"github.com/hupe1980/docsift/internal/tree"
)

// ByTags prunes every content node whose tags fail rules. The rule modes
// are validated before the document is touched.
func ByTags(doc any, rules TagRules, opts Options) (*Result, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	opts.Keys = opts.Keys.withDefaults()

	w := newTagWalker(rules, opts.Keys, opts.Unwrap)

	out, kept, err := w.walk(doc, opts.Inherited, 0)
	if err != nil {
		return nil, err
	}

	return finish(out, kept, w.pruned, opts)
}

func newTagWalker(rules TagRules, keys Keys, keepConfig bool) *walker {
	return &walker{
		keys:       keys,
		keepConfig: keepConfig,
		decide: func(node tree.Map, cfg scope.Config) (bool, bool, error) {
			key := cfg.Key(scope.RoleTagsKey, keys.TagsKey)

			raw, ok := node.Get(key)
			if !ok {
				return false, false, nil
			}

			if rules.IsZero() {
				return true, true, nil
			}

			tags, err := tagsOf(raw)
			if err != nil {
				return false, false, tree.AtKey(err, key)
			}

			return true, rules.Keep(tags), nil
		},
	}
}
