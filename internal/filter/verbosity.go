package filter

import (
	"github.com/hupe1980/docsift/internal/scope"
	"github.com/hupe1980/docsift/internal/tree"
)

// ByVerbosity prunes every content node whose verbosity exceeds target.
// Levels compare numerically and inclusively, so a node at exactly target
// survives. Positive infinity keeps everything at a finite level.
func ByVerbosity(doc any, target float64, opts Options) (*Result, error) {
	opts.Keys = opts.Keys.withDefaults()

	w := newVerbosityWalker(target, opts.Keys, opts.Unwrap)

	out, kept, err := w.walk(doc, opts.Inherited, 0)
	if err != nil {
		return nil, err
	}

	return finish(out, kept, w.pruned, opts)
}

func newVerbosityWalker(target float64, keys Keys, keepConfig bool) *walker {
	return &walker{
		keys:       keys,
		keepConfig: keepConfig,
		decide: func(node tree.Map, cfg scope.Config) (bool, bool, error) {
			key := cfg.Key(scope.RoleVerbosityKey, keys.VerbosityKey)

			raw, ok := node.Get(key)
			if !ok {
				return false, false, nil
			}

			level, err := verbosityOf(raw)
			if err != nil {
				return false, false, tree.AtKey(err, key)
			}

			return true, level <= target, nil
		},
	}
}
