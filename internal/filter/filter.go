package filter

import (
	"github.com/hupe1980/docsift/internal/scope"
	"github.com/hupe1980/docsift/internal/tree"
	"github.com/hupe1980/docsift/internal/unwrap"
)

// Keys names the document keys a filter pass looks at. Each of them except
// ConfigKey may be overridden per subtree through the embedded
// configuration mapping.
type Keys struct {
	// ConfigKey names the embedded configuration mapping.
	ConfigKey string
	// ContentKey names the payload of a content node.
	ContentKey string
	// VerbosityKey names the numeric detail level of a content node.
	VerbosityKey string
	// TagsKey names the tag set of a content node.
	TagsKey string
}

// DefaultKeys returns the conventional key names.
func DefaultKeys() Keys {
	return Keys{
		ConfigKey:    "filter_config",
		ContentKey:   "content",
		VerbosityKey: "verbosity",
		TagsKey:      "tags",
	}
}

func (k Keys) withDefaults() Keys {
	d := DefaultKeys()

	if k.ConfigKey == "" {
		k.ConfigKey = d.ConfigKey
	}

	if k.ContentKey == "" {
		k.ContentKey = d.ContentKey
	}

	if k.VerbosityKey == "" {
		k.VerbosityKey = d.VerbosityKey
	}

	if k.TagsKey == "" {
		k.TagsKey = d.TagsKey
	}

	return k
}

// Options configures a filter pass.
type Options struct {
	// Keys are the key names in force at the document root. Empty fields
	// take their default.
	Keys Keys
	// Inherited is the configuration in force at the document root.
	Inherited scope.Config
	// Unwrap replaces surviving content nodes by their content value once
	// filtering is done. Without it the result keeps the content wrappers
	// and their metadata.
	Unwrap bool
}

// DefaultOptions returns options with the default keys and unwrapping on.
func DefaultOptions() Options {
	return Options{Keys: DefaultKeys(), Unwrap: true}
}

// Result is the outcome of a filter pass.
type Result struct {
	// Doc is the filtered document. It is nil when the root was pruned.
	Doc any
	// Dropped reports that the root node itself was pruned.
	Dropped bool
	// Pruned counts the content nodes removed by the pass.
	Pruned int
}

// step filters one node under cfg. A false return means the node is pruned.
type step func(node any, cfg scope.Config, depth int) (any, bool, error)

// decider classifies a mapping for a pass. content reports whether node is
// a content node for the pass; keep whether it survives.
type decider func(node tree.Map, cfg scope.Config) (content, keep bool, err error)

// walker is the recursion shared by the verbosity and the tag pass.
type walker struct {
	keys       Keys
	keepConfig bool
	decide     decider
	pruned     int
}

func (w *walker) walk(node any, cfg scope.Config, depth int) (any, bool, error) {
	if err := tree.CheckDepth(depth); err != nil {
		return nil, false, err
	}

	switch n := node.(type) {
	case tree.Map:
		return w.walkMap(n, cfg, depth)
	case []any:
		out, err := walkSeq(n, cfg, depth, w.walk)
		return out, true, err
	default:
		return node, true, nil
	}
}

func (w *walker) walkMap(node tree.Map, inherited scope.Config, depth int) (any, bool, error) {
	cfg, err := scope.Resolve(inherited, node, w.keys.ConfigKey)
	if err != nil {
		return nil, false, err
	}

	contentKey := cfg.Key(scope.RoleContentKey, w.keys.ContentKey)

	if content, ok := node.Get(contentKey); ok {
		isContent, keep, err := w.decide(node, cfg)
		if err != nil {
			return nil, false, err
		}

		if isContent {
			if !keep {
				w.pruned++
				return nil, false, nil
			}

			filtered, ok, err := w.walk(content, cfg, depth+1)
			if err != nil {
				return nil, false, tree.AtKey(err, contentKey)
			}

			if !ok {
				filtered = nil
			}

			return replaceContent(node, contentKey, filtered), true, nil
		}
	}

	out, err := walkPlain(node, cfg, depth, w.keys.ConfigKey, w.keepConfig, w.walk)

	return out, true, err
}

// walkPlain filters every value of a plain container. Pruned values are
// omitted, empty ones kept. The configuration entry is copied through only
// when keepConfig is set.
func walkPlain(node tree.Map, cfg scope.Config, depth int, configKey string, keepConfig bool, next step) (tree.Map, error) {
	out := tree.NewMap(len(node))

	for _, e := range node {
		if e.Key == configKey {
			if keepConfig {
				out = append(out, tree.Entry{Key: e.Key, Value: tree.DeepCopy(e.Value)})
			}

			continue
		}

		v, ok, err := next(e.Value, cfg, depth+1)
		if err != nil {
			return nil, tree.AtKey(err, e.Key)
		}

		if ok {
			out = append(out, tree.Entry{Key: e.Key, Value: v})
		}
	}

	return out, nil
}

func walkSeq(seq []any, cfg scope.Config, depth int, next step) ([]any, error) {
	out := make([]any, 0, len(seq))

	for i, item := range seq {
		v, ok, err := next(item, cfg, depth+1)
		if err != nil {
			return nil, tree.AtIndex(err, i)
		}

		if ok {
			out = append(out, v)
		}
	}

	return out, nil
}

// replaceContent copies node with the value under contentKey replaced.
func replaceContent(node tree.Map, contentKey string, content any) tree.Map {
	out := tree.NewMap(len(node))

	for _, e := range node {
		if e.Key == contentKey {
			out = append(out, tree.Entry{Key: e.Key, Value: content})
			continue
		}

		out = append(out, tree.Entry{Key: e.Key, Value: tree.DeepCopy(e.Value)})
	}

	return out
}

// finish turns the output of a pass into a Result, unwrapping if asked to.
func finish(doc any, kept bool, pruned int, opts Options) (*Result, error) {
	if !kept {
		return &Result{Dropped: true, Pruned: pruned}, nil
	}

	if opts.Unwrap {
		var err error

		keys := opts.Keys.withDefaults()

		doc, err = unwrap.Content(doc, keys.ConfigKey, keys.ContentKey, opts.Inherited)
		if err != nil {
			return nil, err
		}
	}

	return &Result{Doc: doc, Pruned: pruned}, nil
}
