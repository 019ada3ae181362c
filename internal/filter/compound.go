package filter

import (
	"github.com/hupe1980/docsift/internal/scope"
	"github.com/hupe1980/docsift/internal/tree"
)

// Compound filters every content node by verbosity and then by tags. A node
// pruned by the verbosity decision is not looked at by the tag decision;
// a node pruned by either is absent from the result.
func Compound(doc any, target float64, rules TagRules, opts Options) (*Result, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	opts.Keys = opts.Keys.withDefaults()

	c := &compound{
		keys:       opts.Keys,
		keepConfig: opts.Unwrap,
		// The tag decision runs on the verbosity output and needs the
		// configuration entries it contains.
		verbosity: newVerbosityWalker(target, opts.Keys, true),
		tags:      newTagWalker(rules, opts.Keys, opts.Unwrap),
	}

	out, kept, err := c.walk(doc, opts.Inherited, 0)
	if err != nil {
		return nil, err
	}

	return finish(out, kept, c.verbosity.pruned+c.tags.pruned, opts)
}

type compound struct {
	keys       Keys
	keepConfig bool
	verbosity  *walker
	tags       *walker
}

func (c *compound) walk(node any, cfg scope.Config, depth int) (any, bool, error) {
	if err := tree.CheckDepth(depth); err != nil {
		return nil, false, err
	}

	switch n := node.(type) {
	case tree.Map:
		return c.walkMap(n, cfg, depth)
	case []any:
		out, err := walkSeq(n, cfg, depth, c.walk)
		return out, true, err
	default:
		return node, true, nil
	}
}

func (c *compound) walkMap(node tree.Map, inherited scope.Config, depth int) (any, bool, error) {
	cfg, err := scope.Resolve(inherited, node, c.keys.ConfigKey)
	if err != nil {
		return nil, false, err
	}

	if !node.Has(cfg.Key(scope.RoleContentKey, c.keys.ContentKey)) {
		out, err := walkPlain(node, cfg, depth, c.keys.ConfigKey, c.keepConfig, c.walk)
		return out, true, err
	}

	byVerbosity, kept, err := c.verbosity.walkMap(node, inherited, depth)
	if err != nil || !kept {
		return nil, false, err
	}

	return c.tags.walk(byVerbosity, inherited, depth)
}
