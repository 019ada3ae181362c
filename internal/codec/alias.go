package codec

import "github.com/hupe1980/docsift/internal/tree"

// Alias expansion limits, following the ratios gopkg.in/yaml.v3 applies
// when it decodes into Go values.
const (
	aliasRatioRangeLow  = 400000
	aliasRatioRangeHigh = 4000000
	minAliasedNodes     = 100
	minExpandedNodes    = 1000
)

// expansion counts the nodes a decoder builds. aliased counts the nodes
// built a second time because an alias referred to them.
type expansion struct {
	expanded int
	aliased  int
}

// add records one built node and fails once aliasing dominates the result.
func (e *expansion) add(viaAlias bool) error {
	e.expanded++

	if viaAlias {
		e.aliased++
	}

	if e.aliased > minAliasedNodes && e.expanded > minExpandedNodes &&
		float64(e.aliased)/float64(e.expanded) > allowedAliasRatio(e.expanded) {
		return tree.Errorf(tree.ErrTooLarge, "excessive aliasing: %d of %d nodes come from aliases", e.aliased, e.expanded)
	}

	return nil
}

func allowedAliasRatio(expanded int) float64 {
	switch {
	case expanded <= aliasRatioRangeLow:
		return 0.99
	case expanded >= aliasRatioRangeHigh:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(expanded-aliasRatioRangeLow)/float64(aliasRatioRangeHigh-aliasRatioRangeLow))
	}
}
