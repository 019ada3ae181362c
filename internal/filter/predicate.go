package filter

import (
	"fmt"

	"github.com/hupe1980/docsift/internal/tree"
)

// Mode selects how a tag list is matched against the tags of a node.
type Mode string

// Supported tag modes.
const (
	// ModeAny matches when the node carries at least one listed tag.
	ModeAny Mode = "any"
	// ModeAll matches when the node carries every listed tag.
	ModeAll Mode = "all"
)

// ParseMode parses a tag mode. Only the exact names "any" and "all" are
// accepted.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAny, ModeAll:
		return m, nil
	default:
		return "", fmt.Errorf("%w: invalid tag mode %q, use %q or %q", tree.ErrConfig, s, ModeAny, ModeAll)
	}
}

// TagRule is a tag list with its match mode.
type TagRule struct {
	Tags []string
	Mode Mode
}

// TagRules holds the include and exclude rules of a tag pass. A nil rule is
// absent; with both absent every node survives.
type TagRules struct {
	Include *TagRule
	Exclude *TagRule
}

// Include returns a rule for tags matched with mode.
func Include(mode Mode, tags ...string) *TagRule {
	return &TagRule{Tags: tags, Mode: mode}
}

// Exclude returns a rule for tags matched with mode.
func Exclude(mode Mode, tags ...string) *TagRule {
	return &TagRule{Tags: tags, Mode: mode}
}

// IsZero reports whether neither rule is present.
func (r TagRules) IsZero() bool {
	return r.Include == nil && r.Exclude == nil
}

// Validate checks the mode of every present rule.
func (r TagRules) Validate() error {
	if r.Include != nil {
		if _, err := ParseMode(string(r.Include.Mode)); err != nil {
			return fmt.Errorf("include: %w", err)
		}
	}

	if r.Exclude != nil {
		if _, err := ParseMode(string(r.Exclude.Mode)); err != nil {
			return fmt.Errorf("exclude: %w", err)
		}
	}

	return nil
}

// Keep decides whether a node carrying tags survives. The include and the
// exclude decision are taken independently and must both hold.
func (r TagRules) Keep(tags []string) bool {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}

	return (r.Include == nil || includes(set, r.Include)) &&
		(r.Exclude == nil || excludes(set, r.Exclude))
}

// includes reports whether set satisfies an include rule: any listed tag
// for ModeAny, every listed tag for ModeAll.
func includes(set map[string]struct{}, rule *TagRule) bool {
	if mode(rule) == ModeAll {
		return containsAll(set, rule.Tags)
	}

	return containsAny(set, rule.Tags)
}

// excludes reports whether set survives an exclude rule. ModeAny rejects a
// node carrying any listed tag; ModeAll only one carrying all of them.
func excludes(set map[string]struct{}, rule *TagRule) bool {
	if mode(rule) == ModeAll {
		return !containsAll(set, rule.Tags)
	}

	return !containsAny(set, rule.Tags)
}

func mode(rule *TagRule) Mode {
	m, _ := ParseMode(string(rule.Mode))
	return m
}

func containsAny(set map[string]struct{}, tags []string) bool {
	for _, t := range tags {
		if _, ok := set[t]; ok {
			return true
		}
	}

	return false
}

func containsAll(set map[string]struct{}, tags []string) bool {
	for _, t := range tags {
		if _, ok := set[t]; !ok {
			return false
		}
	}

	return true
}

// tagsOf reads the tags of a node. A lone scalar is a single tag and null
// carries none.
func tagsOf(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		tags := make([]string, 0, len(v))

		for i, item := range v {
			if item == nil {
				continue
			}

			if !tree.IsScalar(item) {
				return nil, tree.AtIndex(tree.Errorf(tree.ErrMalformed, "tag must be a scalar, got %T", item), i)
			}

			tags = append(tags, scalarText(item))
		}

		return tags, nil
	case tree.Map:
		return nil, tree.Errorf(tree.ErrMalformed, "tags must be a scalar or a sequence, got a mapping")
	default:
		return []string{scalarText(v)}, nil
	}
}

// verbosityOf reads the verbosity level of a node.
func verbosityOf(raw any) (float64, error) {
	level, ok := tree.Number(raw)
	if !ok {
		return 0, tree.Errorf(tree.ErrMalformed, "verbosity must be a number, got %T", raw)
	}

	return level, nil
}

func scalarText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}
