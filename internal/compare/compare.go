package compare

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/hupe1980/docsift/internal/tree"
)

// Kind classifies a Change.
type Kind string

// Change kinds.
const (
	Added    Kind = "added"
	Removed  Kind = "removed"
	Modified Kind = "modified"
)

// Change is a single differing leaf.
type Change struct {
	// Path addresses the leaf, outermost first.
	Path []any
	Kind Kind
	// Old and New are nil for added and removed leaves respectively.
	Old any
	New any
	// Detail is an inline diff when both sides are strings.
	Detail string
}

// PathString renders Path as "$.key[0]".
func (c Change) PathString() string {
	return tree.FormatPath(c.Path)
}

// Result lists the changes from one document to another. Mapping keys are
// visited in sorted order.
type Result struct {
	Changes []Change
}

// Equal reports whether the documents are structurally identical.
func (r *Result) Equal() bool {
	return len(r.Changes) == 0
}

// Count returns the number of changes of the given kind.
func (r *Result) Count(k Kind) int {
	n := 0

	for _, c := range r.Changes {
		if c.Kind == k {
			n++
		}
	}

	return n
}

// Documents compares from against to. Mapping key order is ignored;
// sequence order is not.
func Documents(from, to any) *Result {
	rep := &reporter{}

	cmp.Equal(from, to,
		cmp.Transformer("mapping", mappingOf),
		cmpopts.EquateNaNs(),
		cmp.Reporter(rep),
	)

	return &Result{Changes: rep.changes}
}

func mappingOf(m tree.Map) map[string]any {
	out := make(map[string]any, len(m))
	for _, e := range m {
		out[e.Key] = e.Value
	}

	return out
}

// reporter collects unequal leaves while cmp walks both values.
type reporter struct {
	path    cmp.Path
	changes []Change
}

func (r *reporter) PushStep(ps cmp.PathStep) {
	r.path = append(r.path, ps)
}

func (r *reporter) PopStep() {
	r.path = r.path[:len(r.path)-1]
}

func (r *reporter) Report(rs cmp.Result) {
	if rs.Equal() {
		return
	}

	vx, vy := r.path.Last().Values()

	c := Change{Path: r.docPath(), Kind: Modified}

	switch {
	case !vx.IsValid():
		c.Kind = Added
		c.New = valueOf(vy)
	case !vy.IsValid():
		c.Kind = Removed
		c.Old = valueOf(vx)
	default:
		c.Old, c.New = valueOf(vx), valueOf(vy)
		c.Detail = stringDetail(c.Old, c.New)
	}

	r.changes = append(r.changes, c)
}

// docPath converts the cmp path into document keys and indices.
func (r *reporter) docPath() []any {
	var out []any

	for _, step := range r.path {
		switch s := step.(type) {
		case cmp.MapIndex:
			out = append(out, fmt.Sprint(s.Key().Interface()))
		case cmp.SliceIndex:
			ix, iy := s.SplitKeys()
			if ix < 0 {
				ix = iy
			}

			out = append(out, ix)
		}
	}

	return out
}

func valueOf(v reflect.Value) any {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}

	val := v.Interface()
	if m, ok := val.(map[string]any); ok {
		return fromMapping(m)
	}

	return val
}

// fromMapping turns a transformed mapping back into a tree.Map with sorted
// keys, since the original order is lost by the transform.
func fromMapping(m map[string]any) tree.Map {
	out := tree.NewMap(len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, tree.Entry{Key: k, Value: m[k]})
	}

	return out
}

// stringDetail renders a character diff of two strings as
// "[-removed-]{+inserted+}" runs.
func stringDetail(old, new any) string {
	a, ok1 := old.(string)
	b, ok2 := new.(string)

	if !ok1 || !ok2 {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(a, b, false))

	var sb strings.Builder

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		}
	}

	return sb.String()
}
