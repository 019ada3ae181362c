package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docsift/internal/collapse"
	"github.com/hupe1980/docsift/internal/filter"
	"github.com/hupe1980/docsift/internal/scope"
	"github.com/hupe1980/docsift/internal/tree"
)

func cvDoc() tree.Map {
	return tree.M(
		"multi_lang_config", tree.M("lang_keys", []any{"en", "de"}, "default_lang", "en"),
		"title", tree.M("en", "Curriculum Vitae", "de", "Lebenslauf"),
		"skills", []any{
			tree.M("content", tree.M("en", "Go", "de", "Go"), "verbosity", 1, "tags", []any{"backend"}),
			tree.M("content", tree.M("en", "Painting", "de", "Malen"), "verbosity", 3, "tags", []any{"hobby"}),
			tree.M("content", tree.M("en", "Teaching", "de", "Lehren"), "verbosity", 1, "tags", []any{"hobby"}),
		},
	)
}

func collapseStage(user string) *CollapseStage {
	opts := collapse.DefaultOptions()
	opts.UserKey = user

	return &CollapseStage{Options: opts}
}

func filterStage(target float64, rules filter.TagRules) *FilterStage {
	return &FilterStage{Target: target, Rules: rules, Options: filter.DefaultOptions()}
}

// ---------------------------------------------------------------------------
// Chain
// ---------------------------------------------------------------------------

func TestChain_CollapseThenFilter(t *testing.T) {
	chain := NewChain(
		collapseStage("de"),
		filterStage(2, filter.TagRules{Exclude: filter.Exclude(filter.ModeAny, "hobby")}),
	)

	r, err := chain.Apply(context.Background(), cvDoc())
	require.NoError(t, err)

	assert.Equal(t, tree.M("title", "Lebenslauf", "skills", []any{"Go"}), r.Doc)
	assert.Equal(t, 2, r.Pruned)
	require.Len(t, r.Reports, 2)
	assert.Equal(t, "collapse", r.Reports[0].Stage)
	assert.Equal(t, "filter", r.Reports[1].Stage)
	assert.Equal(t, 2, r.Reports[1].Pruned)
}

func TestChain_OrderIndependent(t *testing.T) {
	rules := filter.TagRules{Include: filter.Include(filter.ModeAny, "backend", "hobby")}

	a, err := NewChain(collapseStage("en"), filterStage(1, rules)).Apply(context.Background(), cvDoc())
	require.NoError(t, err)

	b, err := NewChain(filterStage(1, rules), collapseStage("en")).Apply(context.Background(), cvDoc())
	require.NoError(t, err)

	assert.Equal(t, a.Doc, b.Doc)
	assert.Equal(t, tree.M("title", "Curriculum Vitae", "skills", []any{"Go", "Teaching"}), a.Doc)
}

func TestChain_Empty(t *testing.T) {
	doc := tree.M("a", 1)

	r, err := NewChain().Apply(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, doc, r.Doc)
	assert.Empty(t, r.Reports)
}

func TestChain_StopsWhenRootDropped(t *testing.T) {
	doc := tree.M("content", "x", "verbosity", 9)

	r, err := NewChain(filterStage(1, filter.TagRules{}), collapseStage("en")).Apply(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, r.Dropped)
	assert.Nil(t, r.Doc)
	assert.Len(t, r.Reports, 1)
}

func TestChain_PropagatesErrors(t *testing.T) {
	doc := tree.M("title", tree.M("en", "x", "note", "y"))
	stage := &CollapseStage{Options: collapse.Options{
		Inherited: scope.New(tree.M("lang_keys", []any{"en", "de"}, "default_lang", "en")),
		Strict:    true,
	}}

	_, err := NewChain(stage).Apply(context.Background(), doc)
	require.ErrorIs(t, err, tree.ErrMalformed)
}

func TestChain_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewChain(collapseStage("en")).Apply(ctx, cvDoc())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestUnwrapStage(t *testing.T) {
	noUnwrap := filter.DefaultOptions()
	noUnwrap.Unwrap = false

	chain := NewChain(
		&FilterStage{Target: 1, Options: noUnwrap},
		&UnwrapStage{},
	)

	r, err := chain.Apply(context.Background(), tree.M("a", tree.M("content", "b", "verbosity", 0)))
	require.NoError(t, err)
	assert.Equal(t, tree.M("a", "b"), r.Doc)
	assert.Equal(t, 2, chain.Len())
}
