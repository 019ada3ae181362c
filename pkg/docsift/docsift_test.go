package docsift_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docsift/pkg/docsift"
)

const cvYAML = `multi_lang_config:
  lang_keys: [en, de]
  default_lang: en
name: Jane
summary:
  en: Engineer
  de: Ingenieurin
skills:
  - content: Go
    verbosity: 1
    tags: [backend]
  - content: Painting
    verbosity: 2
    tags: [hobby]
`

func skills() []any {
	return []any{
		docsift.M("content", "Go", "verbosity", 1, "tags", []any{"backend"}),
		docsift.M("content", "Painting", "verbosity", 2, "tags", []any{"hobby"}),
	}
}

// ---------------------------------------------------------------------------
// Filter
// ---------------------------------------------------------------------------

func TestFilter_DefaultTarget(t *testing.T) {
	out, err := docsift.Filter(docsift.M("skills", skills()))
	require.NoError(t, err)
	assert.Equal(t, docsift.M("skills", []any{"Go"}), out)
}

func TestFilter_Options(t *testing.T) {
	tests := []struct {
		name string
		opts []docsift.Option
		want any
	}{
		{
			name: "everything",
			opts: []docsift.Option{docsift.WithTargetVerbosity(math.Inf(1))},
			want: docsift.M("skills", []any{"Go", "Painting"}),
		},
		{
			name: "exclude tags",
			opts: []docsift.Option{
				docsift.WithTargetVerbosity(math.Inf(1)),
				docsift.WithExcludeTags(docsift.ModeAny, "backend"),
			},
			want: docsift.M("skills", []any{"Painting"}),
		},
		{
			name: "include tags",
			opts: []docsift.Option{
				docsift.WithTargetVerbosity(5),
				docsift.WithIncludeTags(docsift.ModeAll, "hobby"),
			},
			want: docsift.M("skills", []any{"Painting"}),
		},
		{
			name: "nothing left",
			opts: []docsift.Option{docsift.WithTargetVerbosity(0)},
			want: docsift.M("skills", []any{}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := docsift.Filter(docsift.M("skills", skills()), tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestFilter_TagModes(t *testing.T) {
	out, err := docsift.Filter(docsift.M("skills", skills()),
		docsift.WithTargetVerbosity(5),
		docsift.WithIncludeTags("", "hobby"))
	require.NoError(t, err)
	assert.Equal(t, docsift.M("skills", []any{"Painting"}), out)

	_, err = docsift.Filter(docsift.M("skills", skills()), docsift.WithExcludeTags("ALL", "hobby"))
	require.ErrorIs(t, err, docsift.ErrConfig)
}

func TestFilter_WithoutUnwrap(t *testing.T) {
	out, err := docsift.Filter(docsift.M("skills", skills()), docsift.WithoutUnwrap())
	require.NoError(t, err)
	assert.Equal(t, docsift.M("skills", skills()[:1]), out)
}

func TestFilter_CustomKeys(t *testing.T) {
	doc := docsift.M("items", []any{
		docsift.M("text", "a", "level", 1),
		docsift.M("text", "b", "level", 3),
	})

	out, err := docsift.Filter(doc, docsift.WithKeys(docsift.Keys{ContentKey: "text", VerbosityKey: "level"}))
	require.NoError(t, err)
	assert.Equal(t, docsift.M("items", []any{"a"}), out)
}

func TestFilter_Inherited(t *testing.T) {
	doc := docsift.M("skills", []any{
		docsift.M("content", "Go", "level", 1),
		docsift.M("content", "Painting", "level", 3),
	})

	out, err := docsift.Filter(doc, docsift.WithInherited(docsift.M("verbosity_key", "level")))
	require.NoError(t, err)
	assert.Equal(t, docsift.M("skills", []any{"Go"}), out)
}

func TestFilterVerbosity(t *testing.T) {
	out, err := docsift.FilterVerbosity(docsift.M("skills", skills()), 2,
		docsift.WithExcludeTags(docsift.ModeAny, "hobby"))
	require.NoError(t, err)
	assert.Equal(t, docsift.M("skills", []any{"Go", "Painting"}), out)
}

func TestFilterTags(t *testing.T) {
	out, err := docsift.FilterTags(docsift.M("skills", skills()),
		docsift.WithTargetVerbosity(0),
		docsift.WithExcludeTags(docsift.ModeAny, "backend"))
	require.NoError(t, err)
	assert.Equal(t, docsift.M("skills", []any{"Painting"}), out)
}

func TestFilter_MalformedVerbosity(t *testing.T) {
	_, err := docsift.Filter(docsift.M("content", "x", "verbosity", "high"))
	require.Error(t, err)
	assert.ErrorIs(t, err, docsift.ErrMalformed)
}

// ---------------------------------------------------------------------------
// Collapse
// ---------------------------------------------------------------------------

func TestCollapse(t *testing.T) {
	doc := docsift.M(
		"multi_lang_config", docsift.M("lang_keys", []any{"en", "de"}, "default_lang", "en"),
		"summary", docsift.M("en", "Engineer", "de", "Ingenieurin"),
	)

	out, err := docsift.Collapse(doc, docsift.WithUserKey("de"))
	require.NoError(t, err)
	assert.Equal(t, docsift.M("summary", "Ingenieurin"), out)

	out, err = docsift.Collapse(doc)
	require.NoError(t, err)
	assert.Equal(t, docsift.M("summary", "Engineer"), out)
}

func TestCollapse_StrictAndLenient(t *testing.T) {
	doc := docsift.M(
		"multi_lang_config", docsift.M("lang_keys", []any{"en", "de"}, "default_lang", "en"),
		"summary", docsift.M("en", "Engineer", "de", "Ingenieurin"),
	)

	_, err := docsift.Collapse(doc, docsift.WithUserKey("fr"))
	require.Error(t, err)
	assert.ErrorIs(t, err, docsift.ErrConfig)

	out, err := docsift.Collapse(doc, docsift.WithUserKey("fr"), docsift.WithLenient())
	require.NoError(t, err)
	assert.Equal(t, docsift.M("summary", "Engineer"), out)
}

func TestCollapse_CustomKeys(t *testing.T) {
	doc := docsift.M(
		"variants", docsift.M("keys", []any{"short", "long"}, "fallback", "short"),
		"intro", docsift.M("short", "Hi", "long", "Hello there"),
	)

	out, err := docsift.Collapse(doc,
		docsift.WithCollapseKeys(docsift.CollapseKeys{ConfigKey: "variants", KeysKey: "keys", DefaultKey: "fallback"}),
		docsift.WithUserKey("long"),
	)
	require.NoError(t, err)
	assert.Equal(t, docsift.M("intro", "Hello there"), out)
}

func TestCollapse_MissingValue(t *testing.T) {
	doc := docsift.M(
		"multi_lang_config", docsift.M("lang_keys", []any{"en", "de"}),
		"summary", docsift.M("de", "Ingenieurin"),
	)

	_, err := docsift.Collapse(doc, docsift.WithUserKey("en"))
	require.Error(t, err)
	assert.ErrorIs(t, err, docsift.ErrMissingValue)
}

// ---------------------------------------------------------------------------
// Unwrap
// ---------------------------------------------------------------------------

func TestUnwrap(t *testing.T) {
	doc := docsift.M(
		"filter_config", docsift.M("verbosity", 2),
		"skills", skills(),
	)

	out, err := docsift.Unwrap(doc)
	require.NoError(t, err)
	assert.Equal(t, docsift.M("skills", []any{"Go", "Painting"}), out)
}

// ---------------------------------------------------------------------------
// Process
// ---------------------------------------------------------------------------

func TestProcess_YAML(t *testing.T) {
	out, err := docsift.Process(context.Background(), []byte(cvYAML), docsift.WithUserKey("de"))
	require.NoError(t, err)
	assert.Equal(t, "name: Jane\nsummary: Ingenieurin\nskills:\n  - Go\n", string(out))
}

func TestProcess_JSON(t *testing.T) {
	in := `{"summary": {"en": "Engineer", "de": "Ingenieurin"},
"multi_lang_config": {"lang_keys": ["en", "de"], "default_lang": "en"},
"skills": [{"content": "Go", "verbosity": 1}, {"content": "Painting", "verbosity": 2}]}`

	out, err := docsift.Process(context.Background(), []byte(in),
		docsift.WithFormat(docsift.FormatJSON),
		docsift.WithTargetVerbosity(2),
	)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, map[string]any{
		"summary": "Engineer",
		"skills":  []any{"Go", "Painting"},
	}, got)
}

func TestProcess_SkipStages(t *testing.T) {
	out, err := docsift.Process(context.Background(), []byte(cvYAML),
		docsift.WithoutFilter(), docsift.WithFormat(docsift.FormatGoccy))
	require.NoError(t, err)
	assert.Contains(t, string(out), "summary: Engineer")
	assert.Contains(t, string(out), "verbosity: 2")

	out, err = docsift.Process(context.Background(), []byte(cvYAML), docsift.WithoutCollapse())
	require.NoError(t, err)
	assert.Contains(t, string(out), "multi_lang_config:")
	assert.NotContains(t, string(out), "Painting")
}

func TestProcess_MultiDocument(t *testing.T) {
	in := "content: a\nverbosity: 1\n---\ncontent: b\nverbosity: 3\n"

	out, err := docsift.Process(context.Background(), []byte(in))
	require.NoError(t, err)
	assert.Equal(t, "a\n---\nnull\n", string(out))
}

func TestProcess_Errors(t *testing.T) {
	_, err := docsift.Process(context.Background(), []byte(cvYAML), docsift.WithFormat("toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "toml"`)

	_, err = docsift.Process(context.Background(), []byte("a: [unclosed\n"))
	require.Error(t, err)

	_, err = docsift.Process(context.Background(), []byte(cvYAML), docsift.WithUserKey("fr"))
	require.Error(t, err)
	assert.ErrorIs(t, err, docsift.ErrConfig)
	assert.Contains(t, err.Error(), "document 1")
}

func TestProcess_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := docsift.Process(ctx, []byte(cvYAML))
	require.ErrorIs(t, err, context.Canceled)
}
