package scope

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docsift/internal/tree"
)

func TestResolve_NoConfigEntry(t *testing.T) {
	inherited := New(tree.M(RoleContentKey, "data"))

	got, err := Resolve(inherited, tree.M("a", 1), "filter_config")
	require.NoError(t, err)
	assert.Equal(t, "data", got.Key(RoleContentKey, "content"))
}

func TestResolve_LocalWins(t *testing.T) {
	inherited := New(tree.M(RoleContentKey, "data", RoleVerbosityKey, "level"))
	node := tree.M(
		"filter_config", tree.M(RoleContentKey, "info"),
		"info", "x",
	)

	got, err := Resolve(inherited, node, "filter_config")
	require.NoError(t, err)
	assert.Equal(t, "info", got.Key(RoleContentKey, "content"))
	assert.Equal(t, "level", got.Key(RoleVerbosityKey, "verbosity"))

	// The inherited configuration is not modified.
	assert.Equal(t, "data", inherited.Key(RoleContentKey, "content"))
}

func TestResolve_NonMappingEntry(t *testing.T) {
	_, err := Resolve(Empty(), tree.M("filter_config", "oops"), "filter_config")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tree.ErrMalformed))
	assert.Contains(t, err.Error(), "$.filter_config")
}

func TestConfig_KeyFallback(t *testing.T) {
	c := New(tree.M(RoleTagsKey, 42))

	assert.Equal(t, "tags", c.Key(RoleTagsKey, "tags"), "non-string values fall back")
	assert.Equal(t, "content", Empty().Key(RoleContentKey, "content"))
}

func TestConfig_Strings(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want []string
	}{
		{"sequence", []any{"en", "es", nil, 1}, []string{"en", "es", "1"}},
		{"scalar", "en", []string{"en"}},
		{"null", nil, nil},
		{"mapping", tree.M("a", 1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tree.M("lang_keys", tt.val))
			assert.Equal(t, tt.want, c.Strings("lang_keys"))
		})
	}

	assert.Nil(t, Empty().Strings("lang_keys"))
}

func TestConfig_String(t *testing.T) {
	c := New(tree.M("default_lang", "en", "n", 3, "null", nil))

	assert.Equal(t, "en", c.String("default_lang"))
	assert.Equal(t, "3", c.String("n"))
	assert.Equal(t, "", c.String("null"))
	assert.Equal(t, "", c.String("missing"))
}

func TestNew_CopiesInput(t *testing.T) {
	values := tree.M(RoleContentKey, "data")
	c := New(values)

	values[0].Value = "changed"

	assert.Equal(t, "data", c.Key(RoleContentKey, "content"))
}
