package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinProfileNames(t *testing.T) {
	assert.Equal(t, []string{"full", "short"}, BuiltinProfileNames())
}

func TestResolveProfile_Builtin(t *testing.T) {
	p, err := ResolveProfile("full", nil)
	require.NoError(t, err)
	require.NotNil(t, p.TargetVerbosity)
	assert.True(t, math.IsInf(*p.TargetVerbosity, 1))

	p, err = ResolveProfile("short", nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, *p.TargetVerbosity, 0)
}

func TestResolveProfile_Unknown(t *testing.T) {
	_, err := ResolveProfile("nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown profile "nope"`)
}

func TestResolveProfile_CustomExtendsBuiltin(t *testing.T) {
	custom := map[string]ProfileConfig{
		"en-short": {
			Extends:     "short",
			IncludeTags: []string{"en"},
			UserKey:     "en",
		},
	}

	p, err := ResolveProfile("en-short", custom)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, *p.TargetVerbosity, 0)
	assert.Equal(t, []string{"en"}, p.IncludeTags)
	assert.Equal(t, "en", p.UserKey)
	assert.Empty(t, p.Extends)
}

func TestResolveProfile_Chain(t *testing.T) {
	custom := map[string]ProfileConfig{
		"base":  {ExcludeTags: []string{"draft"}, ExcludeMode: "any"},
		"child": {Extends: "base", ExcludeTags: []string{"private"}, ExcludeMode: "all"},
	}

	p, err := ResolveProfile("child", custom)
	require.NoError(t, err)
	assert.Equal(t, []string{"draft", "private"}, p.ExcludeTags)
	assert.Equal(t, "all", p.ExcludeMode)
	assert.Nil(t, p.TargetVerbosity)
}

func TestResolveProfile_ShadowsBuiltin(t *testing.T) {
	custom := map[string]ProfileConfig{
		"short": {Extends: "short", IncludeTags: []string{"cv"}},
	}

	p, err := ResolveProfile("short", custom)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, *p.TargetVerbosity, 0)
	assert.Equal(t, []string{"cv"}, p.IncludeTags)
}

func TestResolveProfile_Cycle(t *testing.T) {
	custom := map[string]ProfileConfig{
		"a": {Extends: "b"},
		"b": {Extends: "a"},
	}

	_, err := ResolveProfile("a", custom)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclic")
}

func TestResolveProfile_ExtendsUnknown(t *testing.T) {
	custom := map[string]ProfileConfig{"x": {Extends: "missing"}}

	_, err := ResolveProfile("x", custom)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `profile "x" extends "missing"`)
}

func TestMergeProfiles_DoesNotAliasBase(t *testing.T) {
	base := ProfileConfig{IncludeTags: make([]string, 1, 4)}
	base.IncludeTags[0] = "a"

	_ = mergeProfiles(base, ProfileConfig{IncludeTags: []string{"b"}})
	other := mergeProfiles(base, ProfileConfig{IncludeTags: []string{"c"}})

	assert.Equal(t, []string{"a", "c"}, other.IncludeTags)
}

func TestParseProfiles(t *testing.T) {
	data := []byte(`log-level: debug
profiles:
  talk:
    extends: full
    targetVerbosity: 2
    includeTags: [talk, public]
    includeMode: all
    userKey: de
    lenient: true
    unwrap: false
`)

	profiles, err := ParseProfiles(data)
	require.NoError(t, err)
	require.Contains(t, profiles, "talk")

	p := profiles["talk"]
	assert.Equal(t, "full", p.Extends)
	assert.InDelta(t, 2.0, *p.TargetVerbosity, 0)
	assert.Equal(t, []string{"talk", "public"}, p.IncludeTags)
	assert.Equal(t, "all", p.IncludeMode)
	assert.Equal(t, "de", p.UserKey)
	assert.True(t, *p.Lenient)
	assert.False(t, *p.Unwrap)
}

func TestParseProfiles_NoProfiles(t *testing.T) {
	profiles, err := ParseProfiles([]byte("quiet: true\n"))
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestParseProfiles_Invalid(t *testing.T) {
	_, err := ParseProfiles([]byte("profiles: [1, 2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing profiles")
}

func TestLoadProfiles(t *testing.T) {
	profiles, err := LoadProfiles("")
	require.NoError(t, err)
	assert.Empty(t, profiles)

	path := filepath.Join(t.TempDir(), ".docsift.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles:\n  p:\n    userKey: en\n"), 0o600))

	profiles, err = LoadProfiles(path)
	require.NoError(t, err)
	assert.Equal(t, "en", profiles["p"].UserKey)

	_, err = LoadProfiles(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading profiles file")
}
