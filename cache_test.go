package mpt

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrolang/mpt/internal/engine"
)

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := writeTempSource(t, dir, "a.mpt", "hello")

	cache, err := NewCache(dir + "/cache")
	require.NoError(t, err)

	_, ok := cache.Get(src)
	assert.False(t, ok)

	res := ExpandSource(Factory(testRules)(), src, "hello", false)
	require.NoError(t, cache.Set(res))

	got, ok := cache.Get(src)
	require.True(t, ok)
	assert.Equal(t, "world", got.Output)
	assert.Equal(t, src, got.Filename)
	require.NotNil(t, got.Source)
	assert.Equal(t, []string{"hello"}, got.Source.Lines)
}

func TestCacheInvalidatedByFileChange(t *testing.T) {
	dir := t.TempDir()
	src := writeTempSource(t, dir, "a.mpt", "hello")

	cache, err := NewCache(dir + "/cache")
	require.NoError(t, err)
	require.NoError(t, cache.Set(ExpandSource(Factory(testRules)(), src, "hello", false)))

	require.NoError(t, os.WriteFile(src, []byte("hello hello"), 0o644))
	_, ok := cache.Get(src)
	assert.False(t, ok)
}

func TestCacheInvalidatedByRuleFileChange(t *testing.T) {
	dir := t.TempDir()
	src := writeTempSource(t, dir, "a.mpt", "hello")
	rules := writeTempSource(t, dir, "rules.yaml", "rules: []")

	cache, err := NewCache(dir+"/cache", rules)
	require.NoError(t, err)
	require.NoError(t, cache.Set(ExpandSource(Factory(testRules)(), src, "hello", false)))

	_, ok := cache.Get(src)
	assert.True(t, ok)

	require.NoError(t, os.WriteFile(rules, []byte("rules: [] # changed"), 0o644))
	_, ok = cache.Get(src)
	assert.False(t, ok)
}

func TestCacheMaxAge(t *testing.T) {
	dir := t.TempDir()
	src := writeTempSource(t, dir, "a.mpt", "hello")

	cache, err := NewCache(dir + "/cache")
	require.NoError(t, err)
	require.NoError(t, cache.Set(ExpandSource(Factory(testRules)(), src, "hello", false)))

	cache.SetMaxAge(-time.Second)
	_, ok := cache.Get(src)
	assert.False(t, ok)
}

func TestCacheInvalidateAll(t *testing.T) {
	dir := t.TempDir()
	src := writeTempSource(t, dir, "a.mpt", "hello")

	cache, err := NewCache(dir + "/cache")
	require.NoError(t, err)
	require.NoError(t, cache.Set(ExpandSource(Factory(testRules)(), src, "hello", false)))

	cache.InvalidateAll()
	_, ok := cache.Get(src)
	assert.False(t, ok)
}

func TestCachePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	src := writeTempSource(t, dir, "a.mpt", "hello")
	cacheDir := dir + "/cache"

	first, err := NewCache(cacheDir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ExpandSource(Factory(testRules)(), src, "hello", false)))

	second, err := NewCache(cacheDir)
	require.NoError(t, err)
	got, ok := second.Get(src)
	require.True(t, ok)
	assert.Equal(t, "world", got.Output)
}

func TestProcessFilesUsesCache(t *testing.T) {
	dir := t.TempDir()
	src := writeTempSource(t, dir, "a.mpt", "hello")

	cache, err := NewCache(dir + "/cache")
	require.NoError(t, err)

	calls := 0
	factory := Factory(testRules)
	counting := EngineFactory(func() *engine.Engine {
		calls++
		return factory()
	})

	results, err := ProcessFiles(nil, counting, []string{src}, false, cache)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, calls)

	// second run is served from the cache without building an engine
	results, err = ProcessFiles(nil, counting, []string{src}, false, cache)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "world", results[0].Output)
	assert.Equal(t, 1, calls)
}
