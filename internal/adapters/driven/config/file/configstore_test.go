package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0600))
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, ConfigFile), store.Path())
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".hirescope", ConfigFile), store.Path())
	assert.DirExists(t, filepath.Join(home, ".hirescope"))
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "this is not valid TOML {{{[[")

	store, err := NewConfigStore(tmpDir)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
data_dir = "/var/lib/hirescope"
worker_pool_size = 8
verbose = true

[keyword]
ttl = "30m"
k1 = 1.2
suggest_limit = 5

[similarity.thresholds]
high = 1
medium = 0.55

[lexicon]
extra_stopwords = ["지원", "회사"]
`)

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/hirescope", store.GetString("data_dir"))
	assert.Equal(t, 8, store.GetInt("worker_pool_size"))
	assert.True(t, store.GetBool("verbose"))
	assert.Equal(t, 30*time.Minute, store.GetDuration("keyword.ttl"))
	assert.InDelta(t, 1.2, store.GetFloat("keyword.k1"), 1e-9)
	assert.Equal(t, 5, store.GetInt("keyword.suggest_limit"))
	assert.InDelta(t, 1.0, store.GetFloat("similarity.thresholds.high"), 1e-9)
	assert.InDelta(t, 0.55, store.GetFloat("similarity.thresholds.medium"), 1e-9)
	assert.Equal(t, []string{"지원", "회사"}, store.GetStringSlice("lexicon.extra_stopwords"))
}

func TestConfigStore_GettersOnWrongTypes(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
name = "x"
count = 3
ttl = "soon"
`)

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "", store.GetString("count"))
	assert.Equal(t, 0, store.GetInt("name"))
	assert.False(t, store.GetBool("name"))
	assert.Zero(t, store.GetFloat("name"))
	assert.Zero(t, store.GetDuration("ttl"))
	assert.Zero(t, store.GetDuration("missing"))
	assert.Nil(t, store.GetStringSlice("name"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_SetPersistsAsTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("embedding.timeout", 15*time.Second))
	require.NoError(t, store.Set("similarity.thresholds.high", 0.85))
	require.NoError(t, store.Set("data_dir", "/tmp/hs"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[embedding]")
	assert.Contains(t, string(raw), "[similarity.thresholds]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "ollama", reloaded.GetString("embedding.provider"))
	assert.Equal(t, 15*time.Second, reloaded.GetDuration("embedding.timeout"))
	assert.InDelta(t, 0.85, reloaded.GetFloat("similarity.thresholds.high"), 1e-9)
	assert.Equal(t, "/tmp/hs", reloaded.GetString("data_dir"))
}

func TestConfigStore_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	store.mu.Lock()
	store.data["manual_key"] = "manual_value"
	store.mu.Unlock()
	require.NoError(t, store.Save())

	writeConfig(t, tmpDir, `manual_key = "edited"`)
	require.NoError(t, store.Load())
	assert.Equal(t, "edited", store.GetString("manual_key"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, store.Load())
	_, ok := store.Get("manual_key")
	assert.False(t, ok, "a removed file is an empty configuration")
}

func TestConfigStore_FilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("embedding.api_key", "sk-secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_WriteErrors(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Error(t, store.Set("channel", make(chan int)))

	require.NoError(t, os.MkdirAll(store.Path(), 0700))
	assert.Error(t, store.Set("another", "value"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("counter", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("counter")
		}()
	}
	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
}

func TestNestMap(t *testing.T) {
	got := nestMap(map[string]any{
		"a.b.c": 1,
		"a.d":   2,
		"e":     3,
	})
	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
			"d": 2,
		},
		"e": 3,
	}, got)

	assert.Equal(t, flattenMap(got, ""), map[string]any{"a.b.c": 1, "a.d": 2, "e": 3})
}
