package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/castquery/internal/core/ports/driven"
)

// newIsolatedStore returns a store that ignores the process environment.
func newIsolatedStore(t *testing.T, dir string) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	store.lookupEnv = func(string) (string, bool) { return "", false }
	return store
}

func TestConfigStore_ImplementsInterface(t *testing.T) {
	var _ driven.ConfigStore = (*ConfigStore)(nil)
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(home, ".castquery", "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := newIsolatedStore(t, t.TempDir())

	err := store.Set("llm.model", "gpt-4o")
	require.NoError(t, err)

	val, ok := store.Get("llm.model")
	assert.True(t, ok)
	assert.Equal(t, "gpt-4o", val)
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store := newIsolatedStore(t, t.TempDir())

	val, ok := store.Get("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newIsolatedStore(t, t.TempDir())

	require.NoError(t, store.Set("retrieval.top_k", 25))
	require.NoError(t, store.Set("ingest.rate", 2.5))
	require.NoError(t, store.Set("ingest.timecodes", true))
	require.NoError(t, store.Set("retrieval.channels", []string{"7", "12"}))

	assert.Equal(t, 25, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 2.5, store.GetFloat("ingest.rate"), 1e-9)
	assert.InDelta(t, 25.0, store.GetFloat("retrieval.top_k"), 1e-9)
	assert.True(t, store.GetBool("ingest.timecodes"))
	assert.Equal(t, []string{"7", "12"}, store.GetStringSlice("retrieval.channels"))

	// Wrong types read as zero values
	assert.Equal(t, "", store.GetString("retrieval.top_k"))
	assert.False(t, store.GetBool("retrieval.top_k"))
	assert.Nil(t, store.GetStringSlice("ingest.timecodes"))
}

func TestConfigStore_TypedGetters_ParseStrings(t *testing.T) {
	store := newIsolatedStore(t, t.TempDir())

	require.NoError(t, store.Set("a", " 42 "))
	require.NoError(t, store.Set("b", "0.75"))
	require.NoError(t, store.Set("c", "true"))
	require.NoError(t, store.Set("d", "not a number"))

	assert.Equal(t, 42, store.GetInt("a"))
	assert.InDelta(t, 0.75, store.GetFloat("b"), 1e-9)
	assert.True(t, store.GetBool("c"))
	assert.Equal(t, 0, store.GetInt("d"))
	assert.Zero(t, store.GetFloat("d"))
	assert.False(t, store.GetBool("d"))
}

func TestConfigStore_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("vector_index.url", "http://file:6333"))
	t.Setenv("CASTQUERY_VECTOR_INDEX_URL", "http://env:6333")
	t.Setenv("CASTQUERY_RETRIEVAL_TOP_K", "7")
	t.Setenv("CASTQUERY_RETRIEVAL_CHANNELS", "3, 9,,11")

	assert.Equal(t, "http://env:6333", store.GetString("vector_index.url"))
	assert.Equal(t, 7, store.GetInt("retrieval.top_k"))
	assert.Equal(t, []string{"3", "9", "11"}, store.GetStringSlice("retrieval.channels"))

	// Overrides never reach the file
	reloaded := newIsolatedStore(t, tmpDir)
	assert.Equal(t, "http://file:6333", reloaded.GetString("vector_index.url"))
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"openai.api_key":     "CASTQUERY_OPENAI_API_KEY",
		"vector_index.url":   "CASTQUERY_VECTOR_INDEX_URL",
		"store.mongo-uri":    "CASTQUERY_STORE_MONGO_URI",
		"server.addr":        "CASTQUERY_SERVER_ADDR",
		"budget.token_limit": "CASTQUERY_BUDGET_TOKEN_LIMIT",
	}
	for key, want := range tests {
		assert.Equal(t, want, EnvKey(key), key)
	}
}

func TestConfigStore_Keys(t *testing.T) {
	store := newIsolatedStore(t, t.TempDir())

	require.NoError(t, store.Set("llm.model", "m"))
	require.NoError(t, store.Set("budget.token_limit", 1000))
	require.NoError(t, store.Set("server.addr", ":9000"))

	assert.Equal(t, []string{"budget.token_limit", "llm.model", "server.addr"}, store.Keys())
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1 := newIsolatedStore(t, tmpDir)
	require.NoError(t, store1.Set("llm.model", "gpt-4o"))
	require.NoError(t, store1.Set("retrieval.top_k", 42))
	require.NoError(t, store1.Set("ingest.timecodes", true))
	require.NoError(t, store1.Set("ingest.rate", 1.5))

	store2 := newIsolatedStore(t, tmpDir)

	assert.Equal(t, "gpt-4o", store2.GetString("llm.model"))
	assert.Equal(t, 42, store2.GetInt("retrieval.top_k"))
	assert.True(t, store2.GetBool("ingest.timecodes"))
	assert.InDelta(t, 1.5, store2.GetFloat("ingest.rate"), 1e-9)
}

func TestConfigStore_SavesNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store := newIsolatedStore(t, tmpDir)

	require.NoError(t, store.Set("vector_index.url", "http://localhost:6333"))
	require.NoError(t, store.Set("vector_index.collection", "transcripts"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[vector_index]")
	assert.NotContains(t, string(raw), "'vector_index.url'")
}

func TestConfigStore_LoadsHandWrittenTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte(`
[openai]
api_key = "sk-test"

[vector_index]
backend = "memory"
timeout = "5s"

[retrieval]
top_k = 10
`)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store := newIsolatedStore(t, tmpDir)

	assert.Equal(t, "sk-test", store.GetString("openai.api_key"))
	assert.Equal(t, "memory", store.GetString("vector_index.backend"))
	assert.Equal(t, "5s", store.GetString("vector_index.timeout"))
	assert.Equal(t, 10, store.GetInt("retrieval.top_k"))
}

func TestNestMap_KeepsClashingKeyFlat(t *testing.T) {
	nested := nestMap(map[string]any{
		"a":   "scalar",
		"a.b": "child",
		"x.y": 1,
	})

	assert.Equal(t, "scalar", nested["a"])
	assert.Equal(t, "child", nested["a.b"])
	assert.Equal(t, map[string]any{"y": 1}, nested["x"])
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store := newIsolatedStore(t, t.TempDir())

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newIsolatedStore(t, t.TempDir())

	require.NoError(t, store.Set("test", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte{}, 0600))

	store := newIsolatedStore(t, tmpDir)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newIsolatedStore(t, t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_ = store.GetFloat(key)
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	corrupted := []byte("this is not valid TOML {{{[[")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), corrupted, 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_Save_Explicit(t *testing.T) {
	tmpDir := t.TempDir()
	store := newIsolatedStore(t, tmpDir)

	store.mu.Lock()
	store.data["manual_key"] = "manual_value"
	store.mu.Unlock()

	require.NoError(t, store.Save())

	store2 := newIsolatedStore(t, tmpDir)
	assert.Equal(t, "manual_value", store2.GetString("manual_key"))
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store := newIsolatedStore(t, t.TempDir())
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory so the write fails
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store := newIsolatedStore(t, t.TempDir())

	// Channels cannot be marshaled to TOML
	assert.Error(t, store.Set("channel", make(chan int)))
}
