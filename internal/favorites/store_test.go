package favorites

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "favorites.yml")
	store := NewStore(path)

	specs, err := store.List("github.com")
	require.NoError(t, err)
	assert.Empty(t, specs)

	changed, err := store.Add("github.com", "octo/app", "octo", "octo/app")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.Add("github.com", "octo")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = store.Add("ghe.example.com", "corp/tool")
	require.NoError(t, err)

	specs, err = NewStore(path).List("github.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"octo/app", "octo"}, specs)

	removed, err := store.Remove("github.com", "octo/app")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove("github.com", "missing")
	require.NoError(t, err)
	assert.False(t, removed)

	specs, err = store.List("github.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"octo"}, specs)

	specs, err = store.List("ghe.example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"corp/tool"}, specs)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.yml")
	require.NoError(t, os.WriteFile(path, []byte("github.com: [unterminated"), 0o600))

	_, err := NewStore(path).List("github.com")
	assert.ErrorContains(t, err, "failed to parse favorites")
}
