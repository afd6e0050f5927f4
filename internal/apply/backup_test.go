package apply

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWorkspaceFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBackupAddAndRestore(t *testing.T) {
	root := t.TempDir()
	writeWorkspaceFile(t, root, "src/main.rs", "original")

	backup, err := NewBackupSet(root)
	require.NoError(t, err)
	require.NoError(t, backup.Add("src/main.rs"))
	assert.Equal(t, 1, backup.Count())

	// Backup preserves the directory structure.
	backed, err := os.ReadFile(filepath.Join(backup.Dir(), "src/main.rs"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(backed))

	// Overwrite then restore byte-for-byte.
	writeWorkspaceFile(t, root, "src/main.rs", "clobbered")
	require.NoError(t, backup.Restore())

	restored, err := os.ReadFile(filepath.Join(root, "src/main.rs"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(restored))
}

func TestBackupMissingFileProducesNoEntry(t *testing.T) {
	root := t.TempDir()

	backup, err := NewBackupSet(root)
	require.NoError(t, err)
	require.NoError(t, backup.Add("src/new_file.rs"))
	assert.Equal(t, 0, backup.Count())
}

func TestPruneBackupsKeepsNewest(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, BackupRoot)

	for i := 1; i <= 8; i++ {
		require.NoError(t, os.MkdirAll(filepath.Join(base, strconv.Itoa(1000+i)), 0o755))
	}

	require.NoError(t, PruneBackups(root, 5))

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	// The 3 oldest are gone, the 5 newest remain.
	for _, entry := range entries {
		stamp, err := strconv.Atoi(entry.Name())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, stamp, 1004)
	}
}

func TestLatestBackup(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, BackupRoot)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "100"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "300"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "200"), 0o755))

	assert.Equal(t, filepath.Join(base, "300"), LatestBackup(root))
}
