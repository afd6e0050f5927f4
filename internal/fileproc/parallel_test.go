package fileproc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junovhs/slopchop/pkg/parser"
)

func tempFiles(t *testing.T, n int) []string {
	t.Helper()
	root := t.TempDir()

	files := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(root, fmt.Sprintf("f%02d.rs", i))
		require.NoError(t, os.WriteFile(path, []byte("fn main() {}"), 0o644))
		files = append(files, path)
	}
	return files
}

func TestMapFilesPreservesOrder(t *testing.T) {
	files := tempFiles(t, 20)

	results, errs := MapFiles(files, func(_ *parser.Parser, path string) (string, error) {
		return path, nil
	})

	require.Nil(t, errs)
	assert.Equal(t, files, results)
}

func TestMapFilesCollectsErrors(t *testing.T) {
	files := tempFiles(t, 4)

	results, errs := MapFiles(files, func(_ *parser.Parser, path string) (string, error) {
		if strings.HasSuffix(path, "f01.rs") {
			return "", errors.New("boom")
		}
		return path, nil
	})

	require.NotNil(t, errs)
	assert.False(t, errs.Empty())
	require.Len(t, errs.All(), 1)
	assert.Contains(t, errs.All()[0].Error(), "f01.rs")
	// The failed slot keeps its zero value; the rest are intact.
	assert.Equal(t, "", results[1])
	assert.Equal(t, files[0], results[0])
}

func TestMapFilesWithProgressTicks(t *testing.T) {
	files := tempFiles(t, 8)

	var ticks atomic.Int32
	results, errs := MapFilesWithProgress(files, func(_ *parser.Parser, path string) (int, error) {
		return 1, nil
	}, func(string) {
		ticks.Add(1)
	})

	require.Nil(t, errs)
	assert.Len(t, results, 8)
	assert.Equal(t, int32(8), ticks.Load())
}

func TestEmptyInput(t *testing.T) {
	results, errs := ForEachFile(nil, func(path string) (int, error) { return 0, nil })
	assert.Nil(t, results)
	assert.Nil(t, errs)
}
