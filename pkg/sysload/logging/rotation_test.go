package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backups(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		if e.Name() != "test.log" {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestRotatingWriter_SizeRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 100})
	require.NoError(t, err)
	defer w.Close()

	line := []byte(strings.Repeat("x", 79) + "\n")
	_, err = w.Write(line)
	require.NoError(t, err)
	assert.Empty(t, backups(t, dir))

	_, err = w.Write(line)
	require.NoError(t, err)
	assert.Len(t, backups(t, dir), 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, 80)
}

func TestRotatingWriter_DailyRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	w, err := NewRotatingWriter(path, RotationConfig{Daily: true})
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Write([]byte("first\n"))
	require.NoError(t, err)

	w.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)

	assert.Len(t, backups(t, dir), 1)
}

func TestRotatingWriter_MaxBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	for i := 0; i < 4; i++ {
		name := filepath.Join(dir, "test.2026-01-0"+string(rune('1'+i))+"-000000.000.log")
		require.NoError(t, os.WriteFile(name, []byte("old"), 0o644))
		mod := time.Now().Add(-time.Duration(4-i) * time.Hour)
		require.NoError(t, os.Chtimes(name, mod, mod))
	}

	w, err := NewRotatingWriter(path, RotationConfig{MaxBackups: 2})
	require.NoError(t, err)
	defer w.Close()

	assert.Len(t, backups(t, dir), 2)
}

func TestRotatingWriter_WriteAfterClose(t *testing.T) {
	w, err := NewRotatingWriter(filepath.Join(t.TempDir(), "test.log"), RotationConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late\n"))
	assert.ErrorIs(t, err, os.ErrClosed)
}
