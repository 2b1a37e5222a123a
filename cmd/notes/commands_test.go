package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subbaan/notes/internal/config"
	"github.com/subbaan/notes/internal/storage"
	"github.com/subbaan/notes/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.NotesPath = filepath.Join(t.TempDir(), "notes")
	cfg.DataDir = t.TempDir()
	return &cfg
}

func TestCreateNote(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	require.NoError(t, createNote(cfg, "Groceries list", "- [ ] milk", &out))

	path := strings.TrimSpace(out.String())
	assert.Equal(t, filepath.Join(cfg.NotesPath, "Groceries-list.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- [ ] milk")

	err = createNote(cfg, "Groceries list", "", &out)
	assert.ErrorIs(t, err, storage.ErrExists)
}

func TestCreateNoteNeedsTitle(t *testing.T) {
	assert.Error(t, createNote(testConfig(t), "  ", "", &bytes.Buffer{}))
}

func TestListNotes(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, createNote(cfg, "bravo", "second", &bytes.Buffer{}))
	require.NoError(t, createNote(cfg, "alpha", "first", &bytes.Buffer{}))

	var out bytes.Buffer
	require.NoError(t, listNotes(cfg, "", store.SortByTitle, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "alpha")
	assert.Contains(t, lines[1], "bravo")

	out.Reset()
	require.NoError(t, listNotes(cfg, "second", store.SortByTitle, &out))
	assert.Contains(t, out.String(), "bravo")
	assert.NotContains(t, out.String(), "alpha")
}
