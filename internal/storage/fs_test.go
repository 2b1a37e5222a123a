package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subbaan/notes/internal/note"
)

func newTestFS(t *testing.T, ignore ...string) *FS {
	t.Helper()
	f, err := NewFS(t.TempDir(), ignore)
	require.NoError(t, err)
	return f
}

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(body), 0o644))
}

func TestListSkipsIgnoredAndForeignFiles(t *testing.T) {
	f := newTestFS(t, ".trash/**", "**/.*")
	writeFile(t, f.Root(), "Shopping-list.txt", "milk")
	writeFile(t, f.Root(), "work/Plan.md", "---\nsystem_tags: [markdown]\n---\n# Plan")
	writeFile(t, f.Root(), ".trash/Old.txt", "gone")
	writeFile(t, f.Root(), "picture.png", "binary")
	writeFile(t, f.Root(), ".hidden.txt", "secret")

	notes, err := f.List()
	require.NoError(t, err)
	require.Len(t, notes, 2)

	assert.Equal(t, note.ID("Shopping-list.txt"), notes[0].ID)
	assert.Equal(t, "Shopping list", notes[0].Title)
	assert.Equal(t, "milk", notes[0].Content)

	assert.Equal(t, note.ID("work/Plan.md"), notes[1].ID)
	assert.Equal(t, "# Plan", notes[1].Content)
	assert.True(t, notes[1].HasSystemTag(note.TagMarkdown))
	assert.False(t, notes[1].CreationDate.IsZero())
}

func TestSaveRoundTrip(t *testing.T) {
	f := newTestFS(t)
	n := note.Note{ID: "todo.txt", Content: "- [ ] buy milk\n- [x] call mum"}
	n = n.WithSystemTag(note.TagPinned, true)

	require.NoError(t, f.Save(n))
	got, err := f.Read("todo.txt")
	require.NoError(t, err)

	assert.Equal(t, n.Content, got.Content)
	assert.True(t, got.HasSystemTag(note.TagPinned))
}

func TestSaveIsOwnWrite(t *testing.T) {
	f := newTestFS(t)
	require.NoError(t, f.Save(note.Note{ID: "a.txt", Content: "mine"}))

	assert.True(t, f.IsOwnWrite("a.txt", []byte("mine")))
	assert.False(t, f.IsOwnWrite("a.txt", []byte("theirs")))
	assert.False(t, f.IsOwnWrite("b.txt", []byte("mine")))
}

func TestReadMissing(t *testing.T) {
	f := newTestFS(t)
	_, err := f.Read("nope.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRejectsEscapingIDs(t *testing.T) {
	f := newTestFS(t)
	for _, id := range []note.ID{"", "../outside.txt", "/etc/passwd"} {
		assert.Error(t, f.Save(note.Note{ID: id}), "id %q", id)
	}
}

func TestCreate(t *testing.T) {
	f := newTestFS(t)

	n, err := f.Create("Groceries & stuff!", "eggs")
	require.NoError(t, err)
	assert.Equal(t, note.ID("Groceries-stuff.txt"), n.ID)
	assert.Equal(t, "Groceries stuff", n.Title)
	assert.Equal(t, "eggs", n.Content)

	_, err = f.Create("Groceries stuff", "")
	assert.ErrorIs(t, err, ErrExists)
}

func TestCreateIsExclusive(t *testing.T) {
	f := newTestFS(t)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.Create("race", "")
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrExists)
	}
	assert.Equal(t, 1, created)
}

func TestSanitizeTitle(t *testing.T) {
	assert.Equal(t, "Untitled", SanitizeTitle("  ?! "))
	assert.Equal(t, "My-Note_1", SanitizeTitle("My Note_1"))
	assert.Equal(t, "a-b", SanitizeTitle(" a  &\tb "))
}
