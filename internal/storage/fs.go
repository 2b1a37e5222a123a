// Package storage persists notes as files under a notes directory and their
// selections in SQLite, and reports changes made to the files by other
// programs.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/subbaan/notes/internal/note"
)

var (
	// ErrNotFound is returned when a note file does not exist.
	ErrNotFound = errors.New("storage: note not found")
	// ErrExists is returned when creating a note whose file already exists.
	ErrExists = errors.New("storage: note already exists")
)

// DefaultExt is the extension given to new notes.
const DefaultExt = ".txt"

var (
	noteExts    = []string{".txt", ".md"}
	nonAlphanum = regexp.MustCompile(`[^a-zA-Z0-9_ ]+`)
)

// FS reads and writes note files below root.
type FS struct {
	root   string
	ignore []string

	mu      sync.Mutex
	written map[string]string // rel path -> checksum of our last write
}

// NewFS opens the notes directory, creating it if needed. ignore holds
// doublestar patterns matched against slash-separated relative paths.
func NewFS(root string, ignore []string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &FS{root: abs, ignore: ignore, written: map[string]string{}}, nil
}

// Root returns the absolute notes directory.
func (f *FS) Root() string { return f.root }

// Ignored reports whether rel matches an ignore pattern.
func (f *FS) Ignored(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pat := range f.ignore {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// IsNoteFile reports whether name has a note extension.
func IsNoteFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range noteExts {
		if ext == e {
			return true
		}
	}
	return false
}

// List loads every note file, sorted by ID.
func (f *FS) List() ([]note.Note, error) {
	var out []note.Note
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == f.root {
			return nil
		}
		rel, _ := filepath.Rel(f.root, p)
		if f.Ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsNoteFile(d.Name()) {
			return nil
		}
		n, err := f.Read(note.ID(filepath.ToSlash(rel)))
		if err != nil {
			return err
		}
		out = append(out, n)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Read loads a single note.
func (f *FS) Read(id note.ID) (note.Note, error) {
	abs, err := f.path(id)
	if err != nil {
		return note.Note{}, err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return note.Note{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return note.Note{}, fmt.Errorf("storage: stat %s: %w", id, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return note.Note{}, fmt.Errorf("storage: read %s: %w", id, err)
	}
	return parse(id, abs, data, info), nil
}

func parse(id note.ID, abs string, data []byte, info fs.FileInfo) note.Note {
	fm, content := decode(data)
	n := note.Note{
		ID:               id,
		Title:            titleFromName(filepath.Base(abs)),
		Content:          content,
		SystemTags:       fm.SystemTags,
		Tags:             fm.Tags,
		PublishURL:       fm.PublishURL,
		Path:             abs,
		CreationDate:     fm.Created,
		ModificationDate: info.ModTime(),
	}
	if n.CreationDate.IsZero() {
		n.CreationDate = info.ModTime()
	}
	if n.PublishURL != "" && !n.HasSystemTag(note.TagPublished) {
		n = n.WithSystemTag(note.TagPublished, true)
	}
	return n
}

// Save writes a note atomically and remembers the write so the watcher can
// tell it apart from outside edits.
func (f *FS) Save(n note.Note) error {
	abs, err := f.path(n.ID)
	if err != nil {
		return err
	}
	data, err := encode(n)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", n.ID, err)
	}
	f.remember(string(n.ID), data)
	if err := writeAtomic(abs, data); err != nil {
		return fmt.Errorf("storage: write %s: %w", n.ID, err)
	}
	return nil
}

// Create makes a new note file named after title. The file is created
// exclusively, so a concurrent Create of the same title gets ErrExists.
func (f *FS) Create(title, content string) (note.Note, error) {
	name := SanitizeTitle(title) + DefaultExt
	abs := filepath.Join(f.root, name)
	n := note.Note{ID: note.ID(name), Content: content}
	data, err := encode(n)
	if err != nil {
		return note.Note{}, fmt.Errorf("storage: encode %s: %w", name, err)
	}

	fh, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return note.Note{}, fmt.Errorf("%w: %s", ErrExists, name)
	}
	if err != nil {
		return note.Note{}, fmt.Errorf("storage: create %s: %w", name, err)
	}
	f.remember(name, data)
	_, werr := fh.Write(data)
	if err := errors.Join(werr, fh.Sync(), fh.Close()); err != nil {
		_ = os.Remove(abs)
		return note.Note{}, fmt.Errorf("storage: create %s: %w", name, err)
	}
	return f.Read(n.ID)
}

// IsOwnWrite reports whether data at rel is exactly what Save last wrote.
func (f *FS) IsOwnWrite(rel string, data []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum, ok := f.written[filepath.ToSlash(rel)]
	return ok && sum == checksum(data)
}

func (f *FS) remember(rel string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written[rel] = checksum(data)
}

// path resolves an ID against root and rejects escapes.
func (f *FS) path(id note.ID) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(string(id)))
	if id == "" || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: invalid note id %q", id)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: note id escapes root: %q", id)
	}
	return abs, nil
}

// SanitizeTitle turns a title into a file name stem.
func SanitizeTitle(title string) string {
	title = strings.Join(strings.Fields(nonAlphanum.ReplaceAllString(title, "")), "-")
	if title == "" {
		return "Untitled"
	}
	return title
}

func titleFromName(name string) string {
	return strings.ReplaceAll(strings.TrimSuffix(name, filepath.Ext(name)), "-", " ")
}

func writeAtomic(abs string, data []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".notes-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	success = true
	return nil
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
