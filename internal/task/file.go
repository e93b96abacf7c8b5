package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/twiced-technology-gmbh/prism/internal/clierr"
	"github.com/twiced-technology-gmbh/prism/internal/filelock"
)

const fileMode = 0o600

// ErrIncompatible marks a document that parses as a JSON list but holds
// values of the wrong type. It is never read as empty, so no write can
// replace it.
var ErrIncompatible = errors.New("task store has values of the wrong type")

// ReadWarning describes a store document that could not be parsed during
// lenient reading.
type ReadWarning struct {
	File string // base filename
	Err  error
}

// Store reads and writes the task document: a JSON array of tasks.
// Every read-modify-write goes through Update so that it runs under the
// store's file lock.
type Store struct {
	Path string

	// Warn, when set, is called for documents that Load treats as empty.
	Warn func(ReadWarning)
}

// NewStore returns a store for the document at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the task list. A missing file, malformed JSON, or a top-level
// value that is not a list all yield an empty list and no error. A list
// with wrongly typed values is still an error (ErrIncompatible).
func (s *Store) Load() ([]*Task, error) {
	tasks, err := s.LoadStrict()
	if err == nil {
		return tasks, nil
	}
	switch clierr.CodeOf(err) {
	case clierr.StoreNotFound:
		return []*Task{}, nil
	case clierr.MalformedStore:
		if errors.Is(err, ErrIncompatible) {
			return nil, err
		}
		if s.Warn != nil {
			s.Warn(ReadWarning{File: filepath.Base(s.Path), Err: err})
		}
		return []*Task{}, nil
	}
	return nil, err
}

// LoadStrict reads the task list and reports a missing or malformed
// document as an error.
func (s *Store) LoadStrict() ([]*Task, error) {
	data, err := os.ReadFile(s.Path) //nolint:gosec // store path from config
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, clierr.Newf(clierr.StoreNotFound, "task store not found: %s", s.Path).
				WithDetails(map[string]any{"path": s.Path})
		}
		return nil, clierr.Wrap(clierr.StoreIO, err, "reading task store")
	}
	return Decode(data, s.Path)
}

// Decode parses a task document. Missing ids are backfilled
// deterministically so repeated loads of an unsaved document agree.
func Decode(data []byte, path string) ([]*Task, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, clierr.Newf(clierr.MalformedStore, "task store %s is not a JSON list", filepath.Base(path)).
			WithDetails(map[string]any{"path": path})
	}

	var tasks []*Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) {
			err = fmt.Errorf("%w: %w", ErrIncompatible, err)
		}
		return nil, clierr.Wrap(clierr.MalformedStore, err, "parsing %s", filepath.Base(path)).
			WithDetails(map[string]any{"path": path})
	}

	// null entries are dropped rather than failing the whole document.
	kept := tasks[:0]
	for _, t := range tasks {
		if t != nil {
			kept = append(kept, t)
		}
	}
	tasks = kept

	BackfillIDs(tasks)
	return tasks, nil
}

// Encode renders tasks the way the store persists them: four-space
// indentation and no HTML escaping.
func Encode(tasks []*Task) ([]byte, error) {
	if tasks == nil {
		tasks = []*Task{}
	}
	for _, t := range tasks {
		if t.Steps == nil {
			t.Steps = []*Step{}
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tasks); err != nil {
		return nil, fmt.Errorf("encoding tasks: %w", err)
	}
	return buf.Bytes(), nil
}

// Save replaces the whole document with tasks.
func (s *Store) Save(tasks []*Task) error {
	return filelock.With(s.Path, func() error {
		return s.write(tasks)
	})
}

// Update loads the document strictly, applies fn, and saves the result.
// Nothing is written when fn returns an error.
func (s *Store) Update(fn func([]*Task) ([]*Task, error)) error {
	return s.update(s.LoadStrict, fn)
}

// UpdateLenient is Update for callers that may start from an absent or
// unreadable document.
func (s *Store) UpdateLenient(fn func([]*Task) ([]*Task, error)) error {
	return s.update(s.Load, fn)
}

func (s *Store) update(load func() ([]*Task, error), fn func([]*Task) ([]*Task, error)) error {
	return filelock.With(s.Path, func() error {
		tasks, err := load()
		if err != nil {
			return err
		}
		tasks, err = fn(tasks)
		if err != nil {
			return err
		}
		return s.write(tasks)
	})
}

// write replaces the document atomically: a sibling temp file is renamed
// over the target so readers never see a partial list.
func (s *Store) write(tasks []*Task) error {
	data, err := Encode(tasks)
	if err != nil {
		return clierr.Wrap(clierr.StoreIO, err, "writing task store")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return clierr.Wrap(clierr.StoreIO, err, "writing task store")
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return clierr.Wrap(clierr.StoreIO, err, "writing task store")
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return clierr.Wrap(clierr.StoreIO, err, "writing task store")
	}
	if err := tmp.Close(); err != nil {
		return clierr.Wrap(clierr.StoreIO, err, "writing task store")
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return clierr.Wrap(clierr.StoreIO, err, "writing task store")
	}
	return nil
}
