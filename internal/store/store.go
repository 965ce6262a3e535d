// Package store owns the task collection and its on-disk representation.
//
// All mutations go through a transaction (Begin/Commit): a Tx works on a
// private copy of the collection and Commit validates every invariant before
// swapping it in, so a failed operation never leaves partial state behind.
// Persist writes the collection atomically and skips the write when nothing
// changed since the last load or write.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/todo/internal/domain"
	todoerrors "github.com/felixgeelhaar/todo/internal/errors"
	"github.com/felixgeelhaar/todo/internal/fsutil"
	"github.com/felixgeelhaar/todo/internal/log"
)

// Options configure a Store. IDScope and UseUUID are fixed for its lifetime.
type Options struct {
	Path    string
	IDScope domain.IDScope
	UseUUID bool
	Clock   func() time.Time
	Logger  *log.Logger
}

// Store is the single owner of the task collection.
type Store struct {
	opts   Options
	tasks  []domain.Task
	digest [32]byte
}

// New returns an empty store. Call Load to read the file at opts.Path.
func New(opts Options) *Store {
	if opts.IDScope == "" {
		opts.IDScope = domain.ScopeGlobal
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.DefaultLogger()
	}
	s := &Store{opts: opts, tasks: []domain.Task{}}
	s.digest = s.sum(s.tasks)
	return s
}

// Open creates a store and loads its file.
func Open(opts Options) (*Store, error) {
	s := New(opts)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory collection with the file contents. A missing or
// empty file is an empty collection. Malformed JSON and records that break an
// invariant are reported as corrupt data; the file is never modified.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.opts.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.tasks = []domain.Task{}
			s.digest = s.sum(s.tasks)
			s.opts.Logger.Debug("no task file yet", "path", s.opts.Path)
			return nil
		}
		return todoerrors.NewFileReadError(s.opts.Path, err)
	}

	tasks, err := decode(data)
	if err != nil {
		return todoerrors.NewCorruptFileError(todoerrors.ErrCodeTasksCorrupt, s.opts.Path, err)
	}
	if err := ValidateCollection(tasks, s.opts.IDScope); err != nil {
		return todoerrors.NewCorruptFileError(todoerrors.ErrCodeTasksCorrupt, s.opts.Path, err)
	}

	s.tasks = tasks
	s.digest = s.sum(tasks)
	s.opts.Logger.Debug("loaded tasks", "path", s.opts.Path, "count", len(tasks))
	return nil
}

func decode(data []byte) ([]domain.Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Task{}, nil
	}
	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	for i := range tasks {
		tasks[i].Normalize()
	}
	return tasks, nil
}

func encode(tasks []domain.Task) ([]byte, error) {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (s *Store) sum(tasks []domain.Task) [32]byte {
	data, err := encode(tasks)
	if err != nil {
		return [32]byte{}
	}
	return blake3.Sum256(data)
}

// Persist writes the collection atomically. It is a no-op when the collection
// is unchanged since the last Load or Persist.
func (s *Store) Persist() error {
	if !s.Changed() {
		s.opts.Logger.Debug("task file unchanged", "path", s.opts.Path)
		return nil
	}
	data, err := encode(s.tasks)
	if err != nil {
		return todoerrors.NewFileWriteError(s.opts.Path, err)
	}
	if err := fsutil.WriteFileAtomic(s.opts.Path, data, 0o644); err != nil {
		return todoerrors.NewFileWriteError(s.opts.Path, err)
	}
	s.digest = blake3.Sum256(data)
	s.opts.Logger.Debug("wrote tasks", "path", s.opts.Path, "count", len(s.tasks))
	return nil
}

// Changed reports whether the collection differs from what is on disk.
func (s *Store) Changed() bool {
	return s.sum(s.tasks) != s.digest
}

// All returns a deep copy of the collection in insertion order.
func (s *Store) All() []domain.Task {
	return cloneAll(s.tasks)
}

func cloneAll(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// Scope returns the configured id scope.
func (s *Store) Scope() domain.IDScope {
	return s.opts.IDScope
}

// UsesUUID reports whether new tasks get a uid.
func (s *Store) UsesUUID() bool {
	return s.opts.UseUUID
}

// Now returns the current time from the store clock.
func (s *Store) Now() time.Time {
	return s.opts.Clock()
}

// Path returns the task file location.
func (s *Store) Path() string {
	return s.opts.Path
}

// Logger returns the store logger.
func (s *Store) Logger() *log.Logger {
	return s.opts.Logger
}

// Create validates the draft, numbers it and appends it.
func (s *Store) Create(draft domain.Draft) (domain.Task, error) {
	if err := draft.Validate(); err != nil {
		return domain.Task{}, err
	}
	tx := s.Begin()
	created := tx.Insert(draft.Task())
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	s.opts.Logger.Debug("created task", "id", created.ID, "branch", created.Branch)
	return created, nil
}

// Get returns a copy of the addressed task.
func (s *Store) Get(ref domain.Ref) (domain.Task, error) {
	i, err := find(s.tasks, ref, s.opts.IDScope)
	if err != nil {
		return domain.Task{}, err
	}
	return s.tasks[i].Clone(), nil
}

// Update applies fn to a copy of the addressed task and commits the result.
func (s *Store) Update(ref domain.Ref, fn func(*domain.Task) error) (domain.Task, error) {
	tx := s.Begin()
	i, err := tx.Find(ref)
	if err != nil {
		return domain.Task{}, err
	}
	t := tx.At(i)
	if err := fn(&t); err != nil {
		return domain.Task{}, err
	}
	tx.Replace(i, t)
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t.Clone(), nil
}

// Delete removes the addressed task and returns it.
func (s *Store) Delete(ref domain.Ref) (domain.Task, error) {
	tx := s.Begin()
	i, err := tx.Find(ref)
	if err != nil {
		return domain.Task{}, err
	}
	removed := tx.At(i)
	tx.Remove(i)
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return removed, nil
}
