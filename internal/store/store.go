// Package store persists the job set as a single JSON snapshot file.
// Every mutation rewrites the whole file through a temp-file rename,
// so a reload after a crash always sees a consistent snapshot.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/songforge/api/internal/model"
)

// ErrNotFound is returned for unknown job ids.
var ErrNotFound = errors.New("job not found")

// Store is the durable map from request id to job record. Writes are
// expected from a single goroutine (the orchestrator worker plus the
// submission path, which the orchestrator serializes); reads may come
// from any number of status-query callers.
type Store struct {
	path string

	mu   sync.RWMutex
	jobs map[string]*model.Job
}

// New opens the snapshot at path, loading any previous job set. A
// missing or corrupt snapshot starts fresh; corruption is logged, not
// fatal.
func New(path string) (*Store, error) {
	s := &Store{
		path: path,
		jobs: make(map[string]*model.Job),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read results snapshot: %w", err)
		}
		return s, nil
	}

	if err := json.Unmarshal(data, &s.jobs); err != nil {
		log.Printf("Warning: results snapshot %s unreadable, starting fresh: %v", path, err)
		s.jobs = make(map[string]*model.Job)
		return s, nil
	}

	log.Printf("Loaded %d previous results from %s", len(s.jobs), path)
	return s, nil
}

// Get returns a copy of the job with the given id.
func (s *Store) Get(id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

// List returns copies of all jobs.
func (s *Store) List() []*model.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.Clone())
	}
	return out
}

// Len returns the number of stored jobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Put inserts or replaces a job and persists the snapshot before
// returning.
func (s *Store) Put(job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.ID] = job.Clone()
	return s.save()
}

// Update applies fn to the stored job and persists the snapshot
// before returning. The mutating call never returns with the file
// behind the in-memory state.
func (s *Store) Update(id string, fn func(*model.Job)) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}

	fn(job)
	if err := s.save(); err != nil {
		return nil, err
	}
	return job.Clone(), nil
}

// save writes the full snapshot atomically. Caller holds the write
// lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".results-*.json")
	if err != nil {
		return fmt.Errorf("failed to create snapshot temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
