package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/songforge/api/internal/model"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, path
}

func testJob(id string) *model.Job {
	return &model.Job{
		ID:          id,
		Status:      model.JobStatusQueued,
		Input:       model.TrackRequest{Genre: "pop", Lyrics: "la la la"},
		SubmittedAt: time.Now(),
	}
}

func TestPutAndGet(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.Put(testJob("job-1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get("job-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != "job-1" || got.Status != model.JobStatusQueued {
		t.Errorf("Get returned %+v", got)
	}
}

func TestGetNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t)
	s.Put(testJob("job-1"))

	first, _ := s.Get("job-1")
	first.Status = model.JobStatusError

	second, _ := s.Get("job-1")
	if second.Status != model.JobStatusQueued {
		t.Error("mutating a Get result leaked into the store")
	}
}

func TestUpdatePersists(t *testing.T) {
	s, path := newTestStore(t)
	s.Put(testJob("job-1"))

	updated, err := s.Update("job-1", func(j *model.Job) {
		j.Status = model.JobStatusComplete
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != model.JobStatusComplete {
		t.Errorf("Update returned status %q", updated.Status)
	}

	// A fresh store over the same file must see the update.
	reloaded, err := New(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	got, err := reloaded.Get("job-1")
	if err != nil {
		t.Fatalf("Get after reload failed: %v", err)
	}
	if got.Status != model.JobStatusComplete {
		t.Errorf("reloaded status = %q, want complete", got.Status)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Update("missing", func(j *model.Job) {})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) = %v, want ErrNotFound", err)
	}
}

func TestReloadAfterCrash(t *testing.T) {
	s, path := newTestStore(t)
	s.Put(testJob("job-1"))
	s.Put(testJob("job-2"))
	s.Update("job-1", func(j *model.Job) {
		j.Status = model.JobStatusError
		msg := "engine exploded"
		j.Error = &msg
	})

	// Simulate a process restart: the snapshot alone carries state.
	reloaded, err := New(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded %d jobs, want 2", reloaded.Len())
	}

	got, err := reloaded.Get("job-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != model.JobStatusError || got.Error == nil || *got.Error != "engine exploded" {
		t.Errorf("reloaded job-1 = %+v", got)
	}
}

func TestCorruptSnapshotStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	s, err := New(path)
	if err != nil {
		t.Fatalf("New on corrupt snapshot failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("corrupt snapshot loaded %d jobs, want 0", s.Len())
	}

	// The store must still be writable afterwards.
	if err := s.Put(testJob("job-1")); err != nil {
		t.Errorf("Put after corrupt load failed: %v", err)
	}
}

func TestMissingSnapshotStartsEmpty(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	s, path := newTestStore(t)
	for i := 0; i < 5; i++ {
		s.Put(testJob("job-1"))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the snapshot, found %v", names)
	}
}

func TestList(t *testing.T) {
	s, _ := newTestStore(t)
	s.Put(testJob("a"))
	s.Put(testJob("b"))

	jobs := s.List()
	if len(jobs) != 2 {
		t.Fatalf("List returned %d jobs, want 2", len(jobs))
	}
}
