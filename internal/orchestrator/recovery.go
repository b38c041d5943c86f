package orchestrator

import (
	"errors"
	"log"

	"github.com/songforge/api/internal/model"
)

// ErrNotComplete is returned when a repair is requested for a job
// that has not finished successfully.
var ErrNotComplete = errors.New("job is not complete")

// RecoverManifests scans persisted jobs at startup and rebuilds the
// artifact manifest for completed jobs whose manifest is missing,
// typically after a crash between the render finishing and the final
// snapshot. Jobs in any other state are left untouched.
func (o *Orchestrator) RecoverManifests() {
	repaired := 0
	for _, job := range o.store.List() {
		if job.Status != model.JobStatusComplete || len(job.Manifest) > 0 {
			continue
		}
		if _, err := o.Repair(job.ID); err != nil {
			log.Printf("Recovery of job %s skipped: %v", job.ID, err)
			continue
		}
		repaired++
	}
	if repaired > 0 {
		log.Printf("Recovered manifests for %d job(s)", repaired)
	}
}

// Repair re-runs artifact discovery against a completed job's output
// directory and persists the rebuilt manifest. It refuses to touch
// jobs that are not complete.
func (o *Orchestrator) Repair(id string) (*model.Job, error) {
	job, err := o.store.Get(id)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusComplete {
		return nil, ErrNotComplete
	}

	manifest, err := DiscoverArtifacts(o.OutputDir(id))
	if err != nil {
		return nil, err
	}
	for name, art := range scratchArtifacts(o.OutputDir(id)) {
		if _, ok := manifest[name]; !ok {
			manifest[name] = art
		}
	}

	return o.store.Update(id, func(j *model.Job) {
		j.Manifest = manifest
	})
}
