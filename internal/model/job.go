package model

import "time"

// JobStatus tracks a generation request through its pipeline stages.
type JobStatus string

const (
	JobStatusQueued           JobStatus = "queued"
	JobStatusProcessing       JobStatus = "processing"
	JobStatusGeneratingLyrics JobStatus = "generating_lyrics"
	JobStatusGeneratingAudio  JobStatus = "generating_audio"
	JobStatusUploading        JobStatus = "uploading"
	JobStatusComplete         JobStatus = "complete"
	JobStatusError            JobStatus = "error"
)

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	return s == JobStatusComplete || s == JobStatusError
}

// Artifact is one entry in a completed job's output manifest.
// LocalPath always points at the file inside the job's output
// directory; RemoteKey and URL are set only when the artifact was
// uploaded to object storage.
type Artifact struct {
	LocalPath string `json:"localPath,omitempty"`
	RemoteKey string `json:"remoteKey,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Job is the full lifecycle record of one generation request.
// Only the orchestrator's worker goroutine mutates a job after
// submission; everything else reads copies through the store.
type Job struct {
	ID             string              `json:"id"`
	Status         JobStatus           `json:"status"`
	Input          TrackRequest        `json:"input"`
	Manifest       map[string]Artifact `json:"manifest,omitempty"`
	Error          *string             `json:"error,omitempty"`
	Provider       string              `json:"provider,omitempty"`
	Genres         []string            `json:"genres,omitempty"`
	GenresInferred bool                `json:"genresInferred,omitempty"`
	SubmittedAt    time.Time           `json:"submittedAt"`
	StartedAt      *time.Time          `json:"startedAt,omitempty"`
	CompletedAt    *time.Time          `json:"completedAt,omitempty"`
}

// Clone returns a deep enough copy for handing to readers: the
// manifest and genre slice are copied, the input payload is a value.
func (j *Job) Clone() *Job {
	cp := *j
	if j.Manifest != nil {
		cp.Manifest = make(map[string]Artifact, len(j.Manifest))
		for k, v := range j.Manifest {
			cp.Manifest[k] = v
		}
	}
	if j.Genres != nil {
		cp.Genres = append([]string(nil), j.Genres...)
	}
	if j.Error != nil {
		e := *j.Error
		cp.Error = &e
	}
	return &cp
}

// Manifest keys for the artifacts every successful job produces.
const (
	ArtifactAudio  = "audio"
	ArtifactLyrics = "lyrics"
	ArtifactGenre  = "genre"
)
