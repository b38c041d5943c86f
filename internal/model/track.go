package model

import "time"

// TuningParams are the optional knobs forwarded to the inference
// process. Zero values mean "not set" and are omitted from the argv.
type TuningParams struct {
	CudaIdx             *int     `json:"cudaIdx,omitempty" validate:"omitempty,min=0"`
	RunNSegments        int      `json:"runNSegments,omitempty" validate:"omitempty,min=1,max=10"`
	Stage2BatchSize     int      `json:"stage2BatchSize,omitempty" validate:"omitempty,min=1,max=64"`
	MaxNewTokens        int      `json:"maxNewTokens,omitempty" validate:"omitempty,min=100,max=16000"`
	RepetitionPenalty   float64  `json:"repetitionPenalty,omitempty" validate:"omitempty,gt=0"`
	Stage1CacheSize     int      `json:"stage1CacheSize,omitempty" validate:"omitempty,min=0"`
	Stage2CacheSize     int      `json:"stage2CacheSize,omitempty" validate:"omitempty,min=0"`
	Stage1CacheMode     string   `json:"stage1CacheMode,omitempty"`
	Stage2CacheMode     string   `json:"stage2CacheMode,omitempty"`
	Stage1NoGuidance    bool     `json:"stage1NoGuidance,omitempty"`
	KeepIntermediate    bool     `json:"keepIntermediate,omitempty"`
	DisableOffloadModel bool     `json:"disableOffloadModel,omitempty"`
}

// TrackRequest is the payload a job carries through the pipeline.
// Either Genre+Lyrics or Prompt must be present; handlers enforce
// this before a job is created.
type TrackRequest struct {
	Genre  string       `json:"genre,omitempty" validate:"omitempty,min=1,max=100"`
	Lyrics string       `json:"lyrics,omitempty" validate:"omitempty,min=1"`
	Prompt string       `json:"prompt,omitempty" validate:"omitempty,min=1,max=2000"`
	Params TuningParams `json:"params"`
}

// HasLyrics reports whether the lyrics stage can be skipped.
func (r *TrackRequest) HasLyrics() bool {
	return r.Lyrics != ""
}

// SubmitTrackRequest is the body of POST /api/tracks.
type SubmitTrackRequest struct {
	Genre  string       `json:"genre" validate:"required,min=1,max=100"`
	Lyrics string       `json:"lyrics" validate:"required,min=1"`
	Params TuningParams `json:"params"`
}

// SubmitPromptRequest is the body of POST /api/tracks/from-prompt.
type SubmitPromptRequest struct {
	Prompt string       `json:"prompt" validate:"required,min=1,max=2000"`
	Params TuningParams `json:"params"`
}

// SubmitWithGenresRequest is the body of POST /api/tracks/with-genres.
type SubmitWithGenresRequest struct {
	Prompt string       `json:"prompt" validate:"required,min=1,max=2000"`
	Genres []string     `json:"genres" validate:"omitempty,max=10,dive,min=1,max=100"`
	Params TuningParams `json:"params"`
}

// SubmitTrackResponse acknowledges a queued submission.
type SubmitTrackResponse struct {
	RequestID            string    `json:"requestId"`
	Status               JobStatus `json:"status"`
	QueuePosition        int       `json:"queuePosition"`
	EstimatedWaitSeconds int       `json:"estimatedWaitSeconds"`
	Provider             string    `json:"provider,omitempty"`
	Lyrics               string    `json:"lyrics,omitempty"`
	Genres               []string  `json:"genres,omitempty"`
	GenresInferred       bool      `json:"genresInferred,omitempty"`
}

// TrackStatusResponse is the full projection returned by
// GET /api/tracks/:id. QueuePosition and EstimatedWaitSeconds are
// recomputed from the live queue and only present while queued.
type TrackStatusResponse struct {
	RequestID            string              `json:"requestId"`
	Status               JobStatus           `json:"status"`
	QueuePosition        *int                `json:"queuePosition,omitempty"`
	EstimatedWaitSeconds *int                `json:"estimatedWaitSeconds,omitempty"`
	Manifest             map[string]Artifact `json:"manifest,omitempty"`
	Error                *string             `json:"error,omitempty"`
	Provider             string              `json:"provider,omitempty"`
	Genres               []string            `json:"genres,omitempty"`
	GenresInferred       bool                `json:"genresInferred,omitempty"`
	SubmittedAt          time.Time           `json:"submittedAt"`
	StartedAt            *time.Time          `json:"startedAt,omitempty"`
	CompletedAt          *time.Time          `json:"completedAt,omitempty"`
}

// RepairResponse is returned by POST /api/tracks/:id/repair.
type RepairResponse struct {
	RequestID string              `json:"requestId"`
	Repaired  bool                `json:"repaired"`
	Manifest  map[string]Artifact `json:"manifest,omitempty"`
}

// LyricsGenerateRequest is the body of POST /api/lyrics/generate.
type LyricsGenerateRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1,max=2000"`
}

// LyricsGenerateResponse carries generated lyrics and, when genre
// extraction succeeded, a normalized suggestion.
type LyricsGenerateResponse struct {
	Lyrics         string `json:"lyrics"`
	SuggestedGenre string `json:"suggestedGenre,omitempty"`
	Provider       string `json:"provider"`
}

// ProviderResponse describes the active lyrics provider.
type ProviderResponse struct {
	Provider  string   `json:"provider"`
	Available []string `json:"availableProviders"`
}

// SetProviderRequest is the body of POST /api/provider.
type SetProviderRequest struct {
	Provider string `json:"provider" validate:"required,oneof=openai anthropic gemini"`
}

// PromptResponse carries a system prompt file's current content.
type PromptResponse struct {
	Prompt   string `json:"prompt"`
	Provider string `json:"provider"`
}

// UpdatePromptRequest is the body of PUT /api/prompts/{lyrics,genre}.
type UpdatePromptRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}
