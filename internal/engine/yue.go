// Package engine invokes the YuE inference process that turns a
// genre/lyrics pair into audio.
package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"

	"github.com/songforge/api/internal/config"
	"github.com/songforge/api/internal/model"
)

// RenderInput names the scratch files and output directory handed to
// the inference process.
type RenderInput struct {
	GenreFile  string
	LyricsFile string
	OutputDir  string
	Params     model.TuningParams
}

// Runner is the capability the orchestrator depends on. Success is
// exit code 0; output discovery is the orchestrator's job.
type Runner interface {
	Render(ctx context.Context, in RenderInput) error
}

// YuE runs the two-stage YuE pipeline as a subprocess.
type YuE struct {
	python      string
	script      string
	workDir     string
	stage1Model string
	stage2Model string
}

// NewYuE creates a runner from engine configuration.
func NewYuE(cfg *config.EngineConfig) *YuE {
	return &YuE{
		python:      cfg.PythonBin,
		script:      cfg.InferScript,
		workDir:     cfg.WorkDir,
		stage1Model: cfg.Stage1Model,
		stage2Model: cfg.Stage2Model,
	}
}

// Render blocks until the inference process exits. A non-zero exit
// code is returned as an error; the caller treats it the same as a
// zero exit with no output.
func (y *YuE) Render(ctx context.Context, in RenderInput) error {
	args := []string{
		y.script,
		"--genre_txt", in.GenreFile,
		"--lyrics_txt", in.LyricsFile,
		"--output_dir", in.OutputDir,
		"--stage1_model", y.stage1Model,
		"--stage2_model", y.stage2Model,
		"--stage1_use_exl2",
		"--stage2_use_exl2",
	}
	args = append(args, tuningArgs(in.Params)...)

	cmd := exec.CommandContext(ctx, y.python, args...)
	cmd.Dir = y.workDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	log.Printf("Running inference: %s %v", y.python, args)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("inference process failed: %w", err)
	}
	return nil
}

// IsConfigured reports whether the runner points at a real script.
func (y *YuE) IsConfigured() bool {
	return y.script != ""
}

func tuningArgs(p model.TuningParams) []string {
	var args []string
	if p.CudaIdx != nil {
		args = append(args, "--cuda_idx", strconv.Itoa(*p.CudaIdx))
	}
	if p.RunNSegments > 0 {
		args = append(args, "--run_n_segments", strconv.Itoa(p.RunNSegments))
	}
	if p.Stage2BatchSize > 0 {
		args = append(args, "--stage2_batch_size", strconv.Itoa(p.Stage2BatchSize))
	}
	if p.MaxNewTokens > 0 {
		args = append(args, "--max_new_tokens", strconv.Itoa(p.MaxNewTokens))
	}
	if p.RepetitionPenalty > 0 {
		args = append(args, "--repetition_penalty", strconv.FormatFloat(p.RepetitionPenalty, 'f', -1, 64))
	}
	if p.Stage1CacheSize > 0 {
		args = append(args, "--stage1_cache_size", strconv.Itoa(p.Stage1CacheSize))
	}
	if p.Stage2CacheSize > 0 {
		args = append(args, "--stage2_cache_size", strconv.Itoa(p.Stage2CacheSize))
	}
	if p.Stage1CacheMode != "" {
		args = append(args, "--stage1_cache_mode", p.Stage1CacheMode)
	}
	if p.Stage2CacheMode != "" {
		args = append(args, "--stage2_cache_mode", p.Stage2CacheMode)
	}
	if p.Stage1NoGuidance {
		args = append(args, "--stage1_no_guidance")
	}
	if p.KeepIntermediate {
		args = append(args, "--keep_intermediate")
	}
	if p.DisableOffloadModel {
		args = append(args, "--disable_offload_model")
	}
	return args
}
