package engine

import (
	"reflect"
	"testing"

	"github.com/songforge/api/internal/config"
	"github.com/songforge/api/internal/model"
)

func TestTuningArgsEmpty(t *testing.T) {
	if args := tuningArgs(model.TuningParams{}); len(args) != 0 {
		t.Errorf("zero params produced args: %v", args)
	}
}

func TestTuningArgsFull(t *testing.T) {
	idx := 1
	p := model.TuningParams{
		CudaIdx:             &idx,
		RunNSegments:        2,
		Stage2BatchSize:     4,
		MaxNewTokens:        3000,
		RepetitionPenalty:   1.1,
		Stage1CacheSize:     4096,
		Stage2CacheSize:     8192,
		Stage1CacheMode:     "FP16",
		Stage2CacheMode:     "Q4",
		Stage1NoGuidance:    true,
		KeepIntermediate:    true,
		DisableOffloadModel: true,
	}

	want := []string{
		"--cuda_idx", "1",
		"--run_n_segments", "2",
		"--stage2_batch_size", "4",
		"--max_new_tokens", "3000",
		"--repetition_penalty", "1.1",
		"--stage1_cache_size", "4096",
		"--stage2_cache_size", "8192",
		"--stage1_cache_mode", "FP16",
		"--stage2_cache_mode", "Q4",
		"--stage1_no_guidance",
		"--keep_intermediate",
		"--disable_offload_model",
	}

	if got := tuningArgs(p); !reflect.DeepEqual(got, want) {
		t.Errorf("tuningArgs = %v\nwant %v", got, want)
	}
}

func TestTuningArgsCudaIdxZero(t *testing.T) {
	// An explicit zero device index must be forwarded; only a nil
	// pointer means "unset".
	idx := 0
	args := tuningArgs(model.TuningParams{CudaIdx: &idx})
	want := []string{"--cuda_idx", "0"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("tuningArgs = %v, want %v", args, want)
	}
}

func TestIsConfigured(t *testing.T) {
	if NewYuE(&config.EngineConfig{}).IsConfigured() {
		t.Error("engine without a script reports configured")
	}
	if !NewYuE(&config.EngineConfig{InferScript: "infer.py"}).IsConfigured() {
		t.Error("engine with a script reports unconfigured")
	}
}
