package orchestrator

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/songforge/api/internal/model"
)

// mixSubdir is where the inference pipeline writes its final mix.
const mixSubdir = "vocoder/mix"

var audioExts = map[string]bool{
	".wav": true,
	".mp3": true,
}

var resultExts = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".mid":  true,
	".json": true,
}

// DiscoverArtifacts locates a job's output files. The search stops at
// the first level that yields results: the output directory's top
// level, then the well-known mix subdirectory, then a full recursive
// walk. The manifest's "audio" entry is the largest file with an
// audio extension; every other qualifying file is keyed by basename.
// Returns an error when nothing qualifies anywhere.
func DiscoverArtifacts(outputDir string) (map[string]model.Artifact, error) {
	files := listResultFiles(outputDir)
	if len(files) == 0 {
		files = listResultFiles(filepath.Join(outputDir, mixSubdir))
	}
	if len(files) == 0 {
		files = walkResultFiles(outputDir)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no result files found in %s", outputDir)
	}

	manifest := make(map[string]model.Artifact, len(files))

	// Largest audio file wins the "audio" slot; multi-pass runs leave
	// smaller intermediate takes behind.
	var primary string
	var primarySize int64
	for path, size := range files {
		if audioExts[strings.ToLower(filepath.Ext(path))] && size > primarySize {
			primary = path
			primarySize = size
		}
	}
	if primary != "" {
		manifest[model.ArtifactAudio] = model.Artifact{LocalPath: primary}
	}

	for path := range files {
		if path == primary {
			continue
		}
		manifest[filepath.Base(path)] = model.Artifact{LocalPath: path}
	}

	return manifest, nil
}

// listResultFiles returns qualifying files directly inside dir,
// mapped to their sizes.
func listResultFiles(dir string) map[string]int64 {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	files := make(map[string]int64)
	for _, e := range entries {
		if e.IsDir() || !resultExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files[filepath.Join(dir, e.Name())] = info.Size()
	}
	if len(files) == 0 {
		return nil
	}
	return files
}

// walkResultFiles recursively collects qualifying files under dir.
func walkResultFiles(dir string) map[string]int64 {
	files := make(map[string]int64)
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !resultExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files[path] = info.Size()
		return nil
	})
	if len(files) == 0 {
		return nil
	}
	return files
}

// scratchArtifacts returns manifest entries for the genre/lyrics
// scratch files when they exist on disk.
func scratchArtifacts(outputDir string) map[string]model.Artifact {
	out := make(map[string]model.Artifact, 2)
	for name, file := range map[string]string{
		model.ArtifactGenre:  genreFileName,
		model.ArtifactLyrics: lyricsFileName,
	} {
		p := filepath.Join(outputDir, file)
		if _, err := os.Stat(p); err == nil {
			out[name] = model.Artifact{LocalPath: p}
		}
	}
	return out
}
