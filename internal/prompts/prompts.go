// Package prompts manages the operator-editable system prompt files
// for lyrics generation and genre extraction.
package prompts

import (
	"fmt"
	"os"
	"strings"

	"github.com/songforge/api/internal/config"
)

// Files reads and writes the two prompt override files. An empty
// return value means "no override"; callers fall back to their
// built-in defaults.
type Files struct {
	lyricsPath string
	genrePath  string
}

func New(cfg *config.PromptsConfig) *Files {
	return &Files{
		lyricsPath: cfg.LyricsPath,
		genrePath:  cfg.GenrePath,
	}
}

// Lyrics returns the lyrics system prompt override, or "" when the
// file is absent or blank.
func (f *Files) Lyrics() string {
	return readPrompt(f.lyricsPath)
}

// Genre returns the genre extraction prompt addition, or "".
func (f *Files) Genre() string {
	return readPrompt(f.genrePath)
}

// WriteLyrics persists a new lyrics system prompt.
func (f *Files) WriteLyrics(prompt string) error {
	return writePrompt(f.lyricsPath, prompt)
}

// WriteGenre persists a new genre extraction prompt.
func (f *Files) WriteGenre(prompt string) error {
	return writePrompt(f.genrePath, prompt)
}

func readPrompt(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if strings.TrimSpace(string(data)) == "" {
		return ""
	}
	return string(data)
}

func writePrompt(path, prompt string) error {
	if path == "" {
		return fmt.Errorf("prompt file path not configured")
	}
	if err := os.WriteFile(path, []byte(prompt), 0o644); err != nil {
		return fmt.Errorf("failed to save prompt: %w", err)
	}
	return nil
}
