package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/songforge/api/internal/config"
)

// DefaultLyricsPrompt is the system prompt used for lyrics generation
// when no override file is present.
const DefaultLyricsPrompt = `You are a professional songwriter. Generate song lyrics based on the given prompt.
The lyrics MUST follow this exact structure and format:
- [verse]
- [chorus]
- [verse]
- [chorus]
- [bridge]
- [outro]

Each section should be separated by exactly two newlines.
Within each section, lines should be separated by a single newline.
Each section should be marked with its type in square brackets (e.g., [verse], [chorus], etc.).

The lyrics should be creative, meaningful, and suitable for singing. Do not include any explanations or additional text - just the lyrics in the specified format.`

const genreBasePrompt = `Based on the given prompt, determine the most suitable musical genre for the song.
Respond with just a single word genre (e.g., 'rock', 'pop', 'jazz', 'hiphop', 'blues', etc.).
Do not include any explanations or additional text.`

const inferGenresPrompt = `As a music expert, analyze the given prompt and suggest 2-3 most suitable musical genres that would work well together.
Consider:
1. The theme and mood of the prompt
2. Common genre combinations in modern music
3. Musical compatibility between genres

Respond with ONLY a comma-separated list of genres (e.g., 'rock, electronic, indie').
Do not include any explanations or additional text.`

// Completer is one lyrics backend: a chat-style model that answers a
// system+user pair with text.
type Completer interface {
	Name() string
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
	IsConfigured() bool
}

// LyricsProvider wraps a Completer with the prompt construction and
// retry policy shared by all backends.
type LyricsProvider struct {
	completer Completer
}

// NewLyricsProvider builds the named provider from configuration.
// The provider must have an API key configured.
func NewLyricsProvider(name string, cfg *config.LyricsConfig) (*LyricsProvider, error) {
	var c Completer
	switch strings.ToLower(name) {
	case "openai":
		c = NewOpenAIClient(&cfg.OpenAI)
	case "anthropic":
		c = NewAnthropicClient(&cfg.Anthropic)
	case "gemini":
		c = NewGeminiClient(&cfg.Gemini)
	default:
		return nil, fmt.Errorf("unsupported lyrics provider: %s", name)
	}

	if !c.IsConfigured() {
		return nil, fmt.Errorf("provider %s is not configured", name)
	}

	return &LyricsProvider{completer: c}, nil
}

// AvailableProviders lists the backends that have credentials.
func AvailableProviders(cfg *config.LyricsConfig) []string {
	var names []string
	if cfg.OpenAI.APIKey != "" {
		names = append(names, "openai")
	}
	if cfg.Anthropic.APIKey != "" {
		names = append(names, "anthropic")
	}
	if cfg.Gemini.APIKey != "" {
		names = append(names, "gemini")
	}
	return names
}

// Name returns the active backend's name.
func (p *LyricsProvider) Name() string {
	return p.completer.Name()
}

// GenerateLyrics produces song lyrics for the prompt. systemPrompt
// overrides the default when non-empty.
func (p *LyricsProvider) GenerateLyrics(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if systemPrompt == "" {
		systemPrompt = DefaultLyricsPrompt
	}
	return p.complete(ctx, systemPrompt, "Prompt: "+prompt, 1024)
}

// ExtractGenre asks the backend for a single genre word. extra is an
// operator-supplied addition to the base extraction prompt.
func (p *LyricsProvider) ExtractGenre(ctx context.Context, prompt, extra string) (string, error) {
	system := genreBasePrompt
	if strings.TrimSpace(extra) != "" {
		system = system + "\n\n" + extra
	}

	out, err := p.complete(ctx, system, "Prompt: "+prompt, 50)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(out)), nil
}

// InferGenres asks the backend for 2-3 compatible genres.
func (p *LyricsProvider) InferGenres(ctx context.Context, prompt string) ([]string, error) {
	out, err := p.complete(ctx, inferGenresPrompt, "Prompt: "+prompt, 100)
	if err != nil {
		return nil, err
	}

	var genres []string
	for _, g := range strings.Split(out, ",") {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			genres = append(genres, g)
		}
	}
	return genres, nil
}

// GenerateLyricsWithGenres produces lyrics that lean on the given
// genres' vocabulary and conventions.
func (p *LyricsProvider) GenerateLyricsWithGenres(ctx context.Context, prompt string, genres []string) (string, error) {
	system := fmt.Sprintf(`You are a professional songwriter. Generate song lyrics based on the given prompt that incorporate elements from the following genres: %s.
The lyrics MUST follow this exact structure and format:
- [verse]
- [chorus]
- [verse]
- [chorus]
- [bridge]
- [outro]

Each section should be separated by exactly two newlines.
Within each section, lines should be separated by a single newline.
Each section should be marked with its type in square brackets (e.g., [verse], [chorus], etc.).

The lyrics should:
1. Include typical elements, themes, and style from the specified genres
2. Use appropriate vocabulary and metaphors common in these genres
3. Follow common rhyme patterns for these genres
4. Maintain appropriate tone and mood for these genres

Do not include any explanations or additional text - just the lyrics in the specified format.`, strings.Join(genres, ", "))

	return p.complete(ctx, system, "Prompt: "+prompt, 1024)
}

// complete calls the backend with a short retry loop; provider APIs
// fail transiently often enough that a single attempt is too fragile.
func (p *LyricsProvider) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	var out string
	err := retry.Do(
		func() error {
			var err error
			out, err = p.completer.Complete(ctx, system, user, maxTokens)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
	)
	if err != nil {
		return "", fmt.Errorf("%s provider: %w", p.completer.Name(), err)
	}
	return out, nil
}
