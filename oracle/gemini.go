package oracle

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-2.5-flash"
	// DefaultTimeout bounds a single oracle call.
	DefaultTimeout = 2 * time.Minute

	// One retry on transport failure; the calling pipeline treats
	// exhaustion as a recoverable empty result.
	maxAttempts = 2
)

// GeminiConfig configures the Gemini-backed generator.
type GeminiConfig struct {
	APIKey  string
	Model   string        // defaults to DefaultModel
	Timeout time.Duration // per-call bound, defaults to DefaultTimeout
}

// Gemini is a Generator backed by the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

// Generate sends the request parts as a single user turn and returns the
// model's text reply. Each attempt runs under the configured deadline.
func (g *Gemini) Generate(ctx context.Context, parts []Part) (string, error) {
	content := genai.NewContentFromParts(toGenaiParts(parts), genai.RoleUser)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		resp, err := g.client.Models.GenerateContent(callCtx, g.model, []*genai.Content{content}, nil)
		cancel()
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return resp.Text(), nil
	}
	return "", fmt.Errorf("gemini call failed after %d attempts: %w", maxAttempts, lastErr)
}

func toGenaiParts(parts []Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Data != nil {
			out = append(out, genai.NewPartFromBytes(p.Data, p.MIME))
			continue
		}
		out = append(out, genai.NewPartFromText(p.Text))
	}
	return out
}
