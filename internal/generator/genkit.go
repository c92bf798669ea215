package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/rs/zerolog"
)

const sitePrompt = `You are a website generator. Produce a complete, valid,
single-file HTML document (inline CSS, no external assets) for a %s page.
Respond with the HTML document only, no commentary.

Brief:
%s`

// genkitGenerator implements Generator on top of Genkit with the Google AI
// plugin.
type genkitGenerator struct {
	g       *genkit.Genkit
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

// NewGenkit initializes Genkit with the Google AI plugin and returns a
// Generator bound to the given model name (e.g. "googleai/gemini-2.5-flash").
func NewGenkit(ctx context.Context, model string, timeout time.Duration, log zerolog.Logger) (Generator, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, fmt.Errorf("failed to initialize genkit")
	}

	return &genkitGenerator{
		g:       g,
		model:   model,
		timeout: timeout,
		log:     log.With().Str("component", "generator").Logger(),
	}, nil
}

// Generate runs one model call under a bounded timeout so a hung engine never
// holds request resources indefinitely.
func (gg *genkitGenerator) Generate(ctx context.Context, instruction, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gg.timeout)
	defer cancel()

	start := time.Now()
	response, err := genkit.Generate(ctx, gg.g,
		ai.WithModelName(gg.model),
		ai.WithPrompt(sitePrompt, contentType, instruction),
	)
	if err != nil {
		gg.log.Warn().Err(err).Str("content_type", contentType).Msg("Generation call failed")
		return "", classify(err)
	}

	content := stripCodeFence(response.Text())
	if content == "" {
		return "", &Error{Kind: KindInvalidResponse, Message: "engine returned empty content"}
	}

	gg.log.Debug().
		Dur("duration", time.Since(start)).
		Int("content_bytes", len(content)).
		Str("content_type", contentType).
		Msg("Content generated")

	return content, nil
}

// classify maps provider errors into the service's own taxonomy so generator
// specific error shapes never leak upward.
func classify(err error) *Error {
	msg := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return &Error{Kind: KindUnavailable, Message: "engine call timed out", Err: err}
	case strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit"):
		return &Error{Kind: KindRateLimited, Message: "engine rate limited", Err: err}
	case strings.Contains(msg, "safety") || strings.Contains(msg, "blocked"):
		return &Error{Kind: KindSafetyBlocked, Message: "instruction rejected by safety filter", Err: err}
	default:
		return &Error{Kind: KindUnavailable, Message: "engine unavailable", Err: err}
	}
}

// stripCodeFence removes a surrounding markdown fence; models frequently wrap
// HTML output in ```html blocks despite the prompt.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
