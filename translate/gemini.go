package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// DefaultLanguage is the target language used when none is configured.
const DefaultLanguage = "English"

var (
	// ErrNoAPIKey is returned by NewGemini without an API key.
	ErrNoAPIKey = errors.New("gemini API key is not set")
	// ErrEmptyResponse is returned when the model answers a non-empty
	// prompt with no text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// Gemini translates with the Gemini API.
type Gemini struct {
	client   *genai.Client
	model    string
	language string
}

// NewGemini creates a Gemini translator. Empty model and language select
// DefaultModel and DefaultLanguage.
func NewGemini(ctx context.Context, apiKey, model, language string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return newGemini(client, model, language), nil
}

func newGemini(client *genai.Client, model, language string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	model = strings.TrimPrefix(model, "models/")
	if language == "" {
		language = DefaultLanguage
	}
	return &Gemini{client: client, model: model, language: language}
}

// Model returns the model name requests are sent to.
func (g *Gemini) Model() string { return g.model }

// Language returns the target language.
func (g *Gemini) Language() string { return g.language }

// Translate sends text with the translation prompt and returns the
// model's answer with surrounding whitespace removed.
func (g *Gemini) Translate(ctx context.Context, text string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(Prompt(g.language, text)), nil)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", g.model, err)
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" && strings.TrimSpace(text) != "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
