// Package gemini implements drafting.Generator on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultModel      = "gemini-2.0-flash"
	DefaultAPIVersion = "v1beta"
)

// ErrMissingAPIKey is returned by New when no credential is supplied.
var ErrMissingAPIKey = errors.New("gemini API key is not configured")

type Config struct {
	APIKey     string
	Model      string
	APIVersion string
}

type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator sends prompts to a single Gemini model.
type Generator struct {
	models models
	model  string
}

// New validates the credential and builds a client. No request is made.
func New(ctx context.Context, cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: cfg.APIVersion},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Generator{models: client.Models, model: cfg.Model}, nil
}

// Generate makes one GenerateContent call and returns the concatenated text parts.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini returned no response")
	}
	return resp.Text(), nil
}

// Model reports the model name prompts are sent to.
func (g *Generator) Model() string {
	return g.model
}
