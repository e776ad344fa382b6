package analysis

import (
	"context"
	"encoding/json"

	"google.golang.org/genai"

	"github.com/tradeops/traderecon/pkg/errors"
	"github.com/tradeops/traderecon/pkg/recon"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Gemini is an Analyzer backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// GeminiOption configures a Gemini analyzer.
type GeminiOption func(*Gemini)

// WithModel overrides the Gemini model.
func WithModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// NewGemini creates a Gemini-backed analyzer using API-key authentication.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, &errors.ConfigError{
			Component: "analysis",
			Message:   "GEMINI_API_KEY not set",
			Err:       errors.ErrAPIKeyRequired,
		}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, &errors.APIError{Service: "gemini", Message: "creating client", Err: err}
	}

	g := &Gemini{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Name implements Analyzer.
func (g *Gemini) Name() string { return g.model }

// Analyze implements Analyzer. The response is requested as JSON and decoded
// into the Analysis shape; a malformed response is an error so the caller's
// retry and fallback policy applies.
func (g *Gemini) Analyze(ctx context.Context, exc recon.Outcome) (*Analysis, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.2),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(userPrompt(exc)), config)
	if err != nil {
		return nil, &errors.APIError{Service: "gemini", Message: "generate content", Err: err}
	}

	var result Analysis
	if err := json.Unmarshal([]byte(resp.Text()), &result); err != nil {
		return nil, &errors.APIError{Service: "gemini", Message: "decoding analysis response", Err: err}
	}

	if result.Severity == "" {
		result.Severity = exc.Severity
	}
	result.Model = g.model
	result.TradeID = exc.TradeID

	return &result, nil
}
