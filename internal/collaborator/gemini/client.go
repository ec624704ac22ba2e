// Package gemini implements the correction collaborator contract against
// Google's Gemini API.
package gemini

import (
	"context"

	"google.golang.org/genai"

	"github.com/agentstation/dracve/pkg/corrections"
	"github.com/agentstation/dracve/pkg/errors"
	"github.com/agentstation/dracve/pkg/logging"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Client calls Gemini to produce a corrected consolidated view.
type Client struct {
	model  string
	client *genai.Client
}

// Compile-time interface check.
var _ corrections.Corrector = (*Client)(nil)

// New creates a Gemini-backed corrector. An API key is required; the
// Gemini API backend is always used since reconciliation runs client-side
// with a user-supplied key.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, &errors.AuthenticationError{
			Service: "gemini",
			Method:  "api_key",
			Message: "API key required for the correction collaborator",
			Err:     errors.ErrAPIKeyRequired,
		}
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, errors.NewTransportError("gemini", "failed to create client", err)
	}

	return &Client{model: model, client: client}, nil
}

// Correct sends the request payload to Gemini and decodes the response
// against the contract. Service or network failures surface as transport
// errors; a response that decodes but does not match the contract surfaces
// as a contract violation.
func (c *Client) Correct(ctx context.Context, req *corrections.Request) (*corrections.Corrected, error) {
	log := logging.Ctx(ctx)

	prompt := req.Prompt()
	log.Debug().
		Str("model", c.model).
		Int("prompt_bytes", len(prompt)).
		Msg("Requesting corrections from collaborator")

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, errors.NewTransportError("gemini", "generate content failed", err)
	}

	corrected, err := corrections.Decode(resp.Text())
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("inventory_rows", len(corrected.Inventory)).
		Int("order_rows", len(corrected.Orders)).
		Int("return_rows", len(corrected.Returns)).
		Msg("Collaborator returned corrected view")
	return corrected, nil
}
