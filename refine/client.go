// Package refine drives the external text-refinement service that cleans the
// transcript, masks PII and names the speaker roles, with a local fallback
// when the service cannot.
package refine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// GenerateOptions bound the refiner's text generation.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
	TopP        float64
}

type generateRequest struct {
	Prompt []string       `json:"prompt"`
	Kwargs generateKwargs `json:"kwargs"`
}

type generateKwargs struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TopP        float64 `json:"top_p"`
}

type generateResponse struct {
	Outputs []struct {
		Text string `json:"text"`
	} `json:"outputs"`
}

// Client talks to the refinement endpoint. A timeout is always set; a timed
// out request is indistinguishable from any other transport failure to the
// orchestrator.
type Client struct {
	http     *resty.Client
	endpoint string
}

// NewClient builds a client for the configured endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		http:     resty.New().SetTimeout(timeout),
		endpoint: endpoint,
	}
}

// Generate posts one prompt and returns the generated text. Any transport
// failure, non-200 status or malformed body is an error; the caller decides
// whether to retry or fall back.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(generateRequest{
			Prompt: []string{prompt},
			Kwargs: generateKwargs{
				Temperature: opts.Temperature,
				MaxTokens:   opts.MaxTokens,
				TopP:        opts.TopP,
			},
		}).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("refiner request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("refiner returned status %d", resp.StatusCode())
	}

	var out []generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("refiner response is not valid JSON: %w", err)
	}
	if len(out) == 0 || len(out[0].Outputs) == 0 {
		return "", fmt.Errorf("refiner response has no outputs")
	}
	return out[0].Outputs[0].Text, nil
}
