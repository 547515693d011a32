// Package assist is a thin client for the external text-generation
// endpoint. The model is an opaque text-in/text-out collaborator; nothing
// here interprets its output.
package assist

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client calls the generation API.
type Client struct {
	client *resty.Client
	model  string
}

// New builds a client for the given base URL and model name.
func New(baseURL, model string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(2 * time.Minute)

	return &Client{client: c, model: model}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends the prompt upstream and returns the generated text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("empty prompt")
	}

	reqBody := generateRequest{Model: c.model, Prompt: prompt}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		SetResult(&generateResponse{}).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("assist request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("assist status %d: %s", resp.StatusCode(), resp.String())
	}
	out, ok := resp.Result().(*generateResponse)
	if !ok || out.Response == "" {
		return "", fmt.Errorf("assist returned empty response")
	}
	return out.Response, nil
}
