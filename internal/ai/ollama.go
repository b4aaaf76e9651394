package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/matthewjhunter/copysmith/internal/prompt"
)

// OllamaClient runs generation against a local Ollama daemon. Grounded
// requests are rejected: local models have no location retrieval.
type OllamaClient struct {
	client *api.Client
	model  string
	temp   float64
}

// NewOllamaClient creates an Ollama-backed client, preferring environment
// configuration and falling back to the given base URL.
func NewOllamaClient(baseURL, model string, temperature float64) (*OllamaClient, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		parsedURL, parseErr := url.Parse(baseURL)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid base URL: %w", parseErr)
		}
		client = api.NewClient(parsedURL, nil)
	}

	return &OllamaClient{client: client, model: model, temp: temperature}, nil
}

func (c *OllamaClient) Generate(ctx context.Context, req prompt.Request) (*Result, error) {
	if req.Grounded() {
		return nil, fmt.Errorf("location-grounded generation requires the gemini provider")
	}

	genReq := &api.GenerateRequest{
		Model:  c.model,
		Prompt: req.Instruction,
		Stream: new(bool), // false
		Options: map[string]interface{}{
			"temperature": c.temp,
		},
	}

	if req.Shape != nil {
		format, err := json.Marshal(jsonSchema(req.Shape))
		if err != nil {
			return nil, fmt.Errorf("encode format: %w", err)
		}
		genReq.Format = format
	}

	if req.Attachment != nil {
		data, err := base64.StdEncoding.DecodeString(req.Attachment.Data)
		if err != nil {
			return nil, fmt.Errorf("decode attachment: %w", err)
		}
		genReq.Images = []api.ImageData{data}
	}

	var fullResponse strings.Builder
	err := c.client.Generate(ctx, genReq, func(resp api.GenerateResponse) error {
		fullResponse.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama generate: %w", err)
	}

	return decodeResult(fullResponse.String())
}

// jsonSchema renders a shape into standard JSON-schema form for the Format
// field.
func jsonSchema(s *prompt.Shape) map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": s.Type}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = jsonSchema(p)
		}
		out["properties"] = props
	}
	if s.Items != nil {
		out["items"] = jsonSchema(s.Items)
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}
