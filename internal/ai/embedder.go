package ai

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ollama/ollama/api"
)

// OllamaEmbedder produces embeddings through a local Ollama daemon. It
// satisfies the go-embedding Embedder interface.
type OllamaEmbedder struct {
	client *api.Client
	model  string
}

func NewOllamaEmbedder(baseURL, model string) (*OllamaEmbedder, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		parsedURL, parseErr := url.Parse(baseURL)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid base URL: %w", parseErr)
		}
		client = api.NewClient(parsedURL, nil)
	}
	return &OllamaEmbedder{client: client, model: model}, nil
}

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}

func (e *OllamaEmbedder) Model() string { return e.model }
