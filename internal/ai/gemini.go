package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/matthewjhunter/copysmith/internal/prompt"
)

// GeminiClient talks to the generativelanguage REST API. One attempt per
// request; retry policy belongs to the caller.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	temp       float64
	httpClient *http.Client
}

// NewGeminiClient reads the API key from the environment variable named by
// apiKeyEnv.
func NewGeminiClient(baseURL, apiKeyEnv, model string, temperature float64) (*GeminiClient, error) {
	key := strings.TrimSpace(os.Getenv(apiKeyEnv))
	if key == "" {
		return nil, fmt.Errorf("missing %s", apiKeyEnv)
	}
	return &GeminiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     key,
		model:      model,
		temp:       temperature,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
	Temperature      float64        `json:"temperature"`
}

type geminiTool struct {
	GoogleMaps *struct{} `json:"googleMaps,omitempty"`
}

type geminiLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type retrievalConfig struct {
	LatLng geminiLatLng `json:"latLng"`
}

type toolConfig struct {
	RetrievalConfig *retrievalConfig `json:"retrievalConfig,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
	Tools            []geminiTool      `json:"tools,omitempty"`
	ToolConfig       *toolConfig       `json:"toolConfig,omitempty"`
}

type chunkSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type groundingChunk struct {
	Web              *chunkSource `json:"web,omitempty"`
	Maps             *chunkSource `json:"maps,omitempty"`
	RetrievedContext *chunkSource `json:"retrievedContext,omitempty"`
}

type groundingMetadata struct {
	GroundingChunks []groundingChunk `json:"groundingChunks"`
}

type geminiCandidate struct {
	Content           *geminiContent     `json:"content"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata"`
}

type promptFeedback struct {
	BlockReason        string `json:"blockReason"`
	BlockReasonMessage string `json:"blockReasonMessage"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *promptFeedback   `json:"promptFeedback"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *GeminiClient) Generate(ctx context.Context, req prompt.Request) (*Result, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: buildParts(req)}},
	}

	if req.Grounded() {
		body.Tools = []geminiTool{{GoogleMaps: &struct{}{}}}
		body.ToolConfig = &toolConfig{RetrievalConfig: &retrievalConfig{
			LatLng: geminiLatLng{Latitude: req.Location.Latitude, Longitude: req.Location.Longitude},
		}}
	} else {
		body.GenerationConfig = &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   geminiSchema(req.Shape),
			Temperature:      c.temp,
		}
	}

	resp, err := c.do(ctx, body)
	if err != nil {
		return nil, err
	}

	text := candidateText(resp)
	if text == "" {
		if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
			return nil, &BlockedError{Reason: fb.BlockReason, Message: fb.BlockReasonMessage}
		}
		return nil, ErrEmptyResponse
	}

	result, err := decodeResult(text)
	if err != nil {
		return nil, err
	}

	if req.Grounded() {
		result.Citations = extractCitations(resp)
	}
	return result, nil
}

func (c *GeminiClient) do(ctx context.Context, body geminiRequest) (*geminiResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call gemini: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr geminiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("gemini %d: %s", httpResp.StatusCode, StripVendorPrefix(apiErr.Error.Message))
		}
		return nil, fmt.Errorf("gemini %d: %s", httpResp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var resp geminiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

func buildParts(req prompt.Request) []geminiPart {
	parts := []geminiPart{{Text: req.Instruction}}
	if req.Attachment != nil {
		parts = append(parts, geminiPart{InlineData: &inlineData{
			MIMEType: req.Attachment.MIMEType,
			Data:     req.Attachment.Data,
		}})
	}
	return parts
}

func candidateText(resp *geminiResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func extractCitations(resp *geminiResponse) []Citation {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var cites []Citation
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		src := chunk.Web
		if src == nil {
			src = chunk.Maps
		}
		if src == nil {
			src = chunk.RetrievedContext
		}
		if src == nil || (src.URI == "" && src.Title == "") {
			continue
		}
		cites = append(cites, Citation{URI: src.URI, Title: src.Title})
	}
	return cites
}

// geminiSchema renders a shape into the API's uppercase type dialect.
func geminiSchema(s *prompt.Shape) map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{"type": strings.ToUpper(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = geminiSchema(p)
		}
		out["properties"] = props
	}
	if s.Items != nil {
		out["items"] = geminiSchema(s.Items)
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	if len(s.Ordering) > 0 {
		out["propertyOrdering"] = s.Ordering
	}
	return out
}
