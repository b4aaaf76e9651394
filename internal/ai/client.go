// Package ai is the model gateway: it turns prompt requests into decoded
// JSON results and classifies the failure modes of the generation path.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/matthewjhunter/copysmith/internal/prompt"
)

// Citation is one grounding source returned with a location-grounded result.
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Result is a decoded generation. Raw keeps the cleaned text the Value was
// parsed from. Citations is populated only for grounded requests.
type Result struct {
	Value     map[string]any
	Raw       string
	Citations []Citation
}

// Client is a generation provider. Implementations return typed errors from
// the taxonomy below and never retry on their own.
type Client interface {
	Generate(ctx context.Context, req prompt.Request) (*Result, error)
}

// BlockedError reports a request refused by the provider's safety layer.
type BlockedError struct {
	Reason  string
	Message string
}

func (e *BlockedError) Error() string {
	msg := fmt.Sprintf("request was blocked. Reason: %s.", e.Reason)
	if e.Message != "" {
		msg += " " + e.Message
	}
	return msg
}

// ErrEmptyResponse indicates the provider returned no usable text. This can
// be caused by content safety filters.
var ErrEmptyResponse = errors.New("the model returned an empty response")

// MalformedError reports text that survived cleaning but is not valid JSON.
type MalformedError struct {
	Raw string
}

func (e *MalformedError) Error() string {
	return "the model returned a response that is not valid JSON"
}

var (
	openFence    = regexp.MustCompile("^```json\\s*")
	closeFence   = regexp.MustCompile("```\\s*$")
	vendorPrefix = regexp.MustCompile(`^\[[^\]]*\]:\s*`)
)

// cleanFences strips at most one leading ```json fence and one trailing
// fence from trimmed model output.
func cleanFences(text string) string {
	text = strings.TrimSpace(text)
	text = openFence.ReplaceAllString(text, "")
	text = closeFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// decodeResult runs the shared response pipeline: trim, strip fences, reject
// empty, parse JSON.
func decodeResult(text string) (*Result, error) {
	cleaned := cleanFences(text)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	var value map[string]any
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return nil, &MalformedError{Raw: cleaned}
	}
	return &Result{Value: value, Raw: cleaned}, nil
}

// StripVendorPrefix removes a leading bracketed SDK tag like
// "[GoogleGenerativeAI Error]: " from an error message.
func StripVendorPrefix(msg string) string {
	return vendorPrefix.ReplaceAllString(msg, "")
}
