// Package prompt builds the generation requests sent to the model gateway.
// Each platform has a builder that renders an embedded instruction template
// and pairs it with the response shape the platform expects.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// Attachment is visual media sent alongside an instruction. Data is
// base64-encoded.
type Attachment struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// LatLng anchors a grounded request to a physical location.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Request is one fully-built generation request. A nil Shape means the model
// is asked for a JSON object inside a markdown block instead of schema-typed
// output; a non-nil Location marks the request as location-grounded.
type Request struct {
	Instruction string
	Shape       *Shape
	Attachment  *Attachment
	Location    *LatLng
}

// Grounded reports whether the request needs location grounding.
func (r *Request) Grounded() bool {
	return r.Location != nil
}

// Options carries the per-call knobs shared by the builders. Zero values are
// fine: empty Competitors skips the competitive variant, empty Language is
// filled by the engine before building.
type Options struct {
	Language    string
	Competitors string
	// PageContent marks the input as full page text rather than a short
	// business description. Only the SEO builders distinguish the two.
	PageContent bool
	// Category tailors YouTube suggestions.
	Category   string
	Attachment *Attachment
}

type promptData struct {
	Input       string
	Competitors string
	Language    string
	PageContent bool
	Category    string
	HasVisual   bool
}

func render(t *template.Template, data promptData) string {
	var buf strings.Builder
	if err := t.Execute(&buf, data); err != nil {
		// Embedded templates over string fields cannot fail to execute.
		panic(fmt.Sprintf("render %s: %v", t.Name(), err))
	}
	return buf.String()
}
