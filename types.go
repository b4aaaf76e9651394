package copysmith

import (
	"encoding/base64"

	"github.com/matthewjhunter/copysmith/internal/ai"
	"github.com/matthewjhunter/copysmith/internal/prompt"
	"github.com/matthewjhunter/copysmith/internal/storage"
)

// EngineConfig configures the copysmith engine.
type EngineConfig struct {
	DBPath        string
	Provider      string // "gemini" or "ollama"
	Model         string
	Language      string
	Temperature   float64
	GeminiBaseURL string
	GeminiKeyEnv  string
	OllamaBaseURL string
	AdminsPath    string // optional TOML allowlist override
	Limits        Limits
}

// Limits caps the generator inputs, in characters (AttachmentMB in MiB).
type Limits struct {
	Description   int
	PageContent   int
	Competitors   int
	AnalysisText  int
	TargetKeyword int
	AttachmentMB  int
}

// KeywordSuggestion is one keyword, tag, or hashtag with its metadata.
type KeywordSuggestion struct {
	Keyword          string  `json:"keyword"`
	SearchVolume     string  `json:"searchVolume"`
	TrendingRank     float64 `json:"trendingRank"`
	UserIntent       string  `json:"userIntent"`
	Competition      string  `json:"competition"`
	CPC              string  `json:"cpc"`
	Density          float64 `json:"density,omitempty"`
	StrategicInsight string  `json:"strategicInsight,omitempty"`
}

// SeoBundle is the joint result of one website-SEO generation.
type SeoBundle struct {
	Input            string              `json:"input"`
	Keywords         []KeywordSuggestion `json:"keywords"`
	MetaDescriptions []string            `json:"metaDescriptions"`
	SchemaType       string              `json:"schemaType"`
	JSONLD           string              `json:"jsonLd"`
}

// OutlineItem is one heading in a content brief outline.
type OutlineItem struct {
	Heading  string        `json:"heading"`
	Children []OutlineItem `json:"children,omitempty"`
}

// ContentBrief is the SERP-analysis brief for a target keyword.
type ContentBrief struct {
	SearchIntent       string        `json:"searchIntent"`
	SuggestedTitle     string        `json:"suggestedTitle"`
	MetaDescription    string        `json:"metaDescription"`
	SerpAnalysis       string        `json:"serpAnalysis"`
	KeyTopics          []string      `json:"keyTopics"`
	QuestionsToAnswer  []string      `json:"questionsToAnswer"`
	SuggestedOutline   []OutlineItem `json:"suggestedOutline"`
	TargetWordCount    string        `json:"targetWordCount"`
	LinkingSuggestions string        `json:"linkingSuggestions"`
}

// Citation re-exports the gateway citation type.
type Citation = ai.Citation

// MapsResult is a grounded local-SEO keyword set with its sources.
type MapsResult struct {
	Keywords  []KeywordSuggestion `json:"keywords"`
	Citations []Citation          `json:"citations,omitempty"`
}

// YouTubeContent is the video-optimization result set.
type YouTubeContent struct {
	VideoTags           []KeywordSuggestion `json:"Video Tags"`
	DescriptionKeywords []KeywordSuggestion `json:"Description Keywords"`
	VideoDescription    []string            `json:"Video Description"`
	TitleSuggestions    []string            `json:"Title Suggestions"`
	SuggestedCategories []string            `json:"Suggested Categories"`
}

// SocialContent is the shared result shape for LinkedIn, Instagram, and
// Facebook. Fields absent on a platform stay empty.
type SocialContent struct {
	Caption       []string            `json:"caption,omitempty"`
	Hashtags      []KeywordSuggestion `json:"hashtags"`
	CallToActions []string            `json:"callToActions,omitempty"`
}

// Attachment is visual media passed alongside a generation input.
type Attachment = prompt.Attachment

// NewAttachment base64-encodes raw media bytes into an attachment.
func NewAttachment(mimeType string, data []byte) *Attachment {
	return &Attachment{
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}
}

// LatLng anchors grounded requests to a location.
type LatLng = prompt.LatLng

// GenerateOptions carries the shared per-request knobs. Zero values fall back
// to the engine defaults.
type GenerateOptions struct {
	Language    string
	Competitors string
	PageContent bool
	Category    string
	Attachment  *Attachment
}

// Storage-backed types are defined next to their stores.
type (
	ScheduledPost = storage.ScheduledPost
	PostPatch     = storage.PostPatch
	HistoryItem   = storage.HistoryItem
	ManagedUser   = storage.ManagedUser
)

// Platform labels and icons recorded with history items.
const (
	PlatformWebsiteSEO   = "Website SEO"
	PlatformContentBrief = "Content Brief"
	PlatformMapsSEO      = "Google Maps SEO"
	PlatformYouTube      = "YouTube"
	PlatformLinkedIn     = "LinkedIn"
	PlatformInstagram    = "Instagram"
	PlatformFacebook     = "Facebook"
)

var platformIcons = map[string]string{
	PlatformWebsiteSEO:   "🌐",
	PlatformContentBrief: "📝",
	PlatformMapsSEO:      "📍",
	PlatformYouTube:      "▶️",
	PlatformLinkedIn:     "💼",
	PlatformInstagram:    "📸",
	PlatformFacebook:     "👍",
}

// PlatformIcon returns the icon shown next to a platform label in history.
func PlatformIcon(platform string) string {
	return platformIcons[platform]
}
