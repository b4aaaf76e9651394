package copysmith

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matthewjhunter/copysmith/internal/ai"
	"github.com/matthewjhunter/copysmith/internal/prompt"
	"github.com/matthewjhunter/copysmith/internal/storage"
)

// fakeClient serves canned JSON keyed by a substring of the instruction.
type fakeClient struct {
	mu        sync.Mutex
	responses map[string]string // instruction substring -> raw JSON
	failOn    string            // instruction substring that errors
	failErr   error
	calls     []string
}

func (f *fakeClient) Generate(_ context.Context, req prompt.Request) (*ai.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.Instruction)
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(req.Instruction, f.failOn) {
		if f.failErr != nil {
			return nil, f.failErr
		}
		return nil, fmt.Errorf("injected failure")
	}
	for key, raw := range f.responses {
		if strings.Contains(req.Instruction, key) {
			res := &ai.Result{Raw: raw}
			if req.Grounded() {
				res.Citations = []ai.Citation{{URI: "https://maps.example", Title: "Example"}}
			}
			return res, nil
		}
	}
	return nil, fmt.Errorf("no canned response for instruction")
}

func seoResponses() map[string]string {
	return map[string]string{
		"SEO analyst":              `{"keywords": [{"keyword": "fresh bread", "searchVolume": "High", "trendingRank": 1, "userIntent": "Commercial", "competition": "Low", "cpc": "$0.40"}]}`,
		"SEO strategist":           `{"keywords": [{"keyword": "fresh bread", "searchVolume": "High", "trendingRank": 1, "userIntent": "Commercial", "competition": "Low", "cpc": "$0.40", "strategicInsight": "gap"}]}`,
		"SEO copywriter":           `{"metaDescriptions": ["Fresh bread daily. Learn more."]}`,
		"technical SEO specialist": `{"schemaType": "Bakery", "jsonLd": "{\"@type\":\"Bakery\"}"}`,
	}
}

func newTestEngine(t *testing.T, client ai.Client) *Engine {
	t.Helper()
	kv := storage.NewMemKV()
	creds, err := storage.NewCredentialStore(kv, "")
	if err != nil {
		t.Fatalf("NewCredentialStore failed: %v", err)
	}
	cfg := EngineConfig{
		Language: "English",
		Limits: Limits{
			Description:   5000,
			PageContent:   20000,
			Competitors:   2000,
			AnalysisText:  20000,
			TargetKeyword: 200,
			AttachmentMB:  499,
		},
	}
	return newEngineWith(kv, client, creds, cfg)
}

func TestGenerateSeoBundle(t *testing.T) {
	client := &fakeClient{responses: seoResponses()}
	e := newTestEngine(t, client)

	bundles, err := e.GenerateSeoBundle(context.Background(), "artisan bakery in lisbon", GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateSeoBundle failed: %v", err)
	}
	if len(bundles) != 1 {
		t.Fatalf("Expected 1 bundle, got %d", len(bundles))
	}

	b := bundles[0]
	if len(b.Keywords) != 1 || b.Keywords[0].Keyword != "fresh bread" {
		t.Errorf("Keywords not decoded: %+v", b.Keywords)
	}
	if len(b.MetaDescriptions) != 1 {
		t.Errorf("Meta descriptions not decoded: %+v", b.MetaDescriptions)
	}
	if b.SchemaType != "Bakery" {
		t.Errorf("Schema type not decoded: %s", b.SchemaType)
	}

	// Three concurrent requests for one bundle.
	if len(client.calls) != 3 {
		t.Errorf("Expected 3 gateway calls, got %d", len(client.calls))
	}

	items, _ := e.History()
	if len(items) != 1 {
		t.Fatalf("Expected 1 history item, got %d", len(items))
	}
	if items[0].Platform != PlatformWebsiteSEO || items[0].Icon != "🌐" {
		t.Errorf("Wrong history labeling: %s %s", items[0].Platform, items[0].Icon)
	}
}

func TestGenerateSeoBundlePerLine(t *testing.T) {
	client := &fakeClient{responses: seoResponses()}
	e := newTestEngine(t, client)

	input := "bakery lisbon\n\ncoffee shop porto\n"
	bundles, err := e.GenerateSeoBundle(context.Background(), input, GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateSeoBundle failed: %v", err)
	}
	if len(bundles) != 2 {
		t.Fatalf("Expected a bundle per non-empty line, got %d", len(bundles))
	}
	if bundles[0].Input != "bakery lisbon" || bundles[1].Input != "coffee shop porto" {
		t.Errorf("Wrong bundle inputs: %q, %q", bundles[0].Input, bundles[1].Input)
	}

	items, _ := e.History()
	if len(items) != 2 {
		t.Errorf("Expected one history item per bundle, got %d", len(items))
	}
}

func TestGenerateSeoBundleFailFastNoHistory(t *testing.T) {
	client := &fakeClient{
		responses: seoResponses(),
		failOn:    "technical SEO specialist",
		failErr:   &ai.BlockedError{Reason: "SAFETY"},
	}
	e := newTestEngine(t, client)

	_, err := e.GenerateSeoBundle(context.Background(), "bakery", GenerateOptions{})
	if err == nil {
		t.Fatal("Expected bundle to fail when one request fails")
	}
	var blocked *ai.BlockedError
	if !errors.As(err, &blocked) {
		t.Errorf("Typed error lost in wrapping: %v", err)
	}

	items, _ := e.History()
	if len(items) != 0 {
		t.Errorf("Partial failure must not record history, got %d items", len(items))
	}
}

func TestGenerateSeoBundleValidation(t *testing.T) {
	client := &fakeClient{responses: seoResponses()}
	e := newTestEngine(t, client)

	if _, err := e.GenerateSeoBundle(context.Background(), "", GenerateOptions{}); err == nil {
		t.Error("Empty description accepted")
	}
	long := strings.Repeat("x", 5001)
	if _, err := e.GenerateSeoBundle(context.Background(), long, GenerateOptions{}); err == nil {
		t.Error("Oversized description accepted")
	}
	if _, err := e.GenerateSeoBundle(context.Background(), "ok", GenerateOptions{Competitors: strings.Repeat("c", 2001)}); err == nil {
		t.Error("Oversized competitors accepted")
	}
	if len(client.calls) != 0 {
		t.Errorf("Validation failures must not reach the gateway, got %d calls", len(client.calls))
	}
}

func TestGenerateContentBrief(t *testing.T) {
	client := &fakeClient{responses: map[string]string{
		"content brief": `{"searchIntent": "Informational", "suggestedTitle": "T", "metaDescription": "M", "serpAnalysis": "S", "keyTopics": ["a"], "questionsToAnswer": ["q"], "suggestedOutline": [{"heading": "H2", "children": [{"heading": "H3"}]}], "targetWordCount": "1500", "linkingSuggestions": "L"}`,
	}}
	e := newTestEngine(t, client)

	brief, err := e.GenerateContentBrief(context.Background(), "best sourdough", GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateContentBrief failed: %v", err)
	}
	if brief.SearchIntent != "Informational" || len(brief.SuggestedOutline) != 1 {
		t.Errorf("Brief not decoded: %+v", brief)
	}
	if brief.SuggestedOutline[0].Children[0].Heading != "H3" {
		t.Error("Nested outline not decoded")
	}

	items, _ := e.History()
	if len(items) != 1 || items[0].Platform != PlatformContentBrief {
		t.Errorf("Brief history wrong: %+v", items)
	}
}

func TestGenerateContentBriefKeywordCap(t *testing.T) {
	e := newTestEngine(t, &fakeClient{})
	if _, err := e.GenerateContentBrief(context.Background(), strings.Repeat("k", 201), GenerateOptions{}); err == nil {
		t.Error("Oversized target keyword accepted")
	}
}

func TestGenerateMapsKeywords(t *testing.T) {
	client := &fakeClient{responses: map[string]string{
		"local SEO expert": `{"keywords": [{"keyword": "bakery near me", "searchVolume": "High", "trendingRank": 1, "userIntent": "Local Transactional", "competition": "Low", "cpc": "$0.20"}]}`,
	}}
	e := newTestEngine(t, client)

	res, err := e.GenerateMapsKeywords(context.Background(), "bakery", LatLng{Latitude: 38.7, Longitude: -9.1}, GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateMapsKeywords failed: %v", err)
	}
	if len(res.Keywords) != 1 || res.Keywords[0].Keyword != "bakery near me" {
		t.Errorf("Keywords not decoded: %+v", res.Keywords)
	}
	if len(res.Citations) != 1 {
		t.Errorf("Citations not carried through: %+v", res.Citations)
	}

	items, _ := e.History()
	if len(items) != 1 || items[0].Platform != PlatformMapsSEO || items[0].Icon != "📍" {
		t.Errorf("Maps history wrong: %+v", items)
	}
}

func TestGenerateSocialPlatforms(t *testing.T) {
	client := &fakeClient{responses: map[string]string{
		"LinkedIn marketing expert":       `{"hashtags": [{"keyword": "#Leadership", "searchVolume": "High", "trendingRank": 2, "userIntent": "Informational", "competition": "High", "cpc": "$1"}]}`,
		"Instagram marketing specialist":  `{"Post Caption": ["Golden hour at the bakery ✨"], "hashtags": []}`,
		"Facebook marketing expert":       `{"Post Text": ["Come taste our new sourdough!"], "hashtags": [], "Call to Action Suggestions": ["Shop Now", "Comment below", "Share this"]}`,
	}}
	e := newTestEngine(t, client)
	ctx := context.Background()

	li, err := e.GenerateLinkedIn(ctx, "we are hiring", GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateLinkedIn failed: %v", err)
	}
	if len(li.Hashtags) != 1 || li.Hashtags[0].Keyword != "#Leadership" {
		t.Errorf("LinkedIn hashtags wrong: %+v", li.Hashtags)
	}

	ig, err := e.GenerateInstagram(ctx, "sunset photo", GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateInstagram failed: %v", err)
	}
	if len(ig.Caption) != 1 {
		t.Errorf("Instagram caption wrong: %+v", ig.Caption)
	}

	fb, err := e.GenerateFacebook(ctx, "new product", GenerateOptions{})
	if err != nil {
		t.Fatalf("GenerateFacebook failed: %v", err)
	}
	if len(fb.Caption) != 1 || fb.Caption[0] != "Come taste our new sourdough!" {
		t.Errorf("Facebook post text should map to caption: %+v", fb.Caption)
	}
	if len(fb.CallToActions) != 3 {
		t.Errorf("Facebook CTAs wrong: %+v", fb.CallToActions)
	}

	items, _ := e.History()
	if len(items) != 3 {
		t.Fatalf("Expected 3 history items, got %d", len(items))
	}
	// Newest first
	if items[0].Platform != PlatformFacebook || items[2].Platform != PlatformLinkedIn {
		t.Errorf("History order wrong: %s ... %s", items[0].Platform, items[2].Platform)
	}
}

func TestAnnotateDensity(t *testing.T) {
	e := newTestEngine(t, &fakeClient{})
	keywords := []KeywordSuggestion{{Keyword: "go"}, {Keyword: "rust"}}

	annotated, err := e.AnnotateDensity("go go stop stop stop", keywords)
	if err != nil {
		t.Fatalf("AnnotateDensity failed: %v", err)
	}
	if annotated[0].Density != 40 {
		t.Errorf("Expected density 40, got %v", annotated[0].Density)
	}
	if annotated[1].Density != 0 {
		t.Errorf("Expected density 0 for absent keyword, got %v", annotated[1].Density)
	}
	// Input slice untouched
	if keywords[0].Density != 0 {
		t.Error("AnnotateDensity mutated its input")
	}
}

func TestCalendarPassthroughs(t *testing.T) {
	e := newTestEngine(t, &fakeClient{})

	post, err := e.SchedulePost(ScheduledPost{Title: "launch", Platform: PlatformInstagram, ScheduledAt: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("SchedulePost failed: %v", err)
	}

	moved := time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC)
	if err := e.Reschedule(post.ID, PostPatch{ScheduledAt: &moved}); err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}

	posts, _ := e.ScheduledPosts()
	if len(posts) != 1 || !posts[0].ScheduledAt.Equal(moved) {
		t.Errorf("Reschedule not applied: %+v", posts)
	}

	if err := e.UnschedulePost(post.ID); err != nil {
		t.Fatalf("UnschedulePost failed: %v", err)
	}
	posts, _ = e.ScheduledPosts()
	if len(posts) != 0 {
		t.Errorf("Post not removed: %+v", posts)
	}
}

func TestRelatedHistoryWithoutEmbedder(t *testing.T) {
	e := newTestEngine(t, &fakeClient{})
	if _, err := e.RelatedHistory(context.Background(), "query", 5); err == nil {
		t.Fatal("Expected error without an embeddings provider")
	}
}
