// Package copysmith generates SEO and social-media marketing assets with an
// LLM and keeps the resulting calendar, history, and device-access state in
// local storage.
package copysmith

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matthewjhunter/copysmith/internal/ai"
	"github.com/matthewjhunter/copysmith/internal/density"
	"github.com/matthewjhunter/copysmith/internal/prompt"
	"github.com/matthewjhunter/copysmith/internal/storage"
)

// Engine is the public API for asset generation and the stores behind it.
type Engine struct {
	kv       storage.KV
	client   ai.Client
	calendar *storage.CalendarStore
	history  *storage.HistoryStore
	creds    *storage.CredentialStore
	matcher  *ai.RelatedMatcher
	config   EngineConfig

	closer func() error
}

// NewEngine creates an engine backed by the given SQLite database and the
// configured generation provider.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = "./copysmith.db"
	}
	if cfg.Provider == "" {
		cfg.Provider = "gemini"
	}
	if cfg.Language == "" {
		cfg.Language = "English"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.GeminiBaseURL == "" {
		cfg.GeminiBaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.GeminiKeyEnv == "" {
		cfg.GeminiKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.OllamaBaseURL == "" {
		cfg.OllamaBaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Limits == (Limits{}) {
		cfg.Limits = Limits{
			Description:   5000,
			PageContent:   20000,
			Competitors:   2000,
			AnalysisText:  20000,
			TargetKeyword: 200,
			AttachmentMB:  499,
		}
	}

	kv, err := storage.NewSQLiteKV(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	var client ai.Client
	switch cfg.Provider {
	case "gemini":
		client, err = ai.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiKeyEnv, cfg.Model, cfg.Temperature)
	case "ollama":
		client, err = ai.NewOllamaClient(cfg.OllamaBaseURL, cfg.Model, cfg.Temperature)
	default:
		err = fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
	}

	creds, err := storage.NewCredentialStore(kv, cfg.AdminsPath)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("create credential store: %w", err)
	}

	e := newEngineWith(kv, client, creds, cfg)
	e.closer = kv.Close
	return e, nil
}

func newEngineWith(kv storage.KV, client ai.Client, creds *storage.CredentialStore, cfg EngineConfig) *Engine {
	return &Engine{
		kv:       kv,
		client:   client,
		calendar: storage.NewCalendarStore(kv),
		history:  storage.NewHistoryStore(kv),
		creds:    creds,
		config:   cfg,
	}
}

// UseEmbedder enables related-history lookup with the given embedder.
func (e *Engine) UseEmbedder(embBaseURL, embModel string) error {
	embedder, err := ai.NewOllamaEmbedder(embBaseURL, embModel)
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}
	e.matcher = ai.NewRelatedMatcher(embedder)
	return nil
}

// Close releases the underlying database.
func (e *Engine) Close() error {
	if e.closer != nil {
		return e.closer()
	}
	return nil
}

func (e *Engine) options(opts GenerateOptions) prompt.Options {
	lang := opts.Language
	if lang == "" {
		lang = e.config.Language
	}
	return prompt.Options{
		Language:    lang,
		Competitors: strings.TrimSpace(opts.Competitors),
		PageContent: opts.PageContent,
		Category:    opts.Category,
		Attachment:  opts.Attachment,
	}
}

func (e *Engine) validate(name, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	if max > 0 && len(value) > max {
		return fmt.Errorf("%s exceeds %d characters", name, max)
	}
	return nil
}

func (e *Engine) validateCommon(opts GenerateOptions) error {
	if len(opts.Competitors) > e.config.Limits.Competitors {
		return fmt.Errorf("competitors exceeds %d characters", e.config.Limits.Competitors)
	}
	if opts.Attachment != nil {
		limit := int64(e.config.Limits.AttachmentMB) * 1024 * 1024
		size := int64(base64.StdEncoding.DecodedLen(len(opts.Attachment.Data)))
		if size > limit {
			return fmt.Errorf("attachment exceeds %d MB", e.config.Limits.AttachmentMB)
		}
	}
	return nil
}

func (e *Engine) record(platform, input string, payload any) {
	result, err := json.Marshal(payload)
	if err != nil {
		log.Printf("copysmith: encode history payload: %v", err)
		return
	}
	if _, err := e.history.Record(storage.HistoryItem{
		Platform: platform,
		Icon:     PlatformIcon(platform),
		Input:    input,
		Result:   result,
	}); err != nil {
		log.Printf("copysmith: record history: %v", err)
	}
}

func decodeInto(res *ai.Result, out any) error {
	if err := json.Unmarshal([]byte(res.Raw), out); err != nil {
		return &ai.MalformedError{Raw: res.Raw}
	}
	return nil
}

// GenerateSeoBundle produces keywords, meta descriptions, and schema markup
// for each non-empty line of the description input (or the whole text in
// page-content mode). The three requests per line run concurrently and fail
// together; history gets one entry per fully successful bundle.
func (e *Engine) GenerateSeoBundle(ctx context.Context, input string, opts GenerateOptions) ([]SeoBundle, error) {
	limit := e.config.Limits.Description
	name := "description"
	if opts.PageContent {
		limit = e.config.Limits.PageContent
		name = "page content"
	}
	if err := e.validate(name, input, limit); err != nil {
		return nil, err
	}
	if err := e.validateCommon(opts); err != nil {
		return nil, err
	}

	inputs := []string{strings.TrimSpace(input)}
	if !opts.PageContent {
		inputs = nil
		for _, line := range strings.Split(input, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				inputs = append(inputs, line)
			}
		}
	}

	var bundles []SeoBundle
	for _, in := range inputs {
		bundle, err := e.generateOneBundle(ctx, in, opts)
		if err != nil {
			return nil, err
		}
		e.record(PlatformWebsiteSEO, in, bundle)
		bundles = append(bundles, *bundle)
	}
	return bundles, nil
}

func (e *Engine) generateOneBundle(ctx context.Context, input string, opts GenerateOptions) (*SeoBundle, error) {
	popts := e.options(opts)
	bundle := &SeoBundle{Input: input}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := e.client.Generate(gctx, prompt.SeoKeywords(input, popts))
		if err != nil {
			return fmt.Errorf("keywords: %w", err)
		}
		var payload struct {
			Keywords []KeywordSuggestion `json:"keywords"`
		}
		if err := decodeInto(res, &payload); err != nil {
			return fmt.Errorf("keywords: %w", err)
		}
		bundle.Keywords = payload.Keywords
		return nil
	})

	g.Go(func() error {
		res, err := e.client.Generate(gctx, prompt.MetaDescriptions(input, popts))
		if err != nil {
			return fmt.Errorf("meta descriptions: %w", err)
		}
		var payload struct {
			MetaDescriptions []string `json:"metaDescriptions"`
		}
		if err := decodeInto(res, &payload); err != nil {
			return fmt.Errorf("meta descriptions: %w", err)
		}
		bundle.MetaDescriptions = payload.MetaDescriptions
		return nil
	})

	g.Go(func() error {
		res, err := e.client.Generate(gctx, prompt.SchemaMarkup(input, popts))
		if err != nil {
			return fmt.Errorf("schema markup: %w", err)
		}
		var payload struct {
			SchemaType string `json:"schemaType"`
			JSONLD     string `json:"jsonLd"`
		}
		if err := decodeInto(res, &payload); err != nil {
			return fmt.Errorf("schema markup: %w", err)
		}
		bundle.SchemaType = payload.SchemaType
		bundle.JSONLD = payload.JSONLD
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// GenerateContentBrief builds a SERP-analysis brief for a target keyword.
func (e *Engine) GenerateContentBrief(ctx context.Context, keyword string, opts GenerateOptions) (*ContentBrief, error) {
	if err := e.validate("target keyword", keyword, e.config.Limits.TargetKeyword); err != nil {
		return nil, err
	}
	if err := e.validateCommon(opts); err != nil {
		return nil, err
	}

	res, err := e.client.Generate(ctx, prompt.ContentBrief(keyword, e.options(opts)))
	if err != nil {
		return nil, err
	}
	var brief ContentBrief
	if err := decodeInto(res, &brief); err != nil {
		return nil, err
	}
	e.record(PlatformContentBrief, keyword, &brief)
	return &brief, nil
}

// GenerateMapsKeywords produces location-grounded local-SEO keywords with
// their sources.
func (e *Engine) GenerateMapsKeywords(ctx context.Context, input string, location LatLng, opts GenerateOptions) (*MapsResult, error) {
	if err := e.validate("description", input, e.config.Limits.Description); err != nil {
		return nil, err
	}
	if err := e.validateCommon(opts); err != nil {
		return nil, err
	}

	res, err := e.client.Generate(ctx, prompt.MapsKeywords(input, location, e.options(opts)))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Keywords []KeywordSuggestion `json:"keywords"`
	}
	if err := decodeInto(res, &payload); err != nil {
		return nil, err
	}

	result := &MapsResult{Keywords: payload.Keywords, Citations: res.Citations}
	e.record(PlatformMapsSEO, input, result)
	return result, nil
}

// GenerateYouTube produces tags, keywords, a description, titles, and
// category suggestions for a video.
func (e *Engine) GenerateYouTube(ctx context.Context, videoInfo string, opts GenerateOptions) (*YouTubeContent, error) {
	if err := e.validate("video description", videoInfo, e.config.Limits.Description); err != nil {
		return nil, err
	}
	if err := e.validateCommon(opts); err != nil {
		return nil, err
	}

	res, err := e.client.Generate(ctx, prompt.YouTube(videoInfo, e.options(opts)))
	if err != nil {
		return nil, err
	}
	var content YouTubeContent
	if err := decodeInto(res, &content); err != nil {
		return nil, err
	}
	e.record(PlatformYouTube, videoInfo, &content)
	return &content, nil
}

// GenerateLinkedIn produces professional hashtags for a post.
func (e *Engine) GenerateLinkedIn(ctx context.Context, postInfo string, opts GenerateOptions) (*SocialContent, error) {
	return e.generateSocial(ctx, PlatformLinkedIn, postInfo, opts)
}

// GenerateInstagram produces a caption and hashtags for a post.
func (e *Engine) GenerateInstagram(ctx context.Context, postInfo string, opts GenerateOptions) (*SocialContent, error) {
	return e.generateSocial(ctx, PlatformInstagram, postInfo, opts)
}

// GenerateFacebook produces post text, hashtags, and call-to-action
// suggestions.
func (e *Engine) GenerateFacebook(ctx context.Context, postInfo string, opts GenerateOptions) (*SocialContent, error) {
	return e.generateSocial(ctx, PlatformFacebook, postInfo, opts)
}

func (e *Engine) generateSocial(ctx context.Context, platform, postInfo string, opts GenerateOptions) (*SocialContent, error) {
	if err := e.validate("post description", postInfo, e.config.Limits.Description); err != nil {
		return nil, err
	}
	if err := e.validateCommon(opts); err != nil {
		return nil, err
	}

	popts := e.options(opts)
	var req prompt.Request
	switch platform {
	case PlatformLinkedIn:
		req = prompt.LinkedIn(postInfo, popts)
	case PlatformInstagram:
		req = prompt.Instagram(postInfo, popts)
	case PlatformFacebook:
		req = prompt.Facebook(postInfo, popts)
	default:
		return nil, fmt.Errorf("unknown social platform %q", platform)
	}

	res, err := e.client.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	var payload struct {
		PostCaption   []string            `json:"Post Caption"`
		PostText      []string            `json:"Post Text"`
		Hashtags      []KeywordSuggestion `json:"hashtags"`
		CallToActions []string            `json:"Call to Action Suggestions"`
	}
	if err := decodeInto(res, &payload); err != nil {
		return nil, err
	}

	content := &SocialContent{
		Caption:       payload.PostCaption,
		Hashtags:      payload.Hashtags,
		CallToActions: payload.CallToActions,
	}
	if content.Caption == nil {
		content.Caption = payload.PostText
	}
	e.record(platform, postInfo, content)
	return content, nil
}

// AnnotateDensity fills the Density field of each keyword against the given
// analysis text.
func (e *Engine) AnnotateDensity(analysisText string, keywords []KeywordSuggestion) ([]KeywordSuggestion, error) {
	if err := e.validate("analysis text", analysisText, e.config.Limits.AnalysisText); err != nil {
		return nil, err
	}

	annotated := make([]KeywordSuggestion, len(keywords))
	for i, k := range keywords {
		k.Density = density.Percentage(analysisText, k.Keyword)
		annotated[i] = k
	}
	return annotated, nil
}

// SchedulePost adds a post to the content calendar.
func (e *Engine) SchedulePost(post ScheduledPost) (*ScheduledPost, error) {
	return e.calendar.Add(post)
}

// Reschedule applies a partial update to a scheduled post.
func (e *Engine) Reschedule(id string, patch PostPatch) error {
	return e.calendar.Update(id, patch)
}

// UnschedulePost removes a post from the calendar.
func (e *Engine) UnschedulePost(id string) error {
	return e.calendar.Delete(id)
}

// ScheduledPosts lists the calendar in chronological order.
func (e *Engine) ScheduledPosts() ([]ScheduledPost, error) {
	return e.calendar.List()
}

// DuePosts lists posts scheduled at or before now.
func (e *Engine) DuePosts(now time.Time) ([]ScheduledPost, error) {
	return e.calendar.Due(now)
}

// History lists recorded generations newest-first.
func (e *Engine) History() ([]HistoryItem, error) {
	return e.history.List()
}

// ClearHistory removes all recorded generations.
func (e *Engine) ClearHistory() error {
	return e.history.Clear()
}

// RelatedHistory returns up to limit history items whose inputs are
// semantically closest to the query. Requires UseEmbedder.
func (e *Engine) RelatedHistory(ctx context.Context, query string, limit int) ([]HistoryItem, error) {
	if e.matcher == nil {
		return nil, fmt.Errorf("related-history lookup requires an embeddings provider")
	}

	items, err := e.history.List()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(items))
	for i, it := range items {
		inputs[i] = it.Input
	}

	matches, err := e.matcher.Rank(ctx, query, inputs)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > len(matches) {
		limit = len(matches)
	}
	related := make([]HistoryItem, 0, limit)
	for _, m := range matches[:limit] {
		related = append(related, items[m.Index])
	}
	return related, nil
}

// ValidateCredentials checks an admin username/password pair.
func (e *Engine) ValidateCredentials(username, password string) bool {
	return e.creds.ValidateCredentials(username, password)
}

// CheckSession reports whether an admin session is active.
func (e *Engine) CheckSession() bool { return e.creds.CheckSession() }

// Login opens an admin session; with remember it survives restarts.
func (e *Engine) Login(remember bool) error { return e.creds.Login(remember) }

// Logout ends any admin session.
func (e *Engine) Logout() error { return e.creds.Logout() }

// ManagedUsers lists devices with access.
func (e *Engine) ManagedUsers() []ManagedUser { return e.creds.ManagedUsers() }

// IssueKeyForDevice grants (or replaces) access for a device.
func (e *Engine) IssueKeyForDevice(deviceID string) (string, error) {
	return e.creds.IssueKeyForDevice(deviceID)
}

// IssueCustomKeyForDevice stores a caller-supplied key verbatim.
func (e *Engine) IssueCustomKeyForDevice(deviceID, accessKey string) error {
	return e.creds.IssueCustomKeyForDevice(deviceID, accessKey)
}

// RevokeAccessForDevice removes a device's access.
func (e *Engine) RevokeAccessForDevice(deviceID string) error {
	return e.creds.RevokeAccessForDevice(deviceID)
}

// CycleMasterSecret invalidates every issued key.
func (e *Engine) CycleMasterSecret() error { return e.creds.CycleMasterSecret() }
