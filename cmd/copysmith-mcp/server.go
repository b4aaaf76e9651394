package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	copysmith "github.com/matthewjhunter/copysmith"
)

// JSON-RPC 2.0 types

type jsonRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// generateTimeout bounds a single model call made on behalf of a tool.
const generateTimeout = 2 * time.Minute

// server is the copysmith MCP server.
type server struct {
	engine *copysmith.Engine
}

func newServer(engine *copysmith.Engine) *server {
	return &server{engine: engine}
}

// run starts the MCP server, reading from stdin and writing to stdout.
func (s *server) run() error {
	log.SetOutput(os.Stderr)
	log.Printf("copysmith-mcp starting")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()

		var req jsonRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("invalid json-rpc: %v", err)
			continue
		}

		// Notifications have no ID — don't respond
		if req.ID == nil || string(req.ID) == "null" {
			log.Printf("notification: %s", req.Method)
			continue
		}

		resp := s.handleRequest(req)
		respBytes, _ := json.Marshal(resp)
		fmt.Fprintf(os.Stdout, "%s\n", respBytes)
	}

	return scanner.Err()
}

func (s *server) handleRequest(req jsonRPCRequest) jsonRPCResponse {
	resp := jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
	}

	switch req.Method {
	case "initialize":
		resp.Result = map[string]any{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    "copysmith",
				"version": "0.1.0",
			},
		}
	case "tools/list":
		resp.Result = s.handleToolsList()
	case "tools/call":
		resp.Result = s.handleToolsCall(req.Params)
	case "ping":
		resp.Result = map[string]any{}
	default:
		resp.Error = &rpcError{
			Code:    -32601,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}

	return resp
}

func (s *server) handleToolsList() any {
	languageProp := map[string]any{
		"type":        "string",
		"description": "Output language for the generated text. If omitted, uses the configured default.",
	}

	return map[string]any{
		"tools": []map[string]any{
			{
				"name":        "generate_seo",
				"description": "Generate SEO keywords, meta descriptions, and schema markup for a business or website. Each non-empty input line gets its own result bundle.",
				"inputSchema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"input": map[string]any{
							"type":        "string",
							"description": "Business description, or full page text when page_content is true",
						},
						"competitors": map[string]any{
							"type":        "string",
							"description": "Optional competitor names or descriptions for a competitive analysis variant",
						},
						"page_content": map[string]any{
							"type":        "boolean",
							"description": "Treat input as full page content rather than a short description",
						},
						"language": languageProp,
					},
					"required": []string{"input"},
				},
			},
			{
				"name":        "generate_brief",
				"description": "Generate a content brief for a target keyword: search intent, title, meta description, SERP analysis, topics, questions, outline, and word count.",
				"inputSchema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"keyword": map[string]any{
							"type":        "string",
							"description": "The target keyword to build the brief around",
						},
						"competitors": map[string]any{
							"type":        "string",
							"description": "Optional competitor names for a competitive angle",
						},
						"language": languageProp,
					},
					"required": []string{"keyword"},
				},
			},
			{
				"name":        "generate_maps",
				"description": "Generate location-grounded local-SEO keywords with source citations. Requires latitude and longitude.",
				"inputSchema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"input": map[string]any{
							"type":        "string",
							"description": "Business description",
						},
						"latitude": map[string]any{
							"type":        "number",
							"description": "Latitude of the business location",
						},
						"longitude": map[string]any{
							"type":        "number",
							"description": "Longitude of the business location",
						},
						"language": languageProp,
					},
					"required": []string{"input", "latitude", "longitude"},
				},
			},
			{
				"name":        "generate_youtube",
				"description": "Generate video tags, description keywords, a video description, title suggestions, and category suggestions for a YouTube video.",
				"inputSchema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"input": map[string]any{
							"type":        "string",
							"description": "Video description or topic",
						},
						"category": map[string]any{
							"type":        "string",
							"description": "Optional video category to tailor suggestions",
						},
						"language": languageProp,
					},
					"required": []string{"input"},
				},
			},
			{
				"name":        "generate_social",
				"description": "Generate social-media copy for a post: captions and hashtags (plus call-to-action suggestions on Facebook). Platform is one of linkedin, instagram, facebook.",
				"inputSchema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"platform": map[string]any{
							"type":        "string",
							"description": "Target platform",
							"enum":        []string{"linkedin", "instagram", "facebook"},
						},
						"input": map[string]any{
							"type":        "string",
							"description": "Post description or topic",
						},
						"language": languageProp,
					},
					"required": []string{"platform", "input"},
				},
			},
			{
				"name":        "keyword_density",
				"description": "Compute the density percentage of each keyword within a body of text. Matching is case-insensitive on whole words.",
				"inputSchema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{
							"type":        "string",
							"description": "The text to analyze",
						},
						"keywords": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Keywords to measure",
						},
					},
					"required": []string{"text", "keywords"},
				},
			},
			{
				"name":        "history_list",
				"description": "List recorded generations newest-first: platform, input, and result payload.",
				"inputSchema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"limit": map[string]any{
							"type":        "integer",
							"description": "Maximum number of items to return (default 20)",
						},
					},
				},
			},
			{
				"name":        "history_related",
				"description": "Find past generations whose inputs are semantically closest to a query. Requires an embeddings provider.",
				"inputSchema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "Text to match against past inputs",
						},
						"limit": map[string]any{
							"type":        "integer",
							"description": "Maximum number of items to return (default 5)",
						},
					},
					"required": []string{"query"},
				},
			},
			{
				"name":        "history_clear",
				"description": "Delete all recorded generations.",
				"inputSchema": map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
			{
				"name":        "calendar_list",
				"description": "List scheduled posts in chronological order.",
				"inputSchema": map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
			{
				"name":        "calendar_add",
				"description": "Schedule a post on the content calendar.",
				"inputSchema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Post title",
						},
						"content": map[string]any{
							"type":        "string",
							"description": "The prepared copy for the post",
						},
						"platform": map[string]any{
							"type":        "string",
							"description": "Target platform label",
						},
						"scheduled_at": map[string]any{
							"type":        "string",
							"description": "Publication time, RFC 3339 (e.g. 2026-09-14T10:00:00Z)",
						},
						"notes": map[string]any{
							"type":        "string",
							"description": "Optional notes",
						},
					},
					"required": []string{"title", "scheduled_at"},
				},
			},
			{
				"name":        "calendar_delete",
				"description": "Remove a scheduled post by ID. Use calendar_list to find the ID.",
				"inputSchema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "The scheduled post ID",
						},
					},
					"required": []string{"id"},
				},
			},
			{
				"name":        "calendar_due",
				"description": "List scheduled posts whose publication time has arrived. Use this to remind the user what should go out now.",
				"inputSchema": map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
		},
	}
}

func (s *server) handleToolsCall(params json.RawMessage) any {
	var call struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}

	if err := json.Unmarshal(params, &call); err != nil {
		return mcpError("invalid tool call: %v", err)
	}

	switch call.Name {
	case "generate_seo":
		return s.handleGenerateSeo(call.Arguments)
	case "generate_brief":
		return s.handleGenerateBrief(call.Arguments)
	case "generate_maps":
		return s.handleGenerateMaps(call.Arguments)
	case "generate_youtube":
		return s.handleGenerateYouTube(call.Arguments)
	case "generate_social":
		return s.handleGenerateSocial(call.Arguments)
	case "keyword_density":
		return s.handleKeywordDensity(call.Arguments)
	case "history_list":
		return s.handleHistoryList(call.Arguments)
	case "history_related":
		return s.handleHistoryRelated(call.Arguments)
	case "history_clear":
		return s.handleHistoryClear()
	case "calendar_list":
		return s.handleCalendarList()
	case "calendar_add":
		return s.handleCalendarAdd(call.Arguments)
	case "calendar_delete":
		return s.handleCalendarDelete(call.Arguments)
	case "calendar_due":
		return s.handleCalendarDue()
	default:
		return mcpError("unknown tool: %s", call.Name)
	}
}

// --- tool handlers ---

func (s *server) handleGenerateSeo(args json.RawMessage) any {
	var params struct {
		Input       string `json:"input"`
		Competitors string `json:"competitors"`
		PageContent bool   `json:"page_content"`
		Language    string `json:"language"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return mcpError("invalid arguments: %v", err)
	}
	if params.Input == "" {
		return mcpError("input parameter is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	bundles, err := s.engine.GenerateSeoBundle(ctx, params.Input, copysmith.GenerateOptions{
		Language:    params.Language,
		Competitors: params.Competitors,
		PageContent: params.PageContent,
	})
	if err != nil {
		return mcpError("%v", err)
	}

	log.Printf("generate_seo: %d bundles", len(bundles))
	return mcpJSON(bundles)
}

func (s *server) handleGenerateBrief(args json.RawMessage) any {
	var params struct {
		Keyword     string `json:"keyword"`
		Competitors string `json:"competitors"`
		Language    string `json:"language"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return mcpError("invalid arguments: %v", err)
	}
	if params.Keyword == "" {
		return mcpError("keyword parameter is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	brief, err := s.engine.GenerateContentBrief(ctx, params.Keyword, copysmith.GenerateOptions{
		Language:    params.Language,
		Competitors: params.Competitors,
	})
	if err != nil {
		return mcpError("%v", err)
	}

	log.Printf("generate_brief: keyword=%q", params.Keyword)
	return mcpJSON(brief)
}

func (s *server) handleGenerateMaps(args json.RawMessage) any {
	var params struct {
		Input     string   `json:"input"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Language  string   `json:"language"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return mcpError("invalid arguments: %v", err)
	}
	if params.Input == "" {
		return mcpError("input parameter is required")
	}
	if params.Latitude == nil || params.Longitude == nil {
		return mcpError("latitude and longitude parameters are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	result, err := s.engine.GenerateMapsKeywords(ctx, params.Input, copysmith.LatLng{
		Latitude:  *params.Latitude,
		Longitude: *params.Longitude,
	}, copysmith.GenerateOptions{Language: params.Language})
	if err != nil {
		return mcpError("%v", err)
	}

	log.Printf("generate_maps: %d keywords, %d citations", len(result.Keywords), len(result.Citations))
	return mcpJSON(result)
}

func (s *server) handleGenerateYouTube(args json.RawMessage) any {
	var params struct {
		Input    string `json:"input"`
		Category string `json:"category"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return mcpError("invalid arguments: %v", err)
	}
	if params.Input == "" {
		return mcpError("input parameter is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	content, err := s.engine.GenerateYouTube(ctx, params.Input, copysmith.GenerateOptions{
		Language: params.Language,
		Category: params.Category,
	})
	if err != nil {
		return mcpError("%v", err)
	}

	log.Printf("generate_youtube: %d tags", len(content.VideoTags))
	return mcpJSON(content)
}

func (s *server) handleGenerateSocial(args json.RawMessage) any {
	var params struct {
		Platform string `json:"platform"`
		Input    string `json:"input"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return mcpError("invalid arguments: %v", err)
	}
	if params.Input == "" {
		return mcpError("input parameter is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	opts := copysmith.GenerateOptions{Language: params.Language}
	var content *copysmith.SocialContent
	var err error
	switch params.Platform {
	case "linkedin":
		content, err = s.engine.GenerateLinkedIn(ctx, params.Input, opts)
	case "instagram":
		content, err = s.engine.GenerateInstagram(ctx, params.Input, opts)
	case "facebook":
		content, err = s.engine.GenerateFacebook(ctx, params.Input, opts)
	default:
		return mcpError("platform must be one of linkedin, instagram, facebook")
	}
	if err != nil {
		return mcpError("%v", err)
	}

	log.Printf("generate_social: platform=%s %d hashtags", params.Platform, len(content.Hashtags))
	return mcpJSON(content)
}

func (s *server) handleKeywordDensity(args json.RawMessage) any {
	var params struct {
		Text     string   `json:"text"`
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return mcpError("invalid arguments: %v", err)
	}
	if params.Text == "" {
		return mcpError("text parameter is required")
	}
	if len(params.Keywords) == 0 {
		return mcpError("keywords parameter is required")
	}

	suggestions := make([]copysmith.KeywordSuggestion, len(params.Keywords))
	for i, k := range params.Keywords {
		suggestions[i] = copysmith.KeywordSuggestion{Keyword: k}
	}
	annotated, err := s.engine.AnnotateDensity(params.Text, suggestions)
	if err != nil {
		return mcpError("%v", err)
	}

	type densityResult struct {
		Keyword string  `json:"keyword"`
		Density float64 `json:"density"`
	}
	result := make([]densityResult, len(annotated))
	for i, k := range annotated {
		result[i] = densityResult{Keyword: k.Keyword, Density: k.Density}
	}
	log.Printf("keyword_density: %d keywords", len(result))
	return mcpJSON(result)
}

func (s *server) handleHistoryList(args json.RawMessage) any {
	var params struct {
		Limit int `json:"limit"`
	}
	json.Unmarshal(args, &params)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	items, err := s.engine.History()
	if err != nil {
		return mcpError("%v", err)
	}
	if len(items) > limit {
		items = items[:limit]
	}

	log.Printf("history_list: limit=%d -> %d results", limit, len(items))
	return mcpJSON(items)
}

func (s *server) handleHistoryRelated(args json.RawMessage) any {
	var params struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return mcpError("invalid arguments: %v", err)
	}
	if params.Query == "" {
		return mcpError("query parameter is required")
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 5
	}

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	items, err := s.engine.RelatedHistory(ctx, params.Query, limit)
	if err != nil {
		return mcpError("%v", err)
	}

	log.Printf("history_related: query=%q -> %d results", params.Query, len(items))
	return mcpJSON(items)
}

func (s *server) handleHistoryClear() any {
	if err := s.engine.ClearHistory(); err != nil {
		return mcpError("%v", err)
	}

	log.Printf("history_clear")
	return mcpText("History cleared.")
}

func (s *server) handleCalendarList() any {
	posts, err := s.engine.ScheduledPosts()
	if err != nil {
		return mcpError("%v", err)
	}

	log.Printf("calendar_list: %d posts", len(posts))
	return mcpJSON(posts)
}

func (s *server) handleCalendarAdd(args json.RawMessage) any {
	var params struct {
		Title       string `json:"title"`
		Content     string `json:"content"`
		Platform    string `json:"platform"`
		ScheduledAt string `json:"scheduled_at"`
		Notes       string `json:"notes"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return mcpError("invalid arguments: %v", err)
	}
	if params.Title == "" {
		return mcpError("title parameter is required")
	}
	if params.ScheduledAt == "" {
		return mcpError("scheduled_at parameter is required")
	}

	at, err := time.Parse(time.RFC3339, params.ScheduledAt)
	if err != nil {
		return mcpError("invalid scheduled_at: %v", err)
	}

	post, err := s.engine.SchedulePost(copysmith.ScheduledPost{
		Title:       params.Title,
		Content:     params.Content,
		Platform:    params.Platform,
		ScheduledAt: at,
		Notes:       params.Notes,
	})
	if err != nil {
		return mcpError("%v", err)
	}

	log.Printf("calendar_add: id=%s at=%s", post.ID, at.Format(time.RFC3339))
	return mcpJSON(post)
}

func (s *server) handleCalendarDelete(args json.RawMessage) any {
	var params struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return mcpError("invalid arguments: %v", err)
	}
	if params.ID == "" {
		return mcpError("id parameter is required")
	}

	if err := s.engine.UnschedulePost(params.ID); err != nil {
		return mcpError("%v", err)
	}

	log.Printf("calendar_delete: id=%s", params.ID)
	return mcpText("Post %s removed from the calendar.", params.ID)
}

func (s *server) handleCalendarDue() any {
	posts, err := s.engine.DuePosts(time.Now())
	if err != nil {
		return mcpError("%v", err)
	}

	log.Printf("calendar_due: %d posts", len(posts))
	return mcpJSON(posts)
}

// --- MCP response helpers ---

func mcpText(format string, args ...any) any {
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": fmt.Sprintf(format, args...)},
		},
	}
}

func mcpJSON(data any) any {
	b, err := json.Marshal(data)
	if err != nil {
		return mcpError("marshal response: %v", err)
	}
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(b)},
		},
	}
}

func mcpError(format string, args ...any) any {
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": fmt.Sprintf("Error: "+format, args...)},
		},
		"isError": true,
	}
}
