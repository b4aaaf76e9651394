package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	copysmith "github.com/matthewjhunter/copysmith"
	"github.com/matthewjhunter/copysmith/internal/ai"
)

type handlers struct {
	engine   *copysmith.Engine
	sessions *sessions
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("copysmith-web: encode response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// generateStatus maps generation failures to response codes. Content blocks
// get 422, broken model output gets 502, input validation gets 400.
func generateStatus(err error) int {
	var blocked *ai.BlockedError
	var malformed *ai.MalformedError
	switch {
	case errors.As(err, &blocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ai.ErrEmptyResponse), errors.As(err, &malformed):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

type generateRequest struct {
	Input       string                `json:"input"`
	Language    string                `json:"language,omitempty"`
	Competitors string                `json:"competitors,omitempty"`
	PageContent bool                  `json:"pageContent,omitempty"`
	Category    string                `json:"category,omitempty"`
	Attachment  *copysmith.Attachment `json:"attachment,omitempty"`
	Location    *copysmith.LatLng     `json:"location,omitempty"`
}

func (gr *generateRequest) options() copysmith.GenerateOptions {
	return copysmith.GenerateOptions{
		Language:    gr.Language,
		Competitors: gr.Competitors,
		PageContent: gr.PageContent,
		Category:    gr.Category,
		Attachment:  gr.Attachment,
	}
}

func (h *handlers) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := r.Context()
	opts := req.options()

	var result any
	var err error
	switch platform := r.PathValue("platform"); platform {
	case "seo":
		result, err = h.engine.GenerateSeoBundle(ctx, req.Input, opts)
	case "brief":
		result, err = h.engine.GenerateContentBrief(ctx, req.Input, opts)
	case "maps":
		if req.Location == nil {
			jsonError(w, http.StatusBadRequest, "maps generation requires a location")
			return
		}
		result, err = h.engine.GenerateMapsKeywords(ctx, req.Input, *req.Location, opts)
	case "youtube":
		result, err = h.engine.GenerateYouTube(ctx, req.Input, opts)
	case "linkedin":
		result, err = h.engine.GenerateLinkedIn(ctx, req.Input, opts)
	case "instagram":
		result, err = h.engine.GenerateInstagram(ctx, req.Input, opts)
	case "facebook":
		result, err = h.engine.GenerateFacebook(ctx, req.Input, opts)
	default:
		jsonError(w, http.StatusNotFound, "unknown platform "+strconv.Quote(platform))
		return
	}
	if err != nil {
		jsonError(w, generateStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) handleDensity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string                        `json:"text"`
		Keywords []copysmith.KeywordSuggestion `json:"keywords"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	annotated, err := h.engine.AnnotateDensity(req.Text, req.Keywords)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"keywords": annotated})
}

func (h *handlers) handleCalendarList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.engine.ScheduledPosts()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if posts == nil {
		posts = []copysmith.ScheduledPost{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *handlers) handleCalendarAdd(w http.ResponseWriter, r *http.Request) {
	var post copysmith.ScheduledPost
	if !decodeBody(w, r, &post) {
		return
	}
	if post.Title == "" || post.ScheduledAt.IsZero() {
		jsonError(w, http.StatusBadRequest, "title and scheduledAt are required")
		return
	}

	stored, err := h.engine.SchedulePost(post)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (h *handlers) handleCalendarUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       *string    `json:"title"`
		Content     *string    `json:"content"`
		Platform    *string    `json:"platform"`
		ScheduledAt *time.Time `json:"scheduledAt"`
		Notes       *string    `json:"notes"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	patch := copysmith.PostPatch{
		Title:       body.Title,
		Content:     body.Content,
		Platform:    body.Platform,
		ScheduledAt: body.ScheduledAt,
		Notes:       body.Notes,
	}
	if err := h.engine.Reschedule(r.PathValue("id"), patch); err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleCalendarDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.UnschedulePost(r.PathValue("id")); err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	items, err := h.engine.History()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []copysmith.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) handleHistoryRelated(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		jsonError(w, http.StatusBadRequest, "missing q parameter")
		return
	}
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	items, err := h.engine.RelatedHistory(r.Context(), query, limit)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []copysmith.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ClearHistory(); err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if !h.engine.ValidateCredentials(req.Username, req.Password) {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	cookie, err := h.sessions.issue(req.Username, req.Remember)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.engine.Login(req.Remember); err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Logout(); err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	http.SetCookie(w, h.sessions.clear())
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *handlers) handleSession(w http.ResponseWriter, r *http.Request) {
	_, err := h.sessions.verify(r)
	writeJSON(w, http.StatusOK, map[string]bool{"active": err == nil})
}

func (h *handlers) handleUsersList(w http.ResponseWriter, r *http.Request) {
	users := h.engine.ManagedUsers()
	if users == nil {
		users = []copysmith.ManagedUser{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *handlers) handleUserIssue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceID  string `json:"deviceId"`
		AccessKey string `json:"accessKey,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	key := req.AccessKey
	if key == "" {
		issued, err := h.engine.IssueKeyForDevice(req.DeviceID)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		key = issued
	} else if err := h.engine.IssueCustomKeyForDevice(req.DeviceID, key); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, copysmith.ManagedUser{DeviceID: req.DeviceID, AccessKey: key})
}

func (h *handlers) handleUserRevoke(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.RevokeAccessForDevice(r.PathValue("deviceID")); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleCycle(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.CycleMasterSecret(); err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
