package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	copysmith "github.com/matthewjhunter/copysmith"
)

// fakeGemini serves a canned model response for every generation request.
func fakeGemini(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
}

func candidateText(text string) string {
	payload := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

// newTestAPI spins up the API over a fresh engine backed by the given fake
// model server.
func newTestAPI(t *testing.T, gemini *httptest.Server) *httptest.Server {
	t.Helper()
	t.Setenv("COPYSMITH_TEST_KEY", "test-key")

	engine, err := copysmith.NewEngine(copysmith.EngineConfig{
		DBPath:        filepath.Join(t.TempDir(), "test.db"),
		Provider:      "gemini",
		Model:         "test-model",
		GeminiBaseURL: gemini.URL,
		GeminiKeyEnv:  "COPYSMITH_TEST_KEY",
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })

	srv := httptest.NewServer(newRouter(engine, []byte("test-secret")))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestGenerateBrief(t *testing.T) {
	brief := `{"searchIntent":"Informational","suggestedTitle":"Sourdough at Home",` +
		`"metaDescription":"m","serpAnalysis":"s","keyTopics":["starter"],` +
		`"questionsToAnswer":["how long?"],"suggestedOutline":[{"heading":"Intro"}],` +
		`"targetWordCount":"1500","linkingSuggestions":"l"}`
	gemini := fakeGemini(t, candidateText(brief))
	defer gemini.Close()
	api := newTestAPI(t, gemini)

	resp := postJSON(t, http.DefaultClient, api.URL+"/api/generate/brief",
		map[string]string{"input": "best sourdough"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got copysmith.ContentBrief
	decodeJSON(t, resp, &got)
	if got.SuggestedTitle != "Sourdough at Home" {
		t.Errorf("SuggestedTitle = %q", got.SuggestedTitle)
	}
	if len(got.SuggestedOutline) != 1 || got.SuggestedOutline[0].Heading != "Intro" {
		t.Errorf("unexpected outline: %+v", got.SuggestedOutline)
	}
}

func TestGenerateUnknownPlatform(t *testing.T) {
	gemini := fakeGemini(t, candidateText("{}"))
	defer gemini.Close()
	api := newTestAPI(t, gemini)

	resp := postJSON(t, http.DefaultClient, api.URL+"/api/generate/myspace",
		map[string]string{"input": "x"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGenerateValidation(t *testing.T) {
	gemini := fakeGemini(t, candidateText("{}"))
	defer gemini.Close()
	api := newTestAPI(t, gemini)

	resp := postJSON(t, http.DefaultClient, api.URL+"/api/generate/youtube",
		map[string]string{"input": "   "})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty input status = %d, want 400", resp.StatusCode)
	}

	resp = postJSON(t, http.DefaultClient, api.URL+"/api/generate/maps",
		map[string]string{"input": "a bakery"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("maps without location status = %d, want 400", resp.StatusCode)
	}
}

func TestGenerateBlocked(t *testing.T) {
	blocked := `{"promptFeedback":{"blockReason":"SAFETY"}}`
	gemini := fakeGemini(t, blocked)
	defer gemini.Close()
	api := newTestAPI(t, gemini)

	resp := postJSON(t, http.DefaultClient, api.URL+"/api/generate/youtube",
		map[string]string{"input": "a video"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if !strings.Contains(body["error"], "SAFETY") {
		t.Errorf("error = %q, want block reason mentioned", body["error"])
	}
}

func TestCalendarCRUD(t *testing.T) {
	gemini := fakeGemini(t, candidateText("{}"))
	defer gemini.Close()
	api := newTestAPI(t, gemini)
	client := http.DefaultClient

	at := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	resp := postJSON(t, client, api.URL+"/api/calendar", copysmith.ScheduledPost{
		Title:       "Launch post",
		Content:     "We are live",
		Platform:    "LinkedIn",
		ScheduledAt: at,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d, want 201", resp.StatusCode)
	}
	var created copysmith.ScheduledPost
	decodeJSON(t, resp, &created)
	if created.ID == "" {
		t.Fatal("expected an assigned id")
	}

	patch, _ := json.Marshal(map[string]string{"title": "Launch day post"})
	req, _ := http.NewRequest(http.MethodPatch, api.URL+"/api/calendar/"+created.ID, bytes.NewReader(patch))
	req.Header.Set("Content-Type", "application/json")
	patchResp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PATCH: %v", err)
	}
	patchResp.Body.Close()
	if patchResp.StatusCode != http.StatusNoContent {
		t.Fatalf("patch status = %d, want 204", patchResp.StatusCode)
	}

	listResp, err := client.Get(api.URL + "/api/calendar")
	if err != nil {
		t.Fatalf("GET calendar: %v", err)
	}
	var posts []copysmith.ScheduledPost
	decodeJSON(t, listResp, &posts)
	if len(posts) != 1 || posts[0].Title != "Launch day post" {
		t.Fatalf("unexpected calendar: %+v", posts)
	}
	if !posts[0].ScheduledAt.Equal(at) {
		t.Errorf("ScheduledAt = %v, want %v", posts[0].ScheduledAt, at)
	}

	del, _ := http.NewRequest(http.MethodDelete, api.URL+"/api/calendar/"+created.ID, nil)
	delResp, err := client.Do(del)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", delResp.StatusCode)
	}

	listResp, err = client.Get(api.URL + "/api/calendar")
	if err != nil {
		t.Fatalf("GET calendar: %v", err)
	}
	posts = nil
	decodeJSON(t, listResp, &posts)
	if len(posts) != 0 {
		t.Errorf("expected empty calendar, got %+v", posts)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	gemini := fakeGemini(t, candidateText(`{"Video Tags":[],"Description Keywords":[],"Video Description":["d"],"Title Suggestions":["t"],"Suggested Categories":["c"]}`))
	defer gemini.Close()
	api := newTestAPI(t, gemini)
	client := http.DefaultClient

	resp := postJSON(t, client, api.URL+"/api/generate/youtube",
		map[string]string{"input": "a tour of the bakery"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate status = %d, want 200", resp.StatusCode)
	}

	listResp, err := client.Get(api.URL + "/api/history")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	var items []copysmith.HistoryItem
	decodeJSON(t, listResp, &items)
	if len(items) != 1 {
		t.Fatalf("history length = %d, want 1", len(items))
	}
	if items[0].Platform != copysmith.PlatformYouTube {
		t.Errorf("Platform = %q", items[0].Platform)
	}

	del, _ := http.NewRequest(http.MethodDelete, api.URL+"/api/history", nil)
	delResp, err := client.Do(del)
	if err != nil {
		t.Fatalf("DELETE history: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear status = %d, want 204", delResp.StatusCode)
	}

	listResp, err = client.Get(api.URL + "/api/history")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	items = nil
	decodeJSON(t, listResp, &items)
	if len(items) != 0 {
		t.Errorf("expected empty history, got %+v", items)
	}
}

func TestAdminSessionFlow(t *testing.T) {
	gemini := fakeGemini(t, candidateText("{}"))
	defer gemini.Close()
	api := newTestAPI(t, gemini)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	client := &http.Client{Jar: jar}

	// Guarded routes reject anonymous callers.
	resp, err := client.Get(api.URL + "/api/admin/users")
	if err != nil {
		t.Fatalf("GET users: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous users status = %d, want 401", resp.StatusCode)
	}

	resp = postJSON(t, client, api.URL+"/api/admin/login",
		map[string]any{"username": "Mentors@9274", "password": "wrong"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", resp.StatusCode)
	}

	resp = postJSON(t, client, api.URL+"/api/admin/login",
		map[string]any{"username": "Mentors@9274", "password": "061800", "remember": true})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}

	resp, err = client.Get(api.URL + "/api/admin/session")
	if err != nil {
		t.Fatalf("GET session: %v", err)
	}
	var session map[string]bool
	decodeJSON(t, resp, &session)
	if !session["active"] {
		t.Error("expected active session after login")
	}

	deviceID := "c2b0a6de-3f44-4e21-9a07-1d2e3f4a5b6c"
	resp = postJSON(t, client, api.URL+"/api/admin/users",
		map[string]string{"deviceId": deviceID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("issue status = %d, want 201", resp.StatusCode)
	}
	var user copysmith.ManagedUser
	decodeJSON(t, resp, &user)
	if !strings.HasPrefix(user.AccessKey, "key_") {
		t.Errorf("AccessKey = %q, want key_ prefix", user.AccessKey)
	}

	resp = postJSON(t, client, api.URL+"/api/admin/users",
		map[string]string{"deviceId": "not-a-device-id"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad device id status = %d, want 400", resp.StatusCode)
	}

	resp, err = client.Get(api.URL + "/api/admin/users")
	if err != nil {
		t.Fatalf("GET users: %v", err)
	}
	var users []copysmith.ManagedUser
	decodeJSON(t, resp, &users)
	if len(users) != 1 || users[0].DeviceID != deviceID {
		t.Fatalf("unexpected users: %+v", users)
	}

	del, _ := http.NewRequest(http.MethodDelete, api.URL+"/api/admin/users/"+deviceID, nil)
	delResp, err := client.Do(del)
	if err != nil {
		t.Fatalf("DELETE user: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("revoke status = %d, want 204", delResp.StatusCode)
	}

	resp = postJSON(t, client, api.URL+"/api/admin/logout", map[string]any{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", resp.StatusCode)
	}

	resp, err = client.Get(api.URL + "/api/admin/session")
	if err != nil {
		t.Fatalf("GET session: %v", err)
	}
	decodeJSON(t, resp, &session)
	if session["active"] {
		t.Error("expected inactive session after logout")
	}

	resp = postJSON(t, client, api.URL+"/api/admin/cycle", map[string]any{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("cycle after logout status = %d, want 401", resp.StatusCode)
	}
}
