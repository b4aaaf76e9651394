package main

import (
	"net/http"

	copysmith "github.com/matthewjhunter/copysmith"
)

// newRouter sets up the JSON API using Go 1.22+ enhanced routing.
func newRouter(engine *copysmith.Engine, sessionSecret []byte) http.Handler {
	mux := http.NewServeMux()

	s := &sessions{secret: sessionSecret}
	h := &handlers{engine: engine, sessions: s}

	// Generation
	mux.HandleFunc("POST /api/generate/{platform}", h.handleGenerate)
	mux.HandleFunc("POST /api/density", h.handleDensity)

	// Calendar
	mux.HandleFunc("GET /api/calendar", h.handleCalendarList)
	mux.HandleFunc("POST /api/calendar", h.handleCalendarAdd)
	mux.HandleFunc("PATCH /api/calendar/{id}", h.handleCalendarUpdate)
	mux.HandleFunc("DELETE /api/calendar/{id}", h.handleCalendarDelete)

	// History
	mux.HandleFunc("GET /api/history", h.handleHistoryList)
	mux.HandleFunc("GET /api/history/related", h.handleHistoryRelated)
	mux.HandleFunc("DELETE /api/history", h.handleHistoryClear)

	// Admin session
	mux.HandleFunc("POST /api/admin/login", h.handleLogin)
	mux.HandleFunc("POST /api/admin/logout", h.handleLogout)
	mux.HandleFunc("GET /api/admin/session", h.handleSession)

	// Device access management, admin-only
	mux.HandleFunc("GET /api/admin/users", s.requireAdmin(h.handleUsersList))
	mux.HandleFunc("POST /api/admin/users", s.requireAdmin(h.handleUserIssue))
	mux.HandleFunc("DELETE /api/admin/users/{deviceID}", s.requireAdmin(h.handleUserRevoke))
	mux.HandleFunc("POST /api/admin/cycle", s.requireAdmin(h.handleCycle))

	return mux
}
