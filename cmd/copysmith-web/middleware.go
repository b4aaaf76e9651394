package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookie = "copysmith_session"

// rememberedSessionTTL bounds remember-me tokens; plain logins get a cookie
// that dies with the browser session.
const rememberedSessionTTL = 30 * 24 * time.Hour

// sessions signs and verifies the admin session tokens carried in cookies.
type sessions struct {
	secret []byte
}

func (s *sessions) issue(username string, remember bool) (*http.Cookie, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(now),
	}
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		expiry := now.Add(rememberedSessionTTL)
		claims.ExpiresAt = jwt.NewNumericDate(expiry)
		cookie.Expires = expiry
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	cookie.Value = signed
	return cookie, nil
}

func (s *sessions) clear() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Path:     "/",
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// verify reports the username of a valid session cookie, or an error.
func (s *sessions) verify(r *http.Request) (string, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", fmt.Errorf("no session cookie")
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	return claims.Subject, nil
}

// requireAdmin rejects requests without a valid session cookie.
func (s *sessions) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.verify(r); err != nil {
			jsonError(w, http.StatusUnauthorized, "admin session required")
			return
		}
		next(w, r)
	}
}

// logging logs each request with method, path, status, and duration.
func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start).Round(time.Millisecond))
	})
}

// recovery catches panics and returns a 500.
func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("copysmith-web: panic: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
