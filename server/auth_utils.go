package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// browserSessionCookie carries the opaque ID keying a browser's session fields and UI state
const browserSessionCookie = "teetime_sid"

type contextKey int

const sessionIDKey contextKey = iota

func newBrowserSessionID() string {
	return uuid.NewString()
}

// browserSessionID reads the cookie; only well formed IDs are accepted
func browserSessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(browserSessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return "", false
	}
	return cookie.Value, true
}

func withSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sid)
}

// sessionID returns the browser session ID set by BrowserSessionMiddleware
func sessionID(r *http.Request) string {
	sid, _ := r.Context().Value(sessionIDKey).(string)
	return sid
}

func (s *Server) SetBrowserSessionCookie(w http.ResponseWriter, r *http.Request, sid string) {
	isSecure := getScheme(r) == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     browserSessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetSessionCookieMaxAge().Seconds()),
	})
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	fullPath := path + sep + "error=" + url.QueryEscape(errorMsg)

	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", fullPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// safeReturnPath only allows local paths as navigation targets
func safeReturnPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return RouteIndex
	}
	return p
}
