package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/go-teetime/session"
)

// SessionResponse is the JSON view of a browser session
type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Name          string `json:"name,omitempty"`
	ExpiresAt     *int64 `json:"expiresAt,omitempty"` // epoch millis
}

// SessionAPIHandler reports the caller's session. It never creates a browser session.
func (s *Server) SessionAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var state session.State
		if sid, ok := browserSessionID(r); ok {
			var err error
			state, err = s.sessions.Init(r.Context(), sid)
			if err != nil {
				logError(r, http.StatusInternalServerError, err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session unavailable"})
				return
			}
		}

		resp := SessionResponse{Authenticated: state.Authenticated}
		if state.Authenticated {
			resp.Name = state.DisplayName
			expiresAt := state.ExpiresAt.UnixMilli()
			resp.ExpiresAt = &expiresAt
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
