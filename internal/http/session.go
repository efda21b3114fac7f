package http

import (
	"net/http"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.version,
		"sessions": s.sessions.Len(),
	})
}

// handleLogin asks the tool server for a login URL; completing the flow
// happens in the user's browser.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	writeResult(w, session(r).Broker().Login(r.Context()))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeResult(w, session(r).RefreshProfile(r.Context()))
}

type statusResponse struct {
	SessionID     string    `json:"session_id"`
	Endpoint      string    `json:"endpoint"`
	Authenticated bool      `json:"authenticated"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sess := session(r)
	writeJSON(w, http.StatusOK, statusResponse{
		SessionID:     sess.ID,
		Endpoint:      sess.Endpoint,
		Authenticated: sess.Authenticated(),
		CreatedAt:     sess.CreatedAt,
	})
}

// handleLogout drops the session and its client; the next request starts fresh.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Remove(session(r).ID)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
