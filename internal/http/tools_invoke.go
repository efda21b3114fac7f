package http

import (
	"log/slog"
	"net/http"

	"github.com/nextlevelbuilder/kitedash/pkg/protocol"
)

type toolsInvokeRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// handleToolsInvoke forwards an arbitrary tool call through the session's client.
func (s *Server) handleToolsInvoke(w http.ResponseWriter, r *http.Request) {
	var req toolsInvokeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Tool == "" {
		writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, "tool is required")
		return
	}
	if !isValidToolName(req.Tool) {
		writeError(w, http.StatusBadRequest, protocol.ErrInvalidRequest, "invalid tool name: "+req.Tool)
		return
	}

	sess := session(r)
	slog.Info("tools.invoke", "session", sess.ID, "tool", req.Tool)
	writeResult(w, sess.Broker().Caller().Call(r.Context(), req.Tool, req.Args))
}
