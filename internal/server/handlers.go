package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soyeahso/clawchat/internal/openclaw"
	"github.com/soyeahso/clawchat/internal/workspace"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

// writeJSON encodes v as the response body. HTML characters are left
// unescaped so document content reaches the UI as written.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

// writeView writes a read view. Read views always answer 200; failures are
// reported in the body.
func writeView(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

func errorView(err error) map[string]any {
	return map[string]any{"error": userMessage(err)}
}

// userMessage maps internal errors to the messages the UI shows.
func userMessage(err error) string {
	var tooLarge *workspace.TooLargeError
	switch {
	case errors.Is(err, openclaw.ErrAgentNotFound):
		return "Agent not found"
	case errors.Is(err, workspace.ErrNoWorkspace):
		return "Workspace not found"
	case errors.Is(err, workspace.ErrInvalidPath):
		return "Invalid path"
	case errors.Is(err, workspace.ErrNotFound):
		return "Path not found"
	case errors.As(err, &tooLarge):
		return tooLarge.Error()
	default:
		return err.Error()
	}
}
