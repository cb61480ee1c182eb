package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/soyeahso/clawchat/internal/config"
	"github.com/soyeahso/clawchat/internal/hooks"
	"github.com/soyeahso/clawchat/internal/relay"
)

// handleChat relays a chat completion request to the OpenClaw gateway.
// Unlike the read views it propagates real status codes.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Server.MaxBodyBytes
	if limit <= 0 {
		limit = config.DefaultMaxBodyBytes
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
				"error": "request body too large",
				"limit": tooLarge.Limit,
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading request body: " + err.Error()})
		return
	}

	res := s.relay.Serve(w, r, body)
	s.metrics.ObserveRelay(string(res.Outcome), res.Stream, res.Bytes, res.Duration)

	ev := s.log.Info()
	if res.Outcome != relay.Success {
		ev = s.log.Warn().Err(res.Err)
	}
	ev.Str("outcome", string(res.Outcome)).
		Bool("stream", res.Stream).
		Int("status", res.Status).
		Int64("bytes", res.Bytes).
		Dur("duration", res.Duration).
		Msg("chat relayed")

	if s.hooks != nil {
		data := map[string]any{
			"outcome":  string(res.Outcome),
			"stream":   res.Stream,
			"status":   res.Status,
			"bytes":    res.Bytes,
			"duration": res.Duration.String(),
		}
		if res.Err != nil {
			data["error"] = res.Err.Error()
		}
		s.hooks.EmitAsync(context.WithoutCancel(r.Context()), hooks.EventChatRelayed, data)
	}
}
