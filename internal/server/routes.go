package server

import (
	"net/http"
)

// registerRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/agents", s.handleAgents)
	mux.HandleFunc("GET /api/channels", s.requireAPIKey(s.handleChannels))
	mux.HandleFunc("GET /api/config", s.requireAPIKey(s.handleConfig))
	mux.HandleFunc("GET /api/sessions", s.handleSessions)
	mux.HandleFunc("GET /api/agent/{id}", s.handleAgent)
	mux.HandleFunc("GET /api/agent/{id}/files", s.handleAgentFiles)
	mux.HandleFunc("GET /api/board", s.requireAPIKey(s.handleBoard))
	mux.HandleFunc("GET /api/board/{file}", s.requireAPIKey(s.handleBoardFile))
	mux.HandleFunc("GET /api/backlog", s.handleBacklog)
	mux.HandleFunc("GET /api/schedules", s.handleSchedules)
	mux.HandleFunc("GET /api/cron", s.requireAPIKey(s.handleCron))
	mux.HandleFunc("GET /api/ngrok/start", s.handleTunnelStart)
	mux.HandleFunc("POST /api/chat", s.handleChat)

	if s.cfg.Server.MetricsEnabled() {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Catch-all for unknown routes. "/" must stay method-less: "GET /" and
	// "/api/" would overlap with neither more specific, which ServeMux rejects.
	mux.HandleFunc("/api/", handleNotFound)
	if dir := s.cfg.Server.StaticDir; dir != "" {
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	} else {
		mux.HandleFunc("/", handleNotFound)
	}
}
