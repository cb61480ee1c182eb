// Package server is the ClawChat admin HTTP server: read-only views over the
// OpenClaw installation plus the chat relay.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/soyeahso/clawchat/internal/cache"
	"github.com/soyeahso/clawchat/internal/config"
	"github.com/soyeahso/clawchat/internal/domain"
	"github.com/soyeahso/clawchat/internal/hooks"
	"github.com/soyeahso/clawchat/internal/logging"
	"github.com/soyeahso/clawchat/internal/metrics"
	"github.com/soyeahso/clawchat/internal/openclaw"
	"github.com/soyeahso/clawchat/internal/relay"
	"github.com/soyeahso/clawchat/internal/sessions"
	"github.com/soyeahso/clawchat/internal/tunnel"
)

// SessionLister lists live sessions.
type SessionLister interface {
	List(ctx context.Context) ([]domain.SessionView, error)
}

// Tunnel reports and starts the public tunnel.
type Tunnel interface {
	PublicURL(ctx context.Context) (string, error)
	Start(ctx context.Context) domain.TunnelStart
}

// Server is the ClawChat HTTP server.
type Server struct {
	cfg     config.Config
	log     *logging.Logger
	cache   *cache.Cache
	metrics *metrics.Collector
	relay   *relay.Relay

	// Hook manager (optional, nil if not configured)
	hooks *hooks.Manager

	sessions SessionLister
	tunnel   Tunnel

	startedAt    time.Time
	authLimiter  *authRateLimiter
	writeTimeout time.Duration

	mu         sync.RWMutex
	httpServer *http.Server
	addr       string
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithHooks sets the hook manager for lifecycle events.
func WithHooks(hm *hooks.Manager) ServerOption {
	return func(s *Server) {
		s.hooks = hm
	}
}

// WithMetrics sets the Prometheus collector.
func WithMetrics(m *metrics.Collector) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithCache sets the view cache.
func WithCache(c *cache.Cache) ServerOption {
	return func(s *Server) {
		s.cache = c
	}
}

// WithSessions replaces the session lister.
func WithSessions(l SessionLister) ServerOption {
	return func(s *Server) {
		s.sessions = l
	}
}

// WithTunnel replaces the tunnel manager.
func WithTunnel(t Tunnel) ServerOption {
	return func(s *Server) {
		s.tunnel = t
	}
}

// New creates a server. Collaborators not supplied through options are
// built from cfg.
func New(cfg config.Config, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:         cfg,
		log:         log.Sub("server"),
		startedAt:    time.Now(),
		authLimiter:  newAuthRateLimiter(),
		writeTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.cache == nil {
		s.cache = cache.New(cache.WithObserver(s.metrics))
	}
	if s.sessions == nil {
		sc := cfg.Sessions
		s.sessions = sessions.NewLister(sc.Command, sc.Args, sc.Timeout, log)
	}
	if s.tunnel == nil {
		tc := cfg.Tunnel
		s.tunnel = tunnel.NewManager(tc.APIURL, tc.Command, tc.Port, tc.ProbeTimeout, log)
	}

	gc := cfg.Gateway
	s.relay = relay.New(relay.Config{
		URL:       gc.URL,
		Token:     gc.Token,
		Origin:    gc.Origin,
		Timeout:   gc.Timeout,
		ChunkSize: gc.ChunkSize,
	}, log)

	return s
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.ServerConfig) string {
	switch cfg.Bind {
	case "loopback":
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	case "lan", "auto":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return net.JoinHostPort(host, fmt.Sprint(cfg.Port))
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return withMiddleware(mux, s.log, s.cfg.Server.AllowedOrigins, s.metrics)
}

// Start begins listening for HTTP connections.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg.Server)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	// Enable TLS if configured
	if tc := s.cfg.Server.TLS; tc.Enabled {
		cert, err := tls.LoadX509KeyPair(tc.CertPath, tc.KeyPath)
		if err != nil {
			ln.Close()
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		tlsCfg := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		ln = tls.NewListener(ln, tlsCfg)
		s.log.Info().Msg("TLS enabled")
	} else if s.cfg.Server.APIKey != "" && s.cfg.Server.Bind != "loopback" {
		s.log.Warn().Msg("TLS is not enabled, the API key is sent in cleartext")
	}

	s.mu.Lock()
	s.httpServer = srv
	s.addr = ln.Addr().String()
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.watchOpenClaw(ctx)

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Server.Bind).
		Str("gateway", s.cfg.Gateway.URL).
		Bool("auth", s.cfg.Server.APIKey != "").
		Msg("server ready")

	if s.hooks != nil {
		s.hooks.Emit(ctx, hooks.EventServerStart, map[string]any{
			"addr": ln.Addr().String(),
		})
	}

	// Shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down server")
		if s.hooks != nil {
			s.hooks.Emit(context.Background(), hooks.EventServerStop, nil)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.authLimiter.stop()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the address the server listens on, or empty string if not started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// watchOpenClaw purges the view cache whenever openclaw.json or the cron
// store changes on disk.
func (s *Server) watchOpenClaw(ctx context.Context) {
	oc := s.cfg.OpenClaw
	if !oc.WatchEnabled() {
		return
	}
	w, err := openclaw.NewWatcher(s.log, s.invalidate, oc.ConfigPath, oc.CronPath)
	if err != nil {
		s.log.Warn().Err(err).Msg("config watcher disabled")
		return
	}
	go w.Run(ctx)
}

// invalidate drops every cached view after path changed.
func (s *Server) invalidate(path string) {
	s.cache.Purge()
	s.metrics.CachePurges.Inc()
	s.log.Info().Str("file", path).Msg("openclaw file changed, cache purged")
	if s.hooks != nil {
		s.hooks.EmitAsync(context.Background(), hooks.EventConfigChanged, map[string]any{
			"file": path,
		})
	}
}
