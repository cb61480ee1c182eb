package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/soyeahso/clawchat/internal/domain"
	"github.com/soyeahso/clawchat/internal/hooks"
	"github.com/soyeahso/clawchat/internal/openclaw"
	"github.com/soyeahso/clawchat/internal/workspace"
)

// Cache keys.
const (
	cacheAgents   = "agents"
	cacheChannels = "channels"
	cacheConfig   = "config"
	cacheSessions = "sessions"
)

func (s *Server) loadOpenClaw() (*openclaw.Config, error) {
	return openclaw.Load(s.cfg.OpenClaw.ConfigPath)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	oc, err := s.loadOpenClaw()
	if err != nil {
		writeView(w, map[string]any{"status": "error", "error": err.Error()})
		return
	}

	status := domain.Status{
		Status: "online",
		Gateway: &domain.GatewayPorts{
			Port:     oc.GatewayPort(),
			HTTPPort: oc.GatewayHTTPPort(),
		},
		Uptime: time.Since(s.started()).Truncate(time.Second).String(),
	}
	if url, err := s.tunnel.PublicURL(r.Context()); err == nil && url != "" {
		status.NgrokURL = &url
	}
	writeView(w, status)
}

func (s *Server) started() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startedAt
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	v, err := s.cache.Fetch(cacheAgents, s.cfg.Cache.Agents, func() (any, error) {
		oc, err := s.loadOpenClaw()
		if err != nil {
			return nil, err
		}
		return domain.AgentList{Agents: oc.Summaries()}, nil
	})
	if err != nil {
		writeView(w, domain.AgentList{Agents: []domain.AgentSummary{}, Error: err.Error()})
		return
	}
	writeView(w, v)
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	v, err := s.cache.Fetch(cacheChannels, s.cfg.Cache.Channels, func() (any, error) {
		oc, err := s.loadOpenClaw()
		if err != nil {
			return nil, err
		}
		return domain.ChannelList{Channels: oc.ChannelViews()}, nil
	})
	if err != nil {
		writeView(w, domain.ChannelList{Channels: map[string]domain.ChannelView{}, Error: err.Error()})
		return
	}
	writeView(w, v)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	v, err := s.cache.Fetch(cacheConfig, s.cfg.Cache.Config, func() (any, error) {
		oc, err := s.loadOpenClaw()
		if err != nil {
			return nil, err
		}
		return map[string]any{"config": oc.Sanitized()}, nil
	})
	if err != nil {
		writeView(w, map[string]any{"error": err.Error()})
		return
	}
	writeView(w, v)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	v, err := s.cache.Fetch(cacheSessions, s.cfg.Cache.Sessions, func() (any, error) {
		list, err := s.sessions.List(r.Context())
		if err != nil {
			return nil, err
		}
		return domain.SessionList{Sessions: list}, nil
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("listing sessions")
		writeView(w, domain.SessionList{Sessions: []domain.SessionView{}, Error: err.Error()})
		return
	}
	writeView(w, v)
}

// findAgent loads the OpenClaw config and looks up the agent named in the
// request path.
func (s *Server) findAgent(r *http.Request) (openclaw.Agent, error) {
	oc, err := s.loadOpenClaw()
	if err != nil {
		return openclaw.Agent{}, err
	}
	return oc.FindAgent(r.PathValue("id"))
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	agent, err := s.findAgent(r)
	if err != nil {
		writeView(w, errorView(err))
		return
	}

	writeView(w, domain.AgentDetail{
		ID:        agent.ID,
		Name:      agent.Name,
		Workspace: agent.Workspace,
		AgentDir:  agent.AgentDir,
		Identity:  agent.IdentityJSON(),
		Model:     agent.ModelJSON(),
		Docs:      workspace.New(agent.Workspace).Docs(),
	})
}

func (s *Server) handleAgentFiles(w http.ResponseWriter, r *http.Request) {
	agent, err := s.findAgent(r)
	if err != nil {
		writeView(w, errorView(err))
		return
	}

	ws := workspace.New(agent.Workspace)
	rel := r.URL.Query().Get("path")
	if rel == "" {
		listing, err := ws.List("")
		if err != nil {
			writeView(w, errorView(err))
			return
		}
		writeView(w, listing)
		return
	}

	info, err := ws.Stat(rel)
	if err != nil {
		writeView(w, errorView(err))
		return
	}
	if info.IsDir() {
		listing, err := ws.List(rel)
		if err != nil {
			writeView(w, errorView(err))
			return
		}
		writeView(w, listing)
		return
	}

	content, err := ws.ReadFile(rel)
	if err != nil {
		var tooLarge *workspace.TooLargeError
		if errors.As(err, &tooLarge) {
			writeView(w, map[string]any{"error": tooLarge.Error(), "size": tooLarge.Size})
			return
		}
		writeView(w, errorView(err))
		return
	}
	writeView(w, content)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	s.writeBoard(w, workspace.BoardFile)
}

func (s *Server) handleBacklog(w http.ResponseWriter, r *http.Request) {
	s.writeBoard(w, workspace.BacklogFile)
}

func (s *Server) handleBoardFile(w http.ResponseWriter, r *http.Request) {
	s.writeBoard(w, r.PathValue("file"))
}

func (s *Server) writeBoard(w http.ResponseWriter, name string) {
	board, err := workspace.ReadBoard(s.cfg.OpenClaw.SharedDir, name)
	if err != nil {
		board.Error = userMessage(err)
	}
	writeView(w, board)
}

func (s *Server) handleSchedules(w http.ResponseWriter, r *http.Request) {
	out := domain.ScheduleList{Schedules: []domain.Schedule{}}

	oc, err := s.loadOpenClaw()
	if err != nil {
		out.Error = err.Error()
		writeView(w, out)
		return
	}

	jobs, err := openclaw.LoadJobs(s.cfg.OpenClaw.CronPath)
	if err != nil {
		s.log.Warn().Err(err).Msg("loading cron jobs")
		out.Error = err.Error()
	}
	byAgent := openclaw.JobsByAgent(jobs)

	for _, a := range oc.Agents.List {
		profile := a.Profile()
		tasks := byAgent[a.ID]
		if tasks == nil {
			tasks = []domain.CronJob{}
		}
		out.Schedules = append(out.Schedules, domain.Schedule{
			AgentID:     a.ID,
			Workspace:   a.Workspace,
			Emoji:       profile.Emoji,
			Name:        profile.Name,
			HasSchedule: workspace.New(a.Workspace).HasSchedule(),
			Tasks:       tasks,
		})
	}
	writeView(w, out)
}

func (s *Server) handleCron(w http.ResponseWriter, r *http.Request) {
	jobs, err := openclaw.LoadJobs(s.cfg.OpenClaw.CronPath)
	if err != nil {
		writeView(w, domain.CronList{Jobs: []domain.CronJob{}, Error: err.Error()})
		return
	}
	writeView(w, domain.CronList{Jobs: openclaw.JobViews(jobs)})
}

func (s *Server) handleTunnelStart(w http.ResponseWriter, r *http.Request) {
	res := s.tunnel.Start(r.Context())
	if res.Status == "starting" && s.hooks != nil {
		s.hooks.EmitAsync(context.WithoutCancel(r.Context()), hooks.EventTunnelStarted, map[string]any{
			"port": s.cfg.Tunnel.Port,
		})
	}
	writeView(w, res)
}
