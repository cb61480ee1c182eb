// Package sessions lists live OpenClaw sessions by invoking the OpenClaw CLI.
package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/soyeahso/clawchat/internal/domain"
	"github.com/soyeahso/clawchat/internal/logging"
)

// Lister runs an external command that prints sessions as JSON.
type Lister struct {
	Command string
	Args    []string
	Timeout time.Duration
	log     *logging.Logger
}

// NewLister creates a Lister for command.
func NewLister(command string, args []string, timeout time.Duration, log *logging.Logger) *Lister {
	return &Lister{
		Command: command,
		Args:    args,
		Timeout: timeout,
		log:     log.Sub("sessions"),
	}
}

// List runs the command and returns the sessions it reports, newest first.
func (l *Lister) List(ctx context.Context) ([]domain.SessionView, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, l.Command, l.Args...)
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s timed out after %s", l.Command, l.Timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = err.Error()
			}
			return nil, fmt.Errorf("%s exited %d: %s", l.Command, exitErr.ExitCode(), msg)
		}
		return nil, fmt.Errorf("running %s: %w", l.Command, err)
	}

	views, err := Parse(out)
	if err != nil {
		return nil, err
	}
	l.log.Debug().Int("count", len(views)).Msg("sessions listed")
	return views, nil
}

type rawSession struct {
	ID          string `json:"id"`
	SessionID   string `json:"sessionId"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Label       string `json:"label"`
	DisplayName string `json:"displayName"`
	AgentID     string `json:"agentId"`
	Source      string `json:"source"`
	Channel     string `json:"channel"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// Parse decodes either a bare session array or an object with a
// "sessions" array.
func Parse(data []byte) ([]domain.SessionView, error) {
	trimmed := bytes.TrimSpace(data)
	var raws []rawSession
	switch {
	case len(trimmed) == 0:
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("parsing sessions: %w", err)
		}
	default:
		var wrapped struct {
			Sessions []rawSession `json:"sessions"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("parsing sessions: %w", err)
		}
		raws = wrapped.Sessions
	}

	views := make([]domain.SessionView, 0, len(raws))
	for _, r := range raws {
		views = append(views, r.view())
	}
	slices.SortStableFunc(views, func(a, b domain.SessionView) int {
		switch {
		case a.UpdatedAt > b.UpdatedAt:
			return -1
		case a.UpdatedAt < b.UpdatedAt:
			return 1
		}
		return 0
	})
	return views, nil
}

func (r rawSession) view() domain.SessionView {
	v := domain.SessionView{
		ID:        firstNonEmpty(r.SessionID, r.ID, r.Key),
		Key:       firstNonEmpty(r.Key, r.ID, r.SessionID),
		Name:      firstNonEmpty(r.Name, r.Label, r.DisplayName),
		AgentID:   r.AgentID,
		Source:    firstNonEmpty(r.Source, r.Channel),
		UpdatedAt: r.UpdatedAt,
	}
	if v.AgentID == "" {
		v.AgentID = AgentFromKey(r.Key)
	}
	return v
}

// AgentFromKey extracts the agent ID from keys shaped "agent:<id>:...".
func AgentFromKey(key string) string {
	rest, ok := strings.CutPrefix(key, "agent:")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, ":")
	return id
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
