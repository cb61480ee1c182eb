package openclaw

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/soyeahso/clawchat/internal/domain"
)

// DefaultAgentID owns cron jobs that do not name an agent.
const DefaultAgentID = "main"

const previewLength = 100

// Job is one entry of cron/jobs.json.
type Job struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	AgentID       string      `json:"agentId"`
	Enabled       *bool       `json:"enabled"`
	SessionTarget string      `json:"sessionTarget"`
	Schedule      JobSchedule `json:"schedule"`
	Payload       JobPayload  `json:"payload"`
	State         JobState    `json:"state"`
}

// JobSchedule says when a job runs. Kind is "cron", "every" or "at".
type JobSchedule struct {
	Kind    string          `json:"kind"`
	Expr    string          `json:"expr"`
	TZ      string          `json:"tz"`
	EveryMs int64           `json:"everyMs"`
	At      json.RawMessage `json:"at"`
	AtMs    int64           `json:"atMs"`
}

// JobPayload is what the job sends to its agent.
type JobPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Text    string `json:"text"`
}

// JobState is the run bookkeeping OpenClaw keeps per job.
type JobState struct {
	NextRunAtMs       int64  `json:"nextRunAtMs"`
	LastRunAtMs       int64  `json:"lastRunAtMs"`
	LastStatus        string `json:"lastStatus"`
	LastDurationMs    int64  `json:"lastDurationMs"`
	LastError         string `json:"lastError"`
	ConsecutiveErrors int    `json:"consecutiveErrors"`
}

type jobsFile struct {
	Version int   `json:"version"`
	Jobs    []Job `json:"jobs"`
}

// LoadJobs reads the cron store at path. A missing file yields no jobs.
func LoadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cron jobs: %w", err)
	}
	return ParseJobs(data)
}

// ParseJobs decodes either {"version":1,"jobs":[...]} or a bare job array.
func ParseJobs(data []byte) ([]Job, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var jobs []Job
		if err := json.Unmarshal(trimmed, &jobs); err != nil {
			return nil, fmt.Errorf("parsing cron jobs: %w", err)
		}
		return jobs, nil
	}
	var f jobsFile
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, fmt.Errorf("parsing cron jobs: %w", err)
	}
	return f.Jobs, nil
}

// Owner returns the agent the job belongs to.
func (j Job) Owner() string {
	if j.AgentID == "" {
		return DefaultAgentID
	}
	return j.AgentID
}

// Message returns the text the job sends.
func (j Job) Message() string {
	if j.Payload.Message != "" {
		return j.Payload.Message
	}
	return j.Payload.Text
}

// View renders the job for display. Times are RFC 3339 in UTC.
func (j Job) View() domain.CronJob {
	msg := j.Message()
	return domain.CronJob{
		ID:                j.ID,
		Name:              j.Name,
		AgentID:           j.Owner(),
		Schedule:          j.Schedule.String(),
		Enabled:           boolOr(j.Enabled, true),
		SessionTarget:     j.SessionTarget,
		NextRun:           formatMillis(j.State.NextRunAtMs),
		LastRun:           formatMillis(j.State.LastRunAtMs),
		LastStatus:        j.State.LastStatus,
		LastDuration:      formatDurationMs(j.State.LastDurationMs),
		LastError:         j.State.LastError,
		ConsecutiveErrors: j.State.ConsecutiveErrors,
		Message:           msg,
		MessagePreview:    truncateRunes(msg, previewLength),
	}
}

// String renders the schedule as "<expr> (<tz>)", "every <interval>" or
// "at <time>".
func (s JobSchedule) String() string {
	switch s.Kind {
	case "cron":
		if s.TZ != "" {
			return s.Expr + " (" + s.TZ + ")"
		}
		return s.Expr
	case "every":
		return "every " + formatInterval(s.EveryMs)
	case "at":
		return "at " + s.atString()
	}
	if s.Expr != "" {
		return s.Expr
	}
	return s.Kind
}

// atString accepts "at" as an ISO timestamp or epoch milliseconds, falling
// back to atMs.
func (s JobSchedule) atString() string {
	if len(s.At) > 0 && string(s.At) != "null" {
		var str string
		if err := json.Unmarshal(s.At, &str); err == nil {
			if t, err := time.Parse(time.RFC3339, str); err == nil {
				return t.UTC().Format(time.RFC3339)
			}
			return str
		}
		if ms, err := strconv.ParseInt(string(s.At), 10, 64); err == nil {
			return formatMillis(ms)
		}
	}
	return formatMillis(s.AtMs)
}

func formatMillis(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func formatDurationMs(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return (time.Duration(ms) * time.Millisecond).String()
}

// formatInterval prints the largest whole unit, e.g. "30m" rather than "30m0s".
func formatInterval(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	switch {
	case d <= 0:
		return "0s"
	case d%(24*time.Hour) == 0:
		return strconv.FormatInt(int64(d/(24*time.Hour)), 10) + "d"
	case d%time.Hour == 0:
		return strconv.FormatInt(int64(d/time.Hour), 10) + "h"
	case d%time.Minute == 0:
		return strconv.FormatInt(int64(d/time.Minute), 10) + "m"
	case d%time.Second == 0:
		return strconv.FormatInt(int64(d/time.Second), 10) + "s"
	}
	return d.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// JobViews renders every job in file order.
func JobViews(jobs []Job) []domain.CronJob {
	out := make([]domain.CronJob, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.View())
	}
	return out
}

// JobsByAgent groups rendered jobs by owning agent.
func JobsByAgent(jobs []Job) map[string][]domain.CronJob {
	out := make(map[string][]domain.CronJob)
	for _, j := range jobs {
		out[j.Owner()] = append(out[j.Owner()], j.View())
	}
	return out
}
