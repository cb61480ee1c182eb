package openclaw

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJobs = `{
  "version": 1,
  "jobs": [
    {
      "id": "j1",
      "name": "Morning brief",
      "agentId": "bot1",
      "enabled": true,
      "sessionTarget": "isolated",
      "schedule": {"kind": "cron", "expr": "0 9 * * *", "tz": "Asia/Taipei"},
      "payload": {"kind": "agentTurn", "message": "Summarize the news"},
      "state": {
        "nextRunAtMs": 1700000000000,
        "lastRunAtMs": 1699913600000,
        "lastStatus": "ok",
        "lastDurationMs": 1500,
        "consecutiveErrors": 0
      }
    },
    {
      "id": "j2",
      "name": "Heartbeat",
      "enabled": false,
      "schedule": {"kind": "every", "everyMs": 1800000},
      "payload": {"kind": "systemEvent", "text": "ping"},
      "state": {"lastStatus": "error", "lastError": "timeout", "consecutiveErrors": 3}
    },
    {
      "id": "j3",
      "name": "Reminder",
      "agentId": "bot1",
      "schedule": {"kind": "at", "at": "2026-01-02T03:04:05Z"}
    }
  ]
}`

func TestParseJobsWrapped(t *testing.T) {
	jobs, err := ParseJobs([]byte(sampleJobs))
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "j1", jobs[0].ID)
}

func TestParseJobsBareArray(t *testing.T) {
	jobs, err := ParseJobs([]byte(`[{"id":"a"},{"id":"b"}]`))
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "b", jobs[1].ID)

	jobs, err = ParseJobs([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, jobs)

	_, err = ParseJobs([]byte("{broken"))
	assert.Error(t, err)
}

func TestLoadJobsMissingFile(t *testing.T) {
	jobs, err := LoadJobs(filepath.Join(t.TempDir(), "cron", "jobs.json"))
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestLoadJobsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJobs), 0o600))

	jobs, err := LoadJobs(path)
	require.NoError(t, err)
	assert.Len(t, jobs, 3)
}

func TestJobView(t *testing.T) {
	jobs, err := ParseJobs([]byte(sampleJobs))
	require.NoError(t, err)
	views := JobViews(jobs)

	j1 := views[0]
	assert.Equal(t, "bot1", j1.AgentID)
	assert.Equal(t, "0 9 * * * (Asia/Taipei)", j1.Schedule)
	assert.True(t, j1.Enabled)
	assert.Equal(t, "isolated", j1.SessionTarget)
	assert.Equal(t, "2023-11-14T22:13:20Z", j1.NextRun)
	assert.Equal(t, "2023-11-13T22:13:20Z", j1.LastRun)
	assert.Equal(t, "ok", j1.LastStatus)
	assert.Equal(t, "1.5s", j1.LastDuration)
	assert.Equal(t, "Summarize the news", j1.Message)
	assert.Equal(t, "Summarize the news", j1.MessagePreview)

	j2 := views[1]
	assert.Equal(t, DefaultAgentID, j2.AgentID)
	assert.Equal(t, "every 30m", j2.Schedule)
	assert.False(t, j2.Enabled)
	assert.Equal(t, "ping", j2.Message)
	assert.Equal(t, "timeout", j2.LastError)
	assert.Equal(t, 3, j2.ConsecutiveErrors)
	assert.Empty(t, j2.NextRun)

	j3 := views[2]
	assert.Equal(t, "at 2026-01-02T03:04:05Z", j3.Schedule)
	assert.True(t, j3.Enabled, "enabled defaults to true")
}

func TestMessagePreviewTruncates(t *testing.T) {
	long := strings.Repeat("界", 150)
	j := Job{Payload: JobPayload{Message: long}}
	v := j.View()
	assert.Equal(t, long, v.Message)
	assert.Equal(t, 100, len([]rune(v.MessagePreview)))
}

func TestScheduleString(t *testing.T) {
	tests := []struct {
		name string
		s    JobSchedule
		want string
	}{
		{"cron without tz", JobSchedule{Kind: "cron", Expr: "*/5 * * * *"}, "*/5 * * * *"},
		{"every hours", JobSchedule{Kind: "every", EveryMs: 2 * 3600 * 1000}, "every 2h"},
		{"every days", JobSchedule{Kind: "every", EveryMs: 86400 * 1000}, "every 1d"},
		{"every seconds", JobSchedule{Kind: "every", EveryMs: 45 * 1000}, "every 45s"},
		{"every millis", JobSchedule{Kind: "every", EveryMs: 1500}, "every 1.5s"},
		{"at epoch ms", JobSchedule{Kind: "at", AtMs: 1700000000000}, "at 2023-11-14T22:13:20Z"},
		{"at numeric", JobSchedule{Kind: "at", At: []byte("1700000000000")}, "at 2023-11-14T22:13:20Z"},
		{"unknown kind with expr", JobSchedule{Kind: "custom", Expr: "x"}, "x"},
		{"unknown kind", JobSchedule{Kind: "custom"}, "custom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.String())
		})
	}
}

func TestJobsByAgent(t *testing.T) {
	jobs, err := ParseJobs([]byte(sampleJobs))
	require.NoError(t, err)

	byAgent := JobsByAgent(jobs)
	assert.Len(t, byAgent["bot1"], 2)
	assert.Len(t, byAgent[DefaultAgentID], 1)
	assert.Empty(t, byAgent["bot2"])
}
