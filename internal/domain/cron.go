package domain

// CronJob is a scheduled OpenClaw job rendered for display.
type CronJob struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	AgentID           string `json:"agentId"`
	Schedule          string `json:"schedule"`
	Enabled           bool   `json:"enabled"`
	SessionTarget     string `json:"sessionTarget,omitempty"`
	NextRun           string `json:"nextRun,omitempty"`
	LastRun           string `json:"lastRun,omitempty"`
	LastStatus        string `json:"lastStatus,omitempty"`
	LastDuration      string `json:"lastDuration,omitempty"`
	LastError         string `json:"lastError,omitempty"`
	ConsecutiveErrors int    `json:"consecutiveErrors,omitempty"`
	Message           string `json:"message,omitempty"`
	MessagePreview    string `json:"messagePreview,omitempty"`
}

// CronList is the payload of the cron endpoint.
type CronList struct {
	Jobs  []CronJob `json:"jobs"`
	Error string    `json:"error,omitempty"`
}

// Schedule summarizes the heartbeat and cron tasks of one agent workspace.
type Schedule struct {
	AgentID     string    `json:"agentId"`
	Workspace   string    `json:"workspace"`
	Emoji       string    `json:"emoji"`
	Name        string    `json:"name"`
	HasSchedule bool      `json:"hasSchedule"`
	Tasks       []CronJob `json:"tasks"`
}

// ScheduleList is the payload of the schedules endpoint.
type ScheduleList struct {
	Schedules []Schedule `json:"schedules"`
	Error     string     `json:"error,omitempty"`
}
