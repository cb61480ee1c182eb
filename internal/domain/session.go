package domain

// SessionView is a live conversation session reported by the OpenClaw CLI.
type SessionView struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name,omitempty"`
	AgentID   string `json:"agentId,omitempty"`
	Source    string `json:"source,omitempty"`
	UpdatedAt int64  `json:"updatedAt,omitempty"` // unix milliseconds
}

// SessionList is the payload of the sessions endpoint.
type SessionList struct {
	Sessions []SessionView `json:"sessions"`
	Error    string        `json:"error,omitempty"`
}
