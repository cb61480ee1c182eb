package domain

import "encoding/json"

// AgentSummary is one entry of the agent list.
type AgentSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// AgentList is the payload of the agents endpoint.
type AgentList struct {
	Agents []AgentSummary `json:"agents"`
	Error  string         `json:"error,omitempty"`
}

// AgentDetail describes a single agent together with the markdown documents
// found at the root of its workspace.
type AgentDetail struct {
	ID        string            `json:"id"`
	Name      *string           `json:"name"`
	Workspace string            `json:"workspace"`
	AgentDir  *string           `json:"agentDir"`
	Identity  json.RawMessage   `json:"identity"`
	Model     json.RawMessage   `json:"model"`
	Docs      map[string]string `json:"docs"`
}
