package openclaw

import (
	"encoding/json"

	"github.com/soyeahso/clawchat/internal/domain"
)

// DefaultEmoji is shown for agents whose identity sets no emoji.
const DefaultEmoji = "🤖"

// Agent is one entry of agents.list.
type Agent struct {
	ID        string          `json:"id"`
	Name      *string         `json:"name"`
	Workspace string          `json:"workspace"`
	AgentDir  *string         `json:"agentDir"`
	Identity  json.RawMessage `json:"identity"`
	Model     json.RawMessage `json:"model"`
}

// Identity is the display identity of an agent after defaults are applied.
type Identity struct {
	Name        string
	Emoji       string
	Description string
	Theme       string
}

type rawIdentity struct {
	Name        *string `json:"name"`
	Emoji       *string `json:"emoji"`
	Description *string `json:"description"`
	Theme       string  `json:"theme"`
}

// Profile returns the agent identity. A missing name falls back to the
// agent ID and a missing emoji to DefaultEmoji.
func (a Agent) Profile() Identity {
	var raw rawIdentity
	// Identities that are not objects are treated as empty.
	_ = json.Unmarshal(a.Identity, &raw)

	id := Identity{Name: a.ID, Emoji: DefaultEmoji, Theme: raw.Theme}
	if raw.Name != nil {
		id.Name = *raw.Name
	}
	if raw.Emoji != nil {
		id.Emoji = *raw.Emoji
	}
	if raw.Description != nil {
		id.Description = *raw.Description
	}
	return id
}

// Summary renders the agent for the agent list.
func (a Agent) Summary() domain.AgentSummary {
	p := a.Profile()
	return domain.AgentSummary{
		ID:          a.ID,
		Name:        p.Name,
		Emoji:       p.Emoji,
		Description: p.Description,
	}
}

// IdentityJSON returns the identity object as configured, or {} when absent.
func (a Agent) IdentityJSON() json.RawMessage {
	return objectOrEmpty(a.Identity)
}

// ModelJSON returns the model setting as configured (a string or an object),
// or {} when absent.
func (a Agent) ModelJSON() json.RawMessage {
	return objectOrEmpty(a.Model)
}

func objectOrEmpty(m json.RawMessage) json.RawMessage {
	if len(m) == 0 || string(m) == "null" {
		return json.RawMessage("{}")
	}
	return m
}

// Summaries renders every configured agent in list order.
func (c *Config) Summaries() []domain.AgentSummary {
	out := make([]domain.AgentSummary, 0, len(c.Agents.List))
	for _, a := range c.Agents.List {
		out = append(out, a.Summary())
	}
	return out
}
