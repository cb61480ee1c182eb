package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestFileEntrySizeOnlyForFiles(t *testing.T) {
	var zero int64
	file := FileEntry{Name: "empty.txt", Path: "empty.txt", Type: EntryFile, Size: &zero}
	dir := FileEntry{Name: "memory", Path: "memory", Type: EntryDirectory}

	assert.JSONEq(t, `{"name":"empty.txt","path":"empty.txt","type":"file","size":0}`, marshal(t, file))
	assert.JSONEq(t, `{"name":"memory","path":"memory","type":"directory"}`, marshal(t, dir))
}

func TestFileContentImageFlag(t *testing.T) {
	text := FileContent{Path: "notes.md", Content: "# hi", Size: 4}
	img := FileContent{Path: "images/pic.png", Content: "data:image/png;base64,AAAA", Size: 3, IsImage: true}

	assert.JSONEq(t, `{"path":"notes.md","content":"# hi","size":4}`, marshal(t, text))
	assert.JSONEq(t, `{"path":"images/pic.png","content":"data:image/png;base64,AAAA","size":3,"isImage":true}`, marshal(t, img))
}

func TestAccountViewNullToken(t *testing.T) {
	masked := "***abcdefghij"
	views := []AccountView{
		{ID: "default", Enabled: true, BotToken: &masked},
		{ID: "backup", Enabled: false},
	}
	assert.JSONEq(t,
		`[{"id":"default","enabled":true,"botToken":"***abcdefghij"},{"id":"backup","enabled":false,"botToken":null}]`,
		marshal(t, views))
}

func TestStatusNgrokURLAlwaysPresent(t *testing.T) {
	s := Status{Status: "online", Gateway: &GatewayPorts{Port: 18789, HTTPPort: 18790}, Uptime: "5m0s"}
	assert.JSONEq(t,
		`{"status":"online","gateway":{"port":18789,"httpPort":18790},"ngrokUrl":null,"uptime":"5m0s"}`,
		marshal(t, s))
}

func TestListErrorsOmittedWhenEmpty(t *testing.T) {
	assert.JSONEq(t, `{"agents":[]}`, marshal(t, AgentList{Agents: []AgentSummary{}}))
	assert.JSONEq(t, `{"agents":[],"error":"boom"}`, marshal(t, AgentList{Agents: []AgentSummary{}, Error: "boom"}))
	assert.JSONEq(t, `{"channels":{}}`, marshal(t, ChannelList{Channels: map[string]ChannelView{}}))
}

func TestAgentDetailNullableFields(t *testing.T) {
	d := AgentDetail{
		ID:        "bot1",
		Workspace: "/ws/bot1",
		Identity:  json.RawMessage(`{"emoji":"🦀"}`),
		Model:     json.RawMessage(`"anthropic/claude"`),
		Docs:      map[string]string{},
	}
	assert.JSONEq(t,
		`{"id":"bot1","name":null,"workspace":"/ws/bot1","agentDir":null,"identity":{"emoji":"🦀"},"model":"anthropic/claude","docs":{}}`,
		marshal(t, d))
}
