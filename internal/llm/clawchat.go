package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/soyeahso/clawchat/internal/version"
)

// ChatPath is the relay endpoint of a ClawChat server.
const ChatPath = "/api/chat"

// ChatClient sends completions through a ClawChat server.
type ChatClient struct {
	baseURL string
	client  *http.Client
}

// NewChatClient creates a client for the server at baseURL. Requests are
// bounded only by their context so long streams are not cut off.
func NewChatClient(baseURL string) *ChatClient {
	return &ChatClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// Name returns the provider name.
func (c *ChatClient) Name() string {
	return "clawchat"
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type streamChunk struct {
	Type    string          `json:"type"`
	Delta   json.RawMessage `json:"delta"`
	Model   string          `json:"model"`
	Choices []struct {
		Delta struct {
			Content json.RawMessage `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type contentItem struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Thinking string `json:"thinking"`
}

// Complete sends a non-streaming completion request.
func (c *ChatClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()
	req.Stream = false

	resp, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	out := &CompletionResponse{Model: result.Model, Duration: time.Since(start)}
	if len(result.Choices) > 0 {
		out.Content, out.Thinking = splitContent(result.Choices[0].Message.Content)
	}
	return out, nil
}

// Stream sends a streaming completion request. HTTP errors are returned
// directly; failures after the stream has started arrive as an error event.
func (c *ChatClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	start := time.Now()
	req.Stream = true

	resp, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}

	eventChan := make(chan StreamEvent)
	go c.readStream(ctx, resp.Body, eventChan, start)
	return eventChan, nil
}

func (c *ChatClient) readStream(ctx context.Context, body io.ReadCloser, eventChan chan<- StreamEvent, start time.Time) {
	defer close(eventChan)
	defer body.Close()

	send := func(evt StreamEvent) bool {
		select {
		case eventChan <- evt:
			return true
		case <-ctx.Done():
			return false
		}
	}

	var content, thinking strings.Builder
	var model string

	scanner := newServerSentEventScanner(body)
	for scanner.Scan() {
		data := scanner.Data()
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if chunk.Model != "" {
			model = chunk.Model
		}

		var text, thought string
		if chunk.Type == "response.output_text.delta" {
			_ = json.Unmarshal(chunk.Delta, &text)
		} else if len(chunk.Choices) > 0 {
			text, thought = splitContent(chunk.Choices[0].Delta.Content)
		}

		if thought != "" {
			thinking.WriteString(thought)
			if !send(StreamEvent{Type: EventThinking, Content: thought}) {
				return
			}
		}
		if text != "" {
			content.WriteString(text)
			if !send(StreamEvent{Type: EventDelta, Content: text}) {
				return
			}
		}
	}

	if err := scanner.Err(); err != nil {
		send(StreamEvent{Type: EventError, Error: fmt.Sprintf("reading stream: %v", err)})
		return
	}

	send(StreamEvent{
		Type: EventDone,
		Response: &CompletionResponse{
			Content:  content.String(),
			Thinking: thinking.String(),
			Model:    model,
			Duration: time.Since(start),
		},
	})
}

// post sends req and returns the response when the server answered 200.
func (c *ChatClient) post(ctx context.Context, req CompletionRequest) (*http.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ChatPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ProviderError{Provider: c.Name(), Code: resp.StatusCode, Message: errorMessage(body)}
	}
	return resp, nil
}

// splitContent reads a message content that is either a string or a list of
// typed parts, returning the text and the thinking parts separately.
func splitContent(raw json.RawMessage) (text, thinking string) {
	if len(raw) == 0 {
		return "", ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, ""
	}
	var items []contentItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return "", ""
	}
	var tb, th strings.Builder
	for _, it := range items {
		switch it.Type {
		case "text":
			tb.WriteString(it.Text)
		case "thinking":
			th.WriteString(it.Thinking)
		}
	}
	return tb.String(), th.String()
}

// errorMessage extracts a readable message from an error body such as
// {"error":"..."} or {"error":{"message":"..."}}.
func errorMessage(body []byte) string {
	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &flat) == nil && flat.Error != "" {
		return flat.Error
	}
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	return strings.TrimSpace(string(body))
}
