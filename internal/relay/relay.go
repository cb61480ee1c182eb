// Package relay forwards chat completion requests to the OpenClaw gateway
// and relays the answer back, either buffered or as a live event stream.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/soyeahso/clawchat/internal/logging"
	"github.com/soyeahso/clawchat/internal/version"
)

// CompletionsPath is appended to the gateway URL.
const CompletionsPath = "/v1/chat/completions"

// Outcome is how a relay ended.
type Outcome string

const (
	Success        Outcome = "success"
	UpstreamError  Outcome = "upstream_error"
	TransportError Outcome = "transport_error"
)

// ErrTimeout is the cancellation cause when the gateway stays silent for
// longer than the configured timeout.
var ErrTimeout = errors.New("gateway timed out")

// errClientGone marks a stream that ended because the client went away.
var errClientGone = errors.New("client disconnected")

// Config describes the upstream gateway.
type Config struct {
	URL       string
	Token     string
	Origin    string
	Timeout   time.Duration // bounds each wait: response headers and every body read
	ChunkSize int
}

// Result summarizes one relayed request.
type Result struct {
	Outcome  Outcome
	Stream   bool
	Status   int   // status sent downstream
	Bytes    int64 // body bytes sent downstream
	Duration time.Duration
	Err      error
}

// Relay forwards chat requests to one gateway. It is safe for concurrent use.
type Relay struct {
	cfg    Config
	client *http.Client
	log    *logging.Logger
}

// New creates a relay for cfg.
func New(cfg Config, log *logging.Logger) *Relay {
	if cfg.Origin == "" {
		cfg.Origin = "*"
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 8192
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Timeout

	return &Relay{
		cfg: cfg,
		// No Client.Timeout: it would cap the total length of a stream.
		// Redirects are relayed, not followed: following would turn the POST
		// into a body-less GET.
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		log:    log.Sub("relay"),
	}
}

// WantsStream reports whether the request body asks for a streamed answer.
// Bodies that are not JSON objects never stream.
func WantsStream(body []byte) bool {
	var req struct {
		Stream any `json:"stream"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return false
	}
	b, _ := req.Stream.(bool)
	return b
}

// Serve forwards body to the gateway and writes the answer to w. The upstream
// request is bound to r's context, so a client disconnect cancels it.
func (rl *Relay) Serve(w http.ResponseWriter, r *http.Request, body []byte) Result {
	start := time.Now()
	res := rl.serve(w, r, body)
	res.Duration = time.Since(start)
	return res
}

func (rl *Relay) serve(w http.ResponseWriter, r *http.Request, body []byte) Result {
	stream := WantsStream(body)
	rl.log.Debug().Bool("stream", stream).Int("bytes", len(body)).Msg("forwarding chat request")

	// The server write timeout is meant for ordinary requests; a chat answer
	// may take up to the gateway timeout in either mode.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	ctx, cancel := context.WithCancelCause(r.Context())
	defer cancel(nil)
	watchdog := time.AfterFunc(rl.cfg.Timeout, func() { cancel(ErrTimeout) })
	defer watchdog.Stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rl.cfg.URL+CompletionsPath, bytes.NewReader(body))
	if err != nil {
		return rl.transportError(w, stream, fmt.Errorf("building gateway request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+rl.cfg.Token)
	req.Header.Set("Origin", rl.cfg.Origin)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := rl.client.Do(req)
	if err != nil {
		return rl.transportError(w, stream, rl.cause(ctx, err))
	}
	defer resp.Body.Close()
	watchdog.Reset(rl.cfg.Timeout)

	src := &idleReader{r: resp.Body, watchdog: watchdog, timeout: rl.cfg.Timeout}

	// Anything but 2xx, redirects included, goes back verbatim in both modes.
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, err := io.ReadAll(src)
		if err != nil {
			return rl.transportError(w, stream, rl.cause(ctx, err))
		}
		if loc := resp.Header.Get("Location"); loc != "" {
			w.Header().Set("Location", loc)
		}
		n := writeJSON(w, resp.StatusCode, data)
		outcome := UpstreamError
		if resp.StatusCode < http.StatusBadRequest {
			outcome = Success
		}
		return Result{Outcome: outcome, Stream: stream, Status: resp.StatusCode, Bytes: n}
	}

	if !stream {
		data, err := io.ReadAll(src)
		if err != nil {
			return rl.transportError(w, stream, rl.cause(ctx, err))
		}
		n := writeJSON(w, resp.StatusCode, data)
		return Result{Outcome: Success, Status: resp.StatusCode, Bytes: n}
	}

	return rl.pipe(ctx, w, rc, src)
}

// pipe copies the event stream chunk by chunk, flushing after every write.
// Once headers are out, failures can only end the stream.
func (rl *Relay) pipe(ctx context.Context, w http.ResponseWriter, rc *http.ResponseController, src io.Reader) Result {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	res := Result{Outcome: Success, Stream: true, Status: http.StatusOK}
	buf := make([]byte, rl.cfg.ChunkSize)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			written, err := w.Write(buf[:n])
			res.Bytes += int64(written)
			if err == nil {
				err = rc.Flush()
			}
			if err != nil {
				res.Outcome = TransportError
				res.Err = fmt.Errorf("%w: %v", errClientGone, err)
				return res
			}
		}
		if errors.Is(readErr, io.EOF) {
			return res
		}
		if readErr != nil {
			res.Outcome = TransportError
			if r := context.Cause(ctx); errors.Is(r, context.Canceled) {
				res.Err = errClientGone
			} else {
				res.Err = rl.cause(ctx, readErr)
			}
			return res
		}
	}
}

// transportError answers 500 with the failure message.
func (rl *Relay) transportError(w http.ResponseWriter, stream bool, err error) Result {
	payload, _ := json.Marshal(map[string]string{"error": err.Error()})
	n := writeJSON(w, http.StatusInternalServerError, payload)
	return Result{Outcome: TransportError, Stream: stream, Status: http.StatusInternalServerError, Bytes: n, Err: err}
}

// cause replaces a context error with the reason the context was cancelled.
func (rl *Relay) cause(ctx context.Context, err error) error {
	if c := context.Cause(ctx); errors.Is(c, ErrTimeout) {
		return fmt.Errorf("%w after %s", ErrTimeout, rl.cfg.Timeout)
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w after %s", ErrTimeout, rl.cfg.Timeout)
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, body []byte) int64 {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	n, _ := w.Write(body)
	return int64(n)
}

// idleReader pushes the watchdog back after every successful read.
type idleReader struct {
	r        io.Reader
	watchdog *time.Timer
	timeout  time.Duration
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 {
		ir.watchdog.Reset(ir.timeout)
	}
	return n, err
}
