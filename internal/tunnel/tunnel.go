// Package tunnel inspects and starts the ngrok tunnel that publishes the
// admin UI.
package tunnel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/exec"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"github.com/soyeahso/clawchat/internal/domain"
	"github.com/soyeahso/clawchat/internal/logging"
)

// Probing an absent ngrok costs a full ProbeTimeout on every status request,
// so repeated failures open the breaker for probeCooldown.
const (
	probeTripAfter = 3
	probeCooldown  = 30 * time.Second
)

// Manager talks to the local ngrok agent API.
type Manager struct {
	APIURL       string
	Command      string
	Port         int
	ProbeTimeout time.Duration

	client  *http.Client
	log     *logging.Logger
	breaker *gobreaker.CircuitBreaker
	launch  func(name string, args ...string) error
}

// NewManager creates a Manager. ngrok is expected to expose its agent API at
// apiURL and to forward to port once started.
func NewManager(apiURL, command string, port int, probeTimeout time.Duration, log *logging.Logger) *Manager {
	m := &Manager{
		APIURL:       apiURL,
		Command:      command,
		Port:         port,
		ProbeTimeout: probeTimeout,
		client:       &http.Client{Timeout: probeTimeout},
		log:          log.Sub("tunnel"),
	}
	m.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "ngrok-probe",
		Timeout: probeCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= probeTripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.log.Debug().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("probe breaker state changed")
		},
	})
	m.launch = m.startDetached
	return m
}

type tunnelList struct {
	Tunnels []struct {
		Proto     string `json:"proto"`
		PublicURL string `json:"public_url"`
	} `json:"tunnels"`
}

// PublicURL returns the https URL of the first running tunnel, or "" when
// ngrok runs without one. While the probe breaker is open it fails fast with
// gobreaker.ErrOpenState.
func (m *Manager) PublicURL(ctx context.Context) (string, error) {
	url, err := m.breaker.Execute(func() (any, error) {
		return m.probe(ctx)
	})
	if err != nil {
		return "", err
	}
	return url.(string), nil
}

func (m *Manager) probe(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.APIURL, nil)
	if err != nil {
		return "", fmt.Errorf("building tunnel probe: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("probing ngrok: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("probing ngrok: status %d", resp.StatusCode)
	}

	var list tunnelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("decoding ngrok tunnels: %w", err)
	}
	for _, t := range list.Tunnels {
		if t.Proto == "https" {
			return t.PublicURL, nil
		}
	}
	return "", nil
}

// Start reuses a running https tunnel or launches ngrok in the background.
// It does not wait for the new tunnel to come up.
func (m *Manager) Start(ctx context.Context) domain.TunnelStart {
	url, err := m.PublicURL(ctx)
	if err != nil {
		m.log.Debug().Err(err).Msg("ngrok not reachable")
	}
	if url != "" {
		return domain.TunnelStart{NgrokURL: url, Status: "already running"}
	}

	if err := m.launch(m.Command, "http", strconv.Itoa(m.Port)); err != nil {
		m.log.Warn().Err(err).Str("cmd", m.Command).Msg("failed to start ngrok")
		return domain.TunnelStart{Error: err.Error()}
	}
	m.log.Info().Int("port", m.Port).Msg("ngrok starting")
	return domain.TunnelStart{Status: "starting", Message: "Starting ngrok..."}
}

// startDetached starts the process without tying it to any request and
// reaps it when it exits.
func (m *Manager) startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			m.log.Debug().Err(err).Str("cmd", name).Msg("ngrok exited")
		}
	}()
	return nil
}
