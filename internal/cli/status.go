package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/soyeahso/clawchat/internal/config"
	"github.com/soyeahso/clawchat/internal/domain"
	"github.com/soyeahso/clawchat/internal/openclaw"
	"github.com/soyeahso/clawchat/internal/version"
	"github.com/spf13/cobra"
)

// statusProbeTimeout bounds the request to a running server.
const statusProbeTimeout = 2 * time.Second

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show ClawChat status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ClawChat %s (commit %s)\n\n", version.Version, version.Commit)
			fmt.Fprintf(out, "Config:   %s\n", paths.Config)

			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(out, "Config:   error loading: %v\n", err)
				return nil
			}

			fmt.Fprintf(out, "Server:   port=%d bind=%s auth=%s tls=%s metrics=%s\n",
				cfg.Server.Port, cfg.Server.Bind,
				onOff(cfg.Server.APIKey != ""), onOff(cfg.Server.TLS.Enabled), onOff(cfg.Server.MetricsEnabled()))
			fmt.Fprintf(out, "Gateway:  %s\n", cfg.Gateway.URL)
			fmt.Fprintf(out, "OpenClaw: %s\n", cfg.OpenClaw.ConfigPath)
			fmt.Fprintf(out, "Cron:     %s\n", cfg.OpenClaw.CronPath)
			fmt.Fprintf(out, "Shared:   %s\n", cfg.OpenClaw.SharedDir)
			fmt.Fprintln(out)

			oc, err := openclaw.Load(cfg.OpenClaw.ConfigPath)
			if err != nil {
				fmt.Fprintf(out, "Agents:   error loading openclaw config: %v\n", err)
			} else {
				ids := make([]string, 0, len(oc.Agents.List))
				for _, a := range oc.Agents.List {
					ids = append(ids, a.ID)
				}
				fmt.Fprintf(out, "Agents:   %d (%s)\n", len(ids), strings.Join(ids, ", "))
				fmt.Fprintf(out, "Ports:    gateway=%d http=%d\n", oc.GatewayPort(), oc.GatewayHTTPPort())
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), statusProbeTimeout)
			defer cancel()
			if st, err := probeServer(ctx, cfg); err != nil {
				fmt.Fprintf(out, "Running:  no (%v)\n", err)
			} else {
				tunnel := "none"
				if st.NgrokURL != nil {
					tunnel = *st.NgrokURL
				}
				fmt.Fprintf(out, "Running:  %s uptime=%s tunnel=%s\n", st.Status, st.Uptime, tunnel)
			}

			// Validation
			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Fprintf(out, "\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Fprintf(out, "  - %s\n", issue)
				}
			}

			return nil
		},
	}

	return cmd
}

// localServerURL is the base URL of the server described by cfg as seen
// from this host.
func localServerURL(cfg config.Config) string {
	scheme := "http"
	if cfg.Server.TLS.Enabled {
		scheme = "https"
	}
	host := "127.0.0.1"
	if cfg.Server.Bind == "custom" && cfg.Server.CustomBindHost != "" && cfg.Server.CustomBindHost != "0.0.0.0" {
		host = cfg.Server.CustomBindHost
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port))
}

// probeServer asks a running server for its status.
func probeServer(ctx context.Context, cfg config.Config) (domain.Status, error) {
	var st domain.Status
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, localServerURL(cfg)+"/api/status", nil)
	if err != nil {
		return st, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return st, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return st, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("decoding status: %w", err)
	}
	return st, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
