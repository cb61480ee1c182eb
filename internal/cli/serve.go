package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/soyeahso/clawchat/internal/cache"
	"github.com/soyeahso/clawchat/internal/config"
	"github.com/soyeahso/clawchat/internal/hooks"
	"github.com/soyeahso/clawchat/internal/logging"
	"github.com/soyeahso/clawchat/internal/metrics"
	"github.com/soyeahso/clawchat/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		port       int
		bind       string
		gatewayURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ClawChat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			if gatewayURL != "" {
				cfg.Gateway.URL = gatewayURL
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			// The --log-level flag wins over the config file.
			level := cfg.Logging.Level
			if logLevel != "" {
				level = logLevel
			}
			log = logging.NewStyled(level, cfg.Logging.Style)

			hookMgr := hooks.NewManager(log)
			hookMgr.OnAll("log", func(ctx context.Context, p hooks.Payload) error {
				log.Debug().Str("event", p.Event).Interface("data", p.Data).Msg("hook")
				return nil
			})

			m := metrics.New()
			srv := server.New(cfg, log,
				server.WithHooks(hookMgr),
				server.WithMetrics(m),
				server.WithCache(cache.New(cache.WithObserver(m))),
			)

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (auto, lan, loopback, custom)")
	cmd.Flags().StringVar(&gatewayURL, "gateway-url", "", "override the OpenClaw gateway URL")

	return cmd
}
