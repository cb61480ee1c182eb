package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/soyeahso/clawchat/internal/llm"
	"github.com/soyeahso/clawchat/internal/openclaw"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var (
		agentID   string
		serverURL string
		user      string
		noStream  bool
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a message to an agent through a running ClawChat server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				serverURL = localServerURL(cfg)
			}
			if agentID == "" {
				agentID = openclaw.DefaultAgentID
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			req := llm.CompletionRequest{
				Model:    llm.AgentModel(agentID),
				Messages: []llm.Message{{Role: llm.RoleUser, Content: strings.Join(args, " ")}},
				User:     user,
			}
			client := llm.NewChatClient(serverURL)
			return runChat(ctx, client, cmd.OutOrStdout(), cmd.ErrOrStderr(), req, !noStream)
		},
	}

	cmd.Flags().StringVar(&agentID, "agent", "", "agent ID to talk to (default main)")
	cmd.Flags().StringVar(&serverURL, "server", "", "ClawChat server URL (default from config)")
	cmd.Flags().StringVar(&user, "user", "", "session user key suffix")
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "wait for the full answer instead of streaming")

	return cmd
}

// runChat sends req and prints the answer to out. Thinking and metadata go
// to errOut.
func runChat(ctx context.Context, c llm.Client, out, errOut io.Writer, req llm.CompletionRequest, stream bool) error {
	if !stream {
		result, err := c.Complete(ctx, req)
		if err != nil {
			return err
		}
		if result.Thinking != "" {
			fmt.Fprintf(errOut, "[thinking] %s\n", result.Thinking)
		}
		fmt.Fprintln(out, result.Content)
		printMeta(errOut, result)
		return nil
	}

	ch, err := c.Stream(ctx, req)
	if err != nil {
		return err
	}
	for evt := range ch {
		switch evt.Type {
		case llm.EventDelta:
			fmt.Fprint(out, evt.Content)
		case llm.EventThinking:
			fmt.Fprint(errOut, evt.Content)
		case llm.EventError:
			fmt.Fprintln(out)
			return errors.New(evt.Error)
		case llm.EventDone:
			fmt.Fprintln(out)
			if evt.Response != nil {
				printMeta(errOut, evt.Response)
			}
			return nil
		}
	}
	// Closed without a done event: the context was cancelled.
	fmt.Fprintln(out)
	return ctx.Err()
}

func printMeta(w io.Writer, r *llm.CompletionResponse) {
	if r.Model == "" {
		return
	}
	fmt.Fprintf(w, "\n[model=%s duration=%s]\n", r.Model, r.Duration.Round(time.Millisecond))
}
