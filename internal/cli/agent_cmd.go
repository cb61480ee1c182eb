package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/soyeahso/clawchat/internal/openclaw"
	"github.com/soyeahso/clawchat/internal/workspace"
	"github.com/spf13/cobra"
)

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Inspect OpenClaw agents",
	}

	cmd.AddCommand(newAgentListCmd())
	cmd.AddCommand(newAgentInfoCmd())
	cmd.AddCommand(newAgentFilesCmd())
	return cmd
}

// loadOpenClaw reads the OpenClaw config named by the ClawChat config.
func loadOpenClaw() (*openclaw.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openclaw.Load(cfg.OpenClaw.ConfigPath)
}

func newAgentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			oc, err := loadOpenClaw()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(oc.Agents.List) == 0 {
				fmt.Fprintln(out, "  (no agents configured)")
				return nil
			}
			for _, a := range oc.Agents.List {
				p := a.Profile()
				fmt.Fprintf(out, "  %s %-12s %-16s %s\n", p.Emoji, a.ID, p.Name, a.Workspace)
			}
			return nil
		},
	}
}

func newAgentInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <agent-id>",
		Short: "Show details about an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oc, err := loadOpenClaw()
			if err != nil {
				return err
			}
			a, err := oc.FindAgent(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := a.Profile()
			fmt.Fprintf(out, "Agent: %s %s (%s)\n", p.Emoji, a.ID, p.Name)
			if p.Description != "" {
				fmt.Fprintf(out, "  About:     %s\n", p.Description)
			}
			fmt.Fprintf(out, "  Model:     %s\n", a.ModelJSON())
			if a.Workspace != "" {
				fmt.Fprintf(out, "  Workspace: %s\n", a.Workspace)
			}
			if a.AgentDir != nil {
				fmt.Fprintf(out, "  AgentDir:  %s\n", *a.AgentDir)
			}

			ws := workspace.New(a.Workspace)
			docs := ws.Docs()
			names := make([]string, 0, len(docs))
			for name := range docs {
				names = append(names, name)
			}
			slices.Sort(names)
			if len(names) > 0 {
				fmt.Fprintf(out, "  Docs:      %s\n", strings.Join(names, ", "))
			}
			fmt.Fprintf(out, "  Heartbeat: %v\n", ws.HasSchedule())
			return nil
		},
	}
}

func newAgentFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files <agent-id> [path]",
		Short: "List or print files in an agent workspace",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oc, err := loadOpenClaw()
			if err != nil {
				return err
			}
			a, err := oc.FindAgent(args[0])
			if err != nil {
				return err
			}

			ws := workspace.New(a.Workspace)
			rel := ""
			if len(args) > 1 {
				rel = args[1]
			}
			if rel != "" {
				info, err := ws.Stat(rel)
				if err != nil {
					return fmt.Errorf("%s: %w", rel, err)
				}
				if !info.IsDir() {
					return printFile(cmd.OutOrStdout(), ws, rel)
				}
			}

			listing, err := ws.List(rel)
			if err != nil {
				return fmt.Errorf("%s: %w", rel, err)
			}
			out := cmd.OutOrStdout()
			for _, f := range listing.Files {
				if f.Size != nil {
					fmt.Fprintf(out, "  %-40s %10d\n", f.Name, *f.Size)
				} else {
					fmt.Fprintf(out, "  %-40s %10s\n", f.Name+"/", "-")
				}
			}
			return nil
		},
	}
}

func printFile(w io.Writer, ws workspace.Workspace, rel string) error {
	content, err := ws.ReadFile(rel)
	if err != nil {
		return fmt.Errorf("%s: %w", rel, err)
	}
	if content.IsImage {
		fmt.Fprintf(w, "<image %s, %d bytes>\n", rel, content.Size)
		return nil
	}
	fmt.Fprint(w, content.Content)
	if !strings.HasSuffix(content.Content, "\n") {
		fmt.Fprintln(w)
	}
	return nil
}
