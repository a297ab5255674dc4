package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"travel-planner-backend/internal/client"
)

func newChatCommand() *cobra.Command {
	var (
		backend   string
		sessionID string
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to a running backend; reads lines from stdin when no message is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			c := client.New(backend, timeout, zap.NewNop())
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				fmt.Fprintln(out, c.Reply(cmd.Context(), strings.Join(args, " "), sessionID))
				return nil
			}
			return repl(cmd, c, sessionID, cmd.InOrStdin(), out)
		},
	}
	cmd.Flags().StringVar(&backend, "backend", client.DefaultBaseURL, "backend base URL")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id (random when empty)")
	cmd.Flags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "per request timeout")
	return cmd
}

// repl answers one line at a time. "/clear" resets the conversation and
// "/quit" exits.
func repl(cmd *cobra.Command, c *client.Client, sessionID string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "✈️  Travel planner (session %s). /clear resets, /quit exits.\n", sessionID)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			if err := c.Clear(cmd.Context(), sessionID); err != nil {
				fmt.Fprintln(out, "❌ Could not clear the conversation:", err)
				continue
			}
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}
		fmt.Fprintln(out, c.Reply(cmd.Context(), line, sessionID))
	}
}
