package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/freely-dev/freely/internal/agent"
	"github.com/freely-dev/freely/internal/host"
	"github.com/freely-dev/freely/internal/types"
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("session", "", "session ID (new session when omitted)")
	runCmd.Flags().String("task", "", "task ID to associate with this execution")
	runCmd.Flags().String("model", "", "model override")
	runCmd.Flags().String("permission-mode", "", "permission mode passed to the tool")
}

var runCmd = &cobra.Command{
	Use:   "run <tool> <prompt>",
	Short: "Run a prompt through an agent tool",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		toolType, err := types.ParseToolType(args[0])
		if err != nil {
			return err
		}
		prompt := strings.Join(args[1:], " ")

		app := newApp(host.Unavailable{})

		sessionFlag, _ := cmd.Flags().GetString("session")
		taskFlag, _ := cmd.Flags().GetString("task")
		model, _ := cmd.Flags().GetString("model")
		permissionMode, _ := cmd.Flags().GetString("permission-mode")
		if model == "" {
			model = app.cfg.Defaults.Model
		}
		if permissionMode == "" {
			permissionMode = app.cfg.Defaults.PermissionMode
		}

		sessionID := types.ToSessionID(sessionFlag)
		if sessionFlag == "" {
			sessionID = types.NewSessionID()
			fmt.Fprintf(os.Stderr, "session: %s\n", sessionID)
		}

		req := agent.Request{
			SessionID:      sessionID,
			Prompt:         prompt,
			TaskID:         types.ToTaskID(taskFlag),
			PermissionMode: permissionMode,
			Model:          model,
		}

		cb := &agent.Callbacks{
			OnStreamChunk: func(_ types.MessageID, text string) {
				fmt.Print(text)
			},
			OnStreamEnd: func(types.MessageID) {
				fmt.Println()
			},
			OnStreamError: func(_ types.MessageID, err error) {
				fmt.Fprintf(os.Stderr, "\nstream ended: %v\n", err)
			},
		}

		res, err := app.dispatcher.Execute(context.Background(), toolType, req, cb)
		if err != nil {
			return err
		}
		if res.Err != "" {
			return fmt.Errorf("%s", res.Err)
		}
		// No streaming happened (headless placeholder path): print the
		// response text directly.
		if len(res.AssistantMessageIDs) == 0 {
			fmt.Println(res.ResponseText)
		}
		if res.TokenUsage != nil {
			fmt.Fprintf(os.Stderr, "tokens: %d in, %d out\n",
				res.TokenUsage.InputTokens, res.TokenUsage.OutputTokens)
		}
		return nil
	},
}
