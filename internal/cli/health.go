package cli

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/brodao2/tds-gaia/internal/chat"
)

func init() {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check service availability",
		Long:  "Run the availability check, following the reconnection hints the service may return. Cancel a reconnection wait with Ctrl+C.",
		Run:   runHealth,
	}

	cmd.Flags().BoolP("quiet", "q", false, "Suppress the raw error payload narration")

	RootCmd.AddCommand(cmd)
}

func runHealth(cmd *cobra.Command, args []string) {
	a, err := newApp("")
	if err != nil {
		exitErr("health", err)
	}
	defer a.log.Sync()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	printTranscript(a)

	quiet, _ := cmd.Flags().GetBool("quiet")
	if err := a.dispatch.Execute(ctx, chat.ActionHealth, !quiet); err != nil {
		os.Exit(1)
	}
}
