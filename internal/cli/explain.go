package cli

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/brodao2/tds-gaia/internal/chat"
	"github.com/brodao2/tds-gaia/internal/editor"
)

func init() {
	cmd := &cobra.Command{
		Use:   "explain <file>",
		Short: "Explain the word at a position in a source file",
		Args:  cobra.ExactArgs(1),
		Run:   runExplain,
	}

	cmd.Flags().IntP("line", "l", 1, "Cursor line (1-based)")
	cmd.Flags().Int("col", 1, "Cursor column (1-based)")

	RootCmd.AddCommand(cmd)
}

func runExplain(cmd *cobra.Command, args []string) {
	a, err := newApp(args[0])
	if err != nil {
		exitErr("explain", err)
	}
	defer a.log.Sync()

	line, _ := cmd.Flags().GetInt("line")
	col, _ := cmd.Flags().GetInt("col")
	a.buffer.SetCursor(editor.Position{Line: line - 1, Col: col - 1})

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	printTranscript(a)

	if err := a.dispatch.Execute(ctx, chat.ActionExplainWord); err != nil {
		exitErr("explain", err)
	}
}
