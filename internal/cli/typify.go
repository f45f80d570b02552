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
		Use:   "typify <file>",
		Short: "Infer types for the function at a position in a source file",
		Args:  cobra.ExactArgs(1),
		Run:   runTypify,
	}

	cmd.Flags().IntP("line", "l", 1, "Cursor line (1-based)")
	cmd.Flags().Bool("apply", false, "Apply the inferred declarations to the file")

	RootCmd.AddCommand(cmd)
}

func runTypify(cmd *cobra.Command, args []string) {
	a, err := newApp(args[0])
	if err != nil {
		exitErr("typify", err)
	}
	defer a.log.Sync()

	line, _ := cmd.Flags().GetInt("line")
	a.buffer.SetCursor(editor.Position{Line: line - 1})

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	printTranscript(a)

	if err := a.dispatch.Execute(ctx, chat.ActionTypify); err != nil {
		exitErr("typify", err)
	}

	apply, _ := cmd.Flags().GetBool("apply")
	if !apply {
		return
	}
	if err := a.dispatch.Execute(ctx, chat.ActionUpdateTypify); err != nil {
		exitErr("typify", err)
	}
	if err := os.WriteFile(args[0], []byte(a.buffer.Content()), 0o644); err != nil {
		exitErr("typify", err)
	}
}
