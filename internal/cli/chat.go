package cli

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long:  "Open the conversational prompt. Type commands like help, login, explain or typify; end the session with Ctrl+D.",
		Run:   runChat,
	}

	cmd.Flags().StringP("source", "s", "", "Source file to open for explain/typify")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	sourcePath, _ := cmd.Flags().GetString("source")
	a, err := newApp(sourcePath)
	if err != nil {
		exitErr("chat", err)
	}
	defer a.log.Sync()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	printTranscript(a)
	a.chat.CheckUser(ctx, "")

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			a.chat.User(ctx, line, true)
		}
		if ctx.Err() != nil {
			break
		}
		fmt.Print("> ")
	}
}
