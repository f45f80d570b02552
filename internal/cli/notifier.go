package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/brodao2/tds-gaia/internal/chat"
)

var (
	gaiaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	actionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Underline(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// consoleNotifier prints UI-level notifications outside the chat
// transcript.
type consoleNotifier struct {
	out io.Writer
}

func newConsoleNotifier() *consoleNotifier {
	return &consoleNotifier{out: os.Stderr}
}

func (n *consoleNotifier) Error(msg string) {
	fmt.Fprintln(n.out, errorStyle.Render("✗ "+msg))
}

func (n *consoleNotifier) Info(msg string) {
	fmt.Fprintln(n.out, infoStyle.Render("ℹ "+msg))
}

func (n *consoleNotifier) Progress(msg string) {
	fmt.Fprintln(n.out, pendingStyle.Render("… "+msg))
}

// renderMessage formats one chat message for the terminal.
func renderMessage(m chat.Message) string {
	style := gaiaStyle
	if m.Author != chat.AuthorGaia {
		style = userStyle
	}

	text := m.Text
	switch m.Kind {
	case chat.KindInfo:
		text = infoStyle.Render(text)
	case chat.KindWarning:
		text = warnStyle.Render(text)
	}
	if m.InProcess {
		text += pendingStyle.Render(" …")
	}

	line := style.Render(m.Author+">") + " " + text
	for _, a := range m.Actions {
		line += "\n  " + actionStyle.Render("["+a.Caption+"]") +
			infoStyle.Render(" ("+a.Command+")")
	}
	return line
}
