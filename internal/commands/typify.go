package commands

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/brodao2/tds-gaia/internal/chat"
	"github.com/brodao2/tds-gaia/internal/editor"
)

// pendingTypes holds the declarations produced by the last typify run until
// the user activates the apply action.
type pendingTypes struct {
	doc  editor.Document
	at   editor.Position
	text string
}

// Typify infers types for the function under the cursor and offers an
// embedded action to apply the resulting declarations to the source. When
// no enclosing definition is found, it narrates a warning and stops before
// any external call.
func (h *Handlers) Typify(ctx context.Context, _ ...any) error {
	doc, ok := h.editor.ActiveDocument()
	if !ok {
		h.chat.GaiaWarning("The current editor is not valid for this operation.")
		return nil
	}

	if h.cfg.ClearBeforeExplain {
		h.chat.User(ctx, "clear", false)
	}

	bounds, ok := editor.FindFunctionBounds(doc, doc.Selection().Start)
	if !ok {
		h.chat.GaiaWarningLines([]string{
			"I couldn't identify a function or method to typify.",
			"Try placing the cursor on another line of the implementation.",
		})
		return nil
	}
	code := doc.Text(bounds)
	if strings.TrimSpace(code) == "" {
		h.chat.GaiaWarning("I couldn't identify a function or method to typify.")
		return nil
	}

	where := editor.LinkToSource(doc.URI(), bounds)
	messageID := h.chat.GaiaPending(fmt.Sprintf("Typifying code %s", where))

	resp, err := h.ia.Typify(ctx, code)
	if err != nil || resp == nil || len(resp.Types) == 0 {
		if err != nil {
			h.log.Warn("typify failed", zap.Error(err))
		}
		h.chat.GaiaUpdate(messageID, "Sorry, I couldn't typify it because of an internal problem.")
		return nil
	}

	lines := make([]string, 0, len(resp.Types)+1)
	decls := make([]string, 0, len(resp.Types))
	for _, t := range resp.Types {
		lines = append(lines, fmt.Sprintf("- **%s** as **%s**", t.Var, t.Type))
		decls = append(decls, fmt.Sprintf("local %s as %s", t.Var, t.Type))
	}
	lines = append(lines, h.chat.CommandText(chat.ActionUpdateTypify))
	h.chat.GaiaUpdateLines(messageID, lines)

	h.pendingTypes = &pendingTypes{
		doc:  doc,
		at:   editor.Position{Line: bounds.Start.Line + 1},
		text: strings.Join(decls, "\n") + "\n",
	}
	return nil
}

// UpdateTypify inserts the declarations produced by the last typify run
// right below the definition line.
func (h *Handlers) UpdateTypify(_ context.Context, _ ...any) error {
	if h.pendingTypes == nil {
		h.chat.GaiaWarning("There are no inferred types waiting to be applied.")
		return nil
	}

	p := h.pendingTypes
	h.pendingTypes = nil
	if err := p.doc.InsertSnippet(editor.Range{Start: p.at, End: p.at}, p.text); err != nil {
		h.log.Warn("apply types failed", zap.Error(err))
		h.chat.GaiaWarning("I couldn't apply the types to the source.")
		return nil
	}

	h.chat.Gaia("Types applied to the source.")
	return nil
}
