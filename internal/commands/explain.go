package commands

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/brodao2/tds-gaia/internal/editor"
)

// ExplainWord explains the word under the cursor: it narrates a pending
// placeholder, calls the remote service and finalizes the placeholder with
// the explanation. An absent or empty word is not an error; it narrates a
// warning and stops before any external call.
func (h *Handlers) ExplainWord(ctx context.Context, _ ...any) error {
	doc, ok := h.editor.ActiveDocument()
	if !ok {
		h.chat.GaiaWarning("The current editor is not valid for this operation.")
		return nil
	}

	wordRange, ok := doc.WordRangeAt(doc.Selection().Start)
	if !ok {
		h.chat.GaiaWarning("I couldn't identify a word to explain.")
		return nil
	}
	word := strings.TrimSpace(doc.Text(wordRange))
	if word == "" {
		h.chat.GaiaWarning("I couldn't identify a word to explain.")
		return nil
	}

	where := editor.LinkToSource(doc.URI(), wordRange)
	messageID := h.chat.GaiaPending(fmt.Sprintf("Explaining word '%s' %s", word, where))

	explanation, err := h.ia.ExplainCode(ctx, word)
	if err != nil {
		h.log.Warn("explain failed", zap.String("word", word), zap.Error(err))
		h.chat.GaiaUpdate(messageID, "Sorry, I couldn't explain it because of an internal problem.")
		return nil
	}

	if h.cfg.ClearBeforeExplain {
		h.chat.User(ctx, "clear", false)
	}
	h.chat.GaiaUpdate(messageID, explanation)
	return nil
}
