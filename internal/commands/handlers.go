package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/brodao2/tds-gaia/internal/chat"
	"github.com/brodao2/tds-gaia/internal/config"
	"github.com/brodao2/tds-gaia/internal/editor"
	"github.com/brodao2/tds-gaia/internal/health"
	"github.com/brodao2/tds-gaia/internal/ia"
)

// Params wires the collaborators the handlers need.
type Params struct {
	Chat    *chat.Api
	IA      ia.Api
	Config  *config.Config
	Session *config.Session
	Editor  editor.Editor
	Checker *health.Checker
	Log     *zap.Logger
}

// Handlers owns the action handler set for one session. Failures from
// external collaborators are converted into narration or logging here; they
// never propagate past a dispatch.
type Handlers struct {
	chat    *chat.Api
	ia      ia.Api
	cfg     *config.Config
	session *config.Session
	editor  editor.Editor
	checker *health.Checker
	log     *zap.Logger

	pendingTypes *pendingTypes
}

// New builds the handler set.
func New(p Params) *Handlers {
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	return &Handlers{
		chat:    p.Chat,
		ia:      p.IA,
		cfg:     p.Config,
		session: p.Session,
		editor:  p.Editor,
		checker: p.Checker,
		log:     p.Log,
	}
}

// RegisterAll binds every handler to its action id.
func (h *Handlers) RegisterAll(d *Dispatcher) {
	d.Register(chat.ActionLogin, h.Login)
	d.Register(chat.ActionLogout, h.Logout)
	d.Register(chat.ActionHealth, h.Health)
	d.Register(chat.ActionOpenManual, h.OpenManual)
	d.Register(chat.ActionExplain, h.ExplainWord)
	d.Register(chat.ActionExplainWord, h.ExplainWord)
	d.Register(chat.ActionTypify, h.Typify)
	d.Register(chat.ActionUpdateTypify, h.UpdateTypify)
}

// Login identifies the user against the service. A true first argument
// marks an automatic login fired by the health chain, which leaves the
// greeting to its caller.
func (h *Handlers) Login(ctx context.Context, args ...any) error {
	auto := len(args) > 0 && args[0] == true

	user, err := h.ia.Login(ctx)
	if err != nil {
		h.log.Warn("login failed", zap.Error(err))
		h.chat.GaiaWarning(fmt.Sprintf("I couldn't identify you. Try %s again later.",
			h.chat.CommandText("login")))
		return nil
	}

	h.session.SetUser(&config.User{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	})
	h.log.Info("user logged in", zap.String("user", user.DisplayName))

	if !auto {
		h.chat.CheckUser(ctx, "")
	}
	return nil
}

// Logout drops the session identity. The farewell narration already ran in
// the pre-dispatch handler.
func (h *Handlers) Logout(ctx context.Context, _ ...any) error {
	if err := h.ia.Logout(ctx); err != nil {
		h.log.Warn("remote logout failed", zap.Error(err))
	}
	h.session.Logout()
	return nil
}

// Health runs the availability check and the reconnection chain. A false
// first argument requests the check without detail narration.
func (h *Handlers) Health(ctx context.Context, args ...any) error {
	detail := true
	if len(args) > 0 {
		if d, ok := args[0].(bool); ok {
			detail = d
		}
	}
	return h.checker.Run(ctx, detail)
}

// OpenManual points the user at the full documentation.
func (h *Handlers) OpenManual(_ context.Context, _ ...any) error {
	h.chat.Gaia(fmt.Sprintf("The full documentation is available at %s.", h.cfg.ManualURL))
	return nil
}
