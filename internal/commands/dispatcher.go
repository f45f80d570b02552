// Package commands implements the action handlers behind the external
// command surface: explain, typify, health, login and friends.
package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// HandlerFunc executes one external action.
type HandlerFunc func(ctx context.Context, args ...any) error

// Dispatcher routes external action ids to their handlers. It implements
// the engine's Executor contract.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	log      *zap.Logger
}

// NewDispatcher builds an empty dispatcher.
func NewDispatcher(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{handlers: map[string]HandlerFunc{}, log: log}
}

// Register binds an action id to its handler. Re-registering replaces the
// previous handler.
func (d *Dispatcher) Register(actionID string, fn HandlerFunc) {
	d.handlers[actionID] = fn
}

// Execute runs the handler bound to the action id.
func (d *Dispatcher) Execute(ctx context.Context, actionID string, args ...any) error {
	fn, ok := d.handlers[actionID]
	if !ok {
		return fmt.Errorf("no handler registered for action %q", actionID)
	}
	d.log.Debug("executing action", zap.String("action", actionID))
	return fn(ctx, args...)
}
