// Package ia defines the contract with the remote AI service and its HTTP
// client.
package ia

import "context"

// TypifiedVar is one inferred variable type.
type TypifiedVar struct {
	Var  string `json:"var"`
	Type string `json:"type"`
}

// TypifyResponse carries the inferred types for a block of code.
type TypifyResponse struct {
	Types []TypifiedVar `json:"types"`
}

// LoggedUser is the identity returned by a successful login.
type LoggedUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// Api is the remote AI service consumed by the action handlers and the
// health checker.
type Api interface {
	// CheckHealth probes the service. A nil return means the service is
	// usable; the error text of a failed probe may embed a reconnection
	// wait hint that the health checker interprets.
	CheckHealth(ctx context.Context, detail bool) error

	// Login identifies the user against the service.
	Login(ctx context.Context) (*LoggedUser, error)

	// Logout drops the server-side session. Best effort.
	Logout(ctx context.Context) error

	// ExplainCode returns a natural-language explanation of the given code.
	ExplainCode(ctx context.Context, code string) (string, error)

	// Typify infers types for the variables of the given code block.
	Typify(ctx context.Context, code string) (*TypifyResponse, error)
}
