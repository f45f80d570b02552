package chat

import (
	"fmt"
	"regexp"
	"strings"
)

// External action ids invoked when a command has no local handler, or when
// its local handler asks for the action to run as well.
const (
	ActionLogin        = "tds-gaia.login"
	ActionLogout       = "tds-gaia.logout"
	ActionOpenManual   = "tds-gaia.open-manual"
	ActionHealth       = "tds-gaia.health"
	ActionExplain      = "tds-gaia.explain"
	ActionExplainWord  = "tds-gaia.explain-word"
	ActionTypify       = "tds-gaia.typify"
	ActionUpdateTypify = "tds-gaia.update-typify"
)

// ProcessFunc is a pre-dispatch handler. It reports whether the command's
// external action should still be invoked after it runs.
type ProcessFunc func(api *Api, input string) bool

// Command describes one recognizable chat command.
type Command struct {
	Name     string
	Aliases  []string
	Pattern  *regexp.Regexp
	Caption  string
	Key      string
	ActionID string
	Process  ProcessFunc
}

// Args returns the argument portion of an input matched by the command's
// recognition pattern, or "" when there is none.
func (c *Command) Args(input string) string {
	m := c.Pattern.FindStringSubmatch(strings.TrimSpace(input))
	if len(m) < 3 {
		return ""
	}
	return strings.TrimSpace(m[2])
}

// recognition builds the pattern matching the canonical name or any alias,
// optionally followed by arguments.
func recognition(name string, aliases []string) *regexp.Regexp {
	alts := make([]string, 0, len(aliases)+1)
	for _, a := range append([]string{name}, aliases...) {
		alts = append(alts, regexp.QuoteMeta(a))
	}
	return regexp.MustCompile(`(?i)^(` + strings.Join(alts, "|") + `)(?:\s+(.*))?$`)
}

// Registry is the table of commands known to the engine. It is built once,
// validated, and never mutated afterwards except for the one-time caption
// and key enrichment pass.
type Registry struct {
	commands []*Command
}

// NewRegistry validates the command set and builds a registry from it.
// Canonical names, aliases and action ids must all be unique.
func NewRegistry(cmds ...*Command) (*Registry, error) {
	seen := map[string]string{}
	claim := func(token, what string) error {
		key := strings.ToLower(token)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%s %q collides with %s", what, token, prev)
		}
		seen[key] = fmt.Sprintf("%s %q", what, token)
		return nil
	}

	for _, c := range cmds {
		if c.Pattern == nil {
			c.Pattern = recognition(c.Name, c.Aliases)
		}
		if err := claim(c.Name, "command"); err != nil {
			return nil, err
		}
		for _, a := range c.Aliases {
			if err := claim(a, "alias"); err != nil {
				return nil, err
			}
		}
		if c.ActionID != "" {
			if err := claim(c.ActionID, "action id"); err != nil {
				return nil, err
			}
		}
	}

	return &Registry{commands: cmds}, nil
}

// DefaultRegistry returns the command table shipped with the assistant.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		&Command{Name: "help", Caption: "Help", Aliases: []string{"h", "?"},
			Process: doHelp},
		&Command{Name: "hint_1", Caption: "Hint",
			Process: func(api *Api, _ string) bool { return doHelp(api, "help hint_1") }},
		&Command{Name: "logout", Aliases: []string{"logoff", "exit", "bye"},
			ActionID: ActionLogout, Process: doLogout},
		&Command{Name: "login", Aliases: []string{"logon", "hy", "hello"},
			ActionID: ActionLogin},
		&Command{Name: "manual", Aliases: []string{"man", "m"},
			ActionID: ActionOpenManual},
		&Command{Name: "health", Aliases: []string{"det", "d"},
			ActionID: ActionHealth},
		&Command{Name: "clear", Caption: "Clear", Aliases: []string{"c"},
			Process: doClear},
		&Command{Name: "explain", Aliases: []string{"ex", "e"},
			ActionID: ActionExplain},
		&Command{Name: "explain-word", ActionID: ActionExplainWord},
		&Command{Name: "typify", Aliases: []string{"ty", "t"},
			ActionID: ActionTypify},
		&Command{Name: "update-typify", Caption: "Apply types",
			ActionID: ActionUpdateTypify},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve finds the command recognized by the given token. Resolution tries
// each command's recognition pattern first and falls back to an exact,
// case-insensitive match against external action ids. Returns nil when
// nothing matches.
func (r *Registry) Resolve(token string) *Command {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	for _, c := range r.commands {
		if c.Pattern.MatchString(token) {
			return c
		}
	}
	lower := strings.ToLower(token)
	for _, c := range r.commands {
		if c.ActionID != "" && strings.ToLower(c.ActionID) == lower {
			return c
		}
	}
	return nil
}

// Commands returns the registry entries in declaration order.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, len(r.commands))
	copy(out, r.commands)
	return out
}
