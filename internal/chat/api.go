package chat

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// commandMarker matches the embedded command wire syntax
// {command:<id> <optional args>} inside narrated text.
var commandMarker = regexp.MustCompile(`\{command:([^\s}]+)(?:\s+([^}]*))?\}`)

// SessionState exposes the session flags the engine needs to shape its
// narration. Implemented by config.Session.
type SessionState interface {
	Ready() bool
	Logged() bool
	FirstUse() bool
	UserDisplayName() string
}

// Executor invokes an external action by id. Implemented by the command
// dispatcher; the engine never runs external actions itself.
type Executor interface {
	Execute(ctx context.Context, actionID string, args ...any) error
}

// Api is the conversation engine. It owns the message queue, resolves user
// input against the command registry and is the only writer of assistant
// turns. It is not safe for concurrent writers; one dispatch flow narrates
// into a session at a time.
type Api struct {
	registry *Registry
	session  SessionState
	executor Executor
	log      *zap.Logger

	queue      Queue
	entropy    *ulid.MonotonicEntropy
	group      bool
	groupDirty bool
	onMessage  func([]Message)
	now        func() time.Time
}

// NewApi builds the engine around an already validated registry.
func NewApi(registry *Registry, session SessionState, executor Executor, log *zap.Logger) *Api {
	if log == nil {
		log = zap.NewNop()
	}
	return &Api{
		registry: registry,
		session:  session,
		executor: executor,
		log:      log,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:      time.Now,
	}
}

func (a *Api) newID() string {
	return ulid.MustNew(ulid.Timestamp(a.now()), a.entropy).String()
}

// OnMessage registers the callback fired whenever the queue changes outside
// a message group. The callback receives a snapshot of the whole queue.
func (a *Api) OnMessage(fn func([]Message)) {
	a.onMessage = fn
}

// Messages returns a snapshot of the conversation so far.
func (a *Api) Messages() []Message {
	return a.queue.Snapshot()
}

func (a *Api) notify() {
	if a.onMessage != nil {
		a.onMessage(a.queue.Snapshot())
	}
}

func (a *Api) changed() {
	if a.group {
		a.groupDirty = true
		return
	}
	a.notify()
}

func (a *Api) send(m Message) {
	a.queue.enqueue(m)
	a.changed()
}

// BeginMessageGroup suppresses change notifications until EndMessageGroup.
// Opening an already open group has no further effect.
func (a *Api) BeginMessageGroup() {
	a.group = true
}

// EndMessageGroup closes the group and fires a single notification when at
// least one message was sent while it was open. Closing when no group is
// open is a no-op.
func (a *Api) EndMessageGroup() {
	if !a.group {
		return
	}
	a.group = false
	if a.groupDirty {
		a.groupDirty = false
		a.notify()
	}
}

// Gaia appends an assistant turn and returns its message id.
func (a *Api) Gaia(text string) string {
	return a.say(text, KindNormal, false)
}

// GaiaLines appends an assistant turn built from multiple lines.
func (a *Api) GaiaLines(lines []string) string {
	return a.say(strings.Join(lines, "\n"), KindNormal, false)
}

// GaiaPending appends an assistant placeholder turn. A later GaiaUpdate with
// the returned id finalizes it in place instead of appending a new turn.
func (a *Api) GaiaPending(text string) string {
	return a.say(text, KindNormal, true)
}

// GaiaInfo appends an informational assistant turn.
func (a *Api) GaiaInfo(text string) {
	a.say(text, KindInfo, false)
}

// GaiaWarning appends a warning assistant turn.
func (a *Api) GaiaWarning(text string) {
	a.say(text, KindWarning, false)
}

// GaiaWarningLines appends a warning assistant turn built from lines.
func (a *Api) GaiaWarningLines(lines []string) {
	a.say(strings.Join(lines, "\n"), KindWarning, false)
}

func (a *Api) say(text string, kind Kind, pending bool) string {
	m := Message{
		ID:        a.newID(),
		Author:    AuthorGaia,
		Text:      text,
		Kind:      kind,
		TimeStamp: a.now(),
		InProcess: pending,
		Actions:   a.extractActions(text),
	}
	a.send(m)
	return m.ID
}

// GaiaUpdate finalizes a previous turn in place: same id, new content,
// pending flag cleared. Unknown ids are silently ignored.
func (a *Api) GaiaUpdate(id, text string) {
	if !a.queue.update(id, text, a.extractActions(text)) {
		a.log.Debug("update for unknown message id", zap.String("id", id))
		return
	}
	a.changed()
}

// GaiaUpdateLines finalizes a previous turn with multi-line content.
func (a *Api) GaiaUpdateLines(id string, lines []string) {
	a.GaiaUpdate(id, strings.Join(lines, "\n"))
}

// User records the user's turn and dispatches it as a command. With echo
// false the text is processed without being displayed, for commands
// triggered outside the chat prompt.
func (a *Api) User(ctx context.Context, text string, echo bool) {
	if !echo {
		a.processMessage(ctx, text)
		return
	}

	a.BeginMessageGroup()
	defer a.EndMessageGroup()

	author := a.session.UserDisplayName()
	if author == "" {
		author = "Unknown"
	}
	a.send(Message{
		ID:        a.newID(),
		Author:    author,
		Text:      text,
		Kind:      KindNormal,
		TimeStamp: a.now(),
	})
	a.processMessage(ctx, text)
}

func (a *Api) processMessage(ctx context.Context, text string) {
	cmd := a.registry.Resolve(text)
	if cmd == nil {
		a.Gaia(fmt.Sprintf("I didn't understand. You can type %s to see the available commands.",
			a.CommandText("help")))
		return
	}

	runAction := true
	if cmd.Process != nil {
		runAction = cmd.Process(a, strings.TrimSpace(text))
	}
	if runAction && cmd.ActionID != "" {
		if err := a.executor.Execute(ctx, cmd.ActionID); err != nil {
			a.log.Warn("action failed",
				zap.String("action", cmd.ActionID), zap.Error(err))
		}
	}
}

// extractActions scans text for embedded command markers and resolves each
// against the registry. Markers that resolve to no command produce no
// Action. The stored text is never modified; the scan advances by match
// position, so repeated or malformed markers cannot loop it.
func (a *Api) extractActions(text string) []Action {
	var actions []Action
	for idx := 0; idx < len(text); {
		loc := commandMarker.FindStringSubmatchIndex(text[idx:])
		if loc == nil {
			break
		}
		id := text[idx+loc[2] : idx+loc[3]]
		if cmd := a.registry.Resolve(id); cmd != nil {
			caption := cmd.Caption
			if caption == "" {
				caption = "<No caption>" + cmd.Name
			}
			actions = append(actions, Action{Caption: caption, Command: id})
		}
		idx += loc[1]
	}
	return actions
}

// CommandText renders the embeddable marker for a command, including its
// key hint when one is registered. Unknown names are returned as-is so
// callers can always interpolate.
func (a *Api) CommandText(name string, args ...string) string {
	cmd := a.registry.Resolve(name)
	if cmd == nil {
		return name
	}

	var b strings.Builder
	b.WriteString("[{command:")
	b.WriteString(cmd.Name)
	b.WriteString("}")
	if len(args) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(args, " "))
	}
	if cmd.Key != "" {
		b.WriteString(" ``" + cmd.Key + "``")
	}
	b.WriteString("]")
	return b.String()
}

// CommandList produces the user-facing, comma-joined list of commands
// applicable to the current session state.
func (a *Api) CommandList() string {
	cmds := []string{
		a.CommandText("help"),
		a.CommandText("manual"),
		a.CommandText("clear"),
	}

	switch {
	case !a.session.Ready():
		cmds = append(cmds, a.CommandText("details"))
	case a.session.Logged():
		cmds = append(cmds, a.CommandText("logout"),
			a.CommandText("explain"), a.CommandText("typify"))
	default:
		cmds = append(cmds, a.CommandText("login"))
	}

	return strings.Join(cmds, ", ")
}

// CheckUser narrates the greeting appropriate to the current session state.
// When placeholderID is given, the greeting finalizes that message instead
// of appending a new turn. When the service is not ready, the health action
// is triggered instead of greeting.
func (a *Api) CheckUser(ctx context.Context, placeholderID string) {
	if !a.session.Ready() {
		if err := a.executor.Execute(ctx, ActionHealth); err != nil {
			a.log.Warn("health action failed", zap.Error(err))
		}
		return
	}

	sayOrUpdate := func(text string) {
		if placeholderID != "" {
			a.GaiaUpdate(placeholderID, text)
			return
		}
		a.Gaia(text)
	}

	if !a.session.Logged() {
		if a.session.FirstUse() {
			a.Gaia(fmt.Sprintf("It looks like this is the first time we meet. Want to know how to interact with me? %s",
				a.CommandText("hint_1")))
		}
		sayOrUpdate(fmt.Sprintf("To start, I need to know you. Please identify yourself with the command %s.",
			a.CommandText("login")))
		return
	}

	sayOrUpdate(fmt.Sprintf("Hello, %s. I'm ready to help you however I can!",
		a.session.UserDisplayName()))
}

func doHelp(api *Api, input string) bool {
	help := api.registry.Resolve("help")
	topic := help.Args(input)

	switch {
	case topic == "hint_1":
		api.GaiaLines([]string{
			"To interact with me, you will use commands that can be triggered in one of these ways:",
			"- A keyboard shortcut",
			"- The command palette, filtering by \"TDS-Gaia\"",
			"- A link presented in this chat",
			"- Typing the command in the prompt below",
			"- The context menu of the chat or of the source in edition.",
		})
		api.Gaia(fmt.Sprintf("To learn the commands, type %s.", api.CommandText("help")))
	case topic != "":
		cmd := api.registry.Resolve(topic)
		if cmd == nil {
			api.Gaia(fmt.Sprintf("I don't know the command %q. Type %s to see the available commands.",
				topic, api.CommandText("help")))
			break
		}
		lines := []string{fmt.Sprintf("**%s**: %s", cmd.Name, captionOr(cmd, "no description"))}
		if len(cmd.Aliases) > 0 {
			lines = append(lines, "Aliases: "+strings.Join(cmd.Aliases, ", "))
		}
		if cmd.Key != "" {
			lines = append(lines, "Shortcut: ``"+cmd.Key+"``")
		}
		api.GaiaLines(lines)
	default:
		api.Gaia(fmt.Sprintf("The commands available right now are: %s.", api.CommandList()))
		api.Gaia(fmt.Sprintf("For more specific information, type %s followed by the desired command, or %s to open the full documentation.",
			api.CommandText("help"), api.CommandText("manual")))
	}

	return true
}

func captionOr(cmd *Command, fallback string) string {
	if cmd.Caption != "" {
		return cmd.Caption
	}
	return fallback
}

func doLogout(api *Api, _ string) bool {
	name := api.session.UserDisplayName()
	if name == "" {
		name = "friend"
	}
	api.Gaia(fmt.Sprintf("%s, see you later!", name))
	api.Gaia("Thank you for using Gaia!")
	api.Gaia("Leaving...")

	return true
}

func doClear(api *Api, _ string) bool {
	api.GaiaWarning("Clearing the chat history is not available yet.")

	return false
}
