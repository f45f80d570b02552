package chat

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeSession struct {
	ready    bool
	logged   bool
	firstUse bool
	name     string
}

func (s *fakeSession) Ready() bool             { return s.ready }
func (s *fakeSession) Logged() bool            { return s.logged }
func (s *fakeSession) FirstUse() bool          { return s.firstUse }
func (s *fakeSession) UserDisplayName() string { return s.name }

type fakeExecutor struct {
	calls []string
	err   error
}

func (e *fakeExecutor) Execute(_ context.Context, actionID string, _ ...any) error {
	e.calls = append(e.calls, actionID)
	return e.err
}

func newTestApi(t *testing.T, session *fakeSession) (*Api, *fakeExecutor) {
	t.Helper()
	if session == nil {
		session = &fakeSession{ready: true}
	}
	exec := &fakeExecutor{}
	return NewApi(DefaultRegistry(), session, exec, zap.NewNop()), exec
}

func TestGaiaUpdateFinalizesInPlace(t *testing.T) {
	api, _ := newTestApi(t, nil)

	api.Gaia("hello")
	id := api.GaiaPending("working on it")
	if got := api.Messages(); !got[1].InProcess {
		t.Fatal("placeholder should be marked in process")
	}

	api.GaiaUpdate(id, "all done")

	got := api.Messages()
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[1].ID != id || got[1].Text != "all done" || got[1].InProcess {
		t.Errorf("placeholder not finalized in place: %+v", got[1])
	}
}

func TestGaiaUpdateUnknownIDIsNoop(t *testing.T) {
	api, _ := newTestApi(t, nil)

	api.Gaia("hello")
	api.GaiaUpdate("no-such-id", "ignored")

	got := api.Messages()
	if len(got) != 1 || got[0].Text != "hello" {
		t.Errorf("update of unknown id changed the queue: %+v", got)
	}
}

func TestMessageGroupNotifiesOnce(t *testing.T) {
	api, _ := newTestApi(t, nil)

	var fired int
	api.OnMessage(func([]Message) { fired++ })

	api.BeginMessageGroup()
	api.Gaia("one")
	api.Gaia("two")
	api.Gaia("three")
	if fired != 0 {
		t.Fatalf("group in progress, expected 0 notifications, got %d", fired)
	}
	api.EndMessageGroup()
	if fired != 1 {
		t.Errorf("expected 1 notification after group, got %d", fired)
	}

	// An empty group fires nothing, and a stray end is a no-op.
	api.BeginMessageGroup()
	api.EndMessageGroup()
	api.EndMessageGroup()
	if fired != 1 {
		t.Errorf("empty group fired a notification, total %d", fired)
	}
}

func TestUserEchoGroupsTurnAndReply(t *testing.T) {
	api, exec := newTestApi(t, &fakeSession{ready: true, logged: true, name: "Ana"})

	var fired int
	api.OnMessage(func([]Message) { fired++ })

	api.User(context.Background(), "logout", true)

	if fired != 1 {
		t.Errorf("expected a single grouped notification, got %d", fired)
	}
	got := api.Messages()
	if got[0].Author != "Ana" || got[0].Text != "logout" {
		t.Errorf("user turn not recorded: %+v", got[0])
	}
	if len(got) < 2 || !strings.Contains(got[1].Text, "see you later") {
		t.Errorf("farewell narration missing: %+v", got)
	}
	if len(exec.calls) != 1 || exec.calls[0] != ActionLogout {
		t.Errorf("expected logout action, got %v", exec.calls)
	}
}

func TestUserUnrecognizedInput(t *testing.T) {
	api, exec := newTestApi(t, nil)

	api.User(context.Background(), "make me a sandwich", false)

	got := api.Messages()
	if len(got) != 1 || !strings.Contains(got[0].Text, "I didn't understand") {
		t.Fatalf("expected fallback narration, got %+v", got)
	}
	if !strings.Contains(got[0].Text, "{command:help}") {
		t.Errorf("fallback should offer the help command: %q", got[0].Text)
	}
	if len(exec.calls) != 0 {
		t.Errorf("no action expected, got %v", exec.calls)
	}
}

func TestProcessHandlerSuppressesAction(t *testing.T) {
	api, exec := newTestApi(t, nil)

	// clear has a local handler that declines the external action.
	api.User(context.Background(), "clear", false)
	if len(exec.calls) != 0 {
		t.Errorf("clear should not invoke an action, got %v", exec.calls)
	}

	// login has no local handler, so the action always runs.
	api.User(context.Background(), "login", false)
	if len(exec.calls) != 1 || exec.calls[0] != ActionLogin {
		t.Errorf("expected login action, got %v", exec.calls)
	}
}

func TestExtractActionsKeepsTextIntact(t *testing.T) {
	api, _ := newTestApi(t, nil)

	text := "go {command:help} then {command:bogus}"
	api.Gaia(text)

	got := api.Messages()[0]
	if got.Text != text {
		t.Errorf("stored text was modified: %q", got.Text)
	}
	if len(got.Actions) != 1 {
		t.Fatalf("expected 1 action, got %+v", got.Actions)
	}
	if got.Actions[0].Command != "help" || got.Actions[0].Caption != "Help" {
		t.Errorf("unexpected action: %+v", got.Actions[0])
	}
}

func TestExtractActionsRepeatedMarkers(t *testing.T) {
	api, _ := newTestApi(t, nil)

	api.Gaia("{command:help} or {command:clear} or {command:help}")

	got := api.Messages()[0]
	if len(got.Actions) != 3 {
		t.Fatalf("expected 3 actions, got %+v", got.Actions)
	}
	if got.Actions[1].Command != "clear" {
		t.Errorf("markers resolved out of order: %+v", got.Actions)
	}
}

func TestCommandTextRendering(t *testing.T) {
	api, _ := newTestApi(t, nil)

	if got := api.CommandText("help"); got != "[{command:help}]" {
		t.Errorf("plain marker: got %q", got)
	}
	if got := api.CommandText("explain", "cVar"); got != "[{command:explain} cVar]" {
		t.Errorf("marker with args: got %q", got)
	}
	// Unresolvable names pass through so narration never breaks.
	if got := api.CommandText("details"); got != "details" {
		t.Errorf("unknown name: got %q", got)
	}
}

func TestCommandTextIncludesKey(t *testing.T) {
	api, _ := newTestApi(t, nil)

	api.registry.Resolve("explain").Key = "ctrl+alt+e"
	if got := api.CommandText("explain"); got != "[{command:explain} ``ctrl+alt+e``]" {
		t.Errorf("marker with key: got %q", got)
	}
}

func TestCommandListFollowsSessionState(t *testing.T) {
	session := &fakeSession{}
	api, _ := newTestApi(t, session)

	got := api.CommandList()
	if !strings.Contains(got, "details") {
		t.Errorf("not ready: expected details affordance, got %q", got)
	}
	if strings.Contains(got, "{command:login}") {
		t.Errorf("not ready: login should not be offered, got %q", got)
	}

	session.ready = true
	got = api.CommandList()
	if !strings.Contains(got, "{command:login}") {
		t.Errorf("ready, logged out: expected login, got %q", got)
	}

	session.logged = true
	got = api.CommandList()
	for _, want := range []string{"{command:logout}", "{command:explain}", "{command:typify}"} {
		if !strings.Contains(got, want) {
			t.Errorf("logged in: expected %s in %q", want, got)
		}
	}
	if strings.Contains(got, "{command:login}") {
		t.Errorf("logged in: login should not be offered, got %q", got)
	}
}

func TestCheckUserNotReadyTriggersHealth(t *testing.T) {
	api, exec := newTestApi(t, &fakeSession{})

	api.CheckUser(context.Background(), "")

	if len(api.Messages()) != 0 {
		t.Errorf("no narration expected, got %+v", api.Messages())
	}
	if len(exec.calls) != 1 || exec.calls[0] != ActionHealth {
		t.Errorf("expected health action, got %v", exec.calls)
	}
}

func TestCheckUserFirstUseHint(t *testing.T) {
	api, _ := newTestApi(t, &fakeSession{ready: true, firstUse: true})

	api.CheckUser(context.Background(), "")

	got := api.Messages()
	if len(got) != 2 {
		t.Fatalf("expected hint and login prompt, got %+v", got)
	}
	if !strings.Contains(got[0].Text, "first time") {
		t.Errorf("hint narration missing: %q", got[0].Text)
	}
	if !strings.Contains(got[1].Text, "{command:login}") {
		t.Errorf("login prompt missing: %q", got[1].Text)
	}
}

func TestCheckUserFinalizesPlaceholder(t *testing.T) {
	api, _ := newTestApi(t, &fakeSession{ready: true, logged: true, name: "Ana"})

	id := api.GaiaPending("checking")
	api.CheckUser(context.Background(), id)

	got := api.Messages()
	if len(got) != 1 {
		t.Fatalf("greeting should reuse the placeholder, got %+v", got)
	}
	if got[0].InProcess || !strings.Contains(got[0].Text, "Hello, Ana") {
		t.Errorf("unexpected greeting: %+v", got[0])
	}
}

func TestHelpListsCommands(t *testing.T) {
	api, _ := newTestApi(t, &fakeSession{ready: true, logged: true, name: "Ana"})

	api.User(context.Background(), "help", false)

	got := api.Messages()
	if len(got) != 2 {
		t.Fatalf("expected list and follow-up, got %+v", got)
	}
	if !strings.Contains(got[0].Text, "{command:typify}") {
		t.Errorf("command list missing typify: %q", got[0].Text)
	}
}

func TestHelpOnSpecificCommand(t *testing.T) {
	api, _ := newTestApi(t, nil)

	api.User(context.Background(), "help logout", false)

	got := api.Messages()
	if len(got) != 1 {
		t.Fatalf("expected one help turn, got %+v", got)
	}
	if !strings.Contains(got[0].Text, "**logout**") ||
		!strings.Contains(got[0].Text, "logoff") {
		t.Errorf("unexpected help text: %q", got[0].Text)
	}
}
