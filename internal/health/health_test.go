package health

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brodao2/tds-gaia/internal/chat"
	"github.com/brodao2/tds-gaia/internal/config"
	"github.com/brodao2/tds-gaia/internal/ia"
)

var errRateLimited = errors.New("502: Bad Gateway\nRate limit reached. Please retry in 3 seconds.")

type stubIA struct {
	// errs is consumed one entry per CheckHealth call; a nil entry means
	// success. When exhausted, the last entry repeats.
	errs  []error
	calls int
}

func (s *stubIA) CheckHealth(context.Context, bool) error {
	i := s.calls
	if i >= len(s.errs) {
		i = len(s.errs) - 1
	}
	s.calls++
	if i < 0 {
		return nil
	}
	return s.errs[i]
}

func (s *stubIA) Login(context.Context) (*ia.LoggedUser, error) { return nil, nil }
func (s *stubIA) Logout(context.Context) error                  { return nil }
func (s *stubIA) ExplainCode(context.Context, string) (string, error) {
	return "", nil
}
func (s *stubIA) Typify(context.Context, string) (*ia.TypifyResponse, error) {
	return nil, nil
}

type stubNotifier struct {
	errors   []string
	infos    []string
	progress []string
}

func (n *stubNotifier) Error(msg string)    { n.errors = append(n.errors, msg) }
func (n *stubNotifier) Info(msg string)     { n.infos = append(n.infos, msg) }
func (n *stubNotifier) Progress(msg string) { n.progress = append(n.progress, msg) }

type stubExecutor struct {
	calls []string
}

func (e *stubExecutor) Execute(_ context.Context, actionID string, _ ...any) error {
	e.calls = append(e.calls, actionID)
	return nil
}

type fixture struct {
	checker  *Checker
	chat     *chat.Api
	session  *config.Session
	notifier *stubNotifier
	exec     *stubExecutor
	ia       *stubIA
}

func newFixture(t *testing.T, remote *stubIA, maxAttempts int) *fixture {
	t.Helper()

	session := config.NewSession()
	exec := &stubExecutor{}
	notifier := &stubNotifier{}
	chatAPI := chat.NewApi(chat.DefaultRegistry(), session, exec, nil)

	checker := NewChecker(Params{
		IA:          remote,
		Chat:        chatAPI,
		Session:     session,
		Notifier:    notifier,
		Executor:    exec,
		MaxAttempts: maxAttempts,
		Tick:        time.Millisecond,
		WaitTimeout: time.Second,
	})

	return &fixture{
		checker:  checker,
		chat:     chatAPI,
		session:  session,
		notifier: notifier,
		exec:     exec,
		ia:       remote,
	}
}

func TestRunSuccessFinalizesPlaceholder(t *testing.T) {
	f := newFixture(t, &stubIA{}, 3)

	if err := f.checker.Run(context.Background(), true); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !f.session.Ready() {
		t.Error("session should be marked ready")
	}
	if len(f.exec.calls) != 1 || f.exec.calls[0] != chat.ActionLogin {
		t.Errorf("expected automatic login, got %v", f.exec.calls)
	}

	// The verifying placeholder must be finalized, never left dangling.
	for _, m := range f.chat.Messages() {
		if m.InProcess {
			t.Errorf("message left in process: %+v", m)
		}
		if strings.Contains(m.Text, "Verifying") {
			t.Errorf("placeholder text survived: %q", m.Text)
		}
	}
}

func TestRunRateLimitedExhaustsAttempts(t *testing.T) {
	f := newFixture(t, &stubIA{errs: []error{errRateLimited}}, 3)

	err := f.checker.Run(context.Background(), false)
	if !errors.Is(err, errRateLimited) {
		t.Fatalf("expected the health error, got %v", err)
	}

	if f.ia.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", f.ia.calls)
	}
	if f.session.Ready() {
		t.Error("session should not be ready")
	}
	if len(f.notifier.progress) == 0 {
		t.Error("expected countdown progress reports")
	}

	msgs := f.chat.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected failure report and hint, got %+v", msgs)
	}
	if !strings.Contains(msgs[0].Text, "even after **3 attempts**") {
		t.Errorf("exhaustion narration missing: %q", msgs[0].Text)
	}
	if !strings.Contains(msgs[1].Text, "3 seconds") {
		t.Errorf("wait hint narration missing: %q", msgs[1].Text)
	}
}

func TestRunRecoversOnRetry(t *testing.T) {
	f := newFixture(t, &stubIA{errs: []error{errRateLimited, nil}}, 3)

	if err := f.checker.Run(context.Background(), false); err != nil {
		t.Fatalf("run: %v", err)
	}

	if f.ia.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", f.ia.calls)
	}
	if !f.session.Ready() {
		t.Error("session should be ready after recovery")
	}
	if len(f.exec.calls) != 1 || f.exec.calls[0] != chat.ActionLogin {
		t.Errorf("expected automatic login after recovery, got %v", f.exec.calls)
	}
}

func TestRunCancelledDuringWait(t *testing.T) {
	f := newFixture(t, &stubIA{errs: []error{errRateLimited}}, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Microsecond)
	defer cancel()

	err := f.checker.Run(ctx, false)
	if err == nil || !strings.Contains(err.Error(), "cancelled") {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if f.ia.calls != 1 {
		t.Errorf("cancellation should stop the chain, got %d attempts", f.ia.calls)
	}
	if len(f.notifier.errors) == 0 {
		t.Error("cancellation should be reported to the notifier")
	}
}

func TestRunWaitTimeout(t *testing.T) {
	remote := &stubIA{errs: []error{
		errors.New("502: Bad Gateway\nRate limit reached. Please retry in 100000 seconds."),
	}}
	f := newFixture(t, remote, 3)
	f.checker.waitTimeout = 5 * time.Millisecond

	err := f.checker.Run(context.Background(), false)
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("expected wait timeout, got %v", err)
	}
	if f.ia.calls != 1 {
		t.Errorf("timeout should stop the chain, got %d attempts", f.ia.calls)
	}
}

func TestRunNonRateLimitFailure(t *testing.T) {
	boom := errors.New("connection refused")
	f := newFixture(t, &stubIA{errs: []error{boom}}, 3)

	err := f.checker.Run(context.Background(), true)
	if !errors.Is(err, boom) {
		t.Fatalf("expected the probe error, got %v", err)
	}
	if f.ia.calls != 1 {
		t.Errorf("non rate-limited failures must not retry, got %d attempts", f.ia.calls)
	}

	msgs := f.chat.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected failure report and detail, got %+v", msgs)
	}
	if !strings.Contains(msgs[0].Text, "technical difficulties") {
		t.Errorf("failure narration missing: %q", msgs[0].Text)
	}
	if !strings.Contains(msgs[1].Text, "connection refused") {
		t.Errorf("detail narration missing: %q", msgs[1].Text)
	}
}

func TestRunReconnectionDisabled(t *testing.T) {
	f := newFixture(t, &stubIA{errs: []error{errRateLimited}}, 0)

	err := f.checker.Run(context.Background(), false)
	if !errors.Is(err, errRateLimited) {
		t.Fatalf("expected the health error, got %v", err)
	}
	if f.ia.calls != 1 {
		t.Errorf("reconnection disabled, expected 1 attempt, got %d", f.ia.calls)
	}
	// Without a chain there is no exhaustion report, only the first failure.
	for _, m := range f.chat.Messages() {
		if strings.Contains(m.Text, "attempts") {
			t.Errorf("unexpected exhaustion narration: %q", m.Text)
		}
	}
}

func TestParseWaitHint(t *testing.T) {
	cases := []struct {
		msg     string
		seconds int
		hint    string
	}{
		{"502: Bad Gateway\nRate limit reached. Please retry in 30 seconds.", 30,
			"Rate limit reached. Please retry in 30 seconds."},
		{"502: Bad Gateway\nno hint here", 0, ""},
		{"retry in 0 seconds", 0, ""},
		{"first 5 seconds\nthen 9 seconds", 5, "first 5 seconds"},
	}

	for _, tc := range cases {
		seconds, hint := parseWaitHint(tc.msg)
		if seconds != tc.seconds || hint != tc.hint {
			t.Errorf("parseWaitHint(%q) = %d, %q; expected %d, %q",
				tc.msg, seconds, hint, tc.seconds, tc.hint)
		}
	}
}
