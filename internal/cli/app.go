package cli

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/brodao2/tds-gaia/internal/chat"
	"github.com/brodao2/tds-gaia/internal/commands"
	"github.com/brodao2/tds-gaia/internal/config"
	"github.com/brodao2/tds-gaia/internal/editor"
	"github.com/brodao2/tds-gaia/internal/health"
	"github.com/brodao2/tds-gaia/internal/ia"
)

// app wires one chat session: config, registry, engine, dispatcher and the
// health checker.
type app struct {
	cfg      *config.Config
	session  *config.Session
	chat     *chat.Api
	dispatch *commands.Dispatcher
	buffer   *editor.Buffer
	notifier *consoleNotifier
	log      *zap.Logger
}

// activeBuffer satisfies editor.Editor over the single CLI buffer.
type activeBuffer struct {
	buf *editor.Buffer
}

func (a activeBuffer) ActiveDocument() (editor.Document, bool) {
	if a.buf == nil {
		return nil, false
	}
	return a.buf, true
}

// newApp assembles the session. sourcePath, when given, is opened as the
// active document for the explain and typify actions.
func newApp(sourcePath string) (*app, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, err
	}
	log := newLogger()
	notifier := newConsoleNotifier()

	registry := chat.DefaultRegistry()
	manifest, err := chat.ParseManifest(manifestYAML)
	if err != nil {
		return nil, err
	}
	registry.Enrich(manifest)

	session := config.NewSession()
	dispatch := commands.NewDispatcher(log)
	api := chat.NewApi(registry, session, dispatch, log)

	var buffer *editor.Buffer
	if sourcePath != "" {
		data, err := os.ReadFile(sourcePath)
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
		buffer = editor.NewBuffer(sourcePath, string(data))
	}

	client := ia.NewClient(ia.WithBaseURL(cfg.Endpoint), ia.WithLogger(log))
	checker := health.NewChecker(health.Params{
		IA:          client,
		Chat:        api,
		Session:     session,
		Notifier:    notifier,
		Executor:    dispatch,
		Log:         log,
		MaxAttempts: cfg.TryAutoReconnection,
	})
	handlers := commands.New(commands.Params{
		Chat:    api,
		IA:      client,
		Config:  cfg,
		Session: session,
		Editor:  activeBuffer{buffer},
		Checker: checker,
		Log:     log,
	})
	handlers.RegisterAll(dispatch)

	return &app{
		cfg:      cfg,
		session:  session,
		chat:     api,
		dispatch: dispatch,
		buffer:   buffer,
		notifier: notifier,
		log:      log,
	}, nil
}

// printTranscript renders every queue change to stdout. Finalized turns are
// printed again when their content changes.
func printTranscript(a *app) {
	printed := map[string]string{}
	a.chat.OnMessage(func(msgs []chat.Message) {
		for _, m := range msgs {
			if prev, ok := printed[m.ID]; !ok || prev != m.Text {
				fmt.Println(renderMessage(m))
				printed[m.ID] = m.Text
			}
		}
	})
}
