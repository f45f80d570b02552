// Package health drives the service availability check and the cancellable
// auto-reconnection chain.
package health

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brodao2/tds-gaia/internal/chat"
	"github.com/brodao2/tds-gaia/internal/config"
	"github.com/brodao2/tds-gaia/internal/ia"
)

// rateLimitMarker flags the upstream response that carries a reconnection
// wait hint.
const rateLimitMarker = "502: Bad Gateway"

var waitHintRe = regexp.MustCompile(`(?i)(\d+)\s+seconds`)

// ErrWaitTimeout is returned when a reconnection wait outlives the hard
// timeout before its countdown completes.
var ErrWaitTimeout = errors.New("timed out waiting to reconnect")

// Notifier is the UI-level notification surface outside the chat.
type Notifier interface {
	Error(msg string)
	Info(msg string)
	Progress(msg string)
}

// Params configures a Checker.
type Params struct {
	IA       ia.Api
	Chat     *chat.Api
	Session  *config.Session
	Notifier Notifier
	Executor chat.Executor
	Log      *zap.Logger

	// MaxAttempts bounds the automatic reconnection chain. Zero disables
	// it entirely.
	MaxAttempts int

	// Tick and WaitTimeout default to 1s and 60s; tests shorten them.
	Tick        time.Duration
	WaitTimeout time.Duration
}

// Checker polls the remote service and, on rate-limited failures, drives a
// cancellable countdown before trying again.
type Checker struct {
	ia          ia.Api
	chat        *chat.Api
	session     *config.Session
	notifier    Notifier
	executor    chat.Executor
	log         *zap.Logger
	maxAttempts int
	tick        time.Duration
	waitTimeout time.Duration
}

// NewChecker builds a checker from the given collaborators.
func NewChecker(p Params) *Checker {
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	if p.Tick <= 0 {
		p.Tick = time.Second
	}
	if p.WaitTimeout <= 0 {
		p.WaitTimeout = 60 * time.Second
	}
	return &Checker{
		ia:          p.IA,
		chat:        p.Chat,
		session:     p.Session,
		notifier:    p.Notifier,
		executor:    p.Executor,
		log:         p.Log,
		maxAttempts: p.MaxAttempts,
		tick:        p.Tick,
		waitTimeout: p.WaitTimeout,
	}
}

// Run performs the health check and, when the service answers with a
// rate-limit hint, the reconnection chain. Only the first attempt narrates
// the placeholder message; later attempts reuse its id, so the chat shows a
// single evolving turn. Every user-visible report has been narrated by the
// time Run returns; the returned error reflects the terminal outcome.
func (c *Checker) Run(ctx context.Context, detail bool) error {
	var messageID string

	for attempt := 1; ; attempt++ {
		if attempt == 1 {
			messageID = c.chat.GaiaPending("Verifying service availability.")
		}

		err := c.ia.CheckHealth(ctx, detail)
		c.session.SetReady(err == nil)

		if err == nil {
			c.log.Info("service available", zap.Int("attempt", attempt))
			if execErr := c.executor.Execute(ctx, chat.ActionLogin, true); execErr != nil {
				c.log.Warn("automatic login failed", zap.Error(execErr))
			}
			c.chat.CheckUser(ctx, messageID)
			return nil
		}

		c.log.Warn("health check failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt == 1 {
			report := fmt.Sprintf("Sorry, I am having technical difficulties. %s",
				c.chat.CommandText("health"))
			c.chat.GaiaUpdate(messageID, report)
			c.notifier.Error(report)
		}

		if !strings.Contains(err.Error(), rateLimitMarker) {
			if detail {
				c.chat.GaiaInfo(err.Error())
			}
			return err
		}

		seconds, hint := parseWaitHint(err.Error())
		if attempt == 1 && hint != "" {
			c.chat.GaiaInfo(hint)
		}

		if seconds > 0 && attempt < c.maxAttempts {
			if waitErr := c.wait(ctx, attempt, seconds); waitErr != nil {
				c.notifier.Error(waitErr.Error())
				c.log.Info("reconnection chain stopped", zap.Error(waitErr))
				return waitErr
			}
			continue
		}

		if c.maxAttempts != 0 {
			c.chat.GaiaUpdateLines(messageID, []string{
				fmt.Sprintf("Sorry, even after **%d attempts**, I still have technical difficulties.", c.maxAttempts),
				fmt.Sprintf("To restart the validation of the service, activate %s.",
					c.chat.CommandText("health")),
			})
		}
		return err
	}
}

// wait runs the countdown for one reconnection attempt, racing it against
// the hard timeout and the caller's cancellation; the first to settle wins.
func (c *Checker) wait(ctx context.Context, attempt, seconds int) error {
	timeout := time.NewTimer(c.waitTimeout)
	defer timeout.Stop()
	tick := time.NewTicker(c.tick)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("reconnection cancelled: %w", ctx.Err())
		case <-timeout.C:
			return ErrWaitTimeout
		case <-tick.C:
			msg := fmt.Sprintf("Checking availability in %d seconds. (%d/%d)",
				seconds, attempt, c.maxAttempts)
			c.notifier.Progress(msg)
			if seconds%10 == 0 {
				c.log.Info(msg)
			}
			seconds--
			if seconds < 1 {
				return nil
			}
		}
	}
}

// parseWaitHint extracts the "<N> seconds" reconnection hint from a failure
// message. It returns the wait in seconds and the line carrying the hint.
func parseWaitHint(msg string) (int, string) {
	for _, line := range strings.Split(msg, "\n") {
		m := waitHintRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		return n, strings.TrimSpace(line)
	}
	return 0, ""
}
