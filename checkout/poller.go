package checkout

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/harborline/storefront-go/commerce"
	apperrors "github.com/harborline/storefront-go/internal/errors"
)

// Polling defaults: three minutes of five-second ticks, and up to three
// back-to-back failed checks before the loop gives up on connectivity.
const (
	DefaultMaxAttempts = 36
	DefaultErrorBudget = 3

	// DefaultInterval is the fixed wait between status checks.
	DefaultInterval = 5 * time.Second
)

// StatusFunc performs one payment status check.
type StatusFunc func(ctx context.Context) (commerce.PaymentStatus, error)

// Observer is notified each time the observed status differs from the
// previously observed one. The first observation counts as a change.
type Observer func(status commerce.PaymentStatus)

// Poller drives a payment attempt's status to a terminal state. The loop
// always terminates: by terminal status, by attempt budget, by consecutive
// error budget, or by cancellation. While the host surface is hidden it
// waits without making network calls; hidden waits do not consume the
// attempt budget.
type Poller struct {
	maxAttempts int
	interval    time.Duration
	errorBudget int
	clock       Clock
	visibility  Visibility
	logger      zerolog.Logger
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithMaxAttempts bounds the number of status checks.
func WithMaxAttempts(n int) PollerOption {
	return func(p *Poller) { p.maxAttempts = n }
}

// WithInterval sets the fixed wait between checks.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

// WithErrorBudget sets how many consecutive failed checks are tolerated.
func WithErrorBudget(n int) PollerOption {
	return func(p *Poller) { p.errorBudget = n }
}

// WithClock injects a clock (virtual in tests).
func WithClock(clock Clock) PollerOption {
	return func(p *Poller) { p.clock = clock }
}

// WithVisibility injects the foreground/background capability.
func WithVisibility(v Visibility) PollerOption {
	return func(p *Poller) { p.visibility = v }
}

// WithPollerLogger sets the poller logger.
func WithPollerLogger(logger zerolog.Logger) PollerOption {
	return func(p *Poller) { p.logger = logger }
}

// NewPoller creates a poller with the default budgets.
func NewPoller(options ...PollerOption) *Poller {
	p := &Poller{
		maxAttempts: DefaultMaxAttempts,
		interval:    DefaultInterval,
		errorBudget: DefaultErrorBudget,
		clock:       RealClock(),
		visibility:  AlwaysVisible,
		logger:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Run polls check until a terminal status, the attempt budget, the error
// budget, or cancellation. Exhausting the attempt budget is not an error:
// the last observed status comes back and the caller decides how to show
// "still pending". Only an exhausted error budget (or cancellation)
// surfaces as an error.
func (p *Poller) Run(ctx context.Context, check StatusFunc, observer Observer) (commerce.PaymentStatus, error) {
	var last commerce.PaymentStatus
	attempts := 0
	consecutiveErrs := 0

	for attempts < p.maxAttempts {
		if err := ctx.Err(); err != nil {
			return last, apperrors.Cancelled("payment polling aborted", err)
		}

		if !p.visibility.IsVisible() {
			// Hidden surface: wait one interval and recheck, no network
			// call, no attempt consumed.
			if err := p.clock.Sleep(ctx, p.interval); err != nil {
				return last, apperrors.Cancelled("payment polling aborted", err)
			}
			continue
		}

		status, err := check(ctx)
		attempts++

		switch {
		case err != nil:
			if ctx.Err() != nil || apperrors.IsKind(err, apperrors.KindCancelled) {
				return last, apperrors.Cancelled("payment polling aborted", err)
			}
			consecutiveErrs++
			p.logger.Warn().Err(err).Int("consecutive", consecutiveErrs).Msg("payment status check failed")
			if consecutiveErrs >= p.errorBudget {
				return last, err
			}
		default:
			consecutiveErrs = 0
			// An abort that raced the in-flight check must not produce an
			// observer callback for the stale result.
			if ctx.Err() != nil {
				return last, apperrors.Cancelled("payment polling aborted", ctx.Err())
			}
			if status != last {
				p.logger.Debug().Str("from", last.String()).Str("to", status.String()).Msg("payment status changed")
				if observer != nil {
					observer(status)
				}
				last = status
			}
			if status.IsTerminal() {
				return status, nil
			}
		}

		if attempts >= p.maxAttempts {
			break
		}
		if err := p.clock.Sleep(ctx, p.interval); err != nil {
			return last, apperrors.Cancelled("payment polling aborted", err)
		}
	}

	p.logger.Info().Str("status", last.String()).Msg("payment polling attempt budget exhausted")
	return last, nil
}
