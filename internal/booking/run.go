package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/gym-scheduler/internal/browser"
	"github.com/example/gym-scheduler/internal/config"
	"github.com/example/gym-scheduler/internal/notify"
	"github.com/example/gym-scheduler/internal/schedule"
)

// Runner wires the resolver, session, engine and notifier into one
// booking run.
type Runner struct {
	cfg      config.Config
	notifier notify.Notifier

	// newPage is swapped out by tests; the default launches Chrome.
	newPage func(ctx context.Context) (browser.Page, func(), error)
}

func NewRunner(cfg config.Config, n notify.Notifier) *Runner {
	return &Runner{
		cfg:      cfg,
		notifier: n,
		newPage: func(ctx context.Context) (browser.Page, func(), error) {
			return browser.New(ctx, browser.Options{Headless: cfg.Headless})
		},
	}
}

// Run executes one complete booking pass for the class scheduled
// BookingWindowDays after today, and returns the single outcome the run
// produced. The browser is released on every exit path; notifications
// go out for the two success paths and for fatal setup failures, and
// their delivery never affects the returned outcome.
func (r *Runner) Run(ctx context.Context, today time.Time) (Outcome, error) {
	log := slog.With("run_id", uuid.NewString())

	target, ok := schedule.Resolve(r.cfg.Schedule, today)
	if !ok {
		log.Info("no class scheduled, skipping run", "date", target.HumanDate())
		return OutcomeNone, nil
	}
	log.Info("booking target resolved",
		"class", target.ClassName, "time", target.Time,
		"date", target.DateString(), "occurrence", target.Occurrence)

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeouts.RunDeadline)
	defer cancel()

	page, release, err := r.newPage(ctx)
	if err != nil {
		r.notify(ctx, log, fmt.Sprintf("ERROR: gym booking could not start a browser: %v", err))
		return OutcomeFailed, err
	}
	defer release()

	sess := NewSession(page, r.cfg.SiteURL, r.cfg.Timeouts, log)
	if err := sess.Login(ctx, r.cfg.Email, r.cfg.Password); err != nil {
		log.Error("login failed", "err", err)
		r.notify(ctx, log, fmt.Sprintf("ERROR: gym booking login failed: %v", err))
		return OutcomeFailed, err
	}
	log.Info("login successful")

	engine := NewEngine(page, r.cfg.BookingAPIFragment, r.cfg.Timeouts, log)

	var outcome Outcome
	err = Retry(ctx, r.cfg.MaxRetries, Retryable, func(ctx context.Context, attempt int) error {
		log.Info("booking attempt", "attempt", attempt, "max", r.cfg.MaxRetries)
		card, err := sess.LocateClass(ctx, target)
		if err != nil {
			return err
		}
		outcome, err = engine.Attempt(ctx, card)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrClassNotFound) {
			// Log-only by policy: a class missing from the page is not
			// worth waking anyone up for.
			log.Error("target class not on the page", "err", err)
			return OutcomeNotFound, nil
		}
		log.Error("booking did not succeed", "outcome", outcome, "err", err)
		if outcome == OutcomeNone {
			outcome = OutcomeFailed
		}
		return outcome, err
	}

	switch outcome {
	case OutcomeBooked:
		r.notify(ctx, log, fmt.Sprintf("Successfully booked %q at %s on %s!",
			target.ClassName, target.Time, target.HumanDate()))
	case OutcomeWaitlisted:
		r.notify(ctx, log, fmt.Sprintf("Gym booking waitlisted: %q at %s on %s is full, you are on the waiting list.",
			target.ClassName, target.Time, target.HumanDate()))
	case OutcomeAlreadyBooked:
		log.Info("reservation already held, nothing booked")
	}
	log.Info("run finished", "outcome", outcome)
	return outcome, nil
}

func (r *Runner) notify(ctx context.Context, log *slog.Logger, text string) {
	if err := r.notifier.Notify(ctx, text); err != nil {
		log.Error("notification failed", "err", err)
		return
	}
	log.Info("notification sent")
}
