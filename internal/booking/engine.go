package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidwall/gjson"

	"github.com/example/gym-scheduler/internal/browser"
	"github.com/example/gym-scheduler/internal/config"
	"github.com/example/gym-scheduler/internal/scrape"
)

const (
	selDialog = `div[role="dialog"]`
	// Cancel/Book controls are matched inside the dialog only; the page
	// behind it has unrelated buttons with the same labels.
	selCancelButton = `//div[@role="dialog"]//button[contains(., "Cancel")]`
	selBookButton   = `//div[@role="dialog"]//button[contains(., "Book")]`
)

// Engine runs one booking attempt against a located class card:
// determine current status, submit a booking if needed, classify the
// result.
type Engine struct {
	page        browser.Page
	apiFragment string
	t           config.Timeouts
	log         *slog.Logger
}

func NewEngine(page browser.Page, apiFragment string, t config.Timeouts, log *slog.Logger) *Engine {
	return &Engine{page: page, apiFragment: apiFragment, t: t, log: log}
}

// Attempt opens the class dialog and works through the booking state
// machine. Terminal outcomes (AlreadyBooked, Booked, Waitlisted) return
// a nil error; everything else returns an error the outer retry loop
// can act on.
func (e *Engine) Attempt(ctx context.Context, card CardHandle) (Outcome, error) {
	if err := e.openDialog(ctx, card); err != nil {
		return OutcomeFailed, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if err := e.refreshDialog(ctx, card); err != nil {
		return OutcomeFailed, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	booked, err := e.page.IsVisible(ctx, selCancelButton)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if booked {
		e.log.Info("cancel control present, reservation already held")
		return OutcomeAlreadyBooked, nil
	}

	bookable, err := e.page.IsVisible(ctx, selBookButton)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if !bookable {
		// Pressing book twice on a full or closed class achieves
		// nothing, so this is not retried inside the engine.
		return OutcomeFailed, fmt.Errorf("%w: book control not visible, class may be full", ErrBookingFailed)
	}
	if err := e.page.Click(ctx, selBookButton); err != nil {
		return OutcomeFailed, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	e.log.Info("book control activated, waiting for confirmation")

	return e.confirm(ctx)
}

func (e *Engine) openDialog(ctx context.Context, card CardHandle) error {
	if err := e.page.ClickNth(ctx, card.Selector, card.Index); err != nil {
		return err
	}
	if err := e.page.Sleep(ctx, e.t.DialogSettle); err != nil {
		return err
	}
	return e.page.WaitVisible(ctx, selDialog, e.t.ElementWait)
}

// refreshDialog closes and reopens the dialog once before anything is
// read from it. Freshly opened dialogs can show stale cached booking
// state; the reopen forces the site to refetch it.
func (e *Engine) refreshDialog(ctx context.Context, card CardHandle) error {
	if err := e.page.PressEscape(ctx); err != nil {
		return err
	}
	if err := e.page.Sleep(ctx, e.t.DialogSettle); err != nil {
		return err
	}
	if err := e.page.ClickNth(ctx, card.Selector, card.Index); err != nil {
		return err
	}
	return e.page.Sleep(ctx, 2*e.t.DialogSettle)
}

// confirm waits for the attendees API response and maps its state
// field. When the API never answers it falls back to scanning the page
// for the textual confirmation, each channel bounded by its own
// timeout.
func (e *Engine) confirm(ctx context.Context) (Outcome, error) {
	body, err := e.page.WaitResponse(ctx, e.apiFragment, e.t.Confirmation)
	if err != nil {
		e.log.Warn("no booking API response, falling back to the page", "err", err)
		return e.confirmFromUI(ctx)
	}

	state := gjson.GetBytes(body, "state").String()
	e.log.Info("booking API responded", "state", state)
	switch state {
	case "booked":
		return OutcomeBooked, nil
	case "queued":
		return OutcomeWaitlisted, nil
	case "canceled":
		return OutcomeCanceled, fmt.Errorf("%w: booking reported canceled", ErrBookingFailed)
	default:
		return OutcomeUnknown, fmt.Errorf("%w: unexpected booking state %q", ErrBookingFailed, state)
	}
}

func (e *Engine) confirmFromUI(ctx context.Context) (Outcome, error) {
	deadline := time.Now().Add(e.t.UIConfirmation)
	for {
		html, err := e.page.HTML(ctx, "html")
		if err != nil {
			return OutcomeFailed, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if scrape.ConfirmationShown(html) {
			e.log.Info("booking confirmed via page text")
			return OutcomeBooked, nil
		}
		if time.Now().After(deadline) {
			return OutcomeFailed, fmt.Errorf("%w: no confirmation on either channel", ErrBookingFailed)
		}
		if err := e.page.Sleep(ctx, time.Second); err != nil {
			return OutcomeFailed, err
		}
	}
}
