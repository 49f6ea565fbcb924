package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/gym-scheduler/internal/browser"
	"github.com/example/gym-scheduler/internal/config"
	"github.com/example/gym-scheduler/internal/schedule"
	"github.com/example/gym-scheduler/internal/scrape"
)

// Selectors for the booking site UI. Text-matching buttons use XPath;
// everything with a stable id or attribute stays CSS.
const (
	selLoginButton    = `//button[contains(., "Log in")]`
	selUsernameInput  = `#login_step_login_username`
	selUsernameSubmit = `#login_step_login_submit`
	selPasswordInput  = `input[name="_password"]`
	selPasswordSubmit = `#submit`
	// The next-date-range control pages the date selector forward.
	selNextDateRange = `button[value="1"]`
)

func dateSelector(date string) string {
	return fmt.Sprintf(`button[value=%q]`, date)
}

func classCardSelector(className string) string {
	return fmt.Sprintf(`//h3[contains(@title, %q)]`, className)
}

// CardHandle points at one visual occurrence of a class on the booking
// page: the Index-th (1-based) element matching Selector in document
// order. Valid only until the page navigates again.
type CardHandle struct {
	Selector string
	Index    int
}

// Session owns an authenticated browsing session against the booking
// site and provides the navigation steps leading up to a located class
// card.
type Session struct {
	page    browser.Page
	siteURL string
	t       config.Timeouts
	log     *slog.Logger
}

func NewSession(page browser.Page, siteURL string, t config.Timeouts, log *slog.Logger) *Session {
	return &Session{page: page, siteURL: siteURL, t: t, log: log}
}

// Login drives the site's two-step credential form: username then
// password, each behind its own submit. Network idleness after the
// final submit is the only login-success signal the site gives.
// Failures are ErrLogin and fatal.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.log.Info("logging in", "url", s.siteURL)
	if err := s.page.Navigate(ctx, s.siteURL); err != nil {
		return fmt.Errorf("%w: %v", ErrLogin, err)
	}
	if err := s.page.WaitVisible(ctx, selLoginButton, s.t.ElementWait); err != nil {
		return fmt.Errorf("%w: login button: %v", ErrLogin, err)
	}
	if err := s.page.Click(ctx, selLoginButton); err != nil {
		return fmt.Errorf("%w: %v", ErrLogin, err)
	}

	if err := s.page.WaitVisible(ctx, selUsernameInput, s.t.ElementWait); err != nil {
		return fmt.Errorf("%w: username form: %v", ErrLogin, err)
	}
	if err := s.page.Fill(ctx, selUsernameInput, email); err != nil {
		return fmt.Errorf("%w: %v", ErrLogin, err)
	}
	if err := s.page.Click(ctx, selUsernameSubmit); err != nil {
		return fmt.Errorf("%w: %v", ErrLogin, err)
	}

	if err := s.page.WaitVisible(ctx, selPasswordInput, s.t.ElementWait); err != nil {
		return fmt.Errorf("%w: password form: %v", ErrLogin, err)
	}
	if err := s.page.Fill(ctx, selPasswordInput, password); err != nil {
		return fmt.Errorf("%w: %v", ErrLogin, err)
	}
	if err := s.page.Click(ctx, selPasswordSubmit); err != nil {
		return fmt.Errorf("%w: %v", ErrLogin, err)
	}
	if err := s.page.WaitIdle(ctx, s.t.Login); err != nil {
		return fmt.Errorf("%w: waiting for post-login load: %v", ErrLogin, err)
	}
	return nil
}

// LocateClass reloads the booking page, navigates the date selector to
// the target date and locates the target occurrence of the class.
// Everything but a missing class is a transient failure for the outer
// retry loop.
func (s *Session) LocateClass(ctx context.Context, target schedule.Target) (CardHandle, error) {
	if err := s.page.Navigate(ctx, s.siteURL); err != nil {
		return CardHandle{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if err := s.page.WaitIdle(ctx, s.t.Navigation); err != nil {
		return CardHandle{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if err := s.page.Reload(ctx); err != nil {
		return CardHandle{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if err := s.page.WaitIdle(ctx, s.t.Navigation); err != nil {
		return CardHandle{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	if err := s.findDateColumn(ctx, target.DateString()); err != nil {
		return CardHandle{}, err
	}
	if err := s.selectDate(ctx, target.DateString()); err != nil {
		return CardHandle{}, err
	}
	return s.findClassCard(ctx, target)
}

// findDateColumn pages the date selector forward until the target date
// is visible. Bounded by the pagination window; the next-range control
// disappearing while the date is still absent is reported as transient
// rather than looping in place.
func (s *Session) findDateColumn(ctx context.Context, date string) error {
	deadline := time.Now().Add(s.t.PaginationWindow)
	for {
		visible, err := s.page.IsVisible(ctx, dateSelector(date))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if visible {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: date %s not reachable within pagination window", ErrTransient, date)
		}
		nextVisible, err := s.page.IsVisible(ctx, selNextDateRange)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if !nextVisible {
			return fmt.Errorf("%w: next-date-range control gone before date %s appeared", ErrTransient, date)
		}
		s.log.Info("date not visible yet, advancing date range", "date", date)
		if err := s.page.Click(ctx, selNextDateRange); err != nil {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if err := s.page.Sleep(ctx, s.t.PaginationSettle); err != nil {
			return err
		}
	}
}

func (s *Session) selectDate(ctx context.Context, date string) error {
	if err := s.page.Click(ctx, dateSelector(date)); err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if err := s.page.WaitIdle(ctx, s.t.Navigation); err != nil {
		return fmt.Errorf("%w: class list did not load for %s: %v", ErrTransient, date, err)
	}
	return nil
}

// findClassCard counts occurrences of the class by title on the loaded
// day and returns a handle to the target one. Fewer occurrences than
// the schedule expects is terminal, not transient.
func (s *Session) findClassCard(ctx context.Context, target schedule.Target) (CardHandle, error) {
	html, err := s.page.HTML(ctx, "html")
	if err != nil {
		return CardHandle{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	n, err := scrape.CountByTitle(html, target.ClassName)
	if err != nil {
		return CardHandle{}, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if n < target.Occurrence {
		return CardHandle{}, fmt.Errorf("%w: occurrence %d of %q on %s (page shows %d)",
			ErrClassNotFound, target.Occurrence, target.ClassName, target.DateString(), n)
	}
	s.log.Info("class card located", "class", target.ClassName, "occurrence", target.Occurrence, "matches", n)
	return CardHandle{Selector: classCardSelector(target.ClassName), Index: target.Occurrence}, nil
}
