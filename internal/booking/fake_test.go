package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/example/gym-scheduler/internal/config"
)

// fakePage is a scriptable Page for tests: visibility per selector,
// canned page HTML and a canned booking API response.
type fakePage struct {
	visible map[string]bool
	html    string

	apiBody []byte
	apiErr  error

	navigations int
	clicks      []string
	fills       map[string]string

	// onClick runs after every recorded click so tests can flip page
	// state mid-flow (e.g. a date appearing after pagination).
	onClick func(sel string)
}

func newFakePage() *fakePage {
	return &fakePage{
		visible: make(map[string]bool),
		fills:   make(map[string]string),
	}
}

func (f *fakePage) Navigate(ctx context.Context, url string) error {
	f.navigations++
	return nil
}

func (f *fakePage) Reload(ctx context.Context) error { return nil }

func (f *fakePage) WaitIdle(ctx context.Context, timeout time.Duration) error { return nil }

func (f *fakePage) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	if !f.visible[sel] {
		return fmt.Errorf("fake: %q never became visible", sel)
	}
	return nil
}

func (f *fakePage) IsVisible(ctx context.Context, sel string) (bool, error) {
	return f.visible[sel], nil
}

func (f *fakePage) Click(ctx context.Context, sel string) error {
	f.clicks = append(f.clicks, sel)
	if f.onClick != nil {
		f.onClick(sel)
	}
	return nil
}

func (f *fakePage) ClickNth(ctx context.Context, sel string, n int) error {
	return f.Click(ctx, fmt.Sprintf("%s#%d", sel, n))
}

func (f *fakePage) Fill(ctx context.Context, sel, value string) error {
	f.fills[sel] = value
	return nil
}

func (f *fakePage) PressEscape(ctx context.Context) error { return nil }

func (f *fakePage) HTML(ctx context.Context, sel string) (string, error) {
	return f.html, nil
}

func (f *fakePage) WaitResponse(ctx context.Context, urlFragment string, timeout time.Duration) ([]byte, error) {
	if f.apiErr != nil {
		return nil, f.apiErr
	}
	return f.apiBody, nil
}

func (f *fakePage) Sleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func (f *fakePage) clickCount(sel string) int {
	n := 0
	for _, c := range f.clicks {
		if c == sel {
			n++
		}
	}
	return n
}

// testTimeouts keeps every bounded wait tiny so failure paths resolve
// instantly.
func testTimeouts() config.Timeouts {
	return config.Timeouts{
		Login:            10 * time.Millisecond,
		Navigation:       10 * time.Millisecond,
		ElementWait:      10 * time.Millisecond,
		PaginationWindow: 50 * time.Millisecond,
		PaginationSettle: time.Millisecond,
		DialogSettle:     time.Millisecond,
		Confirmation:     10 * time.Millisecond,
		UIConfirmation:   10 * time.Millisecond,
		RunDeadline:      time.Second,
	}
}
