// Package browser provides the controllable-page capability the booking
// flow is written against. The core packages depend on the Page
// interface only; the chromedp implementation lives behind it.
package browser

import (
	"context"
	"time"
)

// Page is one controllable browser tab. Selectors may be CSS or XPath;
// XPath is what lets callers match buttons by their text, which plain
// CSS cannot do.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	// WaitIdle blocks until network activity quiets down or the timeout
	// elapses. Page loads on this site fire a burst of XHRs; idleness is
	// the only load-complete signal it exposes.
	WaitIdle(ctx context.Context, timeout time.Duration) error

	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error
	IsVisible(ctx context.Context, sel string) (bool, error)
	Click(ctx context.Context, sel string) error
	// ClickNth clicks the n-th (1-based) element matching sel in
	// document order.
	ClickNth(ctx context.Context, sel string, n int) error
	Fill(ctx context.Context, sel, value string) error
	PressEscape(ctx context.Context) error

	// HTML returns the outer HTML of the first element matching sel.
	HTML(ctx context.Context, sel string) (string, error)
	// WaitResponse blocks until a network response whose URL contains
	// urlFragment completes with status 200 or 201, and returns its body.
	WaitResponse(ctx context.Context, urlFragment string, timeout time.Duration) ([]byte, error)

	Sleep(ctx context.Context, d time.Duration) error
}
