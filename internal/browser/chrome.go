package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// quietPeriod is how long the network must stay silent before WaitIdle
// considers a page load finished.
const quietPeriod = 500 * time.Millisecond

type Options struct {
	Headless bool
}

// ChromePage drives a headless Chrome tab via chromedp. Each New call
// launches a fresh browser process with an empty profile, so runs never
// inherit cookies or cached credentials from each other.
type ChromePage struct {
	ctx context.Context
}

// New launches a browser and returns a page plus a release func that
// must be called on every exit path.
func New(parent context.Context, opts Options) (*ChromePage, func(), error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("ignore-certificate-errors", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	release := func() {
		cancelCtx()
		cancelAlloc()
	}

	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		release()
		return nil, nil, fmt.Errorf("start browser: %w", err)
	}
	return &ChromePage{ctx: ctx}, release, nil
}

func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(p.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *ChromePage) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(p.ctx, chromedp.Reload()); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return nil
}

// WaitIdle waits for the network to go quiet: no requests in flight for
// quietPeriod. Bounded by timeout and by ctx.
func (p *ChromePage) WaitIdle(ctx context.Context, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	var mu sync.Mutex
	inflight := 0
	timer := time.NewTimer(quietPeriod)
	defer timer.Stop()

	chromedp.ListenTarget(tctx, func(ev interface{}) {
		mu.Lock()
		defer mu.Unlock()
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			inflight++
			timer.Stop()
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if inflight > 0 {
				inflight--
			}
			if inflight == 0 {
				timer.Reset(quietPeriod)
			}
		}
	})

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-tctx.Done():
		return fmt.Errorf("network idle: %w", tctx.Err())
	}
}

func (p *ChromePage) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(tctx, chromedp.WaitVisible(sel, chromedp.BySearch)); err != nil {
		return fmt.Errorf("wait visible %q: %w", sel, err)
	}
	return nil
}

func (p *ChromePage) IsVisible(ctx context.Context, sel string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var visible bool
	script := fmt.Sprintf(visibleJS, sel)
	if err := chromedp.Run(p.ctx, chromedp.Evaluate(script, &visible)); err != nil {
		return false, fmt.Errorf("visibility check %q: %w", sel, err)
	}
	return visible, nil
}

// visibleJS resolves a CSS or XPath selector and reports whether the
// first match is rendered. Mirrors the usual offsetParent heuristic.
const visibleJS = `(() => {
	const sel = %q;
	let el = null;
	if (sel.startsWith("/") || sel.startsWith("(")) {
		el = document.evaluate(sel, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	} else {
		el = document.querySelector(sel);
	}
	if (!el) return false;
	const style = window.getComputedStyle(el);
	return style.display !== "none" && style.visibility !== "hidden" && el.offsetParent !== null;
})()`

func (p *ChromePage) Click(ctx context.Context, sel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(p.ctx, chromedp.Click(sel, chromedp.BySearch)); err != nil {
		return fmt.Errorf("click %q: %w", sel, err)
	}
	return nil
}

func (p *ChromePage) ClickNth(ctx context.Context, sel string, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var nodes []*cdp.Node
	if err := chromedp.Run(p.ctx, chromedp.Nodes(sel, &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		return fmt.Errorf("locate %q: %w", sel, err)
	}
	if len(nodes) < n {
		return fmt.Errorf("%q: want occurrence %d, found %d", sel, n, len(nodes))
	}
	if err := chromedp.Run(p.ctx, chromedp.MouseClickNode(nodes[n-1])); err != nil {
		return fmt.Errorf("click %q occurrence %d: %w", sel, n, err)
	}
	return nil
}

func (p *ChromePage) Fill(ctx context.Context, sel, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(p.ctx,
		chromedp.WaitVisible(sel, chromedp.BySearch),
		chromedp.Clear(sel, chromedp.BySearch),
		chromedp.SendKeys(sel, value, chromedp.BySearch),
	); err != nil {
		return fmt.Errorf("fill %q: %w", sel, err)
	}
	return nil
}

func (p *ChromePage) PressEscape(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(p.ctx, chromedp.KeyEvent(kb.Escape)); err != nil {
		return fmt.Errorf("press escape: %w", err)
	}
	return nil
}

func (p *ChromePage) HTML(ctx context.Context, sel string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var html string
	if err := chromedp.Run(p.ctx, chromedp.OuterHTML(sel, &html, chromedp.BySearch)); err != nil {
		return "", fmt.Errorf("outer html %q: %w", sel, err)
	}
	return html, nil
}

// WaitResponse watches network traffic for a completed response whose
// URL contains urlFragment with status 200/201 and returns its body.
func (p *ChromePage) WaitResponse(ctx context.Context, urlFragment string, timeout time.Duration) ([]byte, error) {
	tctx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	done := make(chan network.RequestID, 1)
	var mu sync.Mutex
	matched := make(map[network.RequestID]bool)

	chromedp.ListenTarget(tctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventResponseReceived:
			if strings.Contains(e.Response.URL, urlFragment) &&
				(e.Response.Status == 200 || e.Response.Status == 201) {
				mu.Lock()
				matched[e.RequestID] = true
				mu.Unlock()
			}
		case *network.EventLoadingFinished:
			mu.Lock()
			ok := matched[e.RequestID]
			mu.Unlock()
			if ok {
				select {
				case done <- e.RequestID:
				default:
				}
			}
		}
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-tctx.Done():
		return nil, fmt.Errorf("response matching %q: %w", urlFragment, tctx.Err())
	case id := <-done:
		var body []byte
		err := chromedp.Run(p.ctx, chromedp.ActionFunc(func(cctx context.Context) error {
			var err error
			body, err = network.GetResponseBody(id).Do(cctx)
			return err
		}))
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		return body, nil
	}
}

func (p *ChromePage) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
