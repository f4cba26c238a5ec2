package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// Browser drives a headless (or headed, for debugging) Chromium instance
// through chromedp. It implements Page.
type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// NewBrowser launches Chromium. The caller owns the returned Browser and
// must Close it; Close is safe to call any number of times.
func NewBrowser(parent context.Context, headless bool) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	b := &Browser{ctx: browserCtx, cancel: cancel, allocCancel: allocCancel}
	if err := chromedp.Run(browserCtx); err != nil {
		b.Close()
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	return b, nil
}

// Close tears the browser down. Idempotent, and safe on a Browser that
// never launched.
func (b *Browser) Close() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}
	b.ctx = nil
}

// run executes chromedp actions on the browser context while honoring the
// caller's context for cancellation.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	if b.ctx == nil {
		return errors.New("browser not open")
	}
	runCtx := b.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(b.ctx, deadline)
		defer cancel()
	}
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(runCtx, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, chromedp.Navigate(url))
}

func (b *Browser) Back(ctx context.Context) error {
	return b.run(ctx, chromedp.NavigateBack())
}

func (b *Browser) Fill(ctx context.Context, selector, value string) error {
	return b.run(ctx, chromedp.SendKeys(selector, value, chromedp.ByQuery))
}

func (b *Browser) Click(ctx context.Context, selector string) error {
	return b.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (b *Browser) ClickNth(ctx context.Context, selector string, index int) error {
	var nodes []*cdp.Node
	if err := b.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll)); err != nil {
		return err
	}
	if index >= len(nodes) {
		return fmt.Errorf("element %d of %q not present (have %d)", index, selector, len(nodes))
	}
	return b.run(ctx, chromedp.MouseClickNode(nodes[index]))
}

func (b *Browser) ClickText(ctx context.Context, text string) error {
	sel := fmt.Sprintf(`//*[normalize-space(text())=%q]`, text)
	return b.run(ctx, chromedp.Click(sel, chromedp.BySearch))
}

func (b *Browser) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return b.run(tctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (b *Browser) HTML(ctx context.Context) (string, error) {
	var html string
	err := b.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}
