package portal

import (
	"context"
	"time"
)

// Page is the minimal surface the extraction engine needs from a rendered
// browser session. The chromedp Browser implements it for real runs; tests
// substitute a scripted fake so navigation logic runs without a browser.
type Page interface {
	// Navigate loads a URL and waits for the load to settle.
	Navigate(ctx context.Context, url string) error
	// Back returns to the previous page in history.
	Back(ctx context.Context) error
	// Fill types a value into the element matching selector.
	Fill(ctx context.Context, selector, value string) error
	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error
	// ClickNth re-resolves all elements matching selector on the current
	// page and clicks the one at index. Callers use this instead of held
	// element handles, which navigation invalidates.
	ClickNth(ctx context.Context, selector string, index int) error
	// ClickText clicks the first element whose visible text equals text.
	ClickText(ctx context.Context, text string) error
	// WaitVisible blocks until selector matches a visible element or the
	// timeout elapses. Cancelling ctx ends the wait early.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// HTML returns the current document's full markup.
	HTML(ctx context.Context) (string, error)
}
