// Package fetch - browser.go renders JavaScript-only board pages in headless Chrome.
package fetch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer returns the rendered HTML of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// BrowserRenderer renders pages with a local Chrome/Chromium through chromedp.
type BrowserRenderer struct {
	Timeout time.Duration
	// WaitSelector is waited for before the HTML is captured; defaults to body.
	WaitSelector string
	// Settle is an extra pause for client-side rendering after WaitSelector is ready.
	Settle  time.Duration
	Verbose bool
}

// NewBrowserRenderer returns a renderer with a 45s timeout.
func NewBrowserRenderer(verbose bool) *BrowserRenderer {
	return &BrowserRenderer{
		Timeout:      45 * time.Second,
		WaitSelector: "body",
		Settle:       2 * time.Second,
		Verbose:      verbose,
	}
}

// Render navigates to url and returns the outer HTML of the document.
// Requires Chrome/Chromium to be installed on the system.
func (b *BrowserRenderer) Render(ctx context.Context, url string) (string, error) {
	if b.Verbose {
		log.Printf("[BROWSER] Starting headless browser for: %s", url)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := b.Timeout
	if timeout == 0 {
		timeout = 45 * time.Second
	}
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	waitSelector := b.WaitSelector
	if waitSelector == "" {
		waitSelector = "body"
	}

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(waitSelector),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// consent dialogs are optional
			_ = chromedp.Click(`button[id*="accept"], button[aria-label*="Accept"]`, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
			return nil
		}),
		chromedp.Sleep(b.Settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	if b.Verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}

	return html, nil
}
