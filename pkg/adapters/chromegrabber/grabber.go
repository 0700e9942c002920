// Package chromegrabber captures still images of a web page rendered
// in a headless browser, using chromedp.
package chromegrabber

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/user/winreel/pkg/ports"
)

// Options configures the grabber.
type Options struct {
	// URL is the page to capture.
	URL string
	// ChromePath overrides automatic Chrome discovery.
	ChromePath string
	// WindowWidth and WindowHeight size the browser window; they become
	// the native dimensions of captured frames.
	WindowWidth  int
	WindowHeight int
}

// Grabber implements ports.Grabber for a single browser page. The page
// is navigated once at launch; every CaptureFrame returns its current
// rendering.
type Grabber struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

// Launch starts the browser, sizes the viewport and navigates to the
// target page.
func Launch(ctx context.Context, opts Options) (*Grabber, error) {
	if opts.WindowWidth <= 0 {
		opts.WindowWidth = 1280
	}
	if opts.WindowHeight <= 0 {
		opts.WindowHeight = 800
	}

	chromePath := ResolveChromePath(opts.ChromePath)
	if chromePath == "" {
		return nil, fmt.Errorf("chrome not found: install Chrome/Chromium, set CHROME_PATH, or use --chrome-path")
	}

	chromedpOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.ExecPath(chromePath),
		chromedp.Flag("headless", "new"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	}

	g := &Grabber{}
	g.allocCtx, g.allocCancel = chromedp.NewExecAllocator(ctx, chromedpOpts...)
	g.ctx, g.cancel = chromedp.NewContext(g.allocCtx)

	err := chromedp.Run(g.ctx,
		emulation.SetDeviceMetricsOverride(int64(opts.WindowWidth), int64(opts.WindowHeight), 1, false),
		chromedp.Navigate(opts.URL),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("navigate %s: %w", opts.URL, err)
	}

	return g, nil
}

// CaptureFrame takes one screenshot of the page viewport.
func (g *Grabber) CaptureFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	if err := chromedp.Run(g.ctx, chromedp.CaptureScreenshot(&data)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}

// Close shuts down the browser.
func (g *Grabber) Close() error {
	if g.cancel != nil {
		g.cancel()
	}
	if g.allocCancel != nil {
		g.allocCancel()
	}
	return nil
}

// Ensure Grabber implements ports.Grabber
var _ ports.Grabber = (*Grabber)(nil)
