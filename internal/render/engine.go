package render

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const renderTimeoutMs = 30_000

// Engine screenshots HTML through a shared headless Chromium. The browser is
// created lazily, reused across calls, and recreated if found disconnected;
// a weighted semaphore bounds how many pages render at once.
type Engine struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	closed  bool

	sem *semaphore.Weighted
	log *zap.SugaredLogger
}

func NewEngine(maxPages int64, log *zap.SugaredLogger) *Engine {
	if maxPages <= 0 {
		maxPages = 3
	}
	return &Engine{sem: semaphore.NewWeighted(maxPages), log: log}
}

// Screenshot renders the HTML document and returns a full-page PNG sized to
// the document body.
func (e *Engine) Screenshot(ctx context.Context, html string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "helpdeck-*.html")
	if err != nil {
		return nil, fmt.Errorf("create temp html: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp html: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp html: %w", err)
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.sem.Release(1)

	browser, err := e.browserHandle()
	if err != nil {
		return nil, err
	}

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		DeviceScaleFactor: playwright.Float(2),
	})
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	defer page.Close()

	if _, err := page.Goto("file://"+tmpPath, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(renderTimeoutMs),
	}); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	// The body width is computed by the template's CSS; match the viewport
	// to it so the screenshot has no dead margins.
	width, height := 800, 600
	dims, err := page.Evaluate(`() => {
		const body = document.body;
		const style = getComputedStyle(body);
		return { width: parseInt(style.width) || body.scrollWidth, height: body.scrollHeight };
	}`)
	if err == nil {
		if m, ok := dims.(map[string]interface{}); ok {
			if w, ok := m["width"].(float64); ok && w > 0 {
				width = int(w)
			}
			if h, ok := m["height"].(float64); ok && h > 0 {
				height = int(h)
			}
		}
	}
	if err := page.SetViewportSize(width, height); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	img, err := page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
		Type:     playwright.ScreenshotTypePng,
		Timeout:  playwright.Float(renderTimeoutMs),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return img, nil
}

// browserHandle returns the shared browser, launching or relaunching it
// under the lock when missing or disconnected.
func (e *Engine) browserHandle() (playwright.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, fmt.Errorf("render engine is closed")
	}
	if e.browser != nil && e.browser.IsConnected() {
		return e.browser, nil
	}

	// Drop stale handles before relaunching.
	if e.browser != nil {
		_ = e.browser.Close()
		e.browser = nil
	}
	if e.pw != nil {
		_ = e.pw.Stop()
		e.pw = nil
	}

	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Args: []string{"--no-sandbox", "--disable-setuid-sandbox", "--disable-gpu"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	e.pw = pw
	e.browser = browser
	e.log.Infow("render engine started")
	return browser, nil
}

// Close shuts the browser down exactly once; later Screenshot calls fail.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if e.browser != nil {
		_ = e.browser.Close()
		e.browser = nil
	}
	if e.pw != nil {
		_ = e.pw.Stop()
		e.pw = nil
	}
	e.log.Infow("render engine stopped")
	return nil
}
