package export

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/reformtrack/align/engine"
)

// browserRenderer screenshots the SVG rendering in headless Chromium.
// The browser is started on first use and shared across renders.
type browserRenderer struct {
	bin    string
	size   SVGOptions
	logger *zap.Logger

	mu      sync.Mutex
	browser *rod.Browser
}

func newBrowserRenderer(bin string, size SVGOptions, logger *zap.Logger) *browserRenderer {
	if size.Width <= 0 {
		size.Width = DefaultWidth
	}
	if size.Height <= 0 {
		size.Height = DefaultHeight
	}
	return &browserRenderer{bin: bin, size: size, logger: logger}
}

func (r *browserRenderer) connect() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		if _, err := r.browser.Version(); err == nil {
			return r.browser, nil
		}
		r.logger.Warn("stale browser connection, relaunching")
		_ = r.browser.Close()
		r.browser = nil
	}

	url, err := launcher.New().Bin(r.bin).Headless(true).Launch()
	if err != nil {
		return nil, &UnavailableError{Reason: fmt.Sprintf("launch browser: %v", err), Hint: InstallHint}
	}
	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, &UnavailableError{Reason: fmt.Sprintf("connect to browser: %v", err), Hint: InstallHint}
	}
	r.browser = browser
	r.logger.Debug("browser connected", zap.String("bin", r.bin))
	return browser, nil
}

func (r *browserRenderer) Render(ctx context.Context, chart *engine.ChartConfig) ([]byte, error) {
	svg, err := SVG(chart, r.size)
	if err != nil {
		return nil, err
	}

	browser, err := r.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()
	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             r.size.Width,
		Height:            r.size.Height,
		DeviceScaleFactor: 2,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	doc := `<!DOCTYPE html><html><head><meta charset="utf-8"><style>html,body{margin:0;padding:0;background:#fff}</style></head><body>` +
		string(svg) + `</body></html>`
	if err := page.SetDocumentContent(doc); err != nil {
		return nil, fmt.Errorf("load chart: %w", err)
	}

	png, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("capture png: %w", err)
	}
	return png, nil
}

func (r *browserRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}
