package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"

	"github.com/reformtrack/align/engine"
)

// ============================================================================
// PNG EXPORT — Optional raster rendering behind a capability check
// ============================================================================
// PNG export needs a headless Chromium. When none is found the capability
// reports unavailable with an install hint and callers fall back to SVG/CSV.
// ============================================================================

// ErrExportUnavailable marks a PNG export that cannot be produced on this host.
var ErrExportUnavailable = errors.New("png export unavailable")

// InstallHint is shown when no browser binary is found.
const InstallHint = "Install Chromium or Google Chrome, or set export.browser_bin (ALIGN_BROWSER_BIN) to its path."

// UnavailableError explains why PNG export is off and how to enable it.
type UnavailableError struct {
	Reason string
	Hint   string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrExportUnavailable, e.Reason)
}

func (e *UnavailableError) Is(target error) bool { return target == ErrExportUnavailable }

// Renderer rasterises a chart.
type Renderer interface {
	Render(ctx context.Context, chart *engine.ChartConfig) ([]byte, error)
	Close() error
}

// Status is the JSON-facing summary of the capability.
type Status struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Hint      string `json:"hint,omitempty"`
}

// Capability wraps an optional Renderer.
type Capability struct {
	renderer Renderer
	reason   string
	hint     string
	once     sync.Once
}

// NewCapability returns an available capability backed by r.
func NewCapability(r Renderer) *Capability {
	return &Capability{renderer: r}
}

// Unavailable returns a capability that always fails with reason and hint.
func Unavailable(reason, hint string) *Capability {
	return &Capability{reason: reason, hint: hint}
}

// RendererOptions configures DetectRenderer.
type RendererOptions struct {
	BrowserBin string
	Disabled   bool
	Width      int
	Height     int
	Logger     *zap.Logger
}

// DetectRenderer probes for a browser binary. It never launches the
// browser; that happens on the first PNG request.
func DetectRenderer(opts RendererOptions) *Capability {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Disabled {
		return Unavailable("disabled by configuration", "Set export.png to true to enable PNG export.")
	}

	bin := opts.BrowserBin
	if bin != "" {
		if _, err := os.Stat(bin); err != nil {
			logger.Warn("configured browser binary not found", zap.String("bin", bin), zap.Error(err))
			return Unavailable(fmt.Sprintf("browser binary %q not found", bin), InstallHint)
		}
	} else {
		found, ok := launcher.LookPath()
		if !ok {
			logger.Info("no browser found, png export disabled")
			return Unavailable("no Chromium or Chrome binary found", InstallHint)
		}
		bin = found
	}

	logger.Info("png export enabled", zap.String("bin", bin))
	return NewCapability(newBrowserRenderer(bin, SVGOptions{Width: opts.Width, Height: opts.Height}, logger))
}

// Available reports whether PNG export can be attempted.
func (c *Capability) Available() bool { return c != nil && c.renderer != nil }

// Status returns the capability summary.
func (c *Capability) Status() Status {
	if c.Available() {
		return Status{Available: true}
	}
	if c == nil {
		return Status{Reason: "not configured", Hint: InstallHint}
	}
	return Status{Reason: c.reason, Hint: c.hint}
}

// PNG renders chart or returns an *UnavailableError.
func (c *Capability) PNG(ctx context.Context, chart *engine.ChartConfig) ([]byte, error) {
	if !c.Available() {
		st := c.Status()
		return nil, &UnavailableError{Reason: st.Reason, Hint: st.Hint}
	}
	if chart == nil {
		return nil, errors.New("no chart to render")
	}
	return c.renderer.Render(ctx, chart)
}

// Close releases the renderer. Safe to call more than once.
func (c *Capability) Close() error {
	if !c.Available() {
		return nil
	}
	var err error
	c.once.Do(func() { err = c.renderer.Close() })
	return err
}
