package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ffhgterh111-hub/LFGWarframeMain/netsafe"
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/browser"
)

// maxPageSize caps a downloaded page.
const maxPageSize = 10 << 20

// Engine loads one page. Implementations do not retry.
type Engine interface {
	Load(ctx context.Context, src Source) ([]byte, error)
}

// BrowserOptions tune how the browser engine renders a page.
type BrowserOptions struct {
	ReadyTimeout   time.Duration
	Settle         time.Duration
	UserAgent      string
	AcceptLanguage string
	Width, Height  int
}

// Renderer is the part of browser.Manager the engine drives.
type Renderer interface {
	Render(ctx context.Context, req browser.Request) (browser.Result, error)
	Recycle()
}

// BrowserEngine renders pages in Chrome. Needed for the live pages, which
// build their tables client-side.
type BrowserEngine struct {
	r    Renderer
	opts BrowserOptions
}

// NewBrowserEngine creates an engine on top of r, usually a
// *browser.Manager. The caller owns r.
func NewBrowserEngine(r Renderer, opts BrowserOptions) *BrowserEngine {
	return &BrowserEngine{r: r, opts: opts}
}

// Load renders one page. A failure of Chrome itself recycles the process,
// so the retry gets a fresh one.
func (e *BrowserEngine) Load(ctx context.Context, src Source) ([]byte, error) {
	res, err := e.r.Render(ctx, browser.Request{
		URL:            src.URL,
		ReadySelector:  src.ReadySelector,
		ReadyTimeout:   e.opts.ReadyTimeout,
		Settle:         e.opts.Settle,
		UserAgent:      e.opts.UserAgent,
		AcceptLanguage: e.opts.AcceptLanguage,
		Width:          e.opts.Width,
		Height:         e.opts.Height,
	})
	if err != nil {
		if recyclable(ctx, err) {
			e.r.Recycle()
		}
		return nil, err
	}
	return res.HTML, nil
}

// recyclable reports whether err points at a broken browser rather than at
// the page: timeouts, cancellations and HTTP statuses do not.
func recyclable(ctx context.Context, err error) bool {
	var se *browser.StatusError
	switch {
	case ctx.Err() != nil,
		errors.As(err, &se),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, browser.ErrClosed):
		return false
	}
	return true
}

// HTTPEngine performs a plain GET. It suits static mirrors of the source
// pages and tests.
type HTTPEngine struct {
	client *http.Client
	ua     string
	lang   string
	logger *slog.Logger
}

// HTTPOption configures an HTTPEngine.
type HTTPOption func(*HTTPEngine)

// WithClient sets a custom HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(e *HTTPEngine) { e.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(e *HTTPEngine) { e.ua = ua }
}

// WithAcceptLanguage sets the Accept-Language header.
func WithAcceptLanguage(lang string) HTTPOption {
	return func(e *HTTPEngine) { e.lang = lang }
}

// WithHTTPLogger sets a custom logger.
func WithHTTPLogger(l *slog.Logger) HTTPOption {
	return func(e *HTTPEngine) { e.logger = l }
}

// NewHTTPEngine creates an HTTPEngine with sensible defaults.
func NewHTTPEngine(opts ...HTTPOption) *HTTPEngine {
	e := &HTTPEngine{
		client: &http.Client{},
		ua:     "Mozilla/5.0 (compatible; worldstate/1.0)",
		lang:   "en-US,en;q=0.9",
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *HTTPEngine) Load(ctx context.Context, src Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetcher: new request: %w", err)
	}
	req.Header.Set("User-Agent", e.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", e.lang)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetcher: do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{URL: src.URL, Status: resp.StatusCode}
	}

	body, err := netsafe.LimitedReadAll(resp.Body, maxPageSize)
	if err != nil {
		return nil, fmt.Errorf("fetcher: read body: %w", err)
	}

	e.logger.Debug("fetcher: fetched", "source", src.Name, "url", src.URL, "size", len(body))
	return body, nil
}
