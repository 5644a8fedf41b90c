package browser

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Request describes one page render.
type Request struct {
	URL            string
	ReadySelector  string        // element that marks the page as loaded
	ReadyTimeout   time.Duration // bound on the ReadySelector wait
	Settle         time.Duration // pause after the selector appears
	UserAgent      string
	AcceptLanguage string
	Width, Height  int
}

// Result is a rendered page. Status is the HTTP status of the main
// document, or 0 when the browser never reported one.
type Result struct {
	HTML   []byte
	Status int
}

// StatusError reports a main document answered with a non-200 status.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("browser: %s: status %d", e.URL, e.Status)
}

// Render loads req.URL in a fresh incognito context with a stealth page and
// returns the outer HTML once the ready selector is present. The context
// and page are released on every path out of Render.
func (m *Manager) Render(ctx context.Context, req Request) (res Result, err error) {
	b, err := m.acquire()
	if err != nil {
		return res, err
	}

	incognito, err := b.Incognito()
	if err != nil {
		return res, fmt.Errorf("browser: incognito: %w", err)
	}
	defer func() {
		if cerr := incognito.Close(); cerr != nil {
			m.cfg.Logger.Debug("browser: close context", "error", cerr)
		}
	}()

	page, err := stealth.Page(incognito)
	if err != nil {
		return res, fmt.Errorf("browser: create page: %w", err)
	}
	defer page.Close()

	rctx, cancel := context.WithCancel(ctx)
	defer cancel()
	page = page.Context(rctx)

	if err := m.prepare(page, req); err != nil {
		return res, err
	}

	var status atomic.Int64
	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		return res, fmt.Errorf("browser: network enable: %w", err)
	}
	go page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type == proto.NetworkResourceTypeDocument && e.Response != nil {
			status.Store(int64(e.Response.Status))
			return true
		}
		return false
	})()

	if len(m.cfg.ResourceBlocking) > 0 {
		router, err := blockResources(page, m.cfg.ResourceBlocking)
		if err != nil {
			m.cfg.Logger.Warn("browser: resource blocking failed", "error", err)
		} else {
			defer router.Stop()
		}
	}

	if err := page.Navigate(req.URL); err != nil {
		return res, fmt.Errorf("browser: navigate %s: %w", req.URL, err)
	}

	if req.ReadySelector != "" {
		wait := page
		if req.ReadyTimeout > 0 {
			wait = page.Timeout(req.ReadyTimeout)
		}
		if _, err := wait.Element(req.ReadySelector); err != nil {
			if s := int(status.Load()); s != 0 && s != 200 {
				return res, &StatusError{URL: req.URL, Status: s}
			}
			return res, fmt.Errorf("browser: wait %q: %w", req.ReadySelector, err)
		}
	}

	if req.Settle > 0 {
		select {
		case <-time.After(req.Settle):
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}

	html, err := page.HTML()
	if err != nil {
		return res, fmt.Errorf("browser: get DOM: %w", err)
	}
	res = Result{HTML: []byte(html), Status: int(status.Load())}
	if res.Status != 0 && res.Status != 200 {
		return res, &StatusError{URL: req.URL, Status: res.Status}
	}
	return res, nil
}

func (m *Manager) prepare(page *rod.Page, req Request) error {
	if req.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      req.UserAgent,
			AcceptLanguage: req.AcceptLanguage,
		}); err != nil {
			return fmt.Errorf("browser: user agent: %w", err)
		}
	}
	if req.AcceptLanguage != "" {
		if _, err := page.SetExtraHeaders([]string{"Accept-Language", req.AcceptLanguage}); err != nil {
			return fmt.Errorf("browser: headers: %w", err)
		}
	}
	if req.Width > 0 && req.Height > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             req.Width,
			Height:            req.Height,
			DeviceScaleFactor: 1,
		}); err != nil {
			return fmt.Errorf("browser: viewport: %w", err)
		}
	}
	return nil
}
