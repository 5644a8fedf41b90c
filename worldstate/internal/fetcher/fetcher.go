// Package fetcher loads the raw markup of the source pages. Every fetch goes
// through one worker goroutine, so fetches never overlap, and is retried a
// bounded number of times before a FetchError is returned.
package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Source is a page to fetch.
type Source struct {
	Name          string // short label used in logs and metrics
	URL           string
	ReadySelector string // element whose presence means the page rendered
}

// Fetcher returns the raw markup of a source page.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type Fetcher interface {
	Fetch(ctx context.Context, src Source) ([]byte, error)
}

// Recorder receives attempt events. *stats.Sink implements it.
type Recorder interface {
	FetchAttempt(retry bool)
}

// Config configures a Client.
type Config struct {
	// MaxAttempts bounds attempts per fetch. Default: 2.
	MaxAttempts int
	// RetryDelay is the fixed pause between attempts. Default: 3s.
	RetryDelay time.Duration
	// Timeout bounds a single attempt. Default: 30s.
	Timeout time.Duration

	Clock    clockwork.Clock
	Recorder Recorder
	Logger   *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 2
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 3 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Client is the production Fetcher: engine + retry + single worker.
type Client struct {
	cfg    Config
	engine Engine
	worker *Worker
}

var _ Fetcher = (*Client)(nil)

// New creates a Client and starts its worker. Call Close to stop it.
func New(engine Engine, cfg Config) *Client {
	cfg.defaults()
	return &Client{cfg: cfg, engine: engine, worker: NewWorker()}
}

// Fetch loads src, retrying on any failure. The error, if any, is a
// *FetchError unless ctx ended before the job started.
func (c *Client) Fetch(ctx context.Context, src Source) ([]byte, error) {
	return c.worker.Do(ctx, func(ctx context.Context) ([]byte, error) {
		return c.fetch(ctx, src)
	})
}

func (c *Client) fetch(ctx context.Context, src Source) ([]byte, error) {
	log := c.cfg.Logger
	r := Retry{
		MaxAttempts: c.cfg.MaxAttempts,
		Delay:       c.cfg.RetryDelay,
		Clock:       c.cfg.Clock,
		OnAttempt: func(n int) {
			if c.cfg.Recorder != nil {
				c.cfg.Recorder.FetchAttempt(n > 1)
			}
			if n > 1 {
				log.Info("fetcher: retrying", "source", src.Name, "attempt", n)
			}
		},
	}

	body, attempts, err := r.Do(ctx, func(ctx context.Context) ([]byte, error) {
		actx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
		body, err := c.engine.Load(actx, src)
		if err != nil {
			log.Warn("fetcher: attempt failed", "source", src.Name, "error", err)
		}
		return body, err
	})
	if err != nil {
		kind, status := classify(err)
		return nil, &FetchError{
			Kind:     kind,
			Source:   src.Name,
			URL:      src.URL,
			Status:   status,
			Attempts: attempts,
			Err:      err,
		}
	}
	return body, nil
}

// Close stops the worker after any in-flight fetch.
func (c *Client) Close() {
	c.worker.Close()
}
