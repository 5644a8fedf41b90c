package worldstate

import (
	"context"
	"io"
	"log/slog"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/notify"
)

// Notifier receives one Event per changed category.
type Notifier = notify.Notifier

// Event announces that one category changed.
type Event = notify.Event

// NewStdoutNotifier writes JSON lines to w.
func NewStdoutNotifier(w io.Writer) Notifier {
	return notify.NewStdout(w)
}

// NewWebhookNotifier POSTs events to url with retry.
func NewWebhookNotifier(url string, logger *slog.Logger) Notifier {
	return notify.NewWebhook(url, notify.WithWebhookLogger(logger))
}

// NewCallbackNotifier hands events to fn in-process.
func NewCallbackNotifier(fn func(ctx context.Context, ev Event) error) Notifier {
	return notify.NewCallback(fn)
}

func notifiersFromConfig(cfgs []NotifierConfig, logger *slog.Logger) []Notifier {
	var out []Notifier
	for _, nc := range cfgs {
		switch nc.Type {
		case "stdout":
			out = append(out, notify.NewStdout(nil))
		case "webhook":
			out = append(out, notify.NewWebhook(nc.URL,
				notify.WithWebhookRetries(nc.Retries),
				notify.WithWebhookTimeout(nc.Timeout),
				notify.WithWebhookLogger(logger),
			))
		default:
			logger.Warn("worldstate: unknown notifier type", "type", nc.Type)
		}
	}
	return out
}
