// Package notify delivers change events to whatever displays the missions.
package notify

import (
	"context"
	"time"

	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/mission"
)

// Event announces that one category changed. Entry is the category value
// at the time the change was consumed.
type Event struct {
	ID       string           `json:"id"`
	Category mission.Category `json:"category"`
	Entry    mission.Entry    `json:"entry"`
	At       time.Time        `json:"at"`
}

// Notifier is the output interface. Implementations deliver events to
// different backends (stdout, webhook, in-process callback).
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Close() error
}
