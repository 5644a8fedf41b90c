// Package idgen generates the identifiers attached to ingestion cycles and
// change events. IDs are UUIDv7, so they sort by creation time and carry
// their own timestamp.
package idgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator that produces RFC 9562 UUID v7 strings.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Prefixes used across the service.
const (
	CyclePrefix = "cyc_"
	EventPrefix = "evt_"
)

var (
	// Cycle labels one ingestion cycle in logs and status output.
	Cycle = Prefixed(CyclePrefix, UUIDv7())
	// Event labels one change notification.
	Event = Prefixed(EventPrefix, UUIDv7())
)

// Parse strips a known prefix and validates the UUID that remains.
func Parse(id string) (uuid.UUID, error) {
	raw := id
	for _, p := range []string{CyclePrefix, EventPrefix} {
		if strings.HasPrefix(raw, p) {
			raw = raw[len(p):]
			break
		}
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("idgen: invalid id %q: %w", id, err)
	}
	return u, nil
}

// Time returns the creation time embedded in a UUIDv7-based id.
func Time(id string) (time.Time, error) {
	u, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	if u.Version() != 7 {
		return time.Time{}, fmt.Errorf("idgen: %q is not a v7 id", id)
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec).UTC(), nil
}
