package core

import (
	"context"
	"encoding/json"
)

// StatusFetcher retrieves the current status of the tracked vehicle from the
// upstream fleet API. Implemented by the Cartrack adapter.
type StatusFetcher interface {
	FetchStatus(ctx context.Context) (json.RawMessage, error)
}

// StatusCache is the single-slot store of the last successful status.
type StatusCache interface {
	// Get returns the cached payload if it is still fresh.
	Get() (json.RawMessage, bool)

	// Store replaces the slot content and restarts its freshness window.
	Store(payload json.RawMessage) error
}

// StatusNotifier pushes freshly fetched statuses to subscribers.
// Implemented by the MQTT outbound adapter.
type StatusNotifier interface {
	NotifyStatus(ctx context.Context, vehicleID string, payload json.RawMessage) error
}
