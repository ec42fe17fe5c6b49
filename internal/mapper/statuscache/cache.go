// Package statuscache holds the single cached vehicle status and tracks its
// freshness as an empty -> fresh -> stale state machine.
package statuscache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"k8s.io/utils/clock"

	"github.com/autopeer-io/livemapper/internal/mapper/core"
	"github.com/autopeer-io/livemapper/internal/pkg/metrics"
	fsmutil "github.com/autopeer-io/livemapper/internal/pkg/util/fsm"
	"github.com/autopeer-io/livemapper/pkg/log"
)

// DefaultTTL is how long a successful fetch is served without contacting upstream.
const DefaultTTL = 10 * time.Second

const (
	StateEmpty = "empty"
	StateFresh = "fresh"
	StateStale = "stale"
)

const (
	// EventStore records a successful fetch. Valid from every state.
	EventStore = "store"
	// EventExpire is raised lazily on access once the TTL has elapsed.
	EventExpire = "expire"
)

var states = []string{StateEmpty, StateFresh, StateStale}

// ErrEmptyPayload is returned by Store for a blank, null or otherwise empty payload.
var ErrEmptyPayload = errors.New("empty status payload is not cached")

var _ core.StatusCache = (*Cache)(nil)

// Cache is a single-slot status cache. Stale payloads are retained until the
// next successful Store but are never returned by Get.
type Cache struct {
	mu sync.Mutex

	ttl       time.Duration
	clock     clock.PassiveClock
	payload   json.RawMessage
	fetchedAt time.Time

	machine *fsm.FSM
}

// New creates an empty cache. A nil clock uses the wall clock and a
// non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration, clk clock.PassiveClock) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.RealClock{}
	}

	c := &Cache{
		ttl:   ttl,
		clock: clk,
	}

	c.machine = fsm.NewFSM(
		StateEmpty,
		fsm.Events{
			{Name: EventStore, Src: states, Dst: StateFresh},
			{Name: EventExpire, Src: []string{StateFresh}, Dst: StateStale},
		},
		fsm.Callbacks{
			"before_" + EventStore: fsmutil.WrapEvent(c.guardPayload),
			"enter_state":          c.onTransition,
		},
	)
	metrics.SetCacheState(StateEmpty, states...)

	return c
}

// Get returns the cached payload while it is fresh (age < TTL).
func (c *Cache) Get() (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.expireLocked() != StateFresh {
		return nil, false
	}
	return c.payload, true
}

// Store replaces the cached payload and stamps it with the current time.
// Empty payloads leave the slot untouched and return ErrEmptyPayload.
func (c *Cache) Store(payload json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.machine.Event(context.Background(), EventStore, payload)
	if err != nil && !fsmutil.IsNoTransition(err) {
		var canceled fsm.CanceledError
		if errors.As(err, &canceled) && canceled.Err != nil {
			return canceled.Err
		}
		return err
	}

	c.payload = payload
	c.fetchedAt = c.clock.Now()
	return nil
}

// State returns the current slot state, expiring a fresh entry whose TTL elapsed.
func (c *Cache) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.expireLocked()
}

// FetchedAt returns when the slot was last stored, zero if never.
func (c *Cache) FetchedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fetchedAt
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) expireLocked() string {
	current := c.machine.Current()
	if current != StateFresh || c.clock.Since(c.fetchedAt) < c.ttl {
		return current
	}

	if err := c.machine.Event(context.Background(), EventExpire); err != nil {
		log.Error(err, "Failed to expire status cache entry")
	}
	return c.machine.Current()
}

func (c *Cache) guardPayload(_ context.Context, e *fsm.Event) error {
	if len(e.Args) == 0 {
		return ErrEmptyPayload
	}
	payload, _ := e.Args[0].(json.RawMessage)

	var compact bytes.Buffer
	if err := json.Compact(&compact, payload); err != nil {
		// Blank input is not valid JSON either.
		if len(bytes.TrimSpace(payload)) == 0 {
			return ErrEmptyPayload
		}
		return err
	}
	if emptyValues[compact.String()] {
		return ErrEmptyPayload
	}
	return nil
}

// emptyValues are JSON documents that carry no status.
var emptyValues = map[string]bool{
	"null":  true,
	"{}":    true,
	"[]":    true,
	`""`:    true,
	"false": true,
	"0":     true,
}

func (c *Cache) onTransition(_ context.Context, e *fsm.Event) {
	metrics.SetCacheState(e.Dst, states...)
	log.Debug("Status cache transition", "event", e.Event, "from", e.Src, "to", e.Dst)
}
