// Package service implements the cache-augmented vehicle status proxy.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/autopeer-io/livemapper/internal/mapper/core"
	"github.com/autopeer-io/livemapper/internal/mapper/statuscache"
	"github.com/autopeer-io/livemapper/internal/pkg/metrics"
	"github.com/autopeer-io/livemapper/pkg/log"
)

const (
	fetchKey      = "status"
	notifyTimeout = 5 * time.Second
)

// CachedStatusProxy answers status queries from the cache slot while it is
// fresh and otherwise fetches from upstream, storing successful results.
// Concurrent misses share a single upstream call.
type CachedStatusProxy struct {
	vehicleID string
	cache     core.StatusCache
	fetcher   core.StatusFetcher
	notifier  core.StatusNotifier

	group singleflight.Group
}

// New creates a CachedStatusProxy. notifier may be nil.
func New(vehicleID string, cache core.StatusCache, fetcher core.StatusFetcher, notifier core.StatusNotifier) *CachedStatusProxy {
	return &CachedStatusProxy{
		vehicleID: vehicleID,
		cache:     cache,
		fetcher:   fetcher,
		notifier:  notifier,
	}
}

// GetVehicleStatus returns the status payload of the configured vehicle.
// Failures are *core.UpstreamHTTPError for non-2xx upstream answers and
// *core.InternalError for everything else; neither touches the cache.
func (p *CachedStatusProxy) GetVehicleStatus(ctx context.Context) (json.RawMessage, error) {
	if payload, ok := p.cache.Get(); ok {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return payload, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	// The fetch outlives a caller that goes away so joined callers still get
	// a result; cartrack's own timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, shared := p.group.Do(fetchKey, func() (any, error) {
		return p.refresh(fetchCtx)
	})
	if shared {
		metrics.SharedFetchesTotal.Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

func (p *CachedStatusProxy) refresh(ctx context.Context) (json.RawMessage, error) {
	// A fetch that completed between the miss and this call already refilled the slot.
	if payload, ok := p.cache.Get(); ok {
		return payload, nil
	}

	logger := log.FromContext(ctx).WithValues("vehicleID", p.vehicleID)

	payload, err := p.fetcher.FetchStatus(ctx)
	if err != nil {
		var upstream *core.UpstreamHTTPError
		if errors.As(err, &upstream) {
			logger.Warn("Upstream rejected status request", "code", upstream.StatusCode)
			return nil, upstream
		}
		logger.Error(err, "Failed to fetch vehicle status")
		return nil, core.NewInternalError(err)
	}

	if err := p.cache.Store(payload); err != nil {
		if !errors.Is(err, statuscache.ErrEmptyPayload) {
			logger.Error(err, "Failed to cache vehicle status")
		} else {
			logger.Debug("Upstream returned an empty status, not caching")
		}
		return payload, nil
	}

	p.notify(ctx, payload)
	return payload, nil
}

func (p *CachedStatusProxy) notify(ctx context.Context, payload json.RawMessage) {
	if p.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if err := p.notifier.NotifyStatus(ctx, p.vehicleID, payload); err != nil {
			log.Error(err, "Failed to publish vehicle status", "vehicleID", p.vehicleID)
		}
	}()
}
