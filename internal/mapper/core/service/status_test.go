package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/autopeer-io/livemapper/internal/mapper/core"
	"github.com/autopeer-io/livemapper/internal/mapper/statuscache"
)

type fakeFetcher struct {
	calls atomic.Int32
	fetch func(ctx context.Context) (json.RawMessage, error)
}

func (f *fakeFetcher) FetchStatus(ctx context.Context) (json.RawMessage, error) {
	f.calls.Add(1)
	return f.fetch(ctx)
}

func returning(payload string) func(context.Context) (json.RawMessage, error) {
	return func(context.Context) (json.RawMessage, error) {
		return json.RawMessage(payload), nil
	}
}

func failing(err error) func(context.Context) (json.RawMessage, error) {
	return func(context.Context) (json.RawMessage, error) {
		return nil, err
	}
}

type fakeNotifier struct {
	published chan json.RawMessage
	err       error
}

func (n *fakeNotifier) NotifyStatus(_ context.Context, vehicleID string, payload json.RawMessage) error {
	n.published <- payload
	return n.err
}

type fixture struct {
	proxy   *CachedStatusProxy
	cache   *statuscache.Cache
	clock   *testingclock.FakeClock
	fetcher *fakeFetcher
}

func newFixture(fetch func(context.Context) (json.RawMessage, error), notifier core.StatusNotifier) *fixture {
	clk := testingclock.NewFakeClock(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC))
	cache := statuscache.New(statuscache.DefaultTTL, clk)
	fetcher := &fakeFetcher{fetch: fetch}
	return &fixture{
		proxy:   New("CAA649529", cache, fetcher, notifier),
		cache:   cache,
		clock:   clk,
		fetcher: fetcher,
	}
}

func TestFirstCallFetchesOnce(t *testing.T) {
	f := newFixture(returning(`{"speed":10}`), nil)

	payload, err := f.proxy.GetVehicleStatus(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"speed":10}`, string(payload))
	assert.EqualValues(t, 1, f.fetcher.calls.Load())
	assert.Equal(t, statuscache.StateFresh, f.cache.State())
}

func TestSecondCallWithinTTLServedFromCache(t *testing.T) {
	f := newFixture(returning(`{"speed":10}`), nil)

	first, err := f.proxy.GetVehicleStatus(context.Background())
	require.NoError(t, err)

	f.clock.Step(9 * time.Second)
	second, err := f.proxy.GetVehicleStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, f.fetcher.calls.Load())
}

func TestCallAfterTTLRefetches(t *testing.T) {
	var n atomic.Int32
	f := newFixture(func(context.Context) (json.RawMessage, error) {
		return json.RawMessage(fmt.Sprintf(`{"seq":%d}`, n.Add(1))), nil
	}, nil)

	_, err := f.proxy.GetVehicleStatus(context.Background())
	require.NoError(t, err)

	f.clock.Step(statuscache.DefaultTTL + time.Millisecond)
	payload, err := f.proxy.GetVehicleStatus(context.Background())
	require.NoError(t, err)

	assert.JSONEq(t, `{"seq":2}`, string(payload))
	assert.EqualValues(t, 2, f.fetcher.calls.Load())
}

func TestUpstreamErrorLeavesCacheUnset(t *testing.T) {
	f := newFixture(failing(&core.UpstreamHTTPError{StatusCode: http.StatusNotFound, Body: "not found"}), nil)

	_, err := f.proxy.GetVehicleStatus(context.Background())

	var upstream *core.UpstreamHTTPError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.Contains(t, err.Error(), "not found")
	assert.Equal(t, statuscache.StateEmpty, f.cache.State())
	assert.True(t, f.cache.FetchedAt().IsZero())
}

func TestTimeoutBecomesInternalError(t *testing.T) {
	f := newFixture(failing(fmt.Errorf("cartrack request timed out after 5s: %w", context.DeadlineExceeded)), nil)

	_, err := f.proxy.GetVehicleStatus(context.Background())

	var internal *core.InternalError
	require.ErrorAs(t, err, &internal)
	assert.Equal(t, http.StatusInternalServerError, internal.StatusCode())
	assert.Contains(t, internal.Message, "timed out")
	assert.Equal(t, statuscache.StateEmpty, f.cache.State())
}

func TestFailedRefreshKeepsStaleEntry(t *testing.T) {
	fail := atomic.Bool{}
	f := newFixture(func(context.Context) (json.RawMessage, error) {
		if fail.Load() {
			return nil, errors.New("connection reset")
		}
		return json.RawMessage(`{"speed":10}`), nil
	}, nil)

	_, err := f.proxy.GetVehicleStatus(context.Background())
	require.NoError(t, err)
	fetchedAt := f.cache.FetchedAt()

	fail.Store(true)
	f.clock.Step(statuscache.DefaultTTL)

	_, err = f.proxy.GetVehicleStatus(context.Background())
	var internal *core.InternalError
	require.ErrorAs(t, err, &internal)
	assert.Equal(t, statuscache.StateStale, f.cache.State())
	assert.Equal(t, fetchedAt, f.cache.FetchedAt())

	// The stale entry is never served: every call retries upstream.
	_, err = f.proxy.GetVehicleStatus(context.Background())
	assert.Error(t, err)
	assert.EqualValues(t, 3, f.fetcher.calls.Load())
}

func TestNullPayloadReturnedButNotCached(t *testing.T) {
	f := newFixture(returning(`null`), nil)

	for i := 0; i < 2; i++ {
		payload, err := f.proxy.GetVehicleStatus(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "null", string(payload))
	}
	assert.EqualValues(t, 2, f.fetcher.calls.Load())
	assert.Equal(t, statuscache.StateEmpty, f.cache.State())
}

func TestConcurrentMissesShareOneFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	f := newFixture(func(context.Context) (json.RawMessage, error) {
		once.Do(func() { close(started) })
		<-release
		return json.RawMessage(`{"speed":99}`), nil
	}, nil)

	const callers = 16
	results := make(chan json.RawMessage, callers)
	errs := make(chan error, callers)

	var wg sync.WaitGroup
	call := func() {
		defer wg.Done()
		payload, err := f.proxy.GetVehicleStatus(context.Background())
		if err != nil {
			errs <- err
			return
		}
		results <- payload
	}

	wg.Add(1)
	go call()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go call()
	}
	close(release)
	wg.Wait()
	close(results)
	close(errs)

	assert.Empty(t, errs)
	for payload := range results {
		assert.JSONEq(t, `{"speed":99}`, string(payload))
	}
	assert.EqualValues(t, 1, f.fetcher.calls.Load())
}

func TestCanceledCallerDoesNotAbortFetch(t *testing.T) {
	f := newFixture(func(ctx context.Context) (json.RawMessage, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return json.RawMessage(`{"speed":1}`), nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payload, err := f.proxy.GetVehicleStatus(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"speed":1}`, string(payload))
}

func TestNotifierReceivesFreshStatus(t *testing.T) {
	notifier := &fakeNotifier{published: make(chan json.RawMessage, 1), err: errors.New("broker down")}
	f := newFixture(returning(`{"speed":5}`), notifier)

	payload, err := f.proxy.GetVehicleStatus(context.Background())
	require.NoError(t, err, "notifier failures never reach the caller")

	select {
	case published := <-notifier.published:
		assert.Equal(t, payload, published)
	case <-time.After(2 * time.Second):
		t.Fatal("status was not published")
	}

	// Cache hits are not re-published.
	_, err = f.proxy.GetVehicleStatus(context.Background())
	require.NoError(t, err)
	select {
	case <-notifier.published:
		t.Fatal("cache hit was published")
	case <-time.After(50 * time.Millisecond):
	}
}
