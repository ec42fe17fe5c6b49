package fsm

import (
	"context"
	"errors"
	"testing"

	"github.com/looplab/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMachine(guard func(ctx context.Context, e *fsm.Event) error) *fsm.FSM {
	return fsm.NewFSM("idle",
		fsm.Events{
			{Name: "start", Src: []string{"idle", "running"}, Dst: "running"},
		},
		fsm.Callbacks{
			"before_start": WrapEvent(guard),
		},
	)
}

func TestWrapEventCancelsOnError(t *testing.T) {
	boom := errors.New("boom")
	m := newMachine(func(ctx context.Context, e *fsm.Event) error { return boom })

	err := m.Event(context.Background(), "start")
	require.Error(t, err)

	var canceled fsm.CanceledError
	require.ErrorAs(t, err, &canceled)
	assert.Equal(t, boom, canceled.Err)
	assert.Equal(t, "idle", m.Current())
}

func TestWrapEventAllowsTransition(t *testing.T) {
	m := newMachine(func(ctx context.Context, e *fsm.Event) error { return nil })

	require.NoError(t, m.Event(context.Background(), "start"))
	assert.Equal(t, "running", m.Current())

	err := m.Event(context.Background(), "start")
	assert.True(t, IsNoTransition(err))
	assert.False(t, IsNoTransition(errors.New("other")))
	assert.False(t, IsNoTransition(nil))
}
