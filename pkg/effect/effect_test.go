package effect

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/load28/effect-react/pkg/result"
	"github.com/load28/effect-react/pkg/scope"
)

func TestSyncMarker(t *testing.T) {
	async := Async(func(ctx context.Context, in *scope.Injector) (int, error) { return 0, nil })
	sync := Sync(func(ctx context.Context, in *scope.Injector) (int, error) { return 0, nil })

	require.False(t, async.IsSync())
	require.True(t, sync.IsSync())
}

func TestZeroEffectFails(t *testing.T) {
	var e Effect[int]
	_, err := e.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoComputation)
}

func TestCompleteSuccess(t *testing.T) {
	out := Complete(context.Background(), 7, nil)
	require.Equal(t, OutcomeSuccess, out.Kind())

	v, ok := out.Value()
	require.True(t, ok)
	require.Equal(t, 7, v)
}

func TestCompleteFailure(t *testing.T) {
	boom := stderrors.New("boom")
	out := Complete(context.Background(), 0, boom)
	require.Equal(t, OutcomeFailure, out.Kind())

	err, failed := out.Err()
	require.True(t, failed)
	require.Equal(t, boom, err)
}

func TestCompleteInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := Complete(ctx, 0, ctx.Err())
	require.True(t, out.Interrupted())

	wrapped := Complete(ctx, 0, fmt.Errorf("stopped: %w", context.Canceled))
	require.True(t, wrapped.Interrupted())
}

func TestCompleteCancelErrorWithLiveContextIsFailure(t *testing.T) {
	// An error that wraps context.Canceled while the task context is intact
	// is a genuine failure, not an interruption.
	out := Complete(context.Background(), 0, fmt.Errorf("inner: %w", context.Canceled))
	require.Equal(t, OutcomeFailure, out.Kind())
}

func TestProjectSuccessAndFailure(t *testing.T) {
	r, ok := Complete(context.Background(), 3, nil).Project()
	require.True(t, ok)
	require.True(t, result.Equal(r, result.Success(3)))

	boom := stderrors.New("boom")
	r, ok = Complete(context.Background(), 0, boom).Project()
	require.True(t, ok)
	require.True(t, result.Equal(r, result.Fail[int](boom)))
}

func TestProjectInterruptedProjectsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := Complete(ctx, 0, ctx.Err()).Project()
	require.False(t, ok)
}
