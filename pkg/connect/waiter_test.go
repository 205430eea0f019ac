package connect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginResolveAwait(t *testing.T) {
	reg := NewRegistry()

	w, err := reg.Begin("u1:facebook", "facebook")
	require.NoError(t, err)
	assert.True(t, reg.Pending("u1:facebook"))

	go func() {
		time.Sleep(10 * time.Millisecond)
		reg.Resolve("u1:facebook", nil)
	}()

	res, err := w.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "facebook", res.Platform)
	assert.NoError(t, res.Err)
	assert.False(t, reg.Pending("u1:facebook"))
}

func TestSecondBeginIsRejected(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Begin("u1:google", "google")
	require.NoError(t, err)

	_, err = reg.Begin("u1:google", "google")
	assert.ErrorIs(t, err, ErrAttemptInFlight)

	// A different platform for the same user is fine.
	_, err = reg.Begin("u1:linkedin", "linkedin")
	assert.NoError(t, err)
}

func TestCancelDeliversErrCancelled(t *testing.T) {
	reg := NewRegistry()

	w, err := reg.Begin("u2:instagram", "instagram")
	require.NoError(t, err)
	require.NoError(t, reg.Cancel("u2:instagram"))

	res, err := w.Await(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, ErrCancelled)
}

func TestAwaitRespectsContext(t *testing.T) {
	reg := NewRegistry()

	w, err := reg.Begin("u3:youtube", "youtube")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = w.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolveWithoutAttempt(t *testing.T) {
	reg := NewRegistry()
	assert.ErrorIs(t, reg.Resolve("nobody:google", nil), ErrNoAttempt)
}

func TestBeginReapsExpiredAttempt(t *testing.T) {
	reg := NewRegistryWithTTL(10 * time.Millisecond)

	stale, err := reg.Begin("u4:facebook", "facebook")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	// An abandoned attempt does not block reconnecting forever: once the
	// TTL passes the next Begin cancels it and starts fresh.
	fresh, err := reg.Begin("u4:facebook", "facebook")
	require.NoError(t, err)
	assert.True(t, reg.Pending("u4:facebook"))

	res, err := stale.Await(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, ErrCancelled)

	// The fresh attempt resolves normally.
	require.NoError(t, reg.Resolve("u4:facebook", nil))
	res, err = fresh.Await(context.Background())
	require.NoError(t, err)
	assert.NoError(t, res.Err)
}

func TestLookup(t *testing.T) {
	reg := NewRegistry()

	_, ok := reg.Lookup("u5:linkedin")
	assert.False(t, ok)

	w, err := reg.Begin("u5:linkedin", "linkedin")
	require.NoError(t, err)

	found, ok := reg.Lookup("u5:linkedin")
	require.True(t, ok)
	assert.Same(t, w, found)
}
