package facets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/facets/pkg/facets"
	"github.com/randalmurphal/facets/pkg/facets/lifecycle"
)

type conn struct {
	closed int
}

type client struct {
	facets.Disposable
	facets.Finalizable
	conn *conn
}

func newClient(obs lifecycle.Observer) (*client, error) {
	c := &client{conn: &conn{}}
	res := c.conn
	if err := c.OnDispose(obs, c, func() { res.closed++ }); err != nil {
		return nil, err
	}
	if err := c.OnFinalize(obs, c, func() { res.closed += 10 }); err != nil {
		return nil, err
	}
	return c, nil
}

func TestDisposable_ExplicitThenCollected(t *testing.T) {
	obs := lifecycle.NewManualObserver()
	c, err := newClient(obs)
	require.NoError(t, err)

	assert.False(t, c.Disposed())
	assert.True(t, c.Dispose())
	assert.False(t, c.Dispose(), "second dispose is a no-op")
	assert.True(t, c.Disposed())
	assert.Equal(t, 1, c.conn.closed)

	assert.Equal(t, 2, obs.Collect(c))
	assert.Equal(t, 11, c.conn.closed, "dispose does not run again, finalize runs once")
	assert.True(t, c.Finalized())
	assert.False(t, c.Finalize())
}

func TestFinalizable_Early(t *testing.T) {
	obs := lifecycle.NewManualObserver()
	c, err := newClient(obs)
	require.NoError(t, err)

	assert.True(t, c.Finalize())
	obs.Collect(c)
	assert.Equal(t, 11, c.conn.closed)
}

func TestLifecycleFacets_MissingCallback(t *testing.T) {
	var d facets.Disposable
	err := d.OnDispose(lifecycle.NewManualObserver(), &conn{}, nil)
	assert.ErrorIs(t, err, lifecycle.ErrMissingCallback)
	assert.False(t, d.Dispose(), "nothing registered")
	assert.False(t, d.Disposed())

	var f facets.Finalizable
	err = f.OnFinalize(nil, conn{}, func() {})
	assert.ErrorIs(t, err, lifecycle.ErrNotPointer)
	assert.False(t, f.Finalized())
}

func TestLifecycleFacets_SecondRegistrationRejected(t *testing.T) {
	obs := lifecycle.NewManualObserver()
	c, err := newClient(obs)
	require.NoError(t, err)

	err = c.OnDispose(obs, c, func() { c.conn.closed += 100 })
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyTracked)
	err = c.OnFinalize(obs, c, func() { c.conn.closed += 1000 })
	assert.ErrorIs(t, err, lifecycle.ErrAlreadyTracked)

	assert.Equal(t, 2, obs.Collect(c), "rejected callbacks never reach the observer")
	assert.Equal(t, 11, c.conn.closed)
}

func TestLifecycleFacets_RetryAfterFailedRegistration(t *testing.T) {
	var d facets.Disposable
	require.ErrorIs(t, d.OnDispose(nil, &conn{}, nil), lifecycle.ErrMissingCallback)

	obs := lifecycle.NewManualObserver()
	target := &conn{}
	ran := 0
	require.NoError(t, d.OnDispose(obs, target, func() { ran++ }))
	obs.Collect(target)
	assert.Equal(t, 1, ran)
	assert.True(t, d.Disposed())
}
