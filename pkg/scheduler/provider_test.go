package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/zeus-provider/pkg/conc"
	"github.com/lk2023060901/zeus-provider/pkg/provider"
)

func bootstrap(t *testing.T, opts provider.Options) (*Scheduler, error) {
	t.Helper()
	p := NewProvider(nil)
	f := p.Factory()
	for _, d := range p.Drivers() {
		f.Register(d.Alias, d.Driver)
	}
	return f.Bootstrap(context.Background(), opts)
}

func TestProviderCronDriver(t *testing.T) {
	assert.Equal(t, ServiceName, NewProvider(nil).Name())

	s, err := bootstrap(t, provider.Options{"timezone": "UTC", "autostart": true, "pool_size": 2})
	require.NoError(t, err)
	defer s.Stop(context.Background())

	assert.True(t, s.IsRunning())
	assert.Equal(t, 2, s.pool.Cap())
	assert.True(t, s.config.Recovery)
}

func TestProviderCronDriverErrors(t *testing.T) {
	_, err := bootstrap(t, provider.Options{"timezone": "Nowhere/City"})
	assert.Error(t, err)

	_, err = bootstrap(t, provider.Options{"pool_size": -1})
	assert.ErrorIs(t, err, provider.ErrInvalidOptions)

	_, err = bootstrap(t, provider.Options{"type": "quartz"})
	assert.ErrorIs(t, err, provider.ErrUnknownDriver)
}

func TestAutostartFailureReleasesPool(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	s.runMu.Lock()
	s.stopped = true
	s.runMu.Unlock()

	err = autostart(s)
	assert.ErrorIs(t, err, ErrStopped)

	_, err = s.pool.Submit(func() (any, error) { return nil, nil }).Await()
	assert.ErrorIs(t, err, conc.ErrPoolReleased)
}

func TestAutostartSharedPoolIsKept(t *testing.T) {
	pool, err := conc.NewPool[any](1)
	require.NoError(t, err)
	defer pool.Release()

	s, err := New(DefaultConfig(), WithPool(pool))
	require.NoError(t, err)
	s.runMu.Lock()
	s.stopped = true
	s.runMu.Unlock()

	assert.ErrorIs(t, autostart(s), ErrStopped)
	v, err := pool.Submit(func() (any, error) { return "ok", nil }).Await()
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}
