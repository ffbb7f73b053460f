package provider

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBootstrapByType(t *testing.T) {
	r := NewRegistry[string]("cache")
	r.Register("memory", constDriver("mem")).Register("file", func(_ context.Context, opts Options) (string, error) {
		return "file:" + opts.String("path"), nil
	})

	got, err := r.Bootstrap(context.Background(), Options{"type": "file", "path": "/tmp"})
	require.NoError(t, err)
	assert.Equal(t, "file:/tmp", got)

	got, err = r.Bootstrap(context.Background(), Options{"type": "memory"})
	require.NoError(t, err)
	assert.Equal(t, "mem", got)
}

func TestRegistryUnknownDriver(t *testing.T) {
	r := NewRegistry[string]("cache")
	r.Register("memory", constDriver("mem"))

	_, err := r.Bootstrap(context.Background(), Options{"type": "redis"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownDriver))
	assert.Contains(t, err.Error(), `"redis"`)
	assert.Contains(t, err.Error(), `"cache"`)
}

func TestRegistryFallback(t *testing.T) {
	single := NewRegistry[string]("cache")
	single.Register("memory", constDriver("mem"))
	got, err := single.Bootstrap(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "mem", got)

	ambiguous := NewRegistry[string]("cache")
	ambiguous.Register("memory", constDriver("mem")).Register("file", constDriver("file"))
	_, err = ambiguous.Bootstrap(context.Background(), Options{})
	assert.True(t, errors.Is(err, ErrDriverTypeMissing))
	_, err = ambiguous.Bootstrap(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrDriverTypeMissing))

	empty := NewRegistry[string]("cache")
	_, err = empty.Bootstrap(context.Background(), Options{})
	assert.True(t, errors.Is(err, ErrDriverTypeMissing))
}

func TestRegistryDriverError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry[string]("cache")
	r.Register("memory", func(context.Context, Options) (string, error) { return "", boom })

	_, err := r.Bootstrap(context.Background(), Options{"type": "memory"})
	assert.Equal(t, boom, err)
}

func TestRegistryIntrospection(t *testing.T) {
	r := NewRegistry[string]("cache")
	assert.Equal(t, "cache", r.Service())
	assert.False(t, r.Has("memory"))

	r.Register("memory", constDriver("mem")).Register("array", constDriver("arr"))
	assert.True(t, r.Has("memory"))
	assert.Equal(t, []string{"array", "memory"}, r.Drivers())
}
