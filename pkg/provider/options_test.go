package provider

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileOptions struct {
	Path    string        `yaml:"path" validate:"required"`
	MaxSize int           `yaml:"max_size" validate:"gte=0"`
	TTL     time.Duration `yaml:"ttl"`
}

func TestOptionsString(t *testing.T) {
	opts := Options{"type": "file", "size": 10, "nil": nil}

	assert.Equal(t, "file", opts.Type())
	assert.Equal(t, "10", opts.String("size"))
	assert.Equal(t, "", opts.String("nil"))
	assert.Equal(t, "", opts.String("missing"))
	assert.Equal(t, "", Options(nil).Type())
}

func TestOptionsClone(t *testing.T) {
	opts := Options{"path": "/tmp"}
	cp := opts.Clone()
	cp["path"] = "/var"

	assert.Equal(t, "/tmp", opts["path"])
	assert.Nil(t, Options(nil).Clone())
}

func TestOptionsDecode(t *testing.T) {
	var out fileOptions
	err := Options{"path": "/tmp/cache", "max_size": 5, "ttl": "1m30s"}.Decode(&out)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cache", out.Path)
	assert.Equal(t, 5, out.MaxSize)
	assert.Equal(t, 90*time.Second, out.TTL)
}

func TestOptionsDecodeValidation(t *testing.T) {
	var out fileOptions
	err := Options{"max_size": 5}.Decode(&out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOptions))

	err = Options{"path": "/tmp", "max_size": -1}.Decode(&out)
	assert.True(t, errors.Is(err, ErrInvalidOptions))

	err = Options{"path": "/tmp", "max_size": "big"}.Decode(&out)
	assert.True(t, errors.Is(err, ErrInvalidOptions))
}

func TestOptionsDecodeIntoMap(t *testing.T) {
	out := map[string]string{}
	require.NoError(t, Options{"a": "b"}.Decode(&out))
	assert.Equal(t, map[string]string{"a": "b"}, out)
}
