package conc

import (
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSubmit(t *testing.T) {
	p, err := NewPool[int](2)
	require.NoError(t, err)
	defer p.Release()
	assert.Equal(t, 2, p.Cap())

	futures := make([]*Future[int], 0, 10)
	for i := 0; i < 10; i++ {
		i := i
		futures = append(futures, p.Submit(func() (int, error) {
			return i * i, nil
		}))
	}
	for i, f := range futures {
		v, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, i*i, v)
	}
}

func TestPoolSubmitError(t *testing.T) {
	p := NewDefaultPool[string]()
	defer p.Release()

	boom := errors.New("boom")
	_, err := p.Submit(func() (string, error) { return "", boom }).Await()
	assert.Equal(t, boom, err)
}

func TestPoolRecoversPanic(t *testing.T) {
	p := NewDefaultPool[any]()
	defer p.Release()

	f := p.Submit(func() (any, error) { panic("bad job") })
	<-f.Done()
	_, err := f.Await()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad job")
}

func TestPoolReleased(t *testing.T) {
	p := NewDefaultPool[int]()
	p.Release()
	p.Release()

	_, err := p.Submit(func() (int, error) { return 1, nil }).Await()
	assert.Equal(t, ErrPoolReleased, err)
}

func TestPoolConcurrentSubmit(t *testing.T) {
	p, err := NewPool[int](4)
	require.NoError(t, err)
	defer p.Release()

	var wg sync.WaitGroup
	results := make([]int, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := p.Submit(func() (int, error) { return i, nil }).Await()
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()
	for i, v := range results {
		assert.Equal(t, i, v)
	}
}
