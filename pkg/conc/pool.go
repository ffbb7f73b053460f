package conc

import (
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
)

// ErrPoolReleased 协程池已释放
var ErrPoolReleased = errors.New("conc: pool released")

// Future 表示一次异步提交的结果。
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(value T, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

// Await 阻塞直到任务完成。
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.value, f.err
}

// Done 返回任务完成时关闭的通道。
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Pool 基于 ants 的协程池，任务 panic 会转换为错误。
type Pool[T any] struct {
	pool *ants.Pool
	once sync.Once
}

// NewPool 创建容量为 size 的协程池，size <= 0 时使用 CPU 数。
func NewPool[T any](size int, opts ...ants.Option) (*Pool[T], error) {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p, err := ants.NewPool(size, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "conc: new pool")
	}
	return &Pool[T]{pool: p}, nil
}

// NewDefaultPool 创建默认容量的非阻塞协程池。
func NewDefaultPool[T any]() *Pool[T] {
	p, err := NewPool[T](0)
	if err != nil {
		// 仅在容量非法时失败，默认容量始终合法
		panic(err)
	}
	return p
}

// Submit 提交任务；池已释放或已满时 Future 立即以错误完成。
func (p *Pool[T]) Submit(fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	err := p.pool.Submit(func() {
		var (
			value T
			err   error
		)
		defer func() {
			if r := recover(); r != nil {
				err = errors.Newf("conc: task panicked: %v", r)
			}
			f.complete(value, err)
		}()
		value, err = fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, ants.ErrPoolClosed) {
			err = ErrPoolReleased
		}
		f.complete(zero, err)
	}
	return f
}

// Running 返回正在执行的任务数。
func (p *Pool[T]) Running() int {
	return p.pool.Running()
}

// Cap 返回池容量。
func (p *Pool[T]) Cap() int {
	return p.pool.Cap()
}

// Release 释放协程池，可重复调用。
func (p *Pool[T]) Release() {
	p.once.Do(p.pool.Release)
}
