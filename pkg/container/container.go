package container

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"github.com/lk2023060901/zeus-provider/pkg/logger"
	"github.com/lk2023060901/zeus-provider/pkg/provider"
)

// Stats 绑定的解析统计。
type Stats struct {
	// Shared 是否为单例绑定
	Shared bool
	// Resolved 单例是否已构造
	Resolved bool
	// Resolutions 调用解析函数的次数
	Resolutions int64
	// Failures 解析失败次数
	Failures int64
	// LastResolved 最近一次成功解析的时间
	LastResolved time.Time
}

type binding struct {
	resolver provider.Resolver
	shared   bool

	resolutions  atomic.Int64
	failures     atomic.Int64
	lastResolved atomic.Time
}

// Container 按名称登记并惰性解析服务。
//
// Bind 登记的服务每次 Make 都会调用解析函数；Singleton 登记的服务
// 在并发解析时只构造一次，之后返回缓存实例。
type Container struct {
	mu        sync.RWMutex
	bindings  map[string]*binding
	instances map[string]any
	order     []string
	closed    bool

	group  singleflight.Group
	logger logger.Logger

	flightMu sync.Mutex
	flights  map[string]int
	waits    map[string]string
}

// Option 容器选项
type Option func(*Container)

// WithLogger 设置日志记录器
func WithLogger(l logger.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// New 创建空容器。
func New(opts ...Option) *Container {
	c := &Container{
		bindings:  make(map[string]*binding),
		instances: make(map[string]any),
		flights:   make(map[string]int),
		waits:     make(map[string]string),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetLogger 替换日志记录器，nil 时忽略。
func (c *Container) SetLogger(l logger.Logger) {
	if l == nil {
		return
	}
	c.mu.Lock()
	c.logger = l
	c.mu.Unlock()
}

// Bind 登记瞬态绑定，每次解析都会调用 resolver。
func (c *Container) Bind(name string, resolver provider.Resolver) error {
	return c.bind(name, resolver, false)
}

// Singleton 登记单例绑定，resolver 至多成功执行一次。
func (c *Container) Singleton(name string, resolver provider.Resolver) error {
	return c.bind(name, resolver, true)
}

// Instance 直接登记已构造的实例。
func (c *Container) Instance(name string, instance any) error {
	if err := c.bind(name, func(context.Context, provider.Container) (any, error) {
		return instance, nil
	}, true); err != nil {
		return err
	}
	c.mu.Lock()
	c.instances[name] = instance
	c.mu.Unlock()
	return nil
}

func (c *Container) bind(name string, resolver provider.Resolver, shared bool) error {
	if name == "" {
		return ErrEmptyName
	}
	if resolver == nil {
		return errors.Wrapf(ErrNilResolver, "bind %q", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if _, exists := c.bindings[name]; exists {
		return errors.Wrapf(ErrAlreadyBound, "bind %q", name)
	}
	c.bindings[name] = &binding{resolver: resolver, shared: shared}

	c.logger.Debug("binding registered", logger.F(
		"name", name,
		"shared", shared,
	)...)
	return nil
}

// Make 解析具名服务。
func (c *Container) Make(ctx context.Context, name string) (any, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrClosed
	}
	b, ok := c.bindings[name]
	if !ok {
		c.mu.RUnlock()
		return nil, errors.Wrapf(ErrNotBound, "make %q", name)
	}
	if instance, ok := c.instances[name]; ok {
		c.mu.RUnlock()
		return instance, nil
	}
	c.mu.RUnlock()

	ctx, cycle, ok := push(ctx, name)
	if !ok {
		return nil, errors.Wrapf(ErrCircularDependency, "%s", formatCycle(cycle))
	}

	if !b.shared {
		return c.resolve(ctx, name, b)
	}

	parent, cycle, ok := c.enterFlight(resolving(ctx), name)
	if !ok {
		return nil, errors.Wrapf(ErrCircularDependency, "%s", formatCycle(cycle))
	}
	defer c.leaveFlight(parent, name)

	v, err, _ := c.group.Do(name, func() (any, error) {
		c.mu.RLock()
		instance, ok := c.instances[name]
		c.mu.RUnlock()
		if ok {
			return instance, nil
		}

		instance, err := c.resolve(ctx, name, b)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.instances[name] = instance
		c.order = append(c.order, name)
		c.mu.Unlock()
		return instance, nil
	})
	return v, err
}

func (c *Container) resolve(ctx context.Context, name string, b *binding) (any, error) {
	start := time.Now()
	b.resolutions.Inc()

	instance, err := b.resolver(ctx, c)
	if err != nil {
		b.failures.Inc()
		c.logger.Warn("binding resolve failed", logger.F(
			"name", name,
			"error", err,
		)...)
		return nil, err
	}

	b.lastResolved.Store(time.Now())
	c.logger.Debug("binding resolved", logger.F(
		"name", name,
		"shared", b.shared,
		"duration", time.Since(start),
	)...)
	return instance, nil
}

// Bound 判断名称是否已绑定。
func (c *Container) Bound(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[name]
	return ok
}

// Resolved 判断单例是否已构造。
func (c *Container) Resolved(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[name]
	return ok
}

// Names 返回所有绑定名称（排序后）。
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.bindings))
	for name := range c.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats 返回绑定的解析统计。
func (c *Container) Stats(name string) (Stats, bool) {
	c.mu.RLock()
	b, ok := c.bindings[name]
	_, resolved := c.instances[name]
	c.mu.RUnlock()
	if !ok {
		return Stats{}, false
	}
	return Stats{
		Shared:       b.shared,
		Resolved:     resolved,
		Resolutions:  b.resolutions.Load(),
		Failures:     b.failures.Load(),
		LastResolved: b.lastResolved.Load(),
	}, true
}

// Forget 移除绑定及其缓存实例，不会关闭实例。
func (c *Container) Forget(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bindings, name)
	delete(c.instances, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.group.Forget(name)
}

// Resolve 解析服务并断言为 T。
func Resolve[T any](ctx context.Context, c provider.Container, name string) (T, error) {
	var zero T
	v, err := c.Make(ctx, name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.Wrapf(ErrTypeMismatch, "%q is %T, want %v", name, v, reflect.TypeOf((*T)(nil)).Elem())
	}
	return typed, nil
}

// MustResolve 解析失败时 panic，仅用于启动阶段。
func MustResolve[T any](ctx context.Context, c provider.Container, name string) T {
	v, err := Resolve[T](ctx, c, name)
	if err != nil {
		panic(err)
	}
	return v
}

var _ provider.Container = (*Container)(nil)
