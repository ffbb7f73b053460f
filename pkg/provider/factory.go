package provider

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// Driver 根据选中驱动的选项构造服务实例。
type Driver[T any] func(ctx context.Context, opts Options) (T, error)

// Factory 定义服务工厂的最小能力：注册具名驱动、按配置引导实例。
type Factory[T any] interface {
	// Register 注册或覆盖别名对应的驱动，返回工厂自身以便链式调用。
	Register(alias string, driver Driver[T]) Factory[T]

	// Bootstrap 根据已选中驱动的选项构造服务实例。
	Bootstrap(ctx context.Context, opts Options) (T, error)
}

// Registry 提供 Factory 的基础实现：按选项中的 type 键选择驱动。
//
// 选项缺少 type 时仅在只注册了一个驱动的情况下使用该驱动，否则返回 ErrDriverTypeMissing。
type Registry[T any] struct {
	service string

	mu      sync.RWMutex
	drivers map[string]Driver[T]
}

// NewRegistry 创建服务 service 的驱动工厂。
func NewRegistry[T any](service string) *Registry[T] {
	return &Registry[T]{
		service: service,
		drivers: make(map[string]Driver[T]),
	}
}

// Register 注册或覆盖驱动，后注册者生效。
func (r *Registry[T]) Register(alias string, driver Driver[T]) Factory[T] {
	r.mu.Lock()
	r.drivers[alias] = driver
	r.mu.Unlock()
	return r
}

// Bootstrap 解析驱动别名并调用对应驱动。
func (r *Registry[T]) Bootstrap(ctx context.Context, opts Options) (T, error) {
	var zero T

	alias, err := r.resolveAlias(opts)
	if err != nil {
		return zero, err
	}

	r.mu.RLock()
	driver, ok := r.drivers[alias]
	r.mu.RUnlock()
	if !ok || driver == nil {
		return zero, errors.Wrapf(ErrUnknownDriver, "service %q: driver %q", r.service, alias)
	}
	return driver(ctx, opts)
}

// Has 判断别名是否已注册。
func (r *Registry[T]) Has(alias string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.drivers[alias]
	return ok
}

// Drivers 返回已注册的驱动别名（排序后）。
func (r *Registry[T]) Drivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.drivers))
	for alias := range r.drivers {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// Service 返回工厂所属的服务名。
func (r *Registry[T]) Service() string {
	return r.service
}

func (r *Registry[T]) resolveAlias(opts Options) (string, error) {
	if alias := opts.Type(); alias != "" {
		return alias, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.drivers) == 1 {
		for alias := range r.drivers {
			return alias, nil
		}
	}
	return "", errors.Wrapf(ErrDriverTypeMissing, "service %q: %d drivers registered", r.service, len(r.drivers))
}

var _ Factory[any] = (*Registry[any])(nil)
