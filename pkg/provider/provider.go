package provider

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Resolver 由容器在解析服务时调用，返回服务实例。
type Resolver func(ctx context.Context, c Container) (any, error)

// Container 定义 Provider 依赖的容器能力。
type Container interface {
	// Bind 以惰性方式登记解析函数，登记时不得调用 resolver。
	Bind(name string, resolver Resolver) error

	// Make 解析具名服务。
	Make(ctx context.Context, name string) (any, error)
}

// ConfigSource 按服务名提供配置块。
type ConfigSource interface {
	Block(name string) (Block, error)
}

// DriverEntry 表示驱动表中的一项。
type DriverEntry[T any] struct {
	Alias  string
	Driver Driver[T]
}

// Drivers 有序驱动表，允许重复别名，按顺序注册、后者覆盖前者。
type Drivers[T any] []DriverEntry[T]

// Add 追加一项并返回新表，便于字面构造。
func (d Drivers[T]) Add(alias string, driver Driver[T]) Drivers[T] {
	return append(d, DriverEntry[T]{Alias: alias, Driver: driver})
}

// Provider 定义具体服务提供者需要给出的三项数据。
type Provider[T any] interface {
	// Name 返回服务在容器中的唯一名称。
	Name() string
	// Factory 返回服务工厂。
	Factory() Factory[T]
	// Drivers 返回需要注册到工厂的驱动表。
	Drivers() Drivers[T]
}

// Bind 将 Provider 以惰性方式绑定到容器。
//
// 绑定本身只做校验与登记；每次容器调用解析函数时，依次注册驱动、
// 读取配置块、选出 default 指向的选项并交给工厂引导。结果不做缓存，
// 单例语义由容器负责。
func Bind[T any](c Container, cfg ConfigSource, p Provider[T]) error {
	if p == nil {
		return errors.Wrap(ErrInvalidProvider, "provider is nil")
	}
	if c == nil {
		return errors.Wrapf(ErrInvalidProvider, "%T: container is nil", p)
	}
	if cfg == nil {
		return errors.Wrapf(ErrInvalidProvider, "%T: config source is nil", p)
	}

	name := p.Name()
	factory := p.Factory()
	drivers := p.Drivers()

	if name == "" {
		return errors.Wrapf(ErrInvalidProvider, "%T: empty name", p)
	}
	if factory == nil {
		return errors.Wrapf(ErrInvalidProvider, "%T(%s): factory is nil", p, name)
	}
	for i, entry := range drivers {
		if entry.Driver == nil {
			return errors.Wrapf(ErrInvalidProvider, "%T(%s): driver %q at %d is nil", p, name, entry.Alias, i)
		}
	}

	return c.Bind(name, func(ctx context.Context, _ Container) (any, error) {
		for _, entry := range drivers {
			factory.Register(entry.Alias, entry.Driver)
		}

		block, err := cfg.Block(name)
		if err != nil {
			return nil, err
		}

		_, opts, err := block.Selected()
		if err != nil {
			return nil, errors.Wrapf(err, "service %q", name)
		}

		return factory.Bootstrap(ctx, opts)
	})
}

// Binding 擦除类型参数后的 Provider，便于宿主统一持有。
type Binding interface {
	Name() string
	Bind(c Container, cfg ConfigSource) error
}

type binding[T any] struct {
	p Provider[T]
}

// NewBinding 包装带类型的 Provider。
func NewBinding[T any](p Provider[T]) Binding {
	return binding[T]{p: p}
}

func (b binding[T]) Name() string {
	if b.p == nil {
		return ""
	}
	return b.p.Name()
}

func (b binding[T]) Bind(c Container, cfg ConfigSource) error {
	return Bind(c, cfg, b.p)
}
