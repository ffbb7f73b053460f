package kv

import (
	"context"

	"github.com/lk2023060901/zeus-provider/pkg/provider"
)

// ServiceName 键值服务在容器中的名称。
const ServiceName = "kv"

const (
	DriverMemory = "memory"
	DriverEtcd   = "etcd"
)

// MemoryOptions memory 驱动选项
type MemoryOptions struct {
	Prefix string `yaml:"prefix"`
}

// Provider 键值服务提供者，未指定 type 时使用 memory。
type Provider struct{}

// NewProvider 创建键值服务提供者。
func NewProvider() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string {
	return ServiceName
}

func (p *Provider) Factory() provider.Factory[Store] {
	return provider.NewRegistry[Store](ServiceName)
}

func (p *Provider) Drivers() provider.Drivers[Store] {
	return provider.Drivers[Store]{}.
		Add(DriverMemory, memoryDriver).
		Add(DriverEtcd, etcdDriver)
}

func memoryDriver(_ context.Context, opts provider.Options) (Store, error) {
	var o MemoryOptions
	if err := opts.Decode(&o); err != nil {
		return nil, err
	}
	return NewMemoryStore(o.Prefix), nil
}

func etcdDriver(_ context.Context, opts provider.Options) (Store, error) {
	cfg := DefaultEtcdConfig()
	if err := opts.Decode(&cfg); err != nil {
		return nil, err
	}
	return NewEtcdStore(cfg)
}

var _ provider.Provider[Store] = (*Provider)(nil)
