package scheduler

import (
	"context"

	"github.com/lk2023060901/zeus-provider/pkg/logger"
	"github.com/lk2023060901/zeus-provider/pkg/provider"
)

// ServiceName 调度服务在容器中的名称。
const ServiceName = "schedule"

// DriverCron 基于 robfig/cron 的驱动
const DriverCron = "cron"

// Provider 调度服务提供者。
type Provider struct {
	logger logger.Logger
}

// NewProvider 创建调度服务提供者，l 为 nil 时调度器不输出日志。
func NewProvider(l logger.Logger) *Provider {
	if l == nil {
		l = logger.Nop()
	}
	return &Provider{logger: l}
}

func (p *Provider) Name() string {
	return ServiceName
}

func (p *Provider) Factory() provider.Factory[*Scheduler] {
	return provider.NewRegistry[*Scheduler](ServiceName)
}

func (p *Provider) Drivers() provider.Drivers[*Scheduler] {
	return provider.Drivers[*Scheduler]{}.Add(DriverCron, p.cronDriver)
}

func (p *Provider) cronDriver(_ context.Context, opts provider.Options) (*Scheduler, error) {
	cfg := DefaultConfig()
	if err := opts.Decode(&cfg); err != nil {
		return nil, err
	}
	s, err := New(cfg, WithLogger(p.logger.WithGroup(ServiceName)))
	if err != nil {
		return nil, err
	}
	if cfg.Autostart {
		if err := autostart(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// autostart 启动失败时释放调度器自有的协程池，调用方不会再持有该调度器。
func autostart(s *Scheduler) error {
	if err := s.Start(); err != nil {
		s.releasePool()
		return err
	}
	return nil
}

var _ provider.Provider[*Scheduler] = (*Provider)(nil)
