package app

import (
	"github.com/lk2023060901/zeus-provider/pkg/config"
	"github.com/lk2023060901/zeus-provider/pkg/container"
	"github.com/lk2023060901/zeus-provider/pkg/logger"
)

const (
	// ConfigServiceName 配置仓库在容器中的名称
	ConfigServiceName = "config"
	// AppServiceName 应用自身在容器中的名称
	AppServiceName = "app"
)

// Option 应用选项
type Option func(*BaseApplication)

// WithConfigPaths 设置配置文件路径，按顺序加载，后者覆盖前者。
func WithConfigPaths(paths ...string) Option {
	return func(a *BaseApplication) {
		a.configPaths = append([]string(nil), paths...)
	}
}

// WithEnvFiles 设置加载配置前读取的 .env 文件。
func WithEnvFiles(files ...string) Option {
	return func(a *BaseApplication) {
		a.envFiles = append([]string(nil), files...)
	}
}

// WithConfig 使用预先构造的配置仓库，配置文件会合并进来。
func WithConfig(repo *config.Repository) Option {
	return func(a *BaseApplication) {
		if repo != nil {
			a.repo = repo
		}
	}
}

// WithContainer 使用外部容器。
func WithContainer(c *container.Container) Option {
	return func(a *BaseApplication) {
		if c != nil {
			a.container = c
		}
	}
}

// WithLogger 设置应用日志；未设置且绑定了 log 服务时，Init 会改用解析出的 Logger。
func WithLogger(l logger.Logger) Option {
	return func(a *BaseApplication) {
		if l != nil {
			a.logger = l
			a.loggerSet = true
		}
	}
}

func (a *BaseApplication) loadConfig() error {
	if err := config.LoadEnvFiles(a.envFiles...); err != nil {
		return err
	}
	for _, path := range a.configPaths {
		if err := a.repo.LoadFile(path); err != nil {
			return err
		}
	}
	return nil
}
