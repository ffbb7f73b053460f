package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/zeus-provider/pkg/config"
	"github.com/lk2023060901/zeus-provider/pkg/container"
	"github.com/lk2023060901/zeus-provider/pkg/logger"
	"github.com/lk2023060901/zeus-provider/pkg/provider"
	"github.com/lk2023060901/zeus-provider/pkg/service"
)

var (
	errNilProvider       = errors.New("app: provider is nil")
	errDuplicateProvider = errors.New("app: provider already registered")
	errNilService        = errors.New("app: service is nil")
	errRegisterLocked    = errors.New("app: register is locked after init")
	errApplicationAlive  = errors.New("app: application already started")
	errConfigLocked      = errors.New("app: config is locked after init")
)

// Application 定义应用的生命周期与注册入口。
type Application interface {
	// Name 返回应用名称，用于标识当前应用实例。
	Name() string

	// RegisterProvider 注册服务提供者，Init 时绑定到容器。
	RegisterProvider(p provider.Binding) error

	// RegisterService 注册一个服务，供应用统一管理其生命周期。
	RegisterService(s service.Service) error

	// Container 返回应用容器。
	Container() *container.Container

	// Config 返回配置仓库。
	Config() *config.Repository

	// Logger 返回应用日志。
	Logger() logger.Logger

	// Init 加载配置、绑定提供者并初始化所有服务。
	Init(ctx context.Context) error

	// Start 启动应用及其所有服务。
	Start(ctx context.Context) error

	// Run 启动应用并阻塞运行，直到收到退出信号或上下文取消。
	Run(ctx context.Context) error

	// Shutdown 停止所有服务并关闭容器，只执行一次。
	Shutdown(ctx context.Context) error

	// Stop 停止所有服务。
	Stop(ctx context.Context) error

	// Providers 返回已注册的提供者名称。
	Providers() []string

	// Services 返回已注册的服务列表。
	Services() []service.Service
}

// BaseApplication 提供 Application 的基础实现。
type BaseApplication struct {
	name string

	mu           sync.RWMutex
	providers    []provider.Binding
	services     []service.Service
	configPaths  []string
	envFiles     []string
	repo         *config.Repository
	container    *container.Container
	logger       logger.Logger
	loggerSet    bool
	initializing bool
	initialized  bool
	started      bool

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	shutdownErr  error
}

// NewBaseApplication 创建一个基础应用实例。
func NewBaseApplication(name string, opts ...Option) *BaseApplication {
	a := &BaseApplication{
		name:       name,
		repo:       config.New(),
		logger:     logger.Nop(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.container == nil {
		a.container = container.New(container.WithLogger(a.logger.WithGroup("container")))
	}
	return a
}

// Name 返回应用名称。
func (a *BaseApplication) Name() string {
	return a.name
}

// RegisterProvider 注册服务提供者，同名提供者只能注册一次。
func (a *BaseApplication) RegisterProvider(p provider.Binding) error {
	if p == nil {
		return errNilProvider
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initializing || a.initialized || a.started {
		return errRegisterLocked
	}
	for _, existing := range a.providers {
		if existing.Name() == p.Name() {
			return errors.Wrapf(errDuplicateProvider, "provider %q", p.Name())
		}
	}
	a.providers = append(a.providers, p)
	return nil
}

// RegisterService 注册一个服务。
func (a *BaseApplication) RegisterService(s service.Service) error {
	if s == nil {
		return errNilService
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initializing || a.initialized || a.started {
		return errRegisterLocked
	}
	a.services = append(a.services, s)
	return nil
}

// SetConfigPath 追加配置文件路径，需在 Init 前调用。
func (a *BaseApplication) SetConfigPath(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initializing || a.initialized || a.started {
		return errConfigLocked
	}
	a.configPaths = append(a.configPaths, path)
	return nil
}

// SetEnvFiles 设置 .env 文件，需在 Init 前调用。
func (a *BaseApplication) SetEnvFiles(files ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initializing || a.initialized || a.started {
		return errConfigLocked
	}
	a.envFiles = append([]string(nil), files...)
	return nil
}

// Container 返回应用容器。
func (a *BaseApplication) Container() *container.Container {
	return a.container
}

// Config 返回配置仓库。
func (a *BaseApplication) Config() *config.Repository {
	return a.repo
}

// Logger 返回应用日志。
func (a *BaseApplication) Logger() logger.Logger {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.logger
}

// Init 加载配置、绑定提供者并初始化所有服务。失败时释放已解析的实例并撤销本次绑定，可修正后重试。
func (a *BaseApplication) Init(ctx context.Context) error {
	a.mu.Lock()
	if a.initialized {
		a.mu.Unlock()
		return nil
	}
	if a.initializing {
		a.mu.Unlock()
		return errApplicationAlive
	}
	a.initializing = true
	providers := append([]provider.Binding(nil), a.providers...)
	services := append([]service.Service(nil), a.services...)
	a.mu.Unlock()

	var bound []string
	fail := func(err error) error {
		if releaseErr := a.container.Release(ctx, bound...); releaseErr != nil {
			a.Logger().Error("release after init failure", logger.F("error", releaseErr)...)
			err = errors.CombineErrors(err, releaseErr)
		}
		for _, name := range bound {
			a.container.Forget(name)
		}
		a.mu.Lock()
		a.initializing = false
		a.mu.Unlock()
		return err
	}

	if err := a.loadConfig(); err != nil {
		return fail(err)
	}

	if err := a.container.Instance(ConfigServiceName, a.repo); err != nil {
		return fail(err)
	}
	bound = append(bound, ConfigServiceName)
	if err := a.container.Instance(AppServiceName, Application(a)); err != nil {
		return fail(err)
	}
	bound = append(bound, AppServiceName)

	shared := container.Shared(a.container)
	for _, p := range providers {
		if err := p.Bind(shared, a.repo); err != nil {
			return fail(errors.Wrapf(err, "app: bind provider %q", p.Name()))
		}
		bound = append(bound, p.Name())
	}

	if err := a.initLogger(ctx); err != nil {
		return fail(err)
	}

	for _, s := range services {
		if err := s.Init(ctx, a.container); err != nil {
			return fail(errors.Wrapf(err, "app: init service %q", s.ID()))
		}
	}

	a.mu.Lock()
	a.initializing = false
	a.initialized = true
	l := a.logger
	a.mu.Unlock()

	l.Info("application initialized", logger.F(
		"app", a.name,
		"providers", len(providers),
		"services", len(services),
	)...)
	return nil
}

// Start 启动应用及其所有服务。
func (a *BaseApplication) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return nil
	}
	services := append([]service.Service(nil), a.services...)
	a.mu.Unlock()

	var startedServices []service.Service
	for _, s := range services {
		if err := s.Start(ctx); err != nil {
			a.rollbackServices(ctx, startedServices)
			return errors.Wrapf(err, "app: start service %q", s.ID())
		}
		startedServices = append(startedServices, s)
	}

	a.mu.Lock()
	a.started = true
	a.mu.Unlock()

	a.Logger().Info("application started", logger.F("app", a.name)...)
	return nil
}

// Run 启动应用并阻塞运行，直到收到退出信号或上下文取消。
func (a *BaseApplication) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		_ = a.Shutdown(context.Background())
		return ctx.Err()
	case <-sigCh:
		_ = a.Shutdown(context.Background())
		return a.shutdownError()
	case <-a.shutdownCh:
		return a.shutdownError()
	}
}

// Shutdown 停止所有服务并关闭容器，释放已解析的单例。
func (a *BaseApplication) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		err := a.Stop(ctx)
		if closeErr := a.container.Close(ctx); closeErr != nil {
			err = errors.CombineErrors(err, closeErr)
		}
		a.mu.Lock()
		a.shutdownErr = err
		a.mu.Unlock()
		a.Logger().Info("application shutdown", logger.F("app", a.name)...)
		close(a.shutdownCh)
	})
	return a.shutdownError()
}

// Stop 逆序停止所有服务，返回第一个错误。
func (a *BaseApplication) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.started {
		a.mu.Unlock()
		return nil
	}
	services := append([]service.Service(nil), a.services...)
	a.mu.Unlock()

	var stopErr error
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Stop(ctx); err != nil && stopErr == nil {
			stopErr = errors.Wrapf(err, "app: stop service %q", services[i].ID())
		}
	}

	a.mu.Lock()
	a.started = false
	a.mu.Unlock()
	return stopErr
}

// Providers 返回已注册的提供者名称。
func (a *BaseApplication) Providers() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.providers))
	for _, p := range a.providers {
		names = append(names, p.Name())
	}
	return names
}

// Services 返回已注册的服务列表。
func (a *BaseApplication) Services() []service.Service {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]service.Service(nil), a.services...)
}

func (a *BaseApplication) rollbackServices(ctx context.Context, services []service.Service) {
	for i := len(services) - 1; i >= 0; i-- {
		_ = services[i].Stop(ctx)
	}
}

func (a *BaseApplication) shutdownError() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.shutdownErr
}

// initLogger 在绑定了 log 服务且未显式指定日志时，解析并接管应用与容器日志。
func (a *BaseApplication) initLogger(ctx context.Context) error {
	a.mu.RLock()
	explicit := a.loggerSet
	a.mu.RUnlock()
	if explicit || !a.container.Bound(logger.ServiceName) {
		return nil
	}

	l, err := container.Resolve[logger.Logger](ctx, a.container, logger.ServiceName)
	if err != nil {
		return errors.Wrap(err, "app: resolve logger")
	}
	a.mu.Lock()
	a.logger = l
	a.mu.Unlock()
	a.container.SetLogger(l.WithGroup("container"))
	return nil
}

var _ Application = (*BaseApplication)(nil)
