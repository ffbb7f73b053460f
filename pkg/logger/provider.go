package logger

import (
	"context"
	"io"
	"os"

	"github.com/lk2023060901/zeus-provider/pkg/provider"
)

// ServiceName 日志服务在容器中的名称。
const ServiceName = "log"

const (
	// DriverZap 写入滚动文件
	DriverZap = "zap"
	// DriverConsole 写入标准输出或标准错误
	DriverConsole = "console"
	// DriverNop 丢弃所有日志
	DriverNop = "nop"
)

// Provider 日志服务提供者。
type Provider struct {
	stdout io.Writer
	stderr io.Writer
}

// ProviderOption Provider 选项
type ProviderOption func(*Provider)

// WithConsoleWriters 替换 console 驱动使用的输出目标。
func WithConsoleWriters(stdout, stderr io.Writer) ProviderOption {
	return func(p *Provider) {
		if stdout != nil {
			p.stdout = stdout
		}
		if stderr != nil {
			p.stderr = stderr
		}
	}
}

// NewProvider 创建日志服务提供者。
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return ServiceName
}

// Factory 选项必须通过 type 指明驱动。
func (p *Provider) Factory() provider.Factory[Logger] {
	return provider.NewRegistry[Logger](ServiceName)
}

func (p *Provider) Drivers() provider.Drivers[Logger] {
	return provider.Drivers[Logger]{}.
		Add(DriverZap, fileDriver).
		Add(DriverConsole, p.consoleDriver).
		Add(DriverNop, nopDriver)
}

func fileDriver(_ context.Context, opts provider.Options) (Logger, error) {
	var o FileOptions
	if err := opts.Decode(&o); err != nil {
		return nil, err
	}
	if !envEnabled(o.EnableEnv) {
		return Nop(), nil
	}
	level, err := ParseLevel(o.Level)
	if err != nil {
		return nil, err
	}
	path := resolveFilepath(o.Filepath)
	if path == "" {
		return nil, errEmptyLogPath
	}
	return newFileLogger(path, o, level), nil
}

func (p *Provider) consoleDriver(_ context.Context, opts provider.Options) (Logger, error) {
	var o ConsoleOptions
	if err := opts.Decode(&o); err != nil {
		return nil, err
	}
	if !envEnabled(o.EnableEnv) {
		return Nop(), nil
	}
	level, err := ParseLevel(o.Level)
	if err != nil {
		return nil, err
	}
	w := p.stdout
	if o.Output == "stderr" {
		w = p.stderr
	}
	return NewWriterLogger(w, level), nil
}

func nopDriver(context.Context, provider.Options) (Logger, error) {
	return Nop(), nil
}

var _ provider.Provider[Logger] = (*Provider)(nil)
