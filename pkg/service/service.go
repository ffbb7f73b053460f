package service

import (
	"context"

	"github.com/lk2023060901/zeus-provider/pkg/provider"
)

// Service 定义依赖已绑定服务的长生命周期组件。
type Service interface {
	// ID 返回服务的唯一标识。
	ID() string
	// Init 初始化服务，可通过 c 解析已绑定的服务。
	Init(ctx context.Context, c provider.Container) error
	// Start 启动服务。
	Start(ctx context.Context) error
	// Stop 停止服务并释放资源。
	Stop(ctx context.Context) error
}

// Base 提供空实现，嵌入后只需覆盖关心的方法。
type Base struct {
	Name string
}

func (b Base) ID() string {
	return b.Name
}

func (Base) Init(context.Context, provider.Container) error {
	return nil
}

func (Base) Start(context.Context) error {
	return nil
}

func (Base) Stop(context.Context) error {
	return nil
}

var _ Service = Base{}
