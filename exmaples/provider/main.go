package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/lk2023060901/zeus-provider/pkg/app"
	"github.com/lk2023060901/zeus-provider/pkg/container"
	"github.com/lk2023060901/zeus-provider/pkg/kv"
	"github.com/lk2023060901/zeus-provider/pkg/logger"
	"github.com/lk2023060901/zeus-provider/pkg/provider"
	"github.com/lk2023060901/zeus-provider/pkg/scheduler"
	"github.com/lk2023060901/zeus-provider/pkg/service"
)

// heartbeat 每 5 秒把当前时间写入 kv。
type heartbeat struct {
	service.Base
	store kv.Store
	sched *scheduler.Scheduler
	log   logger.Logger
}

func (h *heartbeat) Init(ctx context.Context, c provider.Container) error {
	var err error
	if h.log, err = container.Resolve[logger.Logger](ctx, c, logger.ServiceName); err != nil {
		return err
	}
	if h.store, err = container.Resolve[kv.Store](ctx, c, kv.ServiceName); err != nil {
		return err
	}
	if h.sched, err = container.Resolve[*scheduler.Scheduler](ctx, c, scheduler.ServiceName); err != nil {
		return err
	}
	_, err = h.sched.AddFunc("heartbeat", "*/5 * * * * *", h.beat)
	return err
}

func (h *heartbeat) Start(context.Context) error {
	return h.sched.Start()
}

func (h *heartbeat) beat() error {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := h.store.Put(context.Background(), "heartbeat", now); err != nil {
		return err
	}
	h.log.Info("heartbeat", logger.F("at", now)...)
	return nil
}

func main() {
	a := app.NewBaseApplication("provider-example",
		app.WithEnvFiles("exmaples/provider/.env"),
		app.WithConfigPaths("exmaples/provider/config.yaml"),
	)

	bindings := []provider.Binding{
		provider.NewBinding[logger.Logger](logger.NewProvider()),
		provider.NewBinding[kv.Store](kv.NewProvider()),
		provider.NewBinding[*scheduler.Scheduler](scheduler.NewProvider(nil)),
	}
	for _, b := range bindings {
		if err := a.RegisterProvider(b); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if err := a.RegisterService(&heartbeat{Base: service.Base{Name: "heartbeat"}}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := a.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
