package container

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/zeus-provider/pkg/logger"
	"github.com/lk2023060901/zeus-provider/pkg/provider"
)

// Stopper 需要带 ctx 停止的实例。
type Stopper interface {
	Stop(ctx context.Context) error
}

type syncer interface {
	Sync() error
}

// Close 按构造的逆序释放已解析的单例，之后容器拒绝新的绑定与解析。
//
// 实例依次尝试 Stopper、io.Closer、Sync() error，只调用第一个匹配的。
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	order := append([]string(nil), c.order...)
	instances := make([]any, len(order))
	for i, name := range order {
		instances[i] = c.instances[name]
	}
	c.mu.Unlock()

	closeErr := c.releaseAll(ctx, order, instances)
	c.logger.Info("container closed", logger.F("released", len(order))...)
	return closeErr
}

// Release 按构造的逆序释放 names 中已解析的单例并丢弃缓存，绑定保留，
// 下次 Make 会重新构造。未解析或由 Instance 登记的名称被忽略。
func (c *Container) Release(ctx context.Context, names ...string) error {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	c.mu.Lock()
	var (
		order     []string
		instances []any
		kept      = c.order[:0:0]
	)
	for _, name := range c.order {
		if _, ok := wanted[name]; !ok {
			kept = append(kept, name)
			continue
		}
		order = append(order, name)
		instances = append(instances, c.instances[name])
		delete(c.instances, name)
	}
	c.order = kept
	c.mu.Unlock()

	return c.releaseAll(ctx, order, instances)
}

func (c *Container) releaseAll(ctx context.Context, order []string, instances []any) error {
	var releaseErr error
	for i := len(order) - 1; i >= 0; i-- {
		if err := release(ctx, instances[i]); err != nil {
			c.logger.Error("instance release failed", logger.F(
				"name", order[i],
				"error", err,
			)...)
			releaseErr = errors.CombineErrors(releaseErr, errors.Wrapf(err, "release %q", order[i]))
		}
	}
	return releaseErr
}

// IsClosed 是否已关闭
func (c *Container) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func release(ctx context.Context, instance any) error {
	switch v := instance.(type) {
	case Stopper:
		return v.Stop(ctx)
	case io.Closer:
		return v.Close()
	case syncer:
		return v.Sync()
	default:
		return nil
	}
}

// Shared 返回一个以单例方式执行 Bind 的容器视图，供 provider.Bind 使用。
func Shared(c *Container) provider.Container {
	return sharedView{c}
}

type sharedView struct {
	*Container
}

func (s sharedView) Bind(name string, resolver provider.Resolver) error {
	return s.Singleton(name, resolver)
}
