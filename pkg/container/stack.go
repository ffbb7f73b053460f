package container

import (
	"context"
	"strings"
)

type stackKey struct{}

// resolving 返回 ctx 中正在解析的名称链。
func resolving(ctx context.Context) []string {
	stack, _ := ctx.Value(stackKey{}).([]string)
	return stack
}

// push 返回追加 name 后的新 ctx；若 name 已在链上则返回完整环路。
func push(ctx context.Context, name string) (context.Context, []string, bool) {
	stack := resolving(ctx)
	for i, n := range stack {
		if n == name {
			cycle := append(append([]string(nil), stack[i:]...), name)
			return ctx, cycle, false
		}
	}
	next := make([]string, len(stack)+1)
	copy(next, stack)
	next[len(stack)] = name
	return context.WithValue(ctx, stackKey{}, next), nil, true
}

func formatCycle(cycle []string) string {
	return strings.Join(cycle, " -> ")
}

// enterFlight 登记对单例 name 的等待。stack 为包含 name 的解析链。
//
// 每个正在构造的单例最多等待一个其他单例，沿等待链回到 stack 上的名称即构成跨协程环路，
// 此时直接返回环路，不加入 singleflight。
func (c *Container) enterFlight(stack []string, name string) (string, []string, bool) {
	callers := stack[:len(stack)-1]

	c.flightMu.Lock()
	defer c.flightMu.Unlock()

	if cycle := c.waitCycle(callers, name); cycle != nil {
		return "", cycle, false
	}

	var parent string
	for i := len(callers) - 1; i >= 0; i-- {
		if c.flights[callers[i]] > 0 {
			parent = callers[i]
			break
		}
	}
	if parent != "" {
		c.waits[parent] = name
	}
	c.flights[name]++
	return parent, nil, true
}

func (c *Container) leaveFlight(parent, name string) {
	c.flightMu.Lock()
	defer c.flightMu.Unlock()

	if parent != "" && c.waits[parent] == name {
		delete(c.waits, parent)
	}
	if c.flights[name]--; c.flights[name] <= 0 {
		delete(c.flights, name)
	}
}

// waitCycle 沿 name 的等待链查找 callers 中的名称，调用方需持有 flightMu。
func (c *Container) waitCycle(callers []string, name string) []string {
	chain := []string{name}
	for cur, steps := name, 0; steps <= len(c.waits); steps++ {
		if c.flights[cur] == 0 {
			return nil
		}
		for i, n := range callers {
			if n == cur && len(chain) > 1 {
				return append(append([]string(nil), callers[i:]...), chain...)
			}
		}
		next, ok := c.waits[cur]
		if !ok {
			return nil
		}
		chain = append(chain, next)
		cur = next
	}
	return nil
}
