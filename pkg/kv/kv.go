package kv

import (
	"context"

	"github.com/cockroachdb/errors"
)

var (
	// ErrKeyNotFound 键不存在
	ErrKeyNotFound = errors.New("kv: key not found")

	// ErrEmptyKey 键为空
	ErrEmptyKey = errors.New("kv: key is empty")

	// ErrStoreClosed 存储已关闭
	ErrStoreClosed = errors.New("kv: store closed")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("kv: invalid config")
)

// Store 键值存储接口。
type Store interface {
	// Get 获取键值，不存在返回 ErrKeyNotFound。
	Get(ctx context.Context, key string) (string, error)
	// Put 设置键值。
	Put(ctx context.Context, key, value string) error
	// Delete 删除键，返回是否确有删除。
	Delete(ctx context.Context, key string) (bool, error)
	// List 返回前缀匹配的全部键值。
	List(ctx context.Context, prefix string) (map[string]string, error)
	// Close 释放底层资源。
	Close() error
}
