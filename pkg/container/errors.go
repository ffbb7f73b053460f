package container

import "github.com/cockroachdb/errors"

var (
	// ErrEmptyName 绑定名称为空
	ErrEmptyName = errors.New("container: name is empty")

	// ErrNilResolver 解析函数为 nil
	ErrNilResolver = errors.New("container: resolver is nil")

	// ErrAlreadyBound 名称已被绑定
	ErrAlreadyBound = errors.New("container: name already bound")

	// ErrNotBound 名称未绑定
	ErrNotBound = errors.New("container: name not bound")

	// ErrCircularDependency 解析出现循环依赖
	ErrCircularDependency = errors.New("container: circular dependency")

	// ErrTypeMismatch 解析结果类型与期望不符
	ErrTypeMismatch = errors.New("container: type mismatch")

	// ErrClosed 容器已关闭
	ErrClosed = errors.New("container: closed")
)
