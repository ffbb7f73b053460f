package provider

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidProvider Provider 未满足约定（名称为空、工厂或驱动为 nil）
	ErrInvalidProvider = errors.New("provider: invalid provider")

	// ErrMissingDefault 配置块未声明 default，或 default 指向的驱动未配置
	ErrMissingDefault = errors.New("provider: default driver not configured")

	// ErrUnknownDriver 引导了从未注册的驱动
	ErrUnknownDriver = errors.New("provider: unknown driver")

	// ErrDriverTypeMissing 选项中缺少 type 且无法推断驱动
	ErrDriverTypeMissing = errors.New("provider: driver type missing")

	// ErrInvalidOptions 驱动选项解码或校验失败
	ErrInvalidOptions = errors.New("provider: invalid options")
)
