package provider

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// TypeKey 选项中用于指定驱动别名的键。
const TypeKey = "type"

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Options 表示被选中驱动的配置子块。
type Options map[string]any

// Type 返回 type 键对应的驱动别名。
func (o Options) Type() string {
	return o.String(TypeKey)
}

// String 以字符串形式读取选项，不存在时返回空串。
func (o Options) String(key string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone 返回浅拷贝，调用方修改不会影响配置仓库。
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Decode 将选项解码到带 yaml 标签的结构体，并按 validate 标签校验。
func (o Options) Decode(out any) error {
	raw, err := yaml.Marshal(map[string]any(o))
	if err != nil {
		return errors.Wrapf(ErrInvalidOptions, "encode: %v", err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(ErrInvalidOptions, "decode: %v", err)
	}
	validateOnce.Do(func() {
		validate = validator.New()
	})
	if err := validate.Struct(out); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// 非结构体目标（如 map）不做校验
			return nil
		}
		return errors.Wrapf(ErrInvalidOptions, "validate: %v", err)
	}
	return nil
}
