package provider

import (
	"sort"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const defaultKey = "default"

// Block 表示单个服务的配置块：default 选择当前驱动，其余键为各驱动的选项。
type Block struct {
	Default string
	Drivers map[string]Options
}

// Selected 返回 default 指向的驱动别名及其选项。
func (b Block) Selected() (string, Options, error) {
	if b.Default == "" {
		return "", nil, errors.Wrap(ErrMissingDefault, "default is empty")
	}
	opts, ok := b.Drivers[b.Default]
	if !ok {
		return b.Default, nil, errors.Wrapf(ErrMissingDefault, "no options for %q", b.Default)
	}
	if opts == nil {
		opts = Options{}
	}
	return b.Default, opts, nil
}

// Aliases 返回已配置的驱动别名（排序后）。
func (b Block) Aliases() []string {
	out := make([]string, 0, len(b.Drivers))
	for alias := range b.Drivers {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// Clone 深拷贝到驱动选项一级。
func (b Block) Clone() Block {
	out := Block{Default: b.Default, Drivers: make(map[string]Options, len(b.Drivers))}
	for alias, opts := range b.Drivers {
		out.Drivers[alias] = opts.Clone()
	}
	return out
}

// UnmarshalYAML 解析形如 {default: file, file: {...}, memory: {...}} 的配置块。
func (b *Block) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Newf("provider: block must be a mapping, got line %d", node.Line)
	}
	b.Drivers = make(map[string]Options, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		if key == defaultKey {
			if err := value.Decode(&b.Default); err != nil {
				return errors.Wrapf(err, "provider: decode %q", defaultKey)
			}
			continue
		}
		opts := Options{}
		// 空值（如 `memory:`）视为空选项
		if value.Kind != yaml.ScalarNode || value.Tag != "!!null" {
			if err := value.Decode(&opts); err != nil {
				return errors.Wrapf(err, "provider: decode driver %q", key)
			}
		}
		b.Drivers[key] = opts
	}
	return nil
}

// MarshalYAML 输出与 UnmarshalYAML 对称的扁平结构。
func (b Block) MarshalYAML() (any, error) {
	out := make(map[string]any, len(b.Drivers)+1)
	for alias, opts := range b.Drivers {
		out[alias] = map[string]any(opts)
	}
	out[defaultKey] = b.Default
	return out, nil
}
