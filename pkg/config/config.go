package config

import (
	"io/fs"
	"os"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lk2023060901/zeus-provider/pkg/provider"
)

var (
	// ErrServiceNotConfigured 服务没有对应的配置块
	ErrServiceNotConfigured = errors.New("config: service not configured")

	errEmptyServiceName = errors.New("config: service name is empty")
)

// File 表示配置文件结构。
type File struct {
	// Services 按服务名索引的配置块。
	Services map[string]provider.Block `yaml:"services"`
}

// Repository 按服务名保存配置块，实现 provider.ConfigSource。
type Repository struct {
	mu     sync.RWMutex
	blocks map[string]provider.Block
}

// New 创建空仓库。
func New() *Repository {
	return &Repository{blocks: make(map[string]provider.Block)}
}

// Load 依次加载 YAML 文件，后加载的文件按服务整体覆盖先前的配置块。
func Load(paths ...string) (*Repository, error) {
	r := New()
	for _, path := range paths {
		if err := r.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// LoadFile 读取单个 YAML 文件并合并到仓库，${VAR} 在解析前按环境变量展开。
func (r *Repository) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "config: read %s", path)
	}
	f, err := Parse(raw)
	if err != nil {
		return errors.Wrapf(err, "config: parse %s", path)
	}
	for name, block := range f.Services {
		r.Set(name, block)
	}
	return nil
}

// Parse 解析配置内容。
func Parse(raw []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &f); err != nil {
		return File{}, err
	}
	return f, nil
}

// LoadEnvFiles 将 .env 文件载入进程环境，不存在的文件被忽略，已有变量不被覆盖。
func LoadEnvFiles(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.Wrapf(err, "config: load env %s", file)
		}
	}
	return nil
}

// Set 写入或替换服务的配置块。
func (r *Repository) Set(name string, block provider.Block) {
	r.mu.Lock()
	r.blocks[name] = block.Clone()
	r.mu.Unlock()
}

// Block 返回服务配置块的副本。
func (r *Repository) Block(name string) (provider.Block, error) {
	if name == "" {
		return provider.Block{}, errEmptyServiceName
	}
	r.mu.RLock()
	block, ok := r.blocks[name]
	r.mu.RUnlock()
	if !ok {
		return provider.Block{}, errors.Wrapf(ErrServiceNotConfigured, "service %q", name)
	}
	return block.Clone(), nil
}

// Has 判断服务是否已配置。
func (r *Repository) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.blocks[name]
	return ok
}

// Names 返回已配置的服务名（排序后）。
func (r *Repository) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.blocks))
	for name := range r.blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge 将 other 的配置块合并进来，同名服务以 other 为准。
func (r *Repository) Merge(other *Repository) {
	if other == nil || other == r {
		return
	}
	other.mu.RLock()
	blocks := make(map[string]provider.Block, len(other.blocks))
	for name, block := range other.blocks {
		blocks[name] = block.Clone()
	}
	other.mu.RUnlock()

	r.mu.Lock()
	for name, block := range blocks {
		r.blocks[name] = block
	}
	r.mu.Unlock()
}

var _ provider.ConfigSource = (*Repository)(nil)
