package logger

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

var errEmptyLogPath = errors.New("logger: log file path is empty")

// FileOptions 表示 zap 驱动（滚动文件）的选项。
type FileOptions struct {
	Filepath   string `yaml:"filepath" validate:"required"`
	Level      string `yaml:"level"`
	MaxSize    int    `yaml:"max_size" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAge     int    `yaml:"max_age" validate:"gte=0"`
	Compress   bool   `yaml:"compress"`
	// EnableEnv 非空时，仅当该环境变量为真值才输出，否则退化为 Nop。
	EnableEnv string `yaml:"enable_env"`
}

// ConsoleOptions 表示 console 驱动的选项。
type ConsoleOptions struct {
	// Output 取 stdout 或 stderr，默认 stdout。
	Output    string `yaml:"output" validate:"omitempty,oneof=stdout stderr"`
	Level     string `yaml:"level"`
	EnableEnv string `yaml:"enable_env"`
}

func envEnabled(key string) bool {
	if strings.TrimSpace(key) == "" {
		return true
	}
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// ParseLevel 解析等级名称，空串视为 info。
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, errors.Newf("logger: invalid level %q", raw)
	}
}

// resolveFilepath 相对路径以可执行文件所在目录为基准。
func resolveFilepath(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	exe, err := os.Executable()
	if err != nil {
		return path
	}
	return filepath.Join(filepath.Dir(exe), path)
}
