package logger

import (
	"context"
	"fmt"
)

// Level 表示日志等级。
type Level int

const (
	// LevelDebug 表示调试级日志。
	LevelDebug Level = iota
	// LevelInfo 表示信息级日志。
	LevelInfo
	// LevelWarn 表示警告级日志。
	LevelWarn
	// LevelError 表示错误级日志。
	LevelError
)

// String 返回等级名称。
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Field 表示结构化日志字段。
type Field struct {
	Key   string
	Value any
}

// F 将 key/value 交替的参数转换为字段列表，非字符串 key 以 fmt.Sprint 转换。
func F(kv ...any) []Field {
	if len(kv) == 0 {
		return nil
	}
	out := make([]Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		out = append(out, Field{Key: key, Value: kv[i+1]})
	}
	return out
}

// Logger 定义统一日志接口。
type Logger interface {
	// With 返回附加字段后的 Logger，便于上下文透传。
	With(fields ...Field) Logger

	// WithGroup 开启字段分组（与 slog 对齐）。
	WithGroup(name string) Logger

	// Enabled 判断给定等级在当前上下文是否可输出（与 slog 对齐）。
	Enabled(ctx context.Context, level Level) bool

	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Sync 刷新缓冲并落盘（若实现需要）。
	Sync() error
}

// Nop 返回一个不会输出任何日志的 Logger。
func Nop() Logger {
	return nop
}

type nopLogger struct{}

func (nopLogger) With(...Field) Logger { return nop }
func (nopLogger) WithGroup(string) Logger { return nop }
func (nopLogger) Enabled(context.Context, Level) bool { return false }
func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field) {}
func (nopLogger) Warn(string, ...Field) {}
func (nopLogger) Error(string, ...Field) {}
func (nopLogger) Sync() error { return nil }

var nop Logger = nopLogger{}
