package logger

import (
	"context"
	"io"
	"syscall"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultMaxSizeMB = 100

// ZapLogger 基于 zap 的 JSON Logger，file 与 console 驱动共用。
type ZapLogger struct {
	base  *zap.Logger
	group string
}

// newFileLogger 写入 path，按 o 的大小与保留策略滚动。
func newFileLogger(path string, o FileOptions, level Level) *ZapLogger {
	maxSize := o.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxSizeMB
	}
	return newZapLogger(zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: o.MaxBackups,
		MaxAge:     o.MaxAge,
		Compress:   o.Compress,
	}), level)
}

// NewWriterLogger 创建写入 w 的 JSON Logger。
func NewWriterLogger(w io.Writer, level Level) *ZapLogger {
	return newZapLogger(zapcore.Lock(zapcore.AddSync(w)), level)
}

func newZapLogger(ws zapcore.WriteSyncer, level Level) *ZapLogger {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), ws, level.zap())
	// Info 等入口经 write 转发，跳过两层
	return &ZapLogger{base: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))}
}

func (l *ZapLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	return &ZapLogger{base: l.base.With(l.zapFields(fields)...), group: l.group}
}

// WithGroup 之后的字段键加上 "group." 前缀，嵌套分组逐级拼接。
func (l *ZapLogger) WithGroup(name string) Logger {
	if name == "" {
		return l
	}
	if l.group != "" {
		name = l.group + "." + name
	}
	return &ZapLogger{base: l.base, group: name}
}

func (l *ZapLogger) Enabled(_ context.Context, level Level) bool {
	return l.base.Core().Enabled(level.zap())
}

func (l *ZapLogger) Debug(msg string, fields ...Field) { l.write(LevelDebug, msg, fields) }
func (l *ZapLogger) Info(msg string, fields ...Field) { l.write(LevelInfo, msg, fields) }
func (l *ZapLogger) Warn(msg string, fields ...Field) { l.write(LevelWarn, msg, fields) }
func (l *ZapLogger) Error(msg string, fields ...Field) { l.write(LevelError, msg, fields) }

// Sync 刷新缓冲；标准输出等不支持 fsync 的目标返回的错误被忽略。
func (l *ZapLogger) Sync() error {
	err := l.base.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

func (l *ZapLogger) write(level Level, msg string, fields []Field) {
	if ce := l.base.Check(level.zap(), msg); ce != nil {
		ce.Write(l.zapFields(fields)...)
	}
}

func (l *ZapLogger) zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		key := f.Key
		if l.group != "" {
			key = l.group + "." + key
		}
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(key, err))
		} else {
			out = append(out, zap.Any(key, f.Value))
		}
	}
	return out
}

func (l Level) zap() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

var _ Logger = (*ZapLogger)(nil)
