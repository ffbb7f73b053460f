package scheduler

import "time"

// Config 调度器配置，同时作为 cron 驱动的选项。
type Config struct {
	// Timezone 时区，默认 UTC
	Timezone string `yaml:"timezone"`

	// WithSeconds 是否启用秒级精度（6位表达式）
	WithSeconds bool `yaml:"with_seconds"`

	// SkipIfStillRunning 上次执行未完成则跳过本次
	SkipIfStillRunning bool `yaml:"skip_if_still_running"`

	// Recovery 将任务 panic 转换为失败
	Recovery bool `yaml:"recovery"`

	// Autostart 构造后立即启动
	Autostart bool `yaml:"autostart"`

	// PoolSize RunNow 使用的协程池容量，0 表示 CPU 数
	PoolSize int `yaml:"pool_size" validate:"gte=0"`

	// MaxRetries 失败重试次数，0 表示不重试
	MaxRetries int `yaml:"max_retries" validate:"gte=0"`

	// RetryBackoff 首次重试前的等待时间，之后每次翻倍
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// MaxBackoff 单次等待上限，0 表示不限制
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Timezone:           "UTC",
		SkipIfStillRunning: true,
		Recovery:           true,
		RetryBackoff:       time.Second,
		MaxBackoff:         30 * time.Second,
	}
}

// backoff 计算第 attempt 次重试（从 1 开始）前的等待时间。
func (c Config) backoff(attempt int) time.Duration {
	if c.RetryBackoff <= 0 || attempt <= 0 {
		return 0
	}
	d := c.RetryBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if c.MaxBackoff > 0 && d >= c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	if c.MaxBackoff > 0 && d > c.MaxBackoff {
		return c.MaxBackoff
	}
	return d
}
