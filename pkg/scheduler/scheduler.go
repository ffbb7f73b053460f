package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"

	"github.com/lk2023060901/zeus-provider/pkg/conc"
	"github.com/lk2023060901/zeus-provider/pkg/logger"
)

var (
	// ErrJobNotFound 任务不存在
	ErrJobNotFound = errors.New("scheduler: job not found")
	// ErrJobRunning 任务仍在执行，本次被跳过
	ErrJobRunning = errors.New("scheduler: job still running")
	// ErrStopped 调度器已停止
	ErrStopped = errors.New("scheduler: stopped")

	errEmptyJobName = errors.New("scheduler: job name is empty")
	errNilJob       = errors.New("scheduler: job func is nil")
)

// Scheduler 基于 cron 表达式的任务调度器。
type Scheduler struct {
	cron     *cron.Cron
	config   Config
	logger   logger.Logger
	pool     *conc.Pool[any]
	ownsPool bool

	jobsMu sync.RWMutex
	jobs   map[JobID]*jobEntry

	runMu   sync.Mutex
	running bool
	stopped bool
}

// Option 调度器选项
type Option func(*Scheduler)

// WithLogger 设置日志记录器
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPool 使用外部协程池，Stop 时不会释放它
func WithPool(pool *conc.Pool[any]) Option {
	return func(s *Scheduler) {
		if pool != nil {
			s.pool = pool
			s.ownsPool = false
		}
	}
}

// New 创建调度器
func New(cfg Config, opts ...Option) (*Scheduler, error) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, errors.Wrapf(err, "scheduler: invalid timezone %s", tz)
	}

	cronOpts := []cron.Option{cron.WithLocation(loc)}
	if cfg.WithSeconds {
		cronOpts = append(cronOpts, cron.WithSeconds())
	}

	s := &Scheduler{
		cron:   cron.New(cronOpts...),
		config: cfg,
		logger: logger.Nop(),
		jobs:   make(map[JobID]*jobEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pool == nil {
		pool, err := conc.NewPool[any](cfg.PoolSize)
		if err != nil {
			return nil, err
		}
		s.pool = pool
		s.ownsPool = true
	}
	return s, nil
}

// AddFunc 添加函数任务
func (s *Scheduler) AddFunc(name, spec string, fn JobFunc) (JobID, error) {
	if name == "" {
		return 0, errEmptyJobName
	}
	if fn == nil {
		return 0, errNilJob
	}

	entry := &jobEntry{name: name, spec: spec, fn: fn}
	id, err := s.cron.AddJob(spec, cron.FuncJob(func() {
		_ = s.run(entry)
	}))
	if err != nil {
		return 0, errors.Wrapf(err, "scheduler: add job %s", name)
	}
	entry.id = id

	s.jobsMu.Lock()
	s.jobs[id] = entry
	s.jobsMu.Unlock()

	s.logger.Info("job added", logger.F(
		"job_id", id,
		"job_name", name,
		"spec", spec,
	)...)
	return id, nil
}

// Remove 移除任务，返回任务是否存在
func (s *Scheduler) Remove(id JobID) bool {
	s.cron.Remove(id)

	s.jobsMu.Lock()
	entry, exists := s.jobs[id]
	delete(s.jobs, id)
	s.jobsMu.Unlock()

	if exists {
		s.logger.Info("job removed", logger.F(
			"job_id", id,
			"job_name", entry.name,
		)...)
	}
	return exists
}

// Start 启动调度器，重复调用无副作用
func (s *Scheduler) Start() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if s.running {
		return nil
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started")
	return nil
}

// Stop 停止调度并等待执行中的任务结束，随后释放自有协程池。停止后不可再启动。
func (s *Scheduler) Stop(ctx context.Context) error {
	s.runMu.Lock()
	if s.stopped {
		s.runMu.Unlock()
		return nil
	}
	s.stopped = true
	wasRunning := s.running
	s.running = false
	s.runMu.Unlock()

	var waitErr error
	if wasRunning {
		select {
		case <-s.cron.Stop().Done():
		case <-ctx.Done():
			waitErr = ctx.Err()
		}
	}
	s.releasePool()
	s.logger.Info("scheduler stopped")
	return waitErr
}

func (s *Scheduler) releasePool() {
	if s.ownsPool {
		s.pool.Release()
	}
}

// IsRunning 返回调度器是否正在运行
func (s *Scheduler) IsRunning() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.running
}

// Job 获取任务信息
func (s *Scheduler) Job(id JobID) (*JobInfo, bool) {
	s.jobsMu.RLock()
	entry, exists := s.jobs[id]
	s.jobsMu.RUnlock()
	if !exists {
		return nil, false
	}
	return entry.info(s.cron.Entry(id).Next), true
}

// Jobs 按 ID 顺序列出所有任务
func (s *Scheduler) Jobs() []*JobInfo {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()
	jobs := make([]*JobInfo, 0, len(s.jobs))
	for id, entry := range s.jobs {
		jobs = append(jobs, entry.info(s.cron.Entry(id).Next))
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs
}

// RunNow 立即在协程池中执行任务（不影响调度），返回的 Future 给出本次执行结果
func (s *Scheduler) RunNow(id JobID) (*conc.Future[any], error) {
	s.jobsMu.RLock()
	entry, exists := s.jobs[id]
	s.jobsMu.RUnlock()
	if !exists {
		return nil, errors.Wrapf(ErrJobNotFound, "job %d", id)
	}

	s.runMu.Lock()
	stopped := s.stopped
	s.runMu.Unlock()
	if stopped {
		return nil, ErrStopped
	}

	return s.pool.Submit(func() (any, error) {
		return nil, s.run(entry)
	}), nil
}

func (s *Scheduler) run(entry *jobEntry) error {
	if s.config.SkipIfStillRunning {
		if !entry.running.CompareAndSwap(false, true) {
			s.logger.Debug("job skipped, still running", logger.F(
				"job_id", entry.id,
				"job_name", entry.name,
			)...)
			return ErrJobRunning
		}
	} else {
		entry.running.Store(true)
	}
	defer entry.running.Store(false)

	start := time.Now()
	entry.lastRun.Store(start)
	entry.runCount.Inc()

	var err error
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			wait := s.config.backoff(attempt)
			s.logger.Warn("job retry", logger.F(
				"job_id", entry.id,
				"job_name", entry.name,
				"attempt", attempt,
				"error", err,
				"backoff", wait,
			)...)
			if wait > 0 {
				time.Sleep(wait)
			}
		}
		err = s.call(entry)
		if err == nil || attempt >= s.config.MaxRetries {
			break
		}
	}

	if err != nil {
		entry.failCount.Inc()
		s.logger.Error("job failed", logger.F(
			"job_id", entry.id,
			"job_name", entry.name,
			"duration", time.Since(start),
			"error", err,
		)...)
		return err
	}
	s.logger.Debug("job completed", logger.F(
		"job_id", entry.id,
		"job_name", entry.name,
		"duration", time.Since(start),
	)...)
	return nil
}

func (s *Scheduler) call(entry *jobEntry) (err error) {
	if s.config.Recovery {
		defer func() {
			if r := recover(); r != nil {
				err = errors.Newf("scheduler: job %s panicked: %v", entry.name, r)
			}
		}()
	}
	return entry.fn()
}
