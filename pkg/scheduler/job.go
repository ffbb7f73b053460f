package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/atomic"
)

// JobID 任务唯一标识
type JobID = cron.EntryID

// JobFunc 任务函数，返回错误用于判断是否重试
type JobFunc func() error

// JobInfo 任务信息
type JobInfo struct {
	ID        JobID
	Name      string
	Spec      string
	LastRun   time.Time
	NextRun   time.Time
	RunCount  int64
	FailCount int64
	Running   bool
}

type jobEntry struct {
	id   JobID
	name string
	spec string
	fn   JobFunc

	runCount  atomic.Int64
	failCount atomic.Int64
	running   atomic.Bool
	lastRun   atomic.Time
}

func (e *jobEntry) info(next time.Time) *JobInfo {
	return &JobInfo{
		ID:        e.id,
		Name:      e.name,
		Spec:      e.spec,
		LastRun:   e.lastRun.Load(),
		NextRun:   next,
		RunCount:  e.runCount.Load(),
		FailCount: e.failCount.Load(),
		Running:   e.running.Load(),
	}
}
