package form

import (
	"context"
	"time"
)

// Scheduler runs cosmetic follow-up tasks, such as hiding the success banner.
// Tasks are fire-and-forget and must never touch form state.
type Scheduler interface {
	After(d time.Duration, task func())
}

// NoopScheduler drops every task.
type NoopScheduler struct{}

func (NoopScheduler) After(time.Duration, func()) {}

// TimerScheduler runs tasks on timers until its context ends. Tasks due after
// that are dropped.
type TimerScheduler struct {
	ctx context.Context
}

// NewTimerScheduler binds a scheduler to ctx.
func NewTimerScheduler(ctx context.Context) *TimerScheduler {
	return &TimerScheduler{ctx: ctx}
}

func (s *TimerScheduler) After(d time.Duration, task func()) {
	time.AfterFunc(d, func() {
		if s.ctx.Err() != nil {
			return
		}
		task()
	})
}
