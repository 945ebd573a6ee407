package worker

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"
)

// Task выполняет одну итерацию фоновой задачи.
type Task func(ctx context.Context) error

const defaultTaskTimeout = 2 * time.Minute

// LoopWorker выполняет задачу, затем спит ровно interval, и так по кругу.
// Ошибки и паники итерации логируются и не останавливают цикл.
type LoopWorker struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	task     Task

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func NewLoopWorker(name string, interval time.Duration, task Task) *LoopWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &LoopWorker{
		name:     name,
		interval: interval,
		timeout:  defaultTaskTimeout,
		task:     task,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (w *LoopWorker) Name() string { return w.name }

// Run блокируется до Stop.
func (w *LoopWorker) Run() {
	log.Printf("[worker:%s] started with interval %v", w.name, w.interval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-w.ctx.Done():
			log.Printf("[worker:%s] stopped", w.name)
			return
		case <-timer.C:
		}

		if err := w.RunOnce(w.ctx); err != nil {
			log.Printf("[worker:%s] error: %v", w.name, err)
		}

		timer.Reset(w.interval)
	}
}

// RunOnce выполняет одну итерацию синхронно, без сна.
// Паника внутри задачи превращается в ошибку.
func (w *LoopWorker) RunOnce(ctx context.Context) (err error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()

	return w.task(ctx)
}

func (w *LoopWorker) Stop() {
	w.stopOnce.Do(w.cancel)
}
