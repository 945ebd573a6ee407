package worker

import (
	"log"
	"sync"
	"time"
)

type Worker interface {
	Name() string
	Run()
	Stop()
}

// Scheduler держит по одной горутине на источник.
// Циклы независимы: медленная или падающая задача не задерживает остальные.
type Scheduler struct {
	workers     []Worker
	wg          sync.WaitGroup
	started     bool
	stopped     bool
	mu          sync.RWMutex
	stopTimeout time.Duration
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		workers:     make([]Worker, 0),
		stopTimeout: 10 * time.Second,
	}
}

// AddWorker: после Start воркер запускается сразу, после Stop не запускается.
func (s *Scheduler) AddWorker(worker Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		log.Printf("Scheduler is stopped, worker %s is not started", worker.Name())
		return
	}
	s.workers = append(s.workers, worker)
	if s.started {
		s.run(worker)
	}
}

// Register добавляет циклическую задачу источника.
func (s *Scheduler) Register(name string, interval time.Duration, task Task) *LoopWorker {
	w := NewLoopWorker(name, interval, task)
	s.AddWorker(w)
	return w
}

// Start не блокируется. Повторный вызов ничего не делает.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.started {
		return
	}
	s.started = true

	log.Println("Starting scheduler with", len(s.workers), "workers")

	for _, worker := range s.workers {
		s.run(worker)
	}
}

// run вызывается под s.mu.
func (s *Scheduler) run(w Worker) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		w.Run()
	}()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	workers := append([]Worker(nil), s.workers...)
	s.mu.Unlock()

	log.Println("Stopping scheduler...")

	for _, worker := range workers {
		worker.Stop()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	// Таймаут на остановку
	select {
	case <-done:
		log.Println("Scheduler stopped gracefully")
	case <-time.After(s.stopTimeout):
		log.Println("Scheduler stop timeout")
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started && !s.stopped
}

// Names - имена зарегистрированных задач, для /system/stats.
func (s *Scheduler) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.workers))
	for _, w := range s.workers {
		names = append(names, w.Name())
	}
	return names
}
