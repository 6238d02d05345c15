// Package worker runs blocking runtime work on dedicated goroutines with a
// declared stack size, off the UI looper.
package worker

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/monitoring"
)

// DefaultStackSize is the stack size for deep interpreter initialization.
const DefaultStackSize = 1 << 20

// runtimeMaxStack is the goroutine stack ceiling the Go runtime starts with.
var runtimeMaxStack = func() int {
	if math.MaxInt == math.MaxInt32 {
		return 250_000_000
	}
	return 1_000_000_000
}()

// Config declares the resource limits of a pool.
type Config struct {
	Name string
	// StackSize is the stack each task must be able to grow to, in bytes.
	// Goroutine stacks grow on demand, so only sizes above the runtime
	// ceiling change anything.
	StackSize int
	// MaxConcurrent bounds running tasks; zero means unbounded.
	MaxConcurrent int64
}

// Pool submits tasks to stack-safe workers. Workers never hold up process
// exit: nothing waits for them unless Wait is called.
type Pool struct {
	cfg     Config
	sem     *semaphore.Weighted
	wg      sync.WaitGroup
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewPool creates a pool.
func NewPool(cfg Config, logger *logging.Logger, metrics *monitoring.Metrics) *Pool {
	if cfg.StackSize <= 0 {
		cfg.StackSize = DefaultStackSize
	}
	if cfg.Name == "" {
		cfg.Name = "worker"
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	p := &Pool{
		cfg:     cfg,
		logger:  logger.Named(cfg.Name),
		metrics: metrics,
	}
	if cfg.MaxConcurrent > 0 {
		p.sem = semaphore.NewWeighted(cfg.MaxConcurrent)
	}
	if raiseStackCeiling(cfg.StackSize) {
		p.logger.Info("raised goroutine stack ceiling", zap.Int("bytes", cfg.StackSize))
	}
	return p
}

// Task is a submitted unit of work.
type Task struct {
	name string
	done chan struct{}
	err  error
}

// Name returns the task name.
func (t *Task) Name() string {
	return t.name
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Go runs fn on a new worker.
func (p *Pool) Go(name string, fn func() error) *Task {
	t := &Task{name: name, done: make(chan struct{})}
	p.wg.Add(1)
	go p.run(t, fn)
	return t
}

func (p *Pool) run(t *Task, fn func() error) {
	defer p.wg.Done()
	defer close(t.done)

	if p.sem != nil {
		// Background context: Acquire cannot fail.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	start := time.Now()
	t.err = Protect(fn)
	p.metrics.RecordWorkerTask(p.cfg.Name, t.err == nil)

	if t.err != nil {
		p.logger.Error("task failed",
			zap.String("task", t.name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(t.err),
		)
		return
	}
	p.logger.Debug("task finished",
		zap.String("task", t.name),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// Wait blocks until every submitted task has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Protect runs fn, turning a panic into an error.
func Protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

var (
	stackMu      sync.Mutex
	stackCeiling = runtimeMaxStack
)

// raiseStackCeiling lifts the process goroutine stack ceiling to size when
// size exceeds every ceiling set so far. The ceiling is only ever raised,
// so goroutines already running deep are never cut short.
func raiseStackCeiling(size int) bool {
	stackMu.Lock()
	defer stackMu.Unlock()

	if size <= stackCeiling {
		return false
	}
	debug.SetMaxStack(size)
	stackCeiling = size
	return true
}
