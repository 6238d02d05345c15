package host

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/logging"
)

// ErrLooperStopped is returned when work is posted after Quit.
var ErrLooperStopped = errors.New("looper stopped")

// Looper runs posted tasks one at a time, in FIFO order, on a dedicated
// goroutine locked to its OS thread.
type Looper struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	quit    bool
	started bool

	done     chan struct{}
	doneOnce sync.Once
	logger   *logging.Logger
}

// NewLooper creates a looper. Call Start before posting work that must run.
func NewLooper(logger *logging.Logger) *Looper {
	if logger == nil {
		logger = logging.NewNop()
	}
	l := &Looper{
		done:   make(chan struct{}),
		logger: logger.Named("looper"),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Start launches the UI goroutine. Calling it more than once is a no-op.
func (l *Looper) Start() {
	l.mu.Lock()
	if l.started || l.quit {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.mu.Unlock()

	go l.loop()
}

func (l *Looper) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer l.closeDone()

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.quit {
			l.cond.Wait()
		}
		if l.quit {
			l.queue = nil
			l.mu.Unlock()
			return
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.run(task)
	}
}

func (l *Looper) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("ui task panicked", zap.String("panic", fmt.Sprint(r)))
		}
	}()
	task()
}

// Post queues fn for execution on the UI goroutine. It reports false when
// the looper has quit.
func (l *Looper) Post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.quit {
		return false
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
	return true
}

// RunSync posts fn and blocks until it has run. It must not be called from
// a task already running on the looper.
func (l *Looper) RunSync(fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrLooperStopped
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLooperStopped
	}
}

// Quit stops the looper. Pending tasks are dropped.
func (l *Looper) Quit() {
	l.mu.Lock()
	l.quit = true
	started := l.started
	l.cond.Broadcast()
	l.mu.Unlock()

	if !started {
		l.closeDone()
	}
}

func (l *Looper) closeDone() {
	l.doneOnce.Do(func() { close(l.done) })
}

// Done is closed once the UI goroutine has exited.
func (l *Looper) Done() <-chan struct{} {
	return l.done
}
