package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/nsbridge/internal/engine"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/config"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/nsbridge/internal/worker"
)

var (
	ErrNotInitialized = errors.New("application not created")
	ErrLoadFailed     = errors.New("namespace loading failed")
	ErrNoStart        = errors.New("remote namespace has no start function")
)

// StartSymbol is the function the remote evaluation namespace must export.
const StartSymbol = "start"

var current atomic.Pointer[App]

// Instance returns the application created most recently, or nil before the
// first OnCreate.
func Instance() *App {
	return current.Load()
}

// App is the application-level entry point of the host.
type App struct {
	rt      engine.Runtime
	cfg     config.BootstrapConfig
	pool    *worker.Pool
	logger  *logging.Logger
	metrics *monitoring.Metrics

	once    sync.Once
	settled chan struct{}
	caps    Capabilities
	remote  any
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithMetrics enables metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an application over rt.
func New(rt engine.Runtime, cfg config.BootstrapConfig, opts ...Option) *App {
	a := &App{
		rt:      rt,
		cfg:     cfg,
		logger:  logging.NewNop(),
		settled: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.Named("bootstrap")
	a.pool = worker.NewPool(worker.Config{
		Name:          "runtime-worker",
		StackSize:     cfg.WorkerStackSize,
		MaxConcurrent: int64(cfg.MaxWorkers),
	}, a.logger, a.metrics)
	return a
}

// Runtime returns the runtime the app bootstraps.
func (a *App) Runtime() engine.Runtime {
	return a.rt
}

// OnCreate publishes the app as the process singleton and runs the
// capability bootstrap the first time it is called. It never blocks on
// runtime initialization and never fails.
func (a *App) OnCreate() {
	current.Store(a)
	a.once.Do(a.autoStart)
}

// Capabilities waits for bootstrap to settle and returns the snapshot.
func (a *App) Capabilities(ctx context.Context) (Capabilities, error) {
	select {
	case <-a.settled:
		return a.caps, nil
	case <-ctx.Done():
		return Capabilities{}, ctx.Err()
	}
}

// Snapshot returns the capability snapshot if bootstrap has settled.
func (a *App) Snapshot() (Capabilities, bool) {
	select {
	case <-a.settled:
		return a.caps, true
	default:
		return Capabilities{}, false
	}
}

// RemoteServer returns the value returned by the remote start function, or
// nil when the service did not start.
func (a *App) RemoteServer() any {
	if _, ok := a.Snapshot(); !ok {
		return nil
	}
	return a.remote
}

func (a *App) settle(caps Capabilities) {
	a.caps = caps
	close(a.settled)
	a.logger.Info("bootstrap settled",
		zap.String("mode", caps.Mode()),
		zap.Bool("remote_started", caps.RemoteStarted),
	)
}

func (a *App) autoStart() {
	var caps Capabilities
	a.logger.Debug("probing for dynamic loader")
	a.metrics.RecordBootstrapStage("capabilities")

	if !a.rt.HasFeature(engine.FeatureDynamicLoader) {
		a.logger.Debug("dynamic loader not found, skipping")
		a.settle(caps)
		return
	}
	caps.DynamicLoading = true

	if !a.rt.HasResource(a.cfg.RemoteResource) {
		a.logger.Info("dynamic compilation available, but remote evaluation server not included, skipping auto-start",
			zap.String("resource", a.cfg.RemoteResource),
		)
		a.metrics.RecordBootstrapStage("dynamic")
		a.settle(caps)
		return
	}
	caps.RemoteResources = true

	a.logger.Info("spawning remote evaluation starter")
	a.pool.Go("remote-autostart", func() error {
		defer func() { a.settle(caps) }()

		server, err := a.startRemote()
		if err != nil {
			a.metrics.RecordBootstrapStage("remote_failed")
			a.logger.Error("remote evaluation auto-start failed", zap.Error(err))
			return nil
		}
		a.remote = server
		caps.RemoteStarted = true
		a.metrics.RecordBootstrapStage("remote_started")
		return nil
	})
}

// startRemote tries the start sequence, retrying when configured.
func (a *App) startRemote() (any, error) {
	attempts := a.cfg.RemoteRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		var server any
		err := worker.Protect(func() (err error) {
			server, err = a.startRemoteOnce()
			return err
		})
		if err == nil {
			return server, nil
		}
		lastErr = err
		if attempt < attempts {
			a.logger.Warn("remote evaluation start attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			time.Sleep(a.cfg.RetryBackoff)
		}
	}
	return nil, lastErr
}

func (a *App) startRemoteOnce() (any, error) {
	ns := a.cfg.RemoteNamespace

	a.logger.Debug("requiring remote namespace", zap.String("ns", ns))
	t0 := time.Now()
	if err := a.rt.Require(ns); err != nil {
		return nil, err
	}
	a.logger.Debug("require completed", zap.Duration("elapsed", time.Since(t0)))

	start, ok := a.rt.Resolve(ns, StartSymbol)
	if !ok {
		return nil, fmt.Errorf("%s: %w", ns, ErrNoStart)
	}

	t0 = time.Now()
	server, err := a.rt.Invoke(start)
	if err != nil {
		return nil, err
	}
	a.logger.Info("remote evaluation server started",
		zap.Duration("elapsed", time.Since(t0)),
		zap.Any("server", server),
	)
	return server, nil
}

// LoadNamespaces requires each namespace in order on the calling goroutine,
// stopping at the first failure.
func (a *App) LoadNamespaces(namespaces ...string) error {
	for _, ns := range namespaces {
		if err := a.rt.Require(ns); err != nil {
			a.logger.Error("failed to load namespaces", zap.String("ns", ns), zap.Error(err))
			return fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
	}
	return nil
}

// LoadNamespacesAsync loads the namespaces on a new stack-safe worker and
// then calls callback on that worker with the loading result. The returned
// task completes after the callback has run.
func (a *App) LoadNamespacesAsync(callback func(error), namespaces ...string) *worker.Task {
	ns := append([]string(nil), namespaces...)
	return a.pool.Go("namespace-loader", func() error {
		err := a.LoadNamespaces(ns...)
		if callback != nil {
			callback(err)
		}
		return err
	})
}

// LoadNamespaces loads namespaces through the process application.
func LoadNamespaces(namespaces ...string) error {
	a := Instance()
	if a == nil {
		return ErrNotInitialized
	}
	return a.LoadNamespaces(namespaces...)
}

// LoadNamespacesAsync loads namespaces in the background through the
// process application.
func LoadNamespacesAsync(callback func(error), namespaces ...string) (*worker.Task, error) {
	a := Instance()
	if a == nil {
		return nil, ErrNotInitialized
	}
	return a.LoadNamespacesAsync(callback, namespaces...), nil
}
