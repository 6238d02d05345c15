package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/nsbridge/internal/bootstrap"
	"github.com/GriffinCanCode/nsbridge/internal/bridge"
	"github.com/GriffinCanCode/nsbridge/internal/engine"
	"github.com/GriffinCanCode/nsbridge/internal/host"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/config"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/nsbridge/internal/manifest"
	"github.com/GriffinCanCode/nsbridge/internal/repl"
)

var ErrUnknownComponent = errors.New("component not declared in manifest")

// Host is the assembled process.
type Host struct {
	cfg      *config.Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	modules  fs.FS
	engine   *engine.Goja
	looper   *host.Looper
	bridge   *bridge.Bridge
	boot     *bootstrap.App
	repl     *repl.Server
	manifest *manifest.Manifest
	manager  *Manager
}

// Option configures a Host.
type Option func(*options)

type options struct {
	logger   *logging.Logger
	registry *bridge.Registry
}

// WithLogger overrides the logger built from configuration.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegistry uses r instead of the process registry.
func WithRegistry(r *bridge.Registry) Option {
	return func(o *options) { o.registry = r }
}

// New assembles a host. Namespaces load from cfg.Engine.ModuleRoot when set
// and from modules otherwise; the manifest is read from the same place.
func New(cfg *config.Config, modules fs.FS, opts ...Option) (*Host, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		l, err := logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
			OutputPaths: []string{"stdout"},
		})
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
		logger = l
	}

	if cfg.Engine.ModuleRoot != "" {
		modules = os.DirFS(cfg.Engine.ModuleRoot)
	}
	if modules == nil {
		return nil, errors.New("no module filesystem")
	}

	m, err := manifest.Load(modules, manifest.DefaultPath)
	if err != nil {
		return nil, err
	}

	metrics := monitoring.NewMetrics()

	rt := engine.NewGoja(modules, engine.Config{
		Features:         cfg.Engine.Features,
		MaxCallStackSize: cfg.Engine.MaxCallStackSize,
		Logger:           logger,
	})

	bridgeOpts := []bridge.Option{bridge.WithLogger(logger), bridge.WithMetrics(metrics)}
	if o.registry != nil {
		bridgeOpts = append(bridgeOpts, bridge.WithRegistry(o.registry))
	}
	b := bridge.New(rt, bridgeOpts...)

	srv := repl.New(b, rt, cfg.REPL, repl.WithLogger(logger), repl.WithMetrics(metrics))
	rt.RegisterNativeModule(repl.ModuleName, srv.ModuleLoader())

	looper := host.NewLooper(logger)

	h := &Host{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		modules:  modules,
		engine:   rt,
		looper:   looper,
		bridge:   b,
		boot:     bootstrap.New(rt, cfg.Bootstrap, bootstrap.WithLogger(logger), bootstrap.WithMetrics(metrics)),
		repl:     srv,
		manifest: m,
		manager:  NewManager(b, looper, logger),
	}

	logger.Info("host assembled",
		zap.String("manifest", m.Name),
		zap.Int("components", len(m.Components)),
		zap.Strings("features", cfg.Engine.Features),
	)
	return h, nil
}

// Start runs the application create step, preloads the manifest's
// namespaces in the background and launches the launcher component.
func (h *Host) Start() (*Component, error) {
	h.looper.Start()
	h.boot.OnCreate()

	if len(h.manifest.Preload) > 0 {
		h.boot.LoadNamespacesAsync(func(err error) {
			if err == nil {
				h.logger.Info("preloaded namespaces", zap.Strings("ns", h.manifest.Preload))
			}
		}, h.manifest.Preload...)
	}

	return h.manager.Spawn(h.manifest.Launcher())
}

// Launch starts the manifest component declared with typeName.
func (h *Host) Launch(typeName string) (*Component, error) {
	decl, ok := h.manifest.Component(typeName)
	if !ok {
		return nil, fmt.Errorf("%s: %w", typeName, ErrUnknownComponent)
	}
	return h.manager.Spawn(decl)
}

// Close destroys every component and stops the host.
func (h *Host) Close(ctx context.Context) error {
	n := h.manager.CloseAll()
	h.logger.Info("components closed", zap.Int("count", n))

	var errs []error
	if err := h.repl.Shutdown(ctx); err != nil && !errors.Is(err, repl.ErrNotListening) {
		errs = append(errs, err)
	}
	h.looper.Quit()
	select {
	case <-h.looper.Done():
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}
	errs = append(errs, h.engine.Close())
	_ = h.logger.Sync()
	return errors.Join(errs...)
}

// Bridge returns the lifecycle bridge.
func (h *Host) Bridge() *bridge.Bridge { return h.bridge }

// Bootstrap returns the application bootstrap.
func (h *Host) Bootstrap() *bootstrap.App { return h.boot }

// Manager returns the component manager.
func (h *Host) Manager() *Manager { return h.manager }

// REPL returns the remote evaluation server.
func (h *Host) REPL() *repl.Server { return h.repl }

// Manifest returns the loaded manifest.
func (h *Host) Manifest() *manifest.Manifest { return h.manifest }

// Metrics returns the process metrics.
func (h *Host) Metrics() *monitoring.Metrics { return h.metrics }
