package repl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/nsbridge/internal/bridge"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/config"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/logging"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/nsbridge/internal/infrastructure/tracing"
)

var ErrNotListening = errors.New("repl server is not listening")

// Evaluator runs source code in the embedded runtime.
type Evaluator interface {
	Eval(source string) (any, error)
}

// Server is the remote evaluation service.
type Server struct {
	bridge   *bridge.Bridge
	eval     Evaluator
	cfg      config.REPLConfig
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	router   *gin.Engine
	origins  OriginPolicy
	upgrader websocket.Upgrader

	mu   sync.Mutex
	srv  *http.Server
	addr string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics enables request metrics and the /metrics route.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a server over the bridge and evaluator. It does not listen
// until Listen is called.
func New(b *bridge.Bridge, eval Evaluator, cfg config.REPLConfig, opts ...Option) *Server {
	s := &Server{
		bridge: b,
		eval:   eval,
		cfg:    cfg,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("repl")
	s.origins = NewOriginPolicy(cfg.AllowedOrigins)
	s.upgrader = websocket.Upgrader{CheckOrigin: s.origins.Check}
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(tracing.Middleware(s.logger))
	router.Use(CORS(s.origins))
	router.Use(OriginGuard(s.origins))
	if s.metrics != nil {
		router.Use(monitoring.Middleware(s.metrics))
	}
	if s.cfg.RequestsPerSecond > 0 {
		router.Use(RateLimit(s.cfg.RequestsPerSecond, s.cfg.Burst))
	}

	router.POST("/eval", s.handleEval)
	router.GET("/instances", s.handleInstances)
	router.GET("/instances/:ns", s.handleInstance)
	router.POST("/reload", s.handleReloadAll)
	router.POST("/reload/:ns", s.handleReload)
	router.GET("/ws", s.handleSession)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	return router
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen starts serving on addr in the background and returns the bound
// address. An empty addr uses the configured one. Calling Listen again
// while serving returns the existing address.
func (s *Server) Listen(addr string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return s.addr, nil
	}
	if addr == "" {
		addr = s.cfg.Addr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", addr, err)
	}

	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.addr = ln.Addr().String()
	s.logger.Info("remote evaluation server listening", zap.String("addr", s.addr))

	srv := s.srv
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("remote evaluation server stopped", zap.Error(err))
		}
	}()
	return s.addr, nil
}

// Addr returns the bound address, or "" when not listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.addr = ""
	s.mu.Unlock()

	if srv == nil {
		return ErrNotListening
	}
	s.logger.Info("shutting down remote evaluation server")
	return srv.Shutdown(ctx)
}
