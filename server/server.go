package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oarkflow/xid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oarkflow/porter/binding"
	"github.com/oarkflow/porter/cache"
	"github.com/oarkflow/porter/config"
	"github.com/oarkflow/porter/metrics"
)

const shutdownTimeout = 5 * time.Second

// state is everything a config reload replaces.
type state struct {
	cfg    *config.Config
	binder *binding.Binder
}

type Server struct {
	app     *fiber.App
	addr    string
	state   atomic.Pointer[state]
	metrics *metrics.Metrics
	log     *slog.Logger
}

// Options carries the collaborators of a Server. Zero values are usable.
type Options struct {
	Logger *slog.Logger
	// AccessLog receives one line per request; nil disables access logging.
	AccessLog io.Writer
	// Registry defaults to a fresh registry with Go and process collectors.
	Registry *prometheus.Registry
}

func New(cfg *config.Config, opts Options) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
		opts.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m, err := metrics.New(opts.Registry)
	if err != nil {
		return nil, err
	}
	s := &Server{addr: cfg.Server.Address, metrics: m, log: opts.Logger}
	if err := s.Reload(cfg); err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               "porter",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		BodyLimit:             cfg.Server.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string {
			return xid.New().String()
		},
	}))
	if opts.AccessLog != nil {
		app.Use(logger.New(logger.Config{Output: opts.AccessLog}))
	}
	if rl := cfg.Server.RateLimit; rl.Max > 0 {
		app.Use(limiter.New(limiter.Config{Max: rl.Max, Expiration: rl.Window}))
	}

	app.Get("/healthz", s.health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))

	v1 := app.Group("/v1")
	if secret := cfg.Auth.JWTSecret; secret != "" {
		v1.Use(withJWT([]byte(secret)))
	}
	v1.Post("/stem", s.timed("stem", s.stem))
	v1.Get("/stem/:word", s.timed("stem_get", s.stemParam))
	v1.Post("/stem/batch", s.timed("batch", s.stemBatch))

	s.app = app
	return s, nil
}

func withJWT(secret []byte) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwt.SigningMethodHS256.Alg(), Key: secret},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or missing token")
		},
	})
}

// App exposes the Fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Reload swaps in a binder built from cfg. Listener settings only take effect
// on restart.
func (s *Server) Reload(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c, err := cache.New(cfg.Cache.Size)
	if err != nil {
		return err
	}
	b := binding.New(cfg.Stemmer,
		binding.WithLogger(s.log),
		binding.WithCache(c),
		binding.WithMetrics(s.metrics),
	)
	s.state.Store(&state{cfg: cfg, binder: b})
	s.log.Info("stemmer configured",
		slog.String("language", cfg.Stemmer.Language),
		slog.Bool("lowercase_fold", cfg.Stemmer.LowercaseFold),
		slog.Int("cache_size", cfg.Cache.Size))
	return nil
}

// Run serves until ctx is done, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", s.addr))
		errCh <- s.app.Listen(s.addr)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.log.Info("draining connections and shutting down")
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *Server) timed(endpoint string, h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := h(c)
		s.metrics.Request(endpoint, time.Since(start))
		return err
	}
}
