package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/queue"
	"StockPulse/pkg/tracing"
)

// Closer releases one infrastructure resource on shutdown.
type Closer struct {
	Name  string
	Close func() error
}

// Option configures optional parts of the App.
type Option func(*App)

// WithConsumer runs a Kafka consumer with the given handler.
func WithConsumer(c *pkgkafka.Consumer, h pkgkafka.MessageHandler) Option {
	return func(a *App) {
		a.consumer = c
		a.events = h
	}
}

// WithWarmup runs the warm-up queue workers and the scheduler feeding them.
func WithWarmup(q *queue.RedisQueue, s *usecase.WarmScheduler) Option {
	return func(a *App) {
		a.queue = q
		a.scheduler = s
	}
}

// WithHub closes websocket subscribers on shutdown.
func WithHub(h interface{ Close() }) Option {
	return func(a *App) { a.hub = h }
}

// WithLimiter sweeps idle rate limit buckets while the app runs.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(a *App) { a.limiter = l }
}

// WithTracing flushes spans on shutdown.
func WithTracing(s tracing.Shutdown) Option {
	return func(a *App) { a.tracing = s }
}

// WithClosers registers resources closed after every worker has stopped,
// in registration order.
func WithClosers(c ...Closer) Option {
	return func(a *App) { a.closers = append(a.closers, c...) }
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	http      *xhttp.Server
	consumer  *pkgkafka.Consumer
	events    pkgkafka.MessageHandler
	queue     *queue.RedisQueue
	scheduler *usecase.WarmScheduler
	hub       interface{ Close() }
	limiter   *ratelimit.Limiter
	tracing   tracing.Shutdown
	closers   []Closer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, opts ...Option) *App {
	if l == nil {
		l = applogger.NewNop()
	}
	a := &App{cfg: cfg, log: l, http: srv}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the application and blocks until interrupted or until the HTTP
// server fails.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err := <-a.http.Errors():
		a.log.Error("http server failed", applogger.Error(err))
		runErr = err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// Start launches every background component. It does not block.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	if a.consumer != nil && a.events != nil {
		a.consumer.RegisterHandler(a.events)
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("start kafka consumer: %w", err)
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.events.Topic()))
	}

	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			return fmt.Errorf("start warmup queue: %w", err)
		}
		if a.scheduler != nil {
			a.wg.Add(1)
			go func() {
				defer a.wg.Done()
				a.scheduler.Run(ctx)
			}()
		}
		a.log.Info("forecast warmup started", applogger.Duration("interval", a.cfg.Warmup.Interval))
	}

	if a.limiter != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.sweepLimiter(ctx)
		}()
	}

	if err := a.http.Start(); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}
	a.log.Info("stockpulse started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("backend", a.cfg.Backend.Type),
		applogger.Int("port", a.cfg.Server.Port))
	return nil
}

// Shutdown stops intake first (HTTP, consumer), then background workers,
// then closes stores and clients.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")
	var errs []error

	if a.http != nil {
		if err := a.http.Stop(ctx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if a.hub != nil {
		a.hub.Close()
	}

	if a.consumer != nil && a.events != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	if a.queue != nil {
		if err := a.queue.Stop(ctx); err != nil {
			a.log.Warn("warmup queue stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.log.RemoveCollector()
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", c.Name), applogger.Error(err))
			errs = append(errs, fmt.Errorf("close %s: %w", c.Name, err))
		}
	}

	if a.tracing != nil {
		if err := a.tracing(ctx); err != nil {
			a.log.Warn("tracing shutdown error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}

func (a *App) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.Sweep(); n > 0 {
				a.log.Debug("rate limit buckets swept", applogger.Int("removed", n))
			}
		}
	}
}
