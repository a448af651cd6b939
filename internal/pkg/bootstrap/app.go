// Package bootstrap wires configuration, tracing, service registration and
// graceful shutdown for every service binary.
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"stockflow/internal/pkg/logger"
	"stockflow/internal/pkg/nacos"
	"stockflow/internal/pkg/netutil"
	"stockflow/internal/pkg/tracing"
)

// AppCtx is handed to a service's Setup function.
type AppCtx struct {
	// Ctx is cancelled when the service begins shutting down.
	Ctx    context.Context
	Config *Config
	Mux    *http.ServeMux
	Tracer trace.Tracer
	// Nacos is nil when no NACOS_SERVER_ADDRS is configured.
	Nacos *nacos.Client

	runners []runner
	closers []func()
}

type runner struct {
	name string
	run  func(ctx context.Context) error
}

// Go registers a background loop that runs until shutdown.
func (a *AppCtx) Go(name string, run func(ctx context.Context) error) {
	a.runners = append(a.runners, runner{name: name, run: run})
}

// OnShutdown registers cleanup; closers run in reverse order.
func (a *AppCtx) OnShutdown(fn func()) {
	a.closers = append(a.closers, fn)
}

// AppInfo describes one service binary.
type AppInfo struct {
	ServiceName string
	Port        int
	Setup       func(app *AppCtx) error
}

// StartService runs the service until SIGINT/SIGTERM and then shuts it down gracefully.
func StartService(info AppInfo) {
	logger.Init(info.ServiceName, getEnv("LOG_LEVEL", "info"))

	// 1. Nacos is optional; when present it doubles as the remote config source.
	var nacosClient *nacos.Client
	var remote RemoteSource
	if addrs := getEnv("NACOS_SERVER_ADDRS", ""); addrs != "" {
		c, err := nacos.NewNacosClient(addrs, getEnv("NACOS_NAMESPACE", ""), getEnv("NACOS_GROUP", "DEFAULT_GROUP"))
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to initialize nacos client")
		}
		nacosClient = c
		remote = c.GetConfig
	}

	cfg, err := LoadConfig(info.ServiceName, remote)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.App.Port == 0 {
		cfg.App.Port = info.Port
	}
	setCurrentConfig(cfg)
	logger.Init(info.ServiceName, cfg.App.LogLevel)

	// 2. Tracer
	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	app := &AppCtx{
		Ctx:    sigCtx,
		Config: cfg,
		Mux:    mux,
		Tracer: otel.Tracer(info.ServiceName),
		Nacos:  nacosClient,
	}
	if info.Setup != nil {
		if err := info.Setup(app); err != nil {
			zlog.Fatal().Err(err).Msg("service setup failed")
		}
	}

	// 3. Registration
	var ip string
	if nacosClient != nil {
		ip, err = netutil.GetOutboundIP()
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to get outbound IP address")
		}
		if err := nacosClient.RegisterServiceInstance(info.ServiceName, ip, cfg.App.Port); err != nil {
			zlog.Fatal().Err(err).Msg("failed to register service with nacos")
		}
	}

	// 4. HTTP server and background runners
	server := &http.Server{Addr: ":" + strconv.Itoa(cfg.App.Port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		zlog.Info().Msgf("✅ %s listening on :%d", info.ServiceName, cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	for _, r := range app.runners {
		r := r
		g.Go(func() error {
			zlog.Info().Str("runner", r.name).Msg("starting background runner")
			return r.run(gctx)
		})
	}

	// 5. Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		zlog.Info().Msgf("Shutting down service %s...", info.ServiceName)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if nacosClient != nil {
			if err := nacosClient.DeregisterServiceInstance(info.ServiceName, ip, cfg.App.Port); err != nil {
				zlog.Error().Err(err).Msg("error deregistering from nacos")
			}
		}
		if err := server.Shutdown(ctx); err != nil {
			zlog.Error().Err(err).Msg("error shutting down http server")
		}
		for i := len(app.closers) - 1; i >= 0; i-- {
			app.closers[i]()
		}
		if err := tp.Shutdown(ctx); err != nil {
			zlog.Error().Err(err).Msg("error shutting down tracer provider")
		}
		if nacosClient != nil {
			nacosClient.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		zlog.Error().Err(err).Msgf("service %s stopped with error", info.ServiceName)
		os.Exit(1)
	}
	zlog.Info().Msgf("Service %s gracefully shut down.", info.ServiceName)
}
