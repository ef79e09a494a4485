package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appAdmin "github.com/craftline/backoffice/internal/application/admin"
	"github.com/craftline/backoffice/internal/application/fulfillment"
	"github.com/craftline/backoffice/internal/config"
	dompayment "github.com/craftline/backoffice/internal/domain/payment"
	httptransport "github.com/craftline/backoffice/internal/infrastructure/http"
	"github.com/craftline/backoffice/internal/infrastructure/postgres"
	"github.com/craftline/backoffice/internal/infrastructure/session"
	"github.com/craftline/backoffice/internal/infrastructure/upload"
	"github.com/craftline/backoffice/internal/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	db, err := postgres.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db_open_failed", zap.Error(err))
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	images, err := upload.NewDiskStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal("upload_dir_failed", zap.Error(err))
	}

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route, and status.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	prometheus.MustRegister(httpRequests, httpDuration)
	callbackMetrics := fulfillment.NewMetrics(prometheus.DefaultRegisterer)

	store := postgres.NewStore(db)
	verifier := dompayment.NewVerifier(cfg.GatewaySecret)
	confirm := fulfillment.NewConfirmPaymentUseCase(
		verifier,
		store,
		otel.Tracer(cfg.ServiceName),
		logger,
		callbackMetrics,
	)
	sweeper := fulfillment.NewSweeper(store, cfg.SweepInterval, logger)

	adminSvc := appAdmin.NewService(
		postgres.NewAccountRepository(db),
		postgres.NewProductRepository(db),
		session.NewRedisStore(rdb, cfg.SessionTTL),
		images,
		logger,
	)

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httptransport.Observability(logger, httpRequests, httpDuration))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	httptransport.NewHandler(confirm, adminSvc).Register(engine)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweeper.Run(ctx)

	go func() {
		logger.Info("http_server_start", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		logger.Info("http_server_stopped")
	}
}
