package internal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"filevault-api/config"
	"filevault-api/internal/application/ports"
	"filevault-api/internal/application/services"
	userDomain "filevault-api/internal/domain/user"
	"filevault-api/internal/infrastructure/blob"
	"filevault-api/internal/infrastructure/db/sqlite"
	"filevault-api/internal/infrastructure/db/sqlite/user"
	"filevault-api/internal/infrastructure/insight"
	"filevault-api/internal/infrastructure/jwt"
	"filevault-api/internal/infrastructure/metaindex"
	"filevault-api/internal/infrastructure/metrics"
	"filevault-api/internal/infrastructure/mq"
	"filevault-api/internal/interface/api/rest"
	"filevault-api/internal/interface/api/rest/middleware"
	"filevault-api/pkg/rmqconsumer"
)

type App struct {
	logger     *zap.Logger
	cfg        config.Config
	blobs      ports.BlobStore
	index      ports.MetaIndex
	userRepo   userDomain.Repository
	httpSrv    *http.Server
	router     *gin.Engine
	mCounter   *prometheus.CounterVec
	events     ports.VaultEvents
	mq         *mq.RabbitMQ
	mqConsumer ports.RMQConsumer

	catalogService ports.CatalogService
}

func NewApp(ctx context.Context) (*App, error) {
	// logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}
	defer logger.Sync()

	// config; a missing .env is fine, the environment may be set directly
	if err = godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		logger.Fatal("error loading .env file", zap.Error(err))
	}
	cfg := config.Load()

	// metrics
	mCounter := metrics.NewCounter()

	// router
	switch cfg.App.Env {
	case gin.ReleaseMode, "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case gin.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogGin(logger, mCounter))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))

	// httpServer
	httpSrv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: r,
	}

	// local stores: blobs on disk, metadata in a single json document,
	// credentials in sqlite. Everything lives under one data dir.
	blobs, err := blob.NewFSStore(logger, filepath.Join(cfg.Store.DataDir, "blobs"))
	if err != nil {
		logger.Fatal("failed to init blob store", zap.Error(err))
	}
	index, err := metaindex.NewDocument(logger, filepath.Join(cfg.Store.DataDir, "index.json"))
	if err != nil {
		logger.Fatal("failed to init metadata index", zap.Error(err))
	}
	db, err := sqlite.New(logger, filepath.Join(cfg.Store.DataDir, "vault.db"))
	if err != nil {
		logger.Fatal("failed to open sqlite", zap.Error(err))
	}
	userRepo, err := user.NewRepository(db)
	if err != nil {
		logger.Fatal("failed to init user repository", zap.Error(err))
	}

	// rabbitMQ is optional; without a broker catalog events go to the log
	var (
		events     ports.VaultEvents
		rbMQ       *mq.RabbitMQ
		mqConsumer ports.RMQConsumer
	)
	if cfg.MQEnabled() {
		rabbitDsn, err := cfg.AMQPDSN()
		if err != nil {
			logger.Fatal("RabbitMQ config error", zap.Error(err))
		}
		rbMQ = mq.New(cfg.MQ, logger)
		if err = rbMQ.Connect(ctx, rabbitDsn); err != nil {
			logger.Fatal("failed to connect to rabbitMQ", zap.Error(err))
		}
		if err = rbMQ.Init(); err != nil {
			logger.Fatal("failed init rabbitMQ", zap.Error(err))
		}
		events = rbMQ

		consumer := rmqconsumer.New(cfg.MQ, logger, rbMQ.GetConn())
		if err = consumer.Connect(rabbitDsn); err != nil {
			logger.Fatal("failed to connect rabbitMQ consumer", zap.Error(err))
		}
		if err = consumer.Init(); err != nil {
			logger.Fatal("failed to init rabbitMQ consumer", zap.Error(err))
		}
		mqConsumer = consumer
	} else {
		events = mq.NewLogPublisher(logger)
	}

	return &App{
		logger:     logger,
		cfg:        cfg,
		blobs:      blobs,
		index:      index,
		userRepo:   userRepo,
		httpSrv:    httpSrv,
		router:     r,
		mCounter:   mCounter,
		events:     events,
		mq:         rbMQ,
		mqConsumer: mqConsumer,
	}, nil
}

func (a *App) Close() {
	if a.mq != nil && a.mq.GetConn() != nil {
		a.mq.GetConn().Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Run - The central place to launch and manage our application and
// parallel processes through a single context.
func (a *App) Run(ctx context.Context) error {
	// context with os signals cancel chan
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting "+a.cfg.App.Name, zap.String("addr", a.cfg.App.Host+":"+a.cfg.App.Port))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		a.events.PublisherWorker(ctx)
		return nil
	})

	if a.mqConsumer != nil {
		g.Go(func() error {
			a.mqConsumer.DeliveryWorker(ctx)
			return nil
		})
	}

	<-ctx.Done()

	a.logger.Info("shutting down " + a.cfg.App.Name + " gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if a.httpSrv != nil {
		if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown "+a.cfg.App.Name+" error", zap.Error(err))
			return err
		}
	}

	if err := g.Wait(); err != nil {
		a.logger.Error(a.cfg.App.Name+" returning an error", zap.Error(err))
		return err
	}

	a.logger.Info(a.cfg.App.Name + " gracefully stopped")

	return nil
}

func (a *App) InitControllers() {
	// services
	jwtService := jwt.New(a.cfg.App.JWTSecret)
	authService := services.NewAuthService(jwtService)
	userService := services.NewUserService(a.userRepo, a.mCounter)
	a.catalogService = services.NewCatalogService(
		a.logger, a.blobs, a.index, a.events, a.mCounter, a.cfg.Store.MaxFileBytes,
	)
	insightService := services.NewInsightService(a.logger, insight.New(a.logger, a.cfg.AI))

	// controllers
	rest.NewAuthController(a.router, a.logger, userService, authService)
	rest.NewVaultController(
		a.router, a.catalogService, insightService, a.logger, jwtService, a.cfg.Store.QuotaBytes,
	)

	// ops
	a.router.GET(rest.RouteHealth, func(c *gin.Context) { c.Status(http.StatusOK) })
	a.router.GET(rest.RouteMetrics, gin.WrapH(promhttp.Handler()))
}

// Reconcile brings the blob store and the metadata index back in sync after
// an unclean shutdown. Called once before the server starts taking requests.
func (a *App) Reconcile(ctx context.Context) error {
	return a.catalogService.Reconcile(ctx)
}

func (a *App) Logger() *zap.Logger { return a.logger }
