package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Nithin3003/cloud-share-it/config"
	"github.com/Nithin3003/cloud-share-it/internal/application/ports"
	"github.com/Nithin3003/cloud-share-it/internal/application/services"
	"github.com/Nithin3003/cloud-share-it/internal/domain/file"
	"github.com/Nithin3003/cloud-share-it/internal/domain/user"
	blobLocal "github.com/Nithin3003/cloud-share-it/internal/infrastructure/blob/local"
	blobS3 "github.com/Nithin3003/cloud-share-it/internal/infrastructure/blob/s3"
	dbLocal "github.com/Nithin3003/cloud-share-it/internal/infrastructure/db/local"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/db/postgres"
	pgFile "github.com/Nithin3003/cloud-share-it/internal/infrastructure/db/postgres/file"
	pgUser "github.com/Nithin3003/cloud-share-it/internal/infrastructure/db/postgres/user"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/jwt"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/metrics"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/mq"
	"github.com/Nithin3003/cloud-share-it/internal/infrastructure/sessions"
	"github.com/Nithin3003/cloud-share-it/internal/interface/api/rest"
	"github.com/Nithin3003/cloud-share-it/internal/interface/api/rest/middleware"
	"github.com/Nithin3003/cloud-share-it/pkg/rmqconsumer"
)

type sessionStore interface {
	ports.SessionStore
	io.Closer
}

type App struct {
	logger     *zap.Logger
	cfg        config.Config
	db         *pgxpool.Pool
	blobs      ports.BlobStore
	localBlobs *blobLocal.Store
	users      user.Repository
	files      file.Repository
	sessions   sessionStore
	httpSrv    *http.Server
	router     *gin.Engine
	mCounter   *prometheus.CounterVec
	mq         ports.EventPublisher
	rmq        *mq.RabbitMQ
	mqConsumer ports.CleanupConsumer
	checks     map[string]rest.HealthCheck
}

func newLogger(env string) (*zap.Logger, error) {
	switch env {
	case "dev", "local", gin.DebugMode:
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}

func NewApp(ctx context.Context) (*App, error) {
	// config
	envErr := godotenv.Load(".env")
	cfg := config.Load()

	// logger
	logger, err := newLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Fatal("error loading .env file", zap.Error(envErr))
	}
	if err = cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

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
	r.Use(middleware.RequestID())
	if len(cfg.App.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.App.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders:  []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders: []string{middleware.HeaderRequestID},
			MaxAge:        12 * time.Hour,
		}))
	}
	r.Use(middleware.RequestLogGin(logger, mCounter))
	// multipart parts above this stay on disk instead of in memory
	r.MaxMultipartMemory = 8 << 20

	// httpServer
	httpSrv := &http.Server{
		Addr:              cfg.App.Host + ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	app := &App{
		logger:   logger,
		cfg:      cfg,
		httpSrv:  httpSrv,
		router:   r,
		mCounter: mCounter,
		checks:   make(map[string]rest.HealthCheck),
	}

	// storage
	switch cfg.Storage.Backend {
	case config.StorageS3:
		app.initBacked(ctx)
	case config.StorageLocal:
		app.initStandalone()
	}

	// sessions
	if addr := cfg.RedisAddr(); addr != "" {
		rs, err := sessions.NewRedis(ctx, logger, addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		app.sessions = rs
		app.checks["redis"] = rs.Ping
	} else {
		logger.Warn("REDIS_HOST not set, token revocations are kept in memory")
		app.sessions = sessions.NewMemory()
	}

	// rabbitMQ
	if cfg.MQEnabled() {
		app.initMQ(ctx)
	} else {
		logger.Warn("RABBITMQ_HOST not set, file events are only logged")
		app.mq = mq.NewLogPublisher(logger)
	}

	return app, nil
}

// initBacked wires postgres metadata and S3 blobs.
func (a *App) initBacked(ctx context.Context) {
	dbDsn, err := a.cfg.DBDSN()
	if err != nil {
		a.logger.Fatal("DB config error", zap.Error(err))
	}
	if err = postgres.Migrate(ctx, a.logger, dbDsn); err != nil {
		a.logger.Fatal("failed to migrate database", zap.Error(err))
	}
	a.db, err = postgres.New(ctx, a.logger, dbDsn)
	if err != nil {
		a.logger.Fatal("failed to connect to database", zap.Error(err))
	}
	a.checks["db"] = a.db.Ping
	a.users = pgUser.NewRepository(a.db)
	a.files = pgFile.NewRepository(a.db)

	a.blobs, err = blobS3.New(ctx, a.logger, a.cfg.S3)
	if err != nil {
		a.logger.Fatal("failed to connect to S3", zap.Error(err))
	}
}

// initStandalone keeps both blobs and records under STORAGE_LOCAL_PATH.
func (a *App) initStandalone() {
	fs := afero.NewOsFs()
	root := a.cfg.Storage.LocalPath

	store, err := dbLocal.NewStore(fs, filepath.Join(root, "meta"))
	if err != nil {
		a.logger.Fatal("failed to open local metadata store", zap.Error(err))
	}
	a.users = dbLocal.NewUserRepository(store)
	a.files = dbLocal.NewFileRepository(store, a.logger)

	a.localBlobs, err = blobLocal.New(fs, filepath.Join(root, "blobs"), a.cfg.App.PublicOrigin, a.cfg.Storage.SigningKey)
	if err != nil {
		a.logger.Fatal("failed to open local blob store", zap.Error(err))
	}
	a.blobs = a.localBlobs

	a.logger.Info("using local storage", zap.String("path", root))
}

func (a *App) initMQ(ctx context.Context) {
	rabbitDsn, err := a.cfg.AMQPDSN()
	if err != nil {
		a.logger.Fatal("RabbitMQ config error", zap.Error(err))
	}
	a.rmq = mq.New(a.cfg.MQ, a.logger)
	if err = a.rmq.Connect(ctx, rabbitDsn); err != nil {
		a.logger.Fatal("failed to connect to rabbitMQ", zap.Error(err))
	}
	if err = a.rmq.Init(); err != nil {
		a.logger.Fatal("failed init rabbitMQ", zap.Error(err))
	}
	a.mq = a.rmq

	// rmqConsumer
	cleanup := services.NewCleanup(a.logger, a.blobs, a.files, a.mCounter)
	rmqConsumer := rmqconsumer.New(a.cfg.MQ, a.logger, a.rmq.GetConn(), cleanup.Handle)
	if err = rmqConsumer.Connect(rabbitDsn); err != nil {
		a.logger.Fatal("failed to connect rabbitMQ consumer", zap.Error(err))
	}
	if err = rmqConsumer.Init(); err != nil {
		a.logger.Fatal("failed to init rabbitMQ consumer", zap.Error(err))
	}
	a.mqConsumer = rmqConsumer
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.rmq != nil && a.rmq.GetConn() != nil {
		_ = a.rmq.GetConn().Close()
	}
	if a.sessions != nil {
		_ = a.sessions.Close()
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
		a.logger.Info("starting "+a.cfg.App.Name, zap.String("addr", a.httpSrv.Addr))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server "+a.cfg.App.Name+" error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		a.mq.PublisherWorker(ctx)
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
	authService := services.NewAuthService(a.logger, jwtService, a.users, a.sessions, a.mCounter, services.AuthOptions{
		TokenTTL:        a.cfg.App.TokenTTL,
		PermissiveLogin: a.cfg.App.PermissiveLogin,
	})
	registry := services.NewFileRegistry(a.logger, a.blobs, a.files, a.users, a.mq, a.mCounter, services.RegistryOptions{
		PublicOrigin: a.cfg.App.PublicOrigin,
		AccessURLTTL: a.cfg.App.AccessURLTTL,
	})
	resolver := services.NewPublicResolver(a.logger, a.blobs, a.files, a.cfg.App.AccessURLTTL)

	// controllers
	rest.NewAuthController(a.router, a.logger, authService, jwtService, a.sessions)
	rest.NewFileController(a.router, registry, a.logger, jwtService, a.sessions, a.cfg.App.MaxUploadBytes)
	rest.NewShareController(a.router, resolver, a.logger)
	if a.localBlobs != nil {
		rest.NewBlobController(a.router, a.localBlobs, a.logger)
	}

	// ops
	rest.NewOpsController(a.router, a.logger, a.checks)
}

func (a *App) Logger() *zap.Logger { return a.logger }
