package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/config"
	"github.com/bitfantasy/nimo-qc/internal/middleware"
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/handler"
	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/bitfantasy/nimo-qc/internal/qc/service"
	"github.com/bitfantasy/nimo-qc/internal/qc/sse"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting nimo-qc service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	health := handler.NewHealthHandler(Version, BuildTime)
	hub := sse.NewHub(zapLogger)
	opts := []service.Option{
		service.WithHub(hub),
		service.WithDashboardPath(cfg.Session.DashboardPath),
	}

	// The audit trail and print index are optional: without a database the
	// service still runs, it only loses history.
	if cfg.Database.Host != "" {
		db, err := initDatabase(cfg.Database)
		if err != nil {
			zapLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := db.AutoMigrate(&entity.SubmissionLog{}, &entity.PrintArchive{}); err != nil {
			zapLogger.Warn("AutoMigrate qc tables warning", zap.Error(err))
		}
		repos := repository.NewRepositories(db)
		opts = append(opts, service.WithSubmissionLog(repos.SubmissionLog))

		objects, err := initObjectStore(cfg.MinIO)
		if err != nil {
			zapLogger.Warn("MinIO unavailable, print archive kept in memory", zap.Error(err))
			opts = append(opts, service.WithPrintArchive(repos.PrintArchive, repository.NewMemoryObjectStore()))
		} else {
			opts = append(opts, service.WithPrintArchive(repos.PrintArchive, objects))
		}

		health.AddCheck("database", func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	} else {
		zapLogger.Warn("No database configured, submission log disabled")
	}

	var sessions repository.SessionStore
	if cfg.Redis.Host != "" {
		rdb := initRedis(cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		sessions = repository.NewRedisSessionStore(rdb, cfg.Session.TTL)
		opts = append(opts, service.WithMasterPartCache(repository.NewMasterPartCache(rdb, cfg.Session.MasterPartsTTL)))
		health.AddCheck("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		zapLogger.Warn("No redis configured, sessions kept in memory")
		sessions = repository.NewMemorySessionStore(cfg.Session.TTL)
	}

	foundry := foundryapi.NewClient(cfg.Foundry.BaseURL, cfg.Foundry.Timeout,
		foundryapi.WithPublicIPURL(cfg.Foundry.PublicIPURL),
	)
	svc := service.NewFormService(foundry, sessions, zapLogger, opts...)
	handlers := handler.NewHandlers(svc, hub, health)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins...))
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/events"})))

	handler.RegisterRoutes(router, handlers, cfg.JWT.Secret)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // SSE streams are long-lived
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

// initLogger builds a json (production) or console (development) logger.
// An unknown level keeps the preset's default.
func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if level, err := zap.ParseAtomicLevel(cfg.Level); err == nil {
		zapCfg.Level = level
	}
	return zapCfg.Build(zap.Fields(zap.String("service", "nimo-qc")))
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initObjectStore(cfg config.MinIOConfig) (*repository.MinioObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint not configured")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	store := repository.NewMinioObjectStore(client, cfg.Bucket)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
