package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Totarae/PersonalAccount/internal/config"
	"github.com/Totarae/PersonalAccount/internal/database"
	"github.com/Totarae/PersonalAccount/internal/grpcserver"
	"github.com/Totarae/PersonalAccount/internal/handlers"
	"github.com/Totarae/PersonalAccount/internal/middleware"
	"github.com/Totarae/PersonalAccount/internal/objectstore"
	"github.com/Totarae/PersonalAccount/internal/repositories"
	"github.com/Totarae/PersonalAccount/internal/router"
	"github.com/Totarae/PersonalAccount/internal/service"
	"github.com/Totarae/PersonalAccount/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Инициализация конфигурации
	cfg, err := config.NewConfig(os.Args[1:])
	if err != nil {
		boot, _ := zap.NewProduction()
		boot.Fatal("Ошибка конфигурации", zap.Error(err))
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		boot, _ := zap.NewProduction()
		boot.Fatal("Не удалось создать логгер", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Ошибка при работе сервера", zap.Error(err))
	}
	logger.Info("Сервер остановлен")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if lvl == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// stores собирает реализации репозиториев для выбранного режима.
type stores struct {
	users   service.UserRepository
	shelves service.ShelfRepository
	tags    service.TagRepository
	pinger  handlers.Pinger
	close   func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.Mode != config.ModeDatabase {
		mem := storage.NewMemoryStore()
		return &stores{users: mem, shelves: mem, tags: mem, pinger: mem, close: func() {}}, nil
	}

	db, err := database.NewDB(ctx, cfg.DatabaseDSN, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		users:   repositories.NewUserRepository(db),
		shelves: repositories.NewShelfRepository(db),
		tags:    repositories.NewTagRepository(db),
		pinger:  db,
		close:   db.Close,
	}, nil
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Инициализация конфигурации",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("grpc_address", cfg.GRPCAddress),
		zap.String("mode", cfg.Mode),
		zap.Bool("object_store", cfg.ObjectStoreEnabled()),
		zap.Bool("https", cfg.EnableHTTPS),
	)

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	var avatars *service.AvatarService
	if cfg.ObjectStoreEnabled() {
		objects, err := objectstore.New(ctx, objectstore.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			LinkTTL:   cfg.S3LinkTTL,
		}, logger)
		if err != nil {
			return err
		}
		if err := objects.EnsureBucket(ctx); err != nil {
			return err
		}
		avatars = service.NewAvatarService(st.users, objects, logger)
	} else {
		logger.Warn("S3_ENDPOINT не задан, маршруты /files отключены")
	}

	handler := handlers.NewHandler(
		service.NewUserService(st.users, logger),
		service.NewShelfService(st.users, st.shelves, logger),
		service.NewTagService(st.users, st.tags, logger),
		avatars,
		st.pinger,
		logger,
		cfg.ShelvesEmptyNotFound,
	)

	opts := router.Options{CORSOrigins: cfg.CORSOrigins}
	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		defer limiter.Stop()
		opts.Limiter = limiter
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router.NewRouter(handler, logger, opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Порт gRPC занимается до запуска горутин: при ошибке ждать нечего.
	var grpcLis net.Listener
	if cfg.GRPCAddress != "" {
		grpcLis, err = net.Listen("tcp", cfg.GRPCAddress)
		if err != nil {
			return fmt.Errorf("failed to listen grpc: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Сервер запущен", zap.String("address", cfg.ServerAddress))
		var err error
		if cfg.EnableHTTPS {
			err = srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	if grpcLis != nil {
		health := grpcserver.New(st.pinger, grpcserver.DefaultCheckInterval, logger)
		g.Go(func() error {
			return health.Serve(grpcLis)
		})
		g.Go(func() error {
			health.Watch(gctx)
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			health.Stop()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Остановка сервера")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
