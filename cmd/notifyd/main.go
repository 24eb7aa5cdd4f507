package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	notify_sdk "github.com/cydxin/notify-sdk"
	"github.com/cydxin/notify-sdk/config"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	cfgPath := flag.String("config", "notifyd.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// logger 还没建好
		panic(err)
	}

	logger := newLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	// 1. 初始化数据库连接
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("mysql connect failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.MySQL.ConnMaxLife)
	}

	// 2. Redis：去重标记、投递队列、站内刷新频道、token 都在这里
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		logger.Fatal("redis connect failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	cancelPing()

	consumer := cfg.Worker.Consumer
	if consumer == "" {
		consumer, _ = os.Hostname()
	}

	// 3. 初始化 Notify Engine
	opts := []notify_sdk.Option{
		notify_sdk.WithDB(db),
		notify_sdk.WithRDB(rdb),
		notify_sdk.WithLogger(logger),
		notify_sdk.WithPrefetch(cfg.Worker.Prefetch),
		notify_sdk.WithBackoffBase(cfg.Worker.BackoffBase),
		notify_sdk.WithConsumerName(consumer),
		notify_sdk.WithDedupWindow(cfg.DedupWindow),
		notify_sdk.WithIngestToken(cfg.IngestToken),
	}
	if cfg.Worker.MaxRetries > 0 {
		opts = append(opts, notify_sdk.WithMaxRetries(cfg.Worker.MaxRetries))
	}
	if !cfg.Worker.Enabled {
		opts = append(opts, notify_sdk.WithoutWorkers())
	}
	if cfg.IngestToken == "" {
		logger.Warn("ingest_token is empty, internal event endpoint disabled")
	}
	if !cfg.Gateway {
		opts = append(opts, notify_sdk.WithoutGateway())
	}
	engine, err := notify_sdk.NewEngine(opts...)
	if err != nil {
		logger.Fatal("init engine failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := engine.AutoMigrate(); err != nil {
			logger.Fatal("auto migrate failed", zap.Error(err))
		}
	}
	if cfg.SeedTemplates {
		if err := engine.SeedTemplates(ctx); err != nil {
			logger.Fatal("seed templates failed", zap.Error(err))
		}
	}

	if err := engine.Start(ctx); err != nil {
		logger.Fatal("start engine failed", zap.Error(err))
	}

	// 4. 创建 Gin 路由
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	engine.RegisterRoutes(r, nil)
	if cfg.HTTP.Swagger {
		notify_sdk.RegisterSwagger(r, "")
	}

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: r}
	go func() {
		logger.Info("notifyd listening",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("consumer", consumer),
			zap.Bool("workers", cfg.Worker.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	// 先停 HTTP 再停 worker：在途请求入队完成后再断开消费
	engine.Close()
	if err := rdb.Close(); err != nil {
		logger.Warn("redis close", zap.Error(err))
	}
}

func newLogger(cfg config.LogConfig) *zap.Logger {
	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if lvl, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zc.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
