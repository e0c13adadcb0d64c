package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "ping_chat_service/cmd/chat_service/docs" // 引入 Swagger 文档
	"ping_chat_service/internal/api/handlers"
	apirouter "ping_chat_service/internal/api/router"
	chatapp "ping_chat_service/internal/chat/app"
	chatrepo "ping_chat_service/internal/chat/repository"
	chatrouter "ping_chat_service/internal/chat/router"
	memberapp "ping_chat_service/internal/member/app"
	memberdomain "ping_chat_service/internal/member/domain"
	memberrepo "ping_chat_service/internal/member/repository"
	"ping_chat_service/pkg/config"
	"ping_chat_service/pkg/database"
	"ping_chat_service/pkg/encrypt"
	"ping_chat_service/pkg/logger"
	testtool "ping_chat_service/pkg/test_tool"
	"ping_chat_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	defer logger.Log.Sync()

	cfg, err := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)
	if err != nil {
		logger.Log.Fatal("load config", zap.Error(err))
	}
	cfg.ApplyDefaults()
	if config.EnvConfig.ChatServicePort != "" {
		cfg.Port = config.EnvConfig.ChatServicePort
	}
	token.Configure(cfg.JWTSecret, cfg.SessionTTL)
	testtool.StartPprof()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. PostgreSQL: member 使用 pgx, 訊息使用 gorm, 已讀查詢使用 sqlx
	pgConn := database.Connection{
		ConnectStr:    cfg.PostgreSQL.DSN(),
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	}
	pool, err := database.NewDatabaseConnection(ctx, pgConn)
	if err != nil {
		logger.Log.Fatal("Unable to connect to member database after retries", zap.String("host", cfg.PostgreSQL.Host), zap.Error(err))
	}
	defer pool.Close()

	gormDB, err := database.NewPGConnection(ctx, pgConn)
	if err != nil {
		logger.Log.Fatal("Unable to connect to message database after retries", zap.Error(err))
	}
	if sqlDB, dbErr := gormDB.DB(); dbErr == nil {
		defer sqlDB.Close()
	}

	sqlxDB, err := database.NewSQLXConnection(ctx, pgConn)
	if err != nil {
		logger.Log.Fatal("Unable to connect to read state database after retries", zap.Error(err))
	}
	defer sqlxDB.Close()

	// 2. Redis: member session
	masterName, sentinels := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(ctx, database.RedisConnection{
		Addr:          cfg.Redis.Addr,
		MasterName:    masterName,
		SentinelAddrs: sentinels,
		DB:            cfg.Redis.RedisDB,
	})
	if err != nil {
		logger.Log.Fatal("connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	// 3. MinIO: 頭像, 無法連線時停用上傳
	var avatars memberapp.AvatarStore
	minioClient, err := database.NewMinIOConnection(ctx, database.MinIOConnection{
		Endpoint:      cfg.MinIO.Endpoint,
		User:          cfg.MinIO.User,
		Password:      cfg.MinIO.Password,
		BucketName:    cfg.MinIO.Bucket,
		UseSSL:        cfg.MinIO.UseSSL,
		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
	})
	if err != nil {
		logger.Log.Warn("minIO unavailable, avatar upload disabled", zap.Error(err))
	} else {
		if cfg.MinIO.PublicURL != "" {
			minioClient.PublicURL = cfg.MinIO.PublicURL
		}
		avatars = minioClient
	}

	// 4. Migration: member 先建立, messages 的 FK 指向 member
	memberRepo := memberrepo.NewMemberRepository(pool)
	if err := memberRepo.Migrate(ctx); err != nil {
		logger.Log.Fatal("migrate member", zap.Error(err))
	}
	msgRepo := chatrepo.NewMessageRepository(gormDB)
	if err := msgRepo.AutoMigrate(ctx); err != nil {
		logger.Log.Fatal("migrate messages", zap.Error(err))
	}
	readRepo := chatrepo.NewReadStateRepository(sqlxDB)

	// 5. UseCases
	memberUC := memberapp.NewMemberUseCase(
		memberRepo,
		cfg.SessionTTL,
		database.NewRedisRepository[memberdomain.MemberSession](redisClient),
		encrypt.HashPassword,
		avatars,
	)
	messageUC := chatapp.NewMessageUseCase(msgRepo, memberUC)
	readStateUC := chatapp.NewReadStateUseCase(msgRepo, readRepo)
	conversationUC := chatapp.NewConversationUseCase(messageUC, memberUC)
	hub := chatapp.NewEphemeralHub()
	relayUC := chatapp.NewRelayUseCase(hub, messageUC, memberUC)

	// 6. Fiber
	r := fiber.New(fiber.Config{DisableStartupMessage: config.IsProduction()})
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		logger.Log.Fatal("Failed to open access log file", zap.Error(err))
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file, // 将日志输出到文件
	}))

	apirouter.RegisterRoutes(r,
		handlers.NewMemberHandler(memberUC, conversationUC, cfg.SessionTTL),
		handlers.NewChatHandler(messageUC, readStateUC, conversationUC),
		cfg.AllowedOrigins,
	)
	// 連線不跟著 signal ctx 結束, shutdown 時由 hub 通知並關閉
	chatrouter.RegisterRoutes(context.Background(), r,
		chatapp.NewChatWebsocketHandler(hub, relayUC, readStateUC, cfg.Relay),
		cfg.AllowedOrigins,
	)

	// 7. Listen, 收到 SIGINT/SIGTERM 後關閉
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := cfg.IP + ":" + cfg.Port
		logger.Log.Info("Chat Service listening", zap.String("addr", addr))
		return r.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("shutting down", zap.Int("connections", hub.Count()))
		hub.Shutdown("server shutdown")
		return r.ShutdownWithTimeout(cfg.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
	}
	logger.Log.Info("Chat Service stopped")
}
