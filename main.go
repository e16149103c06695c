package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"LoginChat/global/config"
	"LoginChat/logger"
	"LoginChat/middleware"
	midsec "LoginChat/middleware/security"
	"LoginChat/module/account"
	"LoginChat/module/message"
	"LoginChat/module/presence"
	"LoginChat/service/chat"
	"LoginChat/service/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	store, err := message.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("open message store: %v", err)
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatalf("ensure schema: %v", err)
	}

	var mirror *storage.Mirror
	if cfg.RedisAddr != "" {
		rdb, rerr := storage.Open(storage.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if rerr != nil {
			logger.Fatalf("open redis: %v", rerr)
		}
		defer func() { _ = rdb.Close() }()
		mirror = storage.NewMirror(rdb, cfg.PresenceTTL)
		logger.Infof("presence mirror enabled addr=%s", cfg.RedisAddr)
	}

	opts := chat.Options{
		NodeID:             cfg.NodeID,
		Store:              store,
		JWT:                cfg.JWTOptions(),
		AllowAnonymousJoin: cfg.AllowAnonymousJoin,
		SendQueueSize:      cfg.SendQueueSize,
		FanoutWorkers:      cfg.FanoutWorkers,
		FanoutQueue:        cfg.FanoutQueue,
	}
	if mirror != nil {
		opts.Mirror = mirror
	}
	srv := chat.NewServer(opts)
	defer srv.Close()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", middleware.Origin(cfg.AllowedOrigins), srv.HandleWS)

	auth := midsec.Middleware(cfg.JWTOptions())
	message.NewHandler(store).Register(r, auth)
	if mirror != nil {
		presence.NewHandler(mirror).Register(r, auth)
	}

	if cfg.DemoLogin {
		account.NewHandler(cfg.JWTOptions()).Register(r)
		logger.Warn("demo login endpoint enabled, do not use in production")
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Infof("gateway node=%s listening on %s (anonymous_join=%v)", cfg.NodeID, addr, cfg.AllowAnonymousJoin)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("http server: %v", err)
	}
}
