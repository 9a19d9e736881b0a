package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"VProject/config"
	"VProject/logger"
	security "VProject/middleware/security"
	chathttp "VProject/module/chat"
	"VProject/service/chat"
	"VProject/service/cluster"
	"VProject/service/storage"
	storageredis "VProject/service/storage/redis"
)

func main() {
	defer logger.Sync()

	if err := config.Load(); err != nil {
		logger.Errorf("[main] load config: %v", err)
		os.Exit(1)
	}
	cfg := &config.Global
	config.ConfigIds()

	ctx := context.Background()

	// Stores: Postgres when configured, the in-memory twins otherwise.
	var (
		users     storage.UserDirectory
		interests storage.InterestStore
		messages  storage.MessageStore
	)
	if cfg.DatabaseURL != "" {
		if err := storage.InitPG(ctx, cfg.DatabaseURL); err != nil {
			logger.Errorf("[main] init postgres: %v", err)
			os.Exit(1)
		}
		defer storage.ClosePG()
		pool := storage.GetPG()
		users = storage.NewPGUserDirectory(pool)
		pgInterests := storage.NewPGInterestStore(pool)
		interests = pgInterests
		messages = storage.NewPGMessageStore(pool, pgInterests)
	} else {
		logger.Warnf("[main] no DATABASE_URL, running on in-memory stores")
		dir := storage.NewMemoryUserDirectory()
		memInterests := storage.NewMemoryInterestStore(dir)
		users = dir
		interests = memInterests
		messages = storage.NewMemoryMessageStore(memInterests)
	}

	// Presence mirror (optional).
	var presence *storage.Presence
	if cfg.RedisAddr != "" {
		err := storageredis.InitRedis(storageredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Errorf("[main] init redis: %v", err)
			os.Exit(1)
		}
		defer func() { _ = storageredis.CloseRedis() }()
		presence = storage.NewPresence(storageredis.GetRedis(), cfg.NodeID, cfg.PresenceTTL())
	}

	server := chat.NewServer(chat.Deps{
		Users:         users,
		Interests:     interests,
		Messages:      messages,
		Presence:      presence,
		NodeID:        cfg.NodeID,
		SendQueueSize: cfg.SendQueueSize,
		FanoutWorkers: cfg.FanoutWorkers,
	})

	// Cross-node relay (optional).
	if cfg.NatsURL != "" {
		relay, err := cluster.Connect(cluster.Config{
			Servers: []string{cfg.NatsURL},
			Node:    cfg.NodeID,
		}, server.DeliverLocal)
		if err != nil {
			logger.Errorf("[main] connect nats: %v", err)
			os.Exit(1)
		}
		defer relay.Close()
		server.SetRelay(relay)
	}

	auth := security.TokenAuth(security.Options{
		JWT:       cfg.JWTOptions(),
		Directory: users,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/ws/chat/", auth, server.HandleWS)
	r.GET("/api/messages/:user_id", auth, security.RequireAuth(),
		chathttp.HistoryHandler(messages))

	logger.Infof("[main] gateway %s listening on %s", cfg.NodeID, cfg.Addr)

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(cfg.Addr) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		logger.Errorf("[main] http server: %v", err)
		os.Exit(1)
	case sig := <-stop:
		logger.Infof("[main] signal %v, shutting down", sig)
	}
}
