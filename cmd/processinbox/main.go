package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cshealth/reminder-gateway/internal/config"
	gateway "github.com/cshealth/reminder-gateway/internal/gateways"
	"github.com/cshealth/reminder-gateway/internal/jobs"
	"github.com/cshealth/reminder-gateway/internal/processor"
	"github.com/cshealth/reminder-gateway/internal/repository"
	"github.com/cshealth/reminder-gateway/pkg/logger"
	"github.com/cshealth/reminder-gateway/pkg/pg"
	"github.com/cshealth/reminder-gateway/pkg/ratelimit"
	"github.com/cshealth/reminder-gateway/pkg/redis"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	pgDebug := config.Get().AppEnv == "dev"
	db, err := pg.Open(pg.Config{URL: config.Get().DatabaseURL}, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		os.Exit(1)
	}

	c := config.Get()
	// Replies go back through the primary gateway: it owns the inbox the
	// conversation arrived on.
	primary := gateway.NewTextLocalClient(gateway.TextLocalConfig{
		BaseURL:  c.PrimaryGatewayBaseURL,
		APIKey:   c.PrimaryGatewayAPIKey,
		InboxID:  c.PrimaryGatewayInboxID,
		Sender:   c.PrimaryGatewaySender,
		Timeout:  c.GatewayTimeout,
		Location: c.Location(),
	}, createLimiter())

	contactRepo := repository.NewContactRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	proc := processor.New(contactRepo, messageRepo, primary, c.Location())

	job := jobs.NewIngestInbox(primary, proc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := job.Run(ctx); err != nil {
		logger.Error("process-inbox failed", "error", err)
		os.Exit(1)
	}
}

func createLimiter() *ratelimit.Limiter {
	c := config.Get()
	if c.RedisAddr == "" || c.GatewayRatePerSecond <= 0 {
		return nil
	}
	adapter, err := redis.NewRedisAdapter("default", c.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{c.RedisAddr},
		ClientName: "default",
		DB:         c.RedisDatabase,
		Username:   c.RedisUsername,
		Password:   c.RedisPassword,
	})
	if err != nil {
		logger.Warn("failed connecting to redis, sends are unthrottled", "error", err)
		return nil
	}
	return ratelimit.New(adapter, "gateway:send", c.GatewayRatePerSecond)
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
