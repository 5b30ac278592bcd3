package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-co-op/gocron"

	"github.com/cshealth/reminder-gateway/internal/config"
	gateway "github.com/cshealth/reminder-gateway/internal/gateways"
	"github.com/cshealth/reminder-gateway/internal/jobs"
	"github.com/cshealth/reminder-gateway/internal/processor"
	"github.com/cshealth/reminder-gateway/internal/repository"
	xhttp "github.com/cshealth/reminder-gateway/pkg/http"
	"github.com/cshealth/reminder-gateway/pkg/logger"
	"github.com/cshealth/reminder-gateway/pkg/pg"
	"github.com/cshealth/reminder-gateway/pkg/prom"
	"github.com/cshealth/reminder-gateway/pkg/ratelimit"
	"github.com/cshealth/reminder-gateway/pkg/redis"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// The remind-all cadence is deliberately tighter than daily: the dedup key in
// the message log makes repeated fires free, and a tight loop recovers fast
// from a gateway outage earlier in the day.
const remindAllInterval = "10m"

const ingestInboxAt = "07:00"

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	c := config.Get()

	pgDebug := c.AppEnv == "dev"
	db, err := pg.Open(pg.Config{URL: c.DatabaseURL}, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		os.Exit(1)
	}

	if err := prom.Create(hostname(), c.AppEnv, c.PromNamespace); err != nil {
		logger.Warn("failed to register metrics", "error", err)
	}

	limiter := createLimiter()

	primary := gateway.NewTextLocalClient(gateway.TextLocalConfig{
		BaseURL:  c.PrimaryGatewayBaseURL,
		APIKey:   c.PrimaryGatewayAPIKey,
		InboxID:  c.PrimaryGatewayInboxID,
		Sender:   c.PrimaryGatewaySender,
		Timeout:  c.GatewayTimeout,
		Location: c.Location(),
	}, limiter)

	var reminderSender gateway.Sender = primary
	if c.TransactionalAPIKey != "" {
		reminderSender = gateway.NewHSPClient(gateway.HSPConfig{
			BaseURL:  c.TransactionalBaseURL,
			APIKey:   c.TransactionalAPIKey,
			Username: c.TransactionalUsername,
			Sender:   c.TransactionalSender,
			Timeout:  c.GatewayTimeout,
		}, limiter)
	}

	contactRepo := repository.NewContactRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	proc := processor.New(contactRepo, messageRepo, primary, c.Location())

	remindAll := jobs.NewRemindAll(contactRepo, messageRepo, reminderSender, c.Location(), c.RemindWorkers)
	ingestInbox := jobs.NewIngestInbox(primary, proc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cron := gocron.NewScheduler(c.Location())
	cron.TagsUnique()
	// A slow remind-all pass must not overlap the next tick; two concurrent
	// passes could both clear the Seen check before either records.
	cron.SingletonModeAll()

	_, err = cron.Every(remindAllInterval).Tag("remind_all").Do(func() {
		if err := remindAll.Run(ctx); err != nil {
			logger.Error("remind-all tick failed", "error", err)
		}
	})
	if err != nil {
		logger.Error("failed to schedule remind-all", "error", err)
		os.Exit(1)
	}

	_, err = cron.Every(1).Day().At(ingestInboxAt).Tag("ingest_inbox").Do(func() {
		if err := ingestInbox.Run(ctx); err != nil {
			logger.Error("ingest-inbox tick failed", "error", err)
		}
	})
	if err != nil {
		logger.Error("failed to schedule ingest-inbox", "error", err)
		os.Exit(1)
	}

	cron.StartAsync()
	logger.Info("scheduler started", "remind_all", remindAllInterval, "ingest_inbox", ingestInboxAt)

	ops := xhttp.CreateServer()
	ops.GET("/health", xhttp.HealthHandler)
	ops.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	go func() {
		if err := ops.ListenAndServe(c.HealthListenAddr); err != nil {
			logger.Error("ops server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	cron.Stop()
	if err := ops.Shutdown(); err != nil {
		logger.Error("ops server shutdown failed", "error", err)
	}
	_ = logger.Sync()
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

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
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
