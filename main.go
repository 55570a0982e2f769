package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	"github.com/9pavankumar/dailyGMPalert/config"
	"github.com/9pavankumar/dailyGMPalert/handlers"
	"github.com/9pavankumar/dailyGMPalert/jobs"
	"github.com/9pavankumar/dailyGMPalert/services"
	"github.com/9pavankumar/dailyGMPalert/shared"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	cfg.ApplyLogLevel()

	// Wire services
	clientFactory := shared.NewHTTPClientFactory(cfg.FetchTimeout)
	fetcher := services.NewPageFetcher(services.FetchMode(cfg.FetchMode), cfg.FetchTimeout)
	pipeline := services.NewPipeline(cfg.Policy)
	notifier := services.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, clientFactory, 15*time.Second)

	digestJob := jobs.NewDailyDigestJob(fetcher, pipeline, notifier, cfg.SourceURL)
	digestHandler := handlers.NewDigestHandler(fetcher, pipeline, digestJob, cfg.SourceURL)

	logrus.WithFields(logrus.Fields{
		"source_url":       cfg.SourceURL,
		"fetch_mode":       cfg.FetchMode,
		"fetch_timeout":    cfg.FetchTimeout,
		"run_interval":     cfg.RunInterval,
		"relevance_window": cfg.Policy.RelevanceWindow,
		"min_size_cr":      cfg.Policy.MinSizeCr,
		"min_premium":      cfg.Policy.MinPremium,
		"partitioned":      cfg.Policy.PartitionByDate,
	}).Info("dailyGMPalert services initialized")

	// Schedule the digest: run once at startup, then on a fixed interval.
	go func() {
		if err := digestJob.Run(); err != nil {
			logrus.WithError(err).Error("Startup digest run failed")
		}

		ticker := time.NewTicker(cfg.RunInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := digestJob.Run(); err != nil {
				logrus.WithError(err).Error("Scheduled digest run failed")
			}
		}
	}()

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/healthz", digestHandler.GetHealth)

	api := app.Group("/api/v1")
	api.Get("/digest/preview", digestHandler.PreviewDigest)
	api.Post("/digest/run", digestHandler.TriggerRun)

	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
