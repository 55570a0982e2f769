package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/9pavankumar/dailyGMPalert/jobs"
	"github.com/9pavankumar/dailyGMPalert/services"
)

// DigestHandler exposes the operational surface of the digest service:
// health, a delivery-free preview and a manual trigger. The pipeline
// itself serves no HTTP; this shell only calls into it.
type DigestHandler struct {
	Fetcher   *services.PageFetcher
	Pipeline  *services.Pipeline
	Job       *jobs.DailyDigestJob
	SourceURL string
}

func NewDigestHandler(fetcher *services.PageFetcher, pipeline *services.Pipeline, job *jobs.DailyDigestJob, sourceURL string) *DigestHandler {
	return &DigestHandler{
		Fetcher:   fetcher,
		Pipeline:  pipeline,
		Job:       job,
		SourceURL: sourceURL,
	}
}

// GetHealth reports service liveness.
func (h *DigestHandler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"status":  "ok",
		"time":    time.Now().UTC(),
	})
}

// PreviewDigest runs the pipeline and returns the digest text without
// delivering it anywhere.
func (h *DigestHandler) PreviewDigest(c *fiber.Ctx) error {
	rawHTML, err := h.Fetcher.FetchPage(c.Context(), h.SourceURL)
	if err != nil {
		logrus.WithError(err).Error("Preview fetch failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch source page",
		})
	}

	outcome, err := h.Pipeline.Run(rawHTML, time.Now())
	if err != nil {
		logrus.WithError(err).Error("Preview pipeline failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Pipeline failed to normalize the page",
		})
	}

	if outcome.Kind == services.OutcomeNoData {
		return c.JSON(fiber.Map{
			"success": true,
			"no_data": true,
			"message": "No usable IPO table found on the page",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"no_data": false,
		"message": outcome.Message,
		"digest":  outcome.Digest,
	})
}

// TriggerRun runs the full digest job, including delivery.
func (h *DigestHandler) TriggerRun(c *fiber.Ctx) error {
	if err := h.Job.Run(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Digest run completed and delivered",
	})
}
