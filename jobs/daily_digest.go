package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/9pavankumar/dailyGMPalert/services"
	"github.com/9pavankumar/dailyGMPalert/shared"
)

// DailyDigestJob runs the full fetch → normalize → rank → format →
// deliver flow once. Scheduling lives in main; the job itself is a
// single pass with no state between runs.
type DailyDigestJob struct {
	Fetcher   *services.PageFetcher
	Pipeline  *services.Pipeline
	Notifier  *services.TelegramNotifier
	SourceURL string
}

func NewDailyDigestJob(fetcher *services.PageFetcher, pipeline *services.Pipeline, notifier *services.TelegramNotifier, sourceURL string) *DailyDigestJob {
	return &DailyDigestJob{
		Fetcher:   fetcher,
		Pipeline:  pipeline,
		Notifier:  notifier,
		SourceURL: sourceURL,
	}
}

// Run executes one digest cycle. Pipeline failures are delivered as a
// self-describing failure report so the chat still hears about broken
// runs; delivery failures are logged and surfaced, never retried.
func (j *DailyDigestJob) Run() error {
	logrus.Info("Starting daily GMP digest job")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	message, err := j.buildMessage(ctx)
	if err != nil {
		var serviceErr *shared.ServiceError
		if errors.As(err, &serviceErr) {
			serviceErr.LogError()
		} else {
			logrus.WithError(err).Error("Digest pipeline failed")
		}
		message = fmt.Sprintf("❌ IPO Update Failed:\n%v", err)
	}

	if sendErr := j.Notifier.Send(ctx, message); sendErr != nil {
		logrus.WithError(sendErr).Error("Failed to deliver digest message")
		if err != nil {
			return err
		}
		return sendErr
	}

	logrus.Info("Completed daily GMP digest job")
	return err
}

// buildMessage fetches the page and reduces it to the digest text.
func (j *DailyDigestJob) buildMessage(ctx context.Context) (string, error) {
	rawHTML, err := j.Fetcher.FetchPage(ctx, j.SourceURL)
	if err != nil {
		return "", err
	}

	outcome, err := j.Pipeline.Run(rawHTML, time.Now())
	if err != nil {
		return "", err
	}
	if outcome.Kind == services.OutcomeNoData {
		return fmt.Sprintf("📢 IPO Updates - %s\n\nNo IPO data published today.\n",
			time.Now().Format("02-01-06")), nil
	}
	return outcome.Message, nil
}
