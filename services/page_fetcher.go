package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"

	"github.com/9pavankumar/dailyGMPalert/shared"
)

// FetchMode selects the page-retrieval strategy.
type FetchMode string

const (
	// FetchModeHTTP performs a plain HTTP GET. Sufficient when the
	// table is server-rendered.
	FetchModeHTTP FetchMode = "http"
	// FetchModeBrowser drives a headless browser and waits for the
	// table to render. The GMP page builds its table with JavaScript.
	FetchModeBrowser FetchMode = "browser"
)

// renderSettle is how long the browser fetch waits after the document
// becomes ready, letting scripts finish building the table.
const renderSettle = 5 * time.Second

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// PageFetcher retrieves the raw HTML of the GMP page. Both strategies are
// synchronous, time-bounded and unretried; retry policy belongs to the
// caller if anywhere.
type PageFetcher struct {
	mode        FetchMode
	timeout     time.Duration
	rateLimiter *shared.HTTPRequestRateLimiter
}

func NewPageFetcher(mode FetchMode, timeout time.Duration) *PageFetcher {
	if mode != FetchModeHTTP && mode != FetchModeBrowser {
		mode = FetchModeBrowser
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PageFetcher{
		mode:        mode,
		timeout:     timeout,
		rateLimiter: shared.NewHTTPRequestRateLimiter(1 * time.Second),
	}
}

// FetchPage returns the page markup, failing with a fetch-classified
// error on non-2xx status or timeout.
func (f *PageFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	f.rateLimiter.EnforceRateLimit()

	logger := logrus.WithFields(logrus.Fields{
		"component": "PageFetcher",
		"mode":      f.mode,
		"url":       url,
	})
	logger.Info("Fetching GMP page")

	start := time.Now()
	var markup string
	var err error
	if f.mode == FetchModeBrowser {
		markup, err = f.fetchRendered(ctx, url)
	} else {
		markup, err = f.fetchPlain(url)
	}
	if err != nil {
		return "", err
	}

	logger.WithFields(logrus.Fields{
		"bytes":         len(markup),
		"duration":      time.Since(start),
		"request_count": f.rateLimiter.RequestCount(),
	}).Info("Fetched GMP page")
	return markup, nil
}

// fetchPlain GETs the page through colly with browser-like headers.
func (f *PageFetcher) fetchPlain(url string) (string, error) {
	collector := colly.NewCollector()
	collector.SetRequestTimeout(f.timeout)

	collector.OnRequest(func(r *colly.Request) {
		shared.SetBrowserLikeHeaders(*r.Headers, acceptHTML)
	})

	var markup string
	collector.OnResponse(func(r *colly.Response) {
		markup = string(r.Body)
	})

	var fetchErr error
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := collector.Visit(url); err != nil {
		return "", shared.NewFetchError("fetchPlain", err)
	}
	if fetchErr != nil {
		return "", shared.NewFetchError("fetchPlain", fetchErr)
	}
	if markup == "" {
		return "", shared.NewFetchError("fetchPlain", fmt.Errorf("empty response body"))
	}
	return markup, nil
}

// fetchRendered drives headless Chrome, waits for the data table and
// captures the rendered document.
func (f *PageFetcher) fetchRendered(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-images", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(shared.BrowserUserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, f.timeout)
	defer cancelTimeout()

	// Wait on document readiness, not on the table: a tableless page is
	// a NoData outcome for the extractor to report, not a fetch failure.
	var markup string
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(1920, 1080),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(renderSettle),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	if err != nil {
		return "", shared.NewServiceError(classifyFetchFailure(err), shared.CodeRenderFailed,
			fmt.Sprintf("headless fetch failed: %v", err), "fetchRendered", true, err)
	}
	return markup, nil
}

// classifyFetchFailure separates deadline expiry from transport faults.
func classifyFetchFailure(err error) shared.ErrorCategory {
	if errors.Is(err, context.DeadlineExceeded) {
		return shared.ErrorCategoryTimeout
	}
	return shared.ErrorCategoryNetwork
}
