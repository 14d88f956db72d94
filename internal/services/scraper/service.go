package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
	"github.com/balma1115/marketingplatformproject-sub003/internal/interfaces"
	"github.com/balma1115/marketingplatformproject-sub003/internal/models"
)

// ErrSessionUnavailable marks failures to obtain a browser session. These are
// infrastructure problems, not per-keyword scrape problems, and callers
// escalate them instead of recording a soft miss.
var ErrSessionUnavailable = errors.New("browser session unavailable")

const selectorWaitTimeout = 10 * time.Second

// baseScraper carries the machinery shared by the place and blog scrapers:
// session acquisition, politeness pacing, page capture, and result assembly.
type baseScraper struct {
	pool     interfaces.SessionPool
	logger   arbor.ILogger
	browser  common.BrowserConfig
	tracking common.TrackingConfig

	limiter *rate.Limiter
	rngMu   sync.Mutex
	rng     *rand.Rand
}

func newBaseScraper(pool interfaces.SessionPool, logger arbor.ILogger, config *common.Config) *baseScraper {
	tracking := config.Tracking
	if tracking.MinDelay <= 0 {
		tracking.MinDelay = 800 * time.Millisecond
	}
	if tracking.MaxDelay < tracking.MinDelay {
		tracking.MaxDelay = tracking.MinDelay
	}
	return &baseScraper{
		pool:     pool,
		logger:   logger,
		browser:  config.Browser,
		tracking: tracking,
		limiter:  rate.NewLimiter(rate.Every(tracking.MinDelay), 1),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// politeWait paces lookups: a rate-limited floor plus random jitter up to the
// configured ceiling, so request timing does not form a detectable pattern.
func (s *baseScraper) politeWait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	jitterRange := s.tracking.MaxDelay - s.tracking.MinDelay
	if jitterRange <= 0 {
		return nil
	}
	s.rngMu.Lock()
	jitter := time.Duration(s.rng.Int63n(int64(jitterRange)))
	s.rngMu.Unlock()

	select {
	case <-time.After(jitter):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fetchPage navigates a pooled session to pageURL, waits for one of the given
// result-container selectors, and returns the rendered document HTML.
func (s *baseScraper) fetchPage(ctx context.Context, pageURL string, waitSelectors []string) (string, error) {
	sessionCtx, release, err := s.pool.Acquire(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	defer release()

	navCtx, cancel := context.WithTimeout(sessionCtx, s.browser.NavigateTimeout)
	defer cancel()

	headers := network.Headers(map[string]interface{}{
		"Accept-Language": "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7",
		"Referer":         "https://m.naver.com/",
	})

	if err := chromedp.Run(navCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.Navigate(pageURL),
	); err != nil {
		return "", fmt.Errorf("navigation failed: %w", err)
	}

	matched := ""
	for _, selector := range waitSelectors {
		waitCtx, waitCancel := context.WithTimeout(navCtx, selectorWaitTimeout)
		err := chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
		waitCancel()
		if err == nil {
			matched = selector
			break
		}
		if navCtx.Err() != nil {
			return "", fmt.Errorf("navigation timed out waiting for results: %w", navCtx.Err())
		}
	}
	if matched == "" {
		return "", fmt.Errorf("results container not found (tried %s)", strings.Join(waitSelectors, ", "))
	}

	var html string
	if err := chromedp.Run(navCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to capture page: %w", err)
	}

	return html, nil
}

// track runs the full lookup flow for one keyword. Scrape-level problems
// (timeouts, missing containers, parse failures) come back as a soft result
// with Found=false and an error note; session-level problems escalate as a
// returned error.
func (s *baseScraper) track(ctx context.Context, keyword string, target models.Target, pageURL string, waitSelectors []string, parse func(html string) []models.ResultItem) (*models.RankResult, error) {
	if err := s.politeWait(ctx); err != nil {
		return nil, err
	}

	startTime := time.Now()
	html, err := s.fetchPage(ctx, pageURL, waitSelectors)
	if err != nil {
		if errors.Is(err, ErrSessionUnavailable) || ctx.Err() != nil {
			return nil, err
		}
		s.logger.Warn().
			Str("keyword", keyword).
			Str("url", pageURL).
			Err(err).
			Msg("Rank lookup failed")
		return &models.RankResult{
			Keyword:   keyword,
			Found:     false,
			CheckedAt: time.Now(),
			Error:     err.Error(),
		}, nil
	}

	items := parse(html)
	extracted := Extract(items, target, s.tracking.TopN)

	result := &models.RankResult{
		Keyword:     keyword,
		OrganicRank: extracted.OrganicRank,
		AdRank:      extracted.AdRank,
		Found:       extracted.Found,
		TopEntries:  extracted.TopEntries,
		CheckedAt:   time.Now(),
	}
	if extracted.Matched != nil {
		result.MatchedName = extracted.Matched.Name
		result.MatchedURL = extracted.Matched.URL
	}

	s.logger.Debug().
		Str("keyword", keyword).
		Str("target", target.Name).
		Bool("found", result.Found).
		Int("items", len(items)).
		Dur("duration", time.Since(startTime)).
		Msg("Rank lookup completed")

	return result, nil
}
