package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
)

// Pool manages a single headless Chrome process and hands out isolated tab
// contexts for concurrent tracking tasks. The browser is launched lazily on
// first acquisition; the number of live sessions is bounded by configuration
// and requests beyond the bound block until a slot frees up.
type Pool struct {
	config common.BrowserConfig
	logger arbor.ILogger

	mu            sync.Mutex
	allocatorCtx  context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	launched      bool
	shutdown      bool

	slots chan struct{}
	wg    sync.WaitGroup
}

// NewPool creates a session pool. No browser process is started until the
// first Acquire call.
func NewPool(config common.BrowserConfig, logger arbor.ILogger) *Pool {
	if config.MaxSessions <= 0 {
		config.MaxSessions = 1
	}
	if config.NavigateTimeout <= 0 {
		config.NavigateTimeout = 45 * time.Second
	}
	return &Pool{
		config: config,
		logger: logger,
		slots:  make(chan struct{}, config.MaxSessions),
	}
}

// launchBrowser starts the shared Chrome process (must hold p.mu)
func (p *Pool) launchBrowser() error {
	startTime := time.Now()

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.config.Headless),
		chromedp.Flag("disable-gpu", p.config.DisableGPU),
		chromedp.Flag("no-sandbox", p.config.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("lang", "ko-KR"),
		chromedp.UserAgent(p.config.UserAgent),
	)

	p.allocatorCtx, p.allocCancel = chromedp.NewExecAllocator(context.Background(), allocatorOpts...)
	p.browserCtx, p.browserCancel = chromedp.NewContext(p.allocatorCtx)

	// Startup probe so launch failures surface here instead of on the first
	// real navigation
	probeCtx, probeCancel := context.WithTimeout(p.browserCtx, 30*time.Second)
	defer probeCancel()
	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		p.browserCancel()
		p.allocCancel()
		p.browserCtx = nil
		p.allocatorCtx = nil
		return fmt.Errorf("browser failed startup probe: %w", err)
	}

	p.launched = true
	p.logger.Info().
		Int("max_sessions", p.config.MaxSessions).
		Str("user_agent", p.config.UserAgent).
		Bool("headless", p.config.Headless).
		Dur("startup_time", time.Since(startTime)).
		Msg("Browser process launched")

	return nil
}

// Acquire blocks until a session slot is free, then returns a fresh tab
// context drawn from the shared browser, plus an idempotent release function.
func (p *Pool) Acquire(ctx context.Context) (context.Context, func(), error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		<-p.slots
		return nil, nil, fmt.Errorf("session pool is shut down")
	}
	if !p.launched {
		if err := p.launchBrowser(); err != nil {
			p.mu.Unlock()
			<-p.slots
			return nil, nil, err
		}
	}
	browserCtx := p.browserCtx
	p.mu.Unlock()

	// Fresh tab per task: isolated page, shared process
	sessionCtx, sessionCancel := chromedp.NewContext(browserCtx)

	p.wg.Add(1)
	var releaseOnce sync.Once
	release := func() {
		releaseOnce.Do(func() {
			sessionCancel()
			<-p.slots
			p.wg.Done()
			p.logger.Debug().Msg("Browser session released")
		})
	}

	p.logger.Debug().
		Int("in_use", len(p.slots)).
		Int("max_sessions", p.config.MaxSessions).
		Msg("Browser session acquired")

	return sessionCtx, release, nil
}

// WithSession runs fn inside a scoped acquisition. The session is released on
// every exit path, including panics, so long-running services do not
// accumulate leaked contexts.
func (p *Pool) WithSession(ctx context.Context, fn func(sessionCtx context.Context) error) error {
	sessionCtx, release, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(sessionCtx)
}

// Shutdown waits for in-flight sessions to drain, forcing closure after a
// grace period. Idempotent.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		p.logger.Debug().Msg("Session pool already shut down")
		return nil
	}
	p.shutdown = true
	launched := p.launched
	p.mu.Unlock()

	if !launched {
		p.logger.Debug().Msg("Session pool shut down before browser launch")
		return nil
	}

	startTime := time.Now()
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		p.logger.Warn().Msg("Session pool drain timed out, forcing browser shutdown")
	}

	p.mu.Lock()
	if p.browserCancel != nil {
		p.browserCancel()
	}
	if p.allocCancel != nil {
		p.allocCancel()
	}
	p.launched = false
	p.mu.Unlock()

	p.logger.Info().
		Dur("shutdown_time", time.Since(startTime)).
		Msg("Browser session pool shut down")

	return nil
}

// InUse returns the number of sessions currently held
func (p *Pool) InUse() int {
	return len(p.slots)
}
