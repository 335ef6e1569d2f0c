package services

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/despensaapp/nfce-api/internal/config"
	"github.com/sirupsen/logrus"
)

// BrowserService creates isolated chromedp sessions. Fiscal portals frequently
// keep session state server-side, so a session is never shared between
// resolutions: every NewSession call spawns its own allocator and browser
// context, and Close tears both down.
type BrowserService struct {
	config config.BrowserConfig
	logger *logrus.Logger
}

// NewBrowserService creates a new browser service
func NewBrowserService(cfg config.BrowserConfig, logger *logrus.Logger) BrowserServiceInterface {
	return &BrowserService{
		config: cfg,
		logger: logger,
	}
}

// NewSession starts a fresh rendering session and verifies the browser is
// actually reachable before handing it out.
func (s *BrowserService) NewSession(ctx context.Context) (BrowserSession, error) {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.WindowSize(s.config.ViewportWidth, s.config.ViewportHeight),
		chromedp.UserAgent(s.config.UserAgent),
	}
	if s.config.Headless {
		opts = append(opts, chromedp.Headless)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	session := &chromeSession{
		id:     fmt.Sprintf("session-%d", time.Now().UnixNano()),
		ctx:    browserCtx,
		settle: s.config.SettleDelay,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
	}

	probeCtx, probeCancel := context.WithTimeout(browserCtx, 15*time.Second)
	defer probeCancel()
	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to start rendering session: %w", err)
	}

	s.logger.WithField("session_id", session.id).Debug("Rendering session started")
	return session, nil
}

// Health returns browser service health status
func (s *BrowserService) Health() map[string]interface{} {
	return map[string]interface{}{
		"status":   "healthy",
		"headless": s.config.Headless,
		"viewport": fmt.Sprintf("%dx%d", s.config.ViewportWidth, s.config.ViewportHeight),
	}
}

// Close releases service-level resources. Sessions own their own lifecycle,
// so there is nothing persistent to tear down here.
func (s *BrowserService) Close() error {
	return nil
}

// chromeSession implements BrowserSession on a dedicated chromedp context
type chromeSession struct {
	id     string
	ctx    context.Context
	settle time.Duration
	cancel context.CancelFunc
}

// run executes chromedp actions, carrying over the caller's deadline
func (c *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := c.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(c.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads a URL and waits for the document body
func (c *chromeSession) Navigate(ctx context.Context, url string) error {
	return c.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// WaitSettled waits the settle delay so client-side scripts can populate the DOM
func (c *chromeSession) WaitSettled(ctx context.Context) error {
	return c.run(ctx, chromedp.Sleep(c.settle))
}

// Evaluate runs a script in the page and unmarshals its result into out
func (c *chromeSession) Evaluate(ctx context.Context, script string, out interface{}) error {
	return c.run(ctx, chromedp.Evaluate(script, out))
}

// Close tears the session down
func (c *chromeSession) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}
