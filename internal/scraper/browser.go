package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/classroom-emails/internal/config"
	"github.com/pfrederiksen/classroom-emails/internal/logger"
	"github.com/pfrederiksen/classroom-emails/internal/roster"
)

// navigateRetries is how many times a failed navigation is retried.
const navigateRetries = 2

// driver is the slice of a browser tab the scraper needs.
type driver interface {
	Navigate(url string) error
	ScrollHeight() (int, error)
	ScrollToBottom() error
	Texts(selector string) ([]string, error)
	Close() error
}

// BrowserSource scrapes classroom People pages in a live browser session.
type BrowserSource struct {
	urls []string
	cfg  config.BrowserConfig

	launch func(ctx context.Context, cfg config.BrowserConfig) (driver, error)
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewBrowserSource creates a source visiting urls in order.
func NewBrowserSource(urls []string, cfg config.BrowserConfig) *BrowserSource {
	if cfg.Selector == "" {
		cfg.Selector = DefaultSelector
	}
	return &BrowserSource{
		urls:   urls,
		cfg:    cfg,
		launch: launchRod,
		sleep:  sleepContext,
	}
}

// Collect opens the browser, visits every classroom and returns the text of
// all roster elements. The first page gets LoginWait so the user can sign in
// by hand; later pages only wait ScrollPause for the page to settle.
func (s *BrowserSource) Collect(ctx context.Context) ([]roster.RawLine, error) {
	if len(s.urls) == 0 {
		return nil, fmt.Errorf("no classroom URLs configured")
	}

	logger.Info("Launching browser", logger.Fields{
		"user_data_dir": s.cfg.UserDataDir,
		"profile":       s.cfg.ProfileDirectory,
		"headless":      s.cfg.Headless,
	})
	d, err := s.launch(ctx, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	defer func() {
		logger.Info("Closing the browser", nil)
		if err := d.Close(); err != nil {
			logger.Warn("Closing browser failed", logger.Fields{"error": err.Error()})
		}
	}()

	lines := make([]roster.RawLine, 0)
	for i, url := range s.urls {
		batch := i + 1
		started := time.Now()

		texts, err := s.collectPage(ctx, d, batch, url)
		if err != nil {
			return nil, fmt.Errorf("classroom %d: %w", batch, err)
		}

		logger.RecordTiming("scrape.duration", time.Since(started))
		logger.Info("Found elements", logger.Fields{"classroom": batch, "elements": len(texts)})
		lines = append(lines, toRawLines(batch, texts)...)
	}

	logger.Info("Collected roster entries", logger.Fields{
		"entries":    len(lines),
		"classrooms": len(s.urls),
	})
	return lines, nil
}

func (s *BrowserSource) collectPage(ctx context.Context, d driver, batch int, url string) ([]string, error) {
	logger.Info("Processing classroom", logger.Fields{"classroom": batch, "url": url})

	nav := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), navigateRetries), ctx)
	err := backoff.Retry(func() error {
		return d.Navigate(url)
	}, nav)
	if err != nil {
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}

	wait := s.cfg.ScrollPause
	if batch == 1 {
		wait = s.cfg.LoginWait
		logger.Info("Waiting for manual login", logger.Fields{"wait": wait.String()})
	}
	if err := s.sleep(ctx, wait); err != nil {
		return nil, err
	}

	if _, err := s.scrollUntilStable(ctx, d); err != nil {
		return nil, err
	}

	texts, err := d.Texts(s.cfg.Selector)
	if err != nil {
		return nil, fmt.Errorf("finding elements %q: %w", s.cfg.Selector, err)
	}
	return texts, nil
}

// scrollUntilStable scrolls to the bottom until the page height stops
// changing, or MaxScrolls attempts have been made. It returns the number of
// scroll attempts.
func (s *BrowserSource) scrollUntilStable(ctx context.Context, d driver) (int, error) {
	last, err := d.ScrollHeight()
	if err != nil {
		return 0, fmt.Errorf("reading scroll height: %w", err)
	}

	for attempt := 1; attempt <= s.cfg.MaxScrolls; attempt++ {
		if err := d.ScrollToBottom(); err != nil {
			return attempt, fmt.Errorf("scrolling: %w", err)
		}
		if err := s.sleep(ctx, s.cfg.ScrollPause); err != nil {
			return attempt, err
		}

		height, err := d.ScrollHeight()
		if err != nil {
			return attempt, fmt.Errorf("reading scroll height: %w", err)
		}
		logger.Debug("Scrolled to bottom", logger.Fields{
			"attempt":     attempt,
			"height":      height,
			"last_height": last,
		})
		if height == last {
			logger.Info("No more content to load", logger.Fields{"attempts": attempt})
			return attempt, nil
		}
		last = height
	}

	logger.Warn("Scroll limit reached, page may be incomplete", logger.Fields{"max_scrolls": s.cfg.MaxScrolls})
	return s.cfg.MaxScrolls, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
