package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/pfrederiksen/classroom-emails/internal/config"
)

// rodDriver is a single browser tab reused for every classroom.
type rodDriver struct {
	browser *rod.Browser
	page    *rod.Page
}

func launchRod(ctx context.Context, cfg config.BrowserConfig) (driver, error) {
	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Leakless(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("no-first-run").
		Set("no-default-browser-check")

	// A persistent profile keeps the Google login between runs.
	if cfg.UserDataDir != "" {
		dir, err := config.ExpandHome(cfg.UserDataDir)
		if err != nil {
			return nil, err
		}
		l = l.UserDataDir(dir)
	}
	if cfg.ProfileDirectory != "" {
		l = l.Set("profile-directory", cfg.ProfileDirectory)
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	} else if path, found := launcher.LookPath(); found {
		l = l.Bin(path)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("opening page: %w", err)
	}

	return &rodDriver{browser: browser, page: page}, nil
}

func (r *rodDriver) Navigate(url string) error {
	if err := r.page.Navigate(url); err != nil {
		return err
	}
	return r.page.WaitLoad()
}

func (r *rodDriver) ScrollHeight() (int, error) {
	res, err := r.page.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (r *rodDriver) ScrollToBottom() error {
	_, err := r.page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

func (r *rodDriver) Texts(selector string) ([]string, error) {
	elements, err := r.page.Elements(selector)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(elements))
	for _, el := range elements {
		text, err := el.Text()
		if err != nil {
			return nil, err
		}
		texts = append(texts, strings.TrimSpace(text))
	}
	return texts, nil
}

func (r *rodDriver) Close() error {
	return r.browser.Close()
}
