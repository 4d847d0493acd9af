package scraper

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/pfrederiksen/classroom-emails/internal/config"
	"github.com/pfrederiksen/classroom-emails/internal/logger"
	"github.com/pfrederiksen/classroom-emails/internal/roster"
)

// fakeDriver serves a scripted sequence of page heights and a fixed set of
// element texts per URL.
type fakeDriver struct {
	heights  []int
	texts    map[string][]string
	navFails int

	current   string
	visited   []string
	scrolls   int
	heightIdx int
	closed    bool
}

func (f *fakeDriver) Navigate(url string) error {
	if f.navFails > 0 {
		f.navFails--
		return errors.New("net::ERR_CONNECTION_RESET")
	}
	f.current = url
	f.visited = append(f.visited, url)
	f.heightIdx = 0
	return nil
}

func (f *fakeDriver) ScrollHeight() (int, error) {
	if len(f.heights) == 0 {
		return 1000, nil
	}
	i := f.heightIdx
	if i >= len(f.heights) {
		i = len(f.heights) - 1
	}
	f.heightIdx++
	return f.heights[i], nil
}

func (f *fakeDriver) ScrollToBottom() error {
	f.scrolls++
	return nil
}

func (f *fakeDriver) Texts(selector string) ([]string, error) {
	return f.texts[f.current], nil
}

func (f *fakeDriver) Close() error {
	f.closed = true
	return nil
}

func newTestSource(urls []string, d *fakeDriver, cfg config.BrowserConfig) (*BrowserSource, *[]time.Duration) {
	var slept []time.Duration
	s := NewBrowserSource(urls, cfg)
	s.launch = func(context.Context, config.BrowserConfig) (driver, error) { return d, nil }
	s.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return s, &slept
}

func testBrowserConfig() config.BrowserConfig {
	return config.BrowserConfig{
		Selector:    DefaultSelector,
		LoginWait:   60 * time.Second,
		ScrollPause: 2 * time.Second,
		MaxScrolls:  10,
	}
}

func TestBrowserSource_Collect(t *testing.T) {
	d := &fakeDriver{
		texts: map[string][]string{
			"https://classroom.test/a": {"Asha Rao 20BCE10001", " Bala 20BCE10002 "},
			"https://classroom.test/b": {"Chitra Das 20BCE10003"},
		},
	}
	s, slept := newTestSource([]string{"https://classroom.test/a", "https://classroom.test/b"}, d, testBrowserConfig())
	logger.DefaultMetrics().Reset()

	got, err := s.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	want := []roster.RawLine{
		{Batch: 1, Index: 1, Text: "Asha Rao 20BCE10001"},
		{Batch: 1, Index: 2, Text: "Bala 20BCE10002"},
		{Batch: 2, Index: 1, Text: "Chitra Das 20BCE10003"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Collect() = %+v, want %+v", got, want)
	}
	if !d.closed {
		t.Error("browser not closed")
	}
	// First page waits for login, the second only for the page to settle.
	if (*slept)[0] != 60*time.Second {
		t.Errorf("first wait = %v, want login wait", (*slept)[0])
	}
	if len(d.visited) != 2 {
		t.Errorf("visited = %v, want 2 pages", d.visited)
	}
	if _, ok := logger.DefaultMetrics().Fields()["scrape.duration"]; !ok {
		t.Error("scrape.duration not recorded in run metrics")
	}
}

func TestBrowserSource_NoURLs(t *testing.T) {
	s, _ := newTestSource(nil, &fakeDriver{}, testBrowserConfig())
	if _, err := s.Collect(context.Background()); err == nil {
		t.Error("Collect() expected error with no URLs, got nil")
	}
}

func TestBrowserSource_RetriesNavigation(t *testing.T) {
	d := &fakeDriver{navFails: 1, texts: map[string][]string{"https://classroom.test/a": {"Asha 20BCE10001"}}}
	s, _ := newTestSource([]string{"https://classroom.test/a"}, d, testBrowserConfig())

	got, err := s.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Collect() returned %d lines, want 1", len(got))
	}
}

func TestBrowserSource_LaunchFailure(t *testing.T) {
	s := NewBrowserSource([]string{"https://classroom.test/a"}, testBrowserConfig())
	s.launch = func(context.Context, config.BrowserConfig) (driver, error) {
		return nil, errors.New("chrome not found")
	}
	if _, err := s.Collect(context.Background()); err == nil {
		t.Error("Collect() expected launch error, got nil")
	}
}

func TestScrollUntilStable(t *testing.T) {
	tests := []struct {
		name         string
		heights      []int
		maxScrolls   int
		wantAttempts int
	}{
		{
			name:         "already stable",
			heights:      []int{800, 800},
			maxScrolls:   10,
			wantAttempts: 1,
		},
		{
			name:         "grows twice then stops",
			heights:      []int{800, 1600, 2400, 2400},
			maxScrolls:   10,
			wantAttempts: 3,
		},
		{
			name:         "bounded by max scrolls",
			heights:      []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			maxScrolls:   3,
			wantAttempts: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testBrowserConfig()
			cfg.MaxScrolls = tt.maxScrolls
			d := &fakeDriver{heights: tt.heights}
			s, _ := newTestSource([]string{"u"}, d, cfg)

			got, err := s.scrollUntilStable(context.Background(), d)
			if err != nil {
				t.Fatalf("scrollUntilStable() error: %v", err)
			}
			if got != tt.wantAttempts {
				t.Errorf("scrollUntilStable() = %d, want %d", got, tt.wantAttempts)
			}
			if d.scrolls != tt.wantAttempts {
				t.Errorf("scrolled %d times, want %d", d.scrolls, tt.wantAttempts)
			}
		})
	}
}

func TestScrollUntilStable_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &fakeDriver{heights: []int{1, 2, 3}}
	s := NewBrowserSource([]string{"u"}, testBrowserConfig())
	if _, err := s.scrollUntilStable(ctx, d); !errors.Is(err, context.Canceled) {
		t.Errorf("scrollUntilStable() error = %v, want context.Canceled", err)
	}
}

func TestSleepContext(t *testing.T) {
	if err := sleepContext(context.Background(), 0); err != nil {
		t.Errorf("sleepContext(0) error = %v", err)
	}
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("sleepContext(1ms) error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepContext(cancelled) error = %v, want context.Canceled", err)
	}
}
