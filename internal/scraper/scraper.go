package scraper

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/classroom-emails/internal/logger"
	"github.com/pfrederiksen/classroom-emails/internal/roster"
)

// DefaultSelector matches the student name element on a classroom People page.
const DefaultSelector = "span.YVvGBb"

// Source yields the raw roster lines of one run.
type Source interface {
	Collect(ctx context.Context) ([]roster.RawLine, error)
}

// FileSource reads roster lines from local files, one batch per file.
// Files ending in .html or .htm are parsed as saved People pages; anything
// else is read as plain text with one entry per non-blank line.
type FileSource struct {
	Paths    []string
	Selector string
}

// NewFileSource creates a FileSource using selector for HTML files.
func NewFileSource(paths []string, selector string) *FileSource {
	if selector == "" {
		selector = DefaultSelector
	}
	return &FileSource{Paths: paths, Selector: selector}
}

// Collect reads every file in order.
func (s *FileSource) Collect(ctx context.Context) ([]roster.RawLine, error) {
	lines := make([]roster.RawLine, 0)

	for i, path := range s.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		texts, err := s.readFile(path)
		if err != nil {
			return nil, err
		}
		logger.Info("Read roster file", logger.Fields{
			"batch":    i + 1,
			"path":     path,
			"elements": len(texts),
		})

		lines = append(lines, toRawLines(i+1, texts)...)
	}

	return lines, nil
}

func (s *FileSource) readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var texts []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		texts, err = parseHTML(f, s.Selector)
	default:
		texts, err = parseText(f)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return texts, nil
}

// parseHTML returns the trimmed text of every element matching selector.
func parseHTML(r io.Reader, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	texts := make([]string, 0)
	doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(sel.Text()))
	})
	return texts, nil
}

// parseText returns every non-blank line, trimmed.
func parseText(r io.Reader) ([]string, error) {
	texts := make([]string, 0)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		texts = append(texts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return texts, nil
}

func toRawLines(batch int, texts []string) []roster.RawLine {
	lines := make([]roster.RawLine, 0, len(texts))
	for i, text := range texts {
		lines = append(lines, roster.RawLine{
			Batch: batch,
			Index: i + 1,
			Text:  strings.TrimSpace(text),
		})
	}
	return lines
}
