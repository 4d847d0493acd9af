package scraper

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pfrederiksen/classroom-emails/internal/roster"
)

const peoplePage = `
<html>
	<body>
		<div role="list">
			<div><span class="YVvGBb">Asha Rao 20BCE10001</span></div>
			<div><span class="YVvGBb">  Bala Kumar 20BCE10002 </span></div>
			<div><span class="YVvGBb">Teacher Name</span></div>
			<div><span class="other">Not Selected 20BCE10003</span></div>
		</div>
	</body>
</html>
`

func TestParseHTML(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		selector string
		want     []string
	}{
		{
			name:     "people page",
			html:     peoplePage,
			selector: DefaultSelector,
			want:     []string{"Asha Rao 20BCE10001", "Bala Kumar 20BCE10002", "Teacher Name"},
		},
		{
			name:     "custom selector",
			html:     peoplePage,
			selector: "span.other",
			want:     []string{"Not Selected 20BCE10003"},
		},
		{
			name:     "no matches",
			html:     `<html><body><p>No students</p></body></html>`,
			selector: DefaultSelector,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHTML(strings.NewReader(tt.html), tt.selector)
			if err != nil {
				t.Fatalf("parseHTML() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseHTML() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseText(t *testing.T) {
	got, err := parseText(strings.NewReader("Asha Rao 20BCE10001\n\n   \n  Bala 20BCE10002  \r\n"))
	if err != nil {
		t.Fatalf("parseText() error: %v", err)
	}
	want := []string{"Asha Rao 20BCE10001", "Bala 20BCE10002"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseText() = %q, want %q", got, want)
	}
}

func TestFileSource_Collect(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "classroom1.html")
	textPath := filepath.Join(dir, "classroom2.txt")
	if err := os.WriteFile(htmlPath, []byte(peoplePage), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(textPath, []byte("Chitra Das 20BCE10003\nDev 20BCE10004\n"), 0644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource([]string{htmlPath, textPath}, "")
	got, err := src.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	want := []roster.RawLine{
		{Batch: 1, Index: 1, Text: "Asha Rao 20BCE10001"},
		{Batch: 1, Index: 2, Text: "Bala Kumar 20BCE10002"},
		{Batch: 1, Index: 3, Text: "Teacher Name"},
		{Batch: 2, Index: 1, Text: "Chitra Das 20BCE10003"},
		{Batch: 2, Index: 2, Text: "Dev 20BCE10004"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Collect() = %+v, want %+v", got, want)
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource([]string{filepath.Join(t.TempDir(), "missing.txt")}, "")
	if _, err := src.Collect(context.Background()); err == nil {
		t.Error("Collect() expected error for missing file, got nil")
	}
}

func TestFileSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewFileSource([]string{"whatever.txt"}, "")
	if _, err := src.Collect(ctx); err != context.Canceled {
		t.Errorf("Collect() error = %v, want context.Canceled", err)
	}
}
