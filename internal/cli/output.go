package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/classroom-emails/internal/roster"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult summarises one run.
type OutputResult struct {
	CheckedAt    time.Time       `json:"checked_at"`
	OutputPath   string          `json:"output_path"`
	DryRun       bool            `json:"dry_run,omitempty"`
	Lines        int             `json:"lines"`
	Existing     int             `json:"existing"`
	Generated    int             `json:"generated"`
	NoMatch      int             `json:"no_match"`
	MissingField int             `json:"missing_field"`
	Duplicates   int             `json:"duplicates"`
	Total        int             `json:"total"`
	NewRecords   []roster.Record `json:"new_records"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func writeText(w io.Writer, result *OutputResult) error {
	if len(result.NewRecords) == 0 {
		fmt.Fprintln(w, "No new entries found.")
	} else {
		fmt.Fprintf(w, "New entries (%d):\n", len(result.NewRecords))
		for _, rec := range result.NewRecords {
			fmt.Fprintf(w, "  NEW: %s <%s>\n", rec.Name, rec.Email)
		}
	}

	fmt.Fprintf(w, "\nLines read: %d (no match: %d, missing fields: %d, duplicates: %d)\n",
		result.Lines, result.NoMatch, result.MissingField, result.Duplicates)

	verb := "Wrote"
	if result.DryRun {
		verb = "Would write"
	}
	fmt.Fprintf(w, "%s %d rows to %s (%d existing, %d new)\n",
		verb, result.Total, result.OutputPath, result.Existing, result.Generated)
	return nil
}
