// package formatter renders playlist outcomes and resolution results to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/kestrelworks/trackset/internal/models"
	"github.com/kestrelworks/trackset/internal/shared"
)

// OutcomeToCSV converts a PlaylistOutcome to CSV with one row per requested
// entry, columns: Entry, Status, Reason
func OutcomeToCSV(outcome *models.PlaylistOutcome) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Entry", "Status", "Reason"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, id := range outcome.Added {
		if err := writer.Write([]string{id, "added", ""}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	for _, skip := range outcome.Skipped {
		if err := writer.Write([]string{skip.Query, "skipped", skip.Reason}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// OutcomeToMarkdown converts a PlaylistOutcome to a Markdown report
func OutcomeToMarkdown(outcome *models.PlaylistOutcome) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", outcome.Title))
	buf.WriteString(fmt.Sprintf("**Playlist**: [%s](%s)\n", outcome.PlaylistID, outcome.PlaylistURL))
	buf.WriteString(fmt.Sprintf("**Added**: %d of %d\n\n", outcome.TotalAdded, outcome.TotalRequested))

	if len(outcome.Added) > 0 {
		buf.WriteString("## Added\n\n")
		for i, id := range outcome.Added {
			buf.WriteString(fmt.Sprintf("%d. https://music.youtube.com/watch?v=%s\n", i+1, id))
		}
		buf.WriteString("\n")
	}

	if len(outcome.Skipped) > 0 {
		buf.WriteString("## Skipped\n\n")
		for _, skip := range outcome.Skipped {
			buf.WriteString(fmt.Sprintf("- %s: %s\n", skip.Query, skip.Reason))
		}
	}

	return buf.Bytes(), nil
}

// OutcomeToText converts a PlaylistOutcome to plain text
func OutcomeToText(outcome *models.PlaylistOutcome) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", outcome.Title))
	buf.WriteString(fmt.Sprintf("URL: %s\n", outcome.PlaylistURL))
	buf.WriteString(fmt.Sprintf("Added: %d of %d\n", outcome.TotalAdded, outcome.TotalRequested))

	if len(outcome.Skipped) > 0 {
		buf.WriteString("\nSkipped:\n")
		for _, skip := range outcome.Skipped {
			buf.WriteString(fmt.Sprintf("  %s (%s)\n", skip.Query, skip.Reason))
		}
	}

	return buf.Bytes(), nil
}

// OutcomeToJSON generates a JSON representation of the outcome
func OutcomeToJSON(outcome *models.PlaylistOutcome) ([]byte, error) {
	return shared.MarshalJSON(outcome, true)
}

// WriteOutcomeReport renders the outcome in the given format and writes it
// to path. Supported formats: json, csv, markdown, txt.
func WriteOutcomeReport(outcome *models.PlaylistOutcome, format, path string) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case "csv":
		data, err = OutcomeToCSV(outcome)
	case "markdown", "md":
		data, err = OutcomeToMarkdown(outcome)
	case "txt", "text":
		data, err = OutcomeToText(outcome)
	case "json", "":
		data, err = OutcomeToJSON(outcome)
	default:
		return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// ResolutionsToMarkdown renders resolution results as a Markdown table of
// selections with their candidate metadata
func ResolutionsToMarkdown(results []models.ResolutionResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("| Query | Selection | Channel | Duration | Views |\n")
	buf.WriteString("|-------|-----------|---------|----------|-------|\n")

	for _, result := range results {
		if result.Selected == nil {
			buf.WriteString(fmt.Sprintf("| %s | _%s_ | | | |\n", result.Query, result.Reason))
			continue
		}
		sel := result.Selected
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			result.Query,
			sel.Title,
			sel.Channel,
			shared.FormatDuration(sel.Duration),
			formatViews(sel.ViewCount),
		))
	}

	return buf.Bytes(), nil
}

// ResolutionsToJSON generates a JSON representation of resolution results
func ResolutionsToJSON(results []models.ResolutionResult) ([]byte, error) {
	return shared.MarshalJSON(results, true)
}

// formatViews renders large view counts compactly (1.9B, 12M, 990K).
func formatViews(count int64) string {
	switch {
	case count >= 1_000_000_000:
		return strconv.FormatFloat(float64(count)/1_000_000_000, 'f', 1, 64) + "B"
	case count >= 1_000_000:
		return strconv.FormatFloat(float64(count)/1_000_000, 'f', 1, 64) + "M"
	case count >= 1_000:
		return strconv.FormatFloat(float64(count)/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.FormatInt(count, 10)
	}
}
