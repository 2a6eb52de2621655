// package formatter renders job runs and dataset audits as terminal tables, CSV, or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/spotlake/internal/models"
	"github.com/desertthunder/spotlake/internal/warehouse"
)

const timeLayout = "2006-01-02 15:04:05"

var runHeaders = []string{"ID", "Seq", "Job", "Status", "Started", "Duration", "Read", "Albums", "Artists", "Songs", "Archived"}

func runRecord(run *models.JobRun) []string {
	duration := ""
	if run.CompletedAt != nil {
		duration = run.Duration().Round(time.Millisecond).String()
	}
	return []string{
		run.ID,
		strconv.Itoa(run.Sequence),
		run.JobName,
		string(run.Status),
		run.StartedAt.Local().Format(timeLayout),
		duration,
		strconv.Itoa(run.ObjectsRead),
		strconv.Itoa(run.AlbumsWritten),
		strconv.Itoa(run.ArtistsWritten),
		strconv.Itoa(run.SongsWritten),
		strconv.Itoa(run.ObjectsArchived),
	}
}

// RunsTable renders runs as a bordered table with status-colored cells.
func RunsTable(runs []*models.JobRun) string {
	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = runRecord(run)
	}

	statusCol := 3
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.border).
		Headers(runHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.header
			}
			if col == statusCol && row >= 0 && row < len(runs) {
				return styles.status(runs[row].Status)
			}
			return styles.cell
		})
	return t.String()
}

// RunsToCSV converts runs to CSV with the same columns as [RunsTable].
func RunsToCSV(runs []*models.JobRun) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(runHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, run := range runs {
		if err := writer.Write(runRecord(run)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// RunDetail renders a single run as aligned key/value lines.
func RunDetail(run *models.JobRun) string {
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("Run %s", run.ID)))
	b.WriteString("\n")

	field := func(k, v string) {
		fmt.Fprintf(&b, "%-10s %s\n", k+":", v)
	}

	field("Job", run.JobName)
	field("Sequence", strconv.Itoa(run.Sequence))
	field("Status", styles.status(run.Status).Render(string(run.Status)))
	field("Started", run.StartedAt.Local().Format(timeLayout))
	if run.CompletedAt != nil {
		field("Completed", run.CompletedAt.Local().Format(timeLayout))
		field("Duration", run.Duration().Round(time.Millisecond).String())
	}
	if run.ErrorMessage != "" {
		field("Error", styles.err.Render(run.ErrorMessage))
	}
	field("Read", strconv.Itoa(run.ObjectsRead))
	field("Albums", strconv.Itoa(run.AlbumsWritten))
	field("Artists", strconv.Itoa(run.ArtistsWritten))
	field("Songs", strconv.Itoa(run.SongsWritten))
	field("Archived", strconv.Itoa(run.ObjectsArchived))

	return b.String()
}

// AuditTable renders dataset reports. Rows with duplicate keys are highlighted.
func AuditTable(reports []warehouse.DatasetReport) string {
	rows := make([][]string, len(reports))
	for i, r := range reports {
		rows[i] = []string{
			string(r.Dataset),
			r.KeyColumn,
			strconv.Itoa(r.Files),
			FormatBytes(r.Bytes),
			strconv.FormatInt(r.Rows, 10),
			strconv.FormatInt(r.DistinctKeys, 10),
			strconv.FormatInt(r.NullKeys, 10),
			strconv.FormatInt(r.Duplicates, 10),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.border).
		Headers("Dataset", "Key", "Files", "Size", "Rows", "Distinct", "Null", "Duplicates").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.header
			}
			if col == 7 && row >= 0 && row < len(reports) && reports[row].Duplicates > 0 {
				return styles.warn
			}
			return styles.cell
		})
	return t.String()
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
