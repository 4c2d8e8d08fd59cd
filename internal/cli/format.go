package cli

import (
	"io"
	"text/tabwriter"
	"time"

	"focus-tracker/internal/services"
)

const clockFormat = "15:04"

// formatSeconds renders a seconds total as "1h 5m", "5m" or "42s"
func formatSeconds(seconds float64) string {
	return services.FormatDuration(time.Duration(seconds * float64(time.Second)).Round(time.Second))
}

func formatClock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(clockFormat)
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}
