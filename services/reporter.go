package services

import (
	"fmt"
	"io"
	"strings"

	"cluster-pricing/models"
)

// PrintRunReport formats the run outcome and the top clusters by booking rate
func PrintRunReport(w io.Writer, report *models.RunReport, top int) {
	border := strings.Repeat("═", 78)
	thin := strings.Repeat("─", 78)

	fmt.Fprintf(w, "\n╔%s╗\n", border)
	fmt.Fprintf(w, "║%s║\n", center("CLUSTER PRICING INSIGHTS", 78))
	fmt.Fprintf(w, "╚%s╝\n", border)

	fmt.Fprintf(w, "\n RUN\n%s\n", thin)
	fmt.Fprintf(w, "  Run ID            : %s\n", report.RunID)
	fmt.Fprintf(w, "  Status            : %s\n", report.Status)
	fmt.Fprintf(w, "  Stage reached     : %s\n", report.Stage)
	if report.FailedStage != "" {
		fmt.Fprintf(w, "  Failed before     : %s\n", report.FailedStage)
	}
	if report.Reason != "" {
		fmt.Fprintf(w, "  Reason            : %s\n", report.Reason)
	}
	fmt.Fprintf(w, "  Duration          : %v\n", report.Duration())

	fmt.Fprintf(w, "\n OVERVIEW\n%s\n", thin)
	fmt.Fprintf(w, "  Products          : %d\n", report.Products)
	fmt.Fprintf(w, "  Bookings          : %d\n", report.Bookings)
	fmt.Fprintf(w, "  Clusters          : %d\n", report.Clusters)
	fmt.Fprintf(w, "  Joined rows       : %d\n", report.JoinedRows)

	if len(report.Tables) > 0 {
		fmt.Fprintf(w, "\n TABLES\n%s\n", thin)
		for _, t := range report.Tables {
			status := "ok"
			if t.Error != "" {
				status = "FAILED: " + t.Error
			}
			fmt.Fprintf(w, "  %-20s %6d rows  %s\n", t.Table, t.Rows, status)
		}
	}

	if len(report.Insights) > 0 {
		n := top
		if n <= 0 || n > len(report.Insights) {
			n = len(report.Insights)
		}
		counts := make(map[string]int)
		for _, in := range report.Insights {
			counts[in.Recommendation.Category()]++
		}

		fmt.Fprintf(w, "\n RECOMMENDATIONS\n%s\n", thin)
		for _, label := range []models.Recommendation{models.HighDemand, models.ModerateDemand, models.LowDemand, models.VeryLowDemand} {
			c := counts[label.Category()]
			fmt.Fprintf(w, "  %-17s %4d  %s\n", label.Category(), c, strings.Repeat("▓", min(c, 40)))
		}

		fmt.Fprintf(w, "\n TOP %d CLUSTERS BY BOOKING RATE\n%s\n", n, thin)
		for i, in := range report.Insights[:n] {
			fmt.Fprintf(w, "  %2d. %-42s %s  %s\n", i+1, truncate(string(in.ClusterKey), 42),
				in.BookingRate, in.Recommendation.Category())
		}
	}

	fmt.Fprintf(w, "\n%s\n\n", border)
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
