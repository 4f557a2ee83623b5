package stats

import (
	"context"
	"fmt"
	"strings"
)

const textBarWidth = 15

// textChart renders a horizontal unicode bar chart. All labels are
// padded to the same width so the bars start on one line.
func textChart(data []labelValue, title string) string {
	if len(data) == 0 {
		return "Ma'lumot yo'q"
	}

	maxVal := 0
	for _, lv := range data {
		if lv.Value > maxVal {
			maxVal = lv.Value
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n📊 %s\n%s\n\n", title, strings.Repeat("=", 40))

	for _, lv := range data {
		barLen := lv.Value * textBarWidth / maxVal
		bar := strings.Repeat("█", barLen)

		label := lv.Label
		if len(label) > 16 {
			label = label[:16]
		}
		fmt.Fprintf(&sb, "%-16s %s %4d\n", label, bar, lv.Value)
	}
	return sb.String()
}

// TextReport renders the full plain-text statistics report with one
// chart per series.
func (r *Reporter) TextReport(ctx context.Context) (string, error) {
	weekly, err := r.weekdayCounts(ctx)
	if err != nil {
		return "", err
	}
	hourly, err := r.slotPopularity(ctx, 10)
	if err != nil {
		return "", err
	}
	fields, err := r.fieldPopularity(ctx)
	if err != nil {
		return "", err
	}
	revenue, err := r.weeklyRevenue(ctx)
	if err != nil {
		return "", err
	}
	monthly, err := r.monthlyTrend(ctx)
	if err != nil {
		return "", err
	}

	divider := "\n" + strings.Repeat("─", 40) + "\n"

	report := "📊 STATISTIKA\n" + strings.Repeat("=", 40) + "\n"
	report += textChart(weekly, "Hafta Kunlari")
	report += divider
	report += textChart(hourly, "TOP 10 Vaqtlar")
	report += divider
	report += textChart(fields, "Maydonlar")
	report += divider
	report += textChart(revenue, "Haftalik (ming)")
	report += divider
	report += textChart(monthly, "6 Oylik Trend")

	return report, nil
}
