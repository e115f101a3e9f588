package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"folio/internal/report"
	"folio/internal/workflow"
)

const completionBanner = "ALL CHAPTERS DOWNLOADED!"

func renderSummary(summary workflow.Summary, colorize bool) string {
	var b strings.Builder
	b.WriteString(colorText(completionBanner, ansiGreen, colorize))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d chapters: %d clean, %d degraded, %d failed (%s)\n",
		summary.Totals.Chapters,
		summary.Totals.Clean,
		summary.Totals.Degraded,
		summary.Totals.Fatal,
		summary.Duration.Round(100*time.Millisecond),
	)
	if !summary.HasFailures() {
		b.WriteString("No chapters had issues.\n")
		return b.String()
	}
	b.WriteString(renderOutcomeTable(summary.Failed, colorize))
	b.WriteString("\n")
	return b.String()
}

func renderOutcomeTable(outcomes []report.ChapterOutcome, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Slug", "Status", "Stage", "Pages", "Failed", "Reason"})
	for _, outcome := range outcomes {
		tw.AppendRow(table.Row{
			outcome.Slug,
			colorText(outcome.Status.String(), statusColor(outcome.Status), colorize),
			outcome.Stage,
			strconv.Itoa(outcome.Pages),
			strconv.Itoa(outcome.Failed),
			reason(outcome.Err),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 6, WidthMax: 60},
	})
	return tw.Render()
}

func reason(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimSpace(err.Error())
}

func statusColor(status report.Status) string {
	switch status {
	case report.Degraded:
		return ansiYellow
	case report.Fatal:
		return ansiRed
	default:
		return ""
	}
}
