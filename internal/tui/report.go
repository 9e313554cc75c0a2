package tui

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/MKhiriev/go-crm-sync/models"
)

const (
	previewRows      = 5
	previewCellWidth = 32
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		})
}

// RenderReport renders the per-object counters of a pass followed by its
// batch failures and a one-line summary.
func RenderReport(r *models.Report) string {
	t := newTable("object", "to sheet", "created", "updated", "conflicts", "skipped", "new", "changed", "status")
	var failures []string

	for _, o := range r.Objects {
		c := o.Counters
		t.Row(o.Object,
			strconv.Itoa(c.RemoteToTabular),
			strconv.Itoa(c.TabularToRemoteCreated),
			strconv.Itoa(c.TabularToRemoteUpdated),
			strconv.Itoa(c.Conflicts),
			strconv.Itoa(c.Skipped),
			strconv.Itoa(o.Drift.New),
			strconv.Itoa(o.Drift.Changed),
			objectStatus(o),
		)
		for _, b := range o.Batches {
			for _, f := range b.Failures {
				failures = append(failures, fmt.Sprintf("%s %s: %d record(s) not applied: %s", o.Object, b.Op, f.Count, f.Reason))
			}
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s run %s", r.Mode, r.RunID)))
	b.WriteString("\n")
	b.WriteString(t.String())
	b.WriteString("\n")
	for _, f := range failures {
		b.WriteString(warnStyle.Render("! " + f))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(r.Summary()))
	b.WriteString("\n")
	return b.String()
}

func objectStatus(o models.ObjectResult) string {
	switch {
	case o.Err != nil:
		return errorStyle.Render("failed: " + fitText(HumanizeError(o.Err), 60))
	case o.FailedBatches() > 0:
		return warnStyle.Render(fmt.Sprintf("%d failed batch(es)", o.FailedBatches()))
	default:
		return okStyle.Render("ok")
	}
}

// RenderFeedResult renders the counters of a LinkedIn import.
func RenderFeedResult(res models.FeedResult) string {
	t := newTable("", "people", "companies")
	t.Row("created", strconv.Itoa(res.PeopleCreated), strconv.Itoa(res.CompaniesCreated))
	t.Row("updated", strconv.Itoa(res.PeopleUpdated), "-")
	t.Row("skipped", strconv.Itoa(res.PeopleSkipped), strconv.Itoa(res.CompaniesSkipped))

	title := fmt.Sprintf("linkedin import: %d connection(s)", res.ConnectionsFetched)
	if res.DryRun {
		title += " (dry run, nothing written)"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(t.String())
	b.WriteString("\n")
	for _, batch := range res.Batches {
		for _, f := range batch.Failures {
			b.WriteString(warnStyle.Render(fmt.Sprintf("! %s: %d record(s) not applied: %s", batch.Op, f.Count, f.Reason)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderPreview renders the first rows of every snapshot domain, domains in
// name order.
func RenderPreview(domains map[string][]map[string]any) string {
	var b strings.Builder
	for _, domain := range slices.Sorted(maps.Keys(domains)) {
		rows := domains[domain]
		b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d row(s))", domain, len(rows))))
		b.WriteString("\n")
		if len(rows) == 0 {
			b.WriteString(helpStyle.Render("  no data"))
			b.WriteString("\n\n")
			continue
		}

		shown := rows[:min(len(rows), previewRows)]
		keys := map[string]struct{}{}
		for _, row := range shown {
			for k := range row {
				keys[k] = struct{}{}
			}
		}
		columns := slices.Sorted(maps.Keys(keys))

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(borderStyle).
			Headers(columns...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
		for _, row := range shown {
			cells := make([]string, len(columns))
			for i, k := range columns {
				cells[i] = valueOrDash(fitText(cellText(row[k]), previewCellWidth))
			}
			t.Row(cells...)
		}
		b.WriteString(t.String())
		b.WriteString("\n")
		if more := len(rows) - len(shown); more > 0 {
			b.WriteString(helpStyle.Render(fmt.Sprintf("  ... %d more", more)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
