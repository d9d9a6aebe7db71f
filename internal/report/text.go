// Package report renders analysis results for humans and writes JSON exports.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/moolen/casa/internal/analysis"
	"github.com/moolen/casa/internal/period"
	"github.com/moolen/casa/internal/service"
)

// TextRenderer writes results as styled tables
type TextRenderer struct {
	w      io.Writer
	styles styles
}

// NewTextRenderer creates a renderer writing to w. Colors are emitted only when color
// is true; callers usually pass IsTerminal(os.Stdout).
func NewTextRenderer(w io.Writer, color bool) *TextRenderer {
	return &TextRenderer{w: w, styles: newStyles(color)}
}

// Period renders the three funnel steps of one period
func (r *TextRenderer) Period(res *analysis.PeriodResult) error {
	label := res.Period
	if p, err := period.Parse(res.Period); err == nil {
		label = p.DisplayName()
	}
	s := res.Summary

	var b strings.Builder
	b.WriteString(r.styles.title.Render("INAD analysis "+label) + "\n")
	b.WriteString(r.styles.muted.Render(fmt.Sprintf(
		"threshold %s (%s) | %d included cases | %d excluded",
		formatFloat(s.Threshold), s.Method, res.Quality.IncludedCases, res.Quality.ExcludedCases)) + "\n\n")

	b.WriteString(r.styles.section.Render(fmt.Sprintf("Step 1: airlines with >= %d cases", res.Config.MinInad)) + "\n")
	airlineRows := make([][]string, 0, len(res.Airlines))
	for _, a := range res.Airlines {
		airlineRows = append(airlineRows, []string{a.Airline, strconv.Itoa(a.InadCount)})
	}
	b.WriteString(r.table([]string{"AIRLINE", "CASES"}, airlineRows, -1) + "\n\n")

	b.WriteString(r.styles.section.Render("Step 2: routes of those airlines") + "\n")
	routeRows := make([][]string, 0, len(res.Routes))
	for _, rt := range res.Routes {
		routeRows = append(routeRows, []string{rt.Airline, rt.Origin, strconv.Itoa(rt.InadCount)})
	}
	b.WriteString(r.table([]string{"AIRLINE", "ORIGIN", "CASES"}, routeRows, -1) + "\n\n")

	b.WriteString(r.styles.section.Render("Step 3: density and classification") + "\n")
	metricRows := make([][]string, 0, len(res.Metrics))
	for _, m := range res.Metrics {
		metricRows = append(metricRows, []string{
			m.Airline, m.Origin, strconv.Itoa(m.InadCount), strconv.FormatInt(m.Pax, 10),
			formatDensity(m.Density), strconv.Itoa(m.Confidence), r.styles.renderPriority(m.Priority),
		})
	}
	b.WriteString(r.table([]string{"AIRLINE", "ORIGIN", "CASES", "PAX", "DENSITY", "CONF", "PRIORITY"}, metricRows, 6) + "\n\n")

	b.WriteString(fmt.Sprintf("%s %d  %s %d  %s %d  %s %d  %s %d\n",
		r.styles.renderPriority(analysis.PriorityHigh), s.HighPriority,
		r.styles.renderPriority(analysis.PriorityWatchList), s.WatchList,
		r.styles.renderPriority(analysis.PriorityClear), s.Clear,
		r.styles.renderPriority(analysis.PriorityUnreliable), s.Unreliable,
		r.styles.renderPriority(analysis.PriorityNoData), s.NoData))

	_, err := io.WriteString(r.w, b.String())
	return err
}

// Historic renders the period-over-period overview
func (r *TextRenderer) Historic(report *service.HistoricReport) error {
	rows := make([][]string, 0, len(report.Periods))
	for _, p := range report.Periods {
		rows = append(rows, []string{
			p.Period, strconv.Itoa(p.TotalInad), formatFloat(p.Threshold),
			strconv.Itoa(p.HighPriorityCount), strconv.Itoa(p.WatchListCount),
		})
	}

	var b strings.Builder
	b.WriteString(r.styles.title.Render("Historic overview") + "\n")
	b.WriteString(r.table([]string{"PERIOD", "CASES", "THRESHOLD", "HIGH", "WATCH"}, rows, -1) + "\n")
	b.WriteString(fmt.Sprintf("trend: %s (high %+d, watch %+d)\n",
		report.Trend.Direction, report.Trend.HighPriorityChange, report.Trend.WatchListChange))

	_, err := io.WriteString(r.w, b.String())
	return err
}

// Systemic renders routes flagged in several periods
func (r *TextRenderer) Systemic(report *service.SystemicReport) error {
	rows := make([][]string, 0, len(report.Cases))
	for _, c := range report.Cases {
		history := make([]string, 0, len(c.History))
		for _, h := range c.History {
			history = append(history, h.Period+":"+formatDensity(h.Density))
		}
		rows = append(rows, []string{
			c.Airline, c.Origin, strconv.Itoa(c.Appearances), strconv.Itoa(c.MaxConsecutive),
			r.styles.renderTrend(c.Trend), r.styles.renderPriority(c.LatestPriority), strings.Join(history, " "),
		})
	}

	var b strings.Builder
	b.WriteString(r.styles.title.Render("Systemic cases "+strings.Join(report.Periods, ", ")) + "\n")
	if len(rows) == 0 {
		b.WriteString(r.styles.muted.Render("no route was flagged often enough") + "\n")
	} else {
		b.WriteString(r.table([]string{"AIRLINE", "ORIGIN", "SEEN", "STREAK", "TREND", "LATEST", "HISTORY"}, rows, -1) + "\n")
	}
	b.WriteString(fmt.Sprintf("%d systemic, %d worsening, %d recurring\n",
		report.Summary.Total, report.Summary.Worsening, report.Summary.Recurring))

	_, err := io.WriteString(r.w, b.String())
	return err
}

// Periods lists available periods
func (r *TextRenderer) Periods(periods []period.Period) error {
	rows := make([][]string, 0, len(periods))
	for _, p := range periods {
		rows = append(rows, []string{p.Label(), p.DisplayName(), p.Start.Format("2006-01-02"), p.End.Format("2006-01-02")})
	}
	out := r.table([]string{"PERIOD", "NAME", "START", "END"}, rows, -1) + "\n"
	_, err := io.WriteString(r.w, out)
	return err
}

// table renders rows; styledCol marks a column whose cells are already styled.
func (r *TextRenderer) table(headers []string, rows [][]string, styledCol int) string {
	if len(rows) == 0 {
		return r.styles.muted.Render("(none)")
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.styles.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return r.styles.header
			case col == styledCol:
				return lipgloss.NewStyle().PaddingRight(1)
			default:
				return r.styles.cell
			}
		}).
		String()
}

func formatDensity(d *float64) string {
	if d == nil {
		return "-"
	}
	return formatFloat(*d)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
