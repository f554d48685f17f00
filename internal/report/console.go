package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wonny/aegis-b3/internal/contracts"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	buyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true).
			Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4B5563"))
)

// ConsoleRenderer prints tables to a terminal
type ConsoleRenderer struct {
	out io.Writer
}

// NewConsoleRenderer creates a renderer writing to out
func NewConsoleRenderer(out io.Writer) *ConsoleRenderer {
	return &ConsoleRenderer{out: out}
}

// Title prints a styled title line
func (c *ConsoleRenderer) Title(title string) {
	fmt.Fprintln(c.out, titleStyle.Render(title))
}

// Scored prints the ranked table; buy-signal rows are highlighted
func (c *ConsoleRenderer) Scored(t *contracts.ScoredTable, topN int) {
	if t.Len() == 0 {
		fmt.Fprintln(c.out, mutedStyle.Render("No scored tickers."))
	} else {
		records := t.Top(topN)
		rows := make([][]string, len(records))
		for i := range records {
			rows[i] = formatRow(t.Cells(i))
		}

		buyCol := indexOf(t.Columns(), "Buy Signal")
		c.render(t.Columns(), rows, func(row int) lipgloss.Style {
			if buyCol >= 0 && rows[row][buyCol] == "Yes" {
				return buyStyle
			}
			return cellStyle
		})
	}

	if t != nil && len(t.Excluded) > 0 {
		parts := make([]string, len(t.Excluded))
		for i, e := range t.Excluded {
			parts[i] = fmt.Sprintf("%s (%s)", e.Ticker, e.Reason)
		}
		fmt.Fprintln(c.out, mutedStyle.Render("Excluded: "+strings.Join(parts, ", ")))
	}
}

// Sectors prints per-sector means
func (c *ConsoleRenderer) Sectors(stats []contracts.SectorStats) {
	if len(stats) == 0 {
		fmt.Fprintln(c.out, mutedStyle.Render("No sector data."))
		return
	}

	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{
			s.Sector,
			FormatCell(floatOrNil(s.AvgROE.Ptr())),
			FormatCell(floatOrNil(s.AvgPE.Ptr())),
			FormatCell(floatOrNil(s.AvgDividendYieldPct.Ptr())),
			FormatCell(floatOrNil(s.AvgDebtToEquity.Ptr())),
			fmt.Sprint(s.Count),
		}
	}
	c.render([]string{"Sector", "Avg ROE", "Avg P/E", "Avg Dividend Yield (%)", "Avg Debt/Equity", "Count"}, rows, nil)
}

// Screen prints the tickers that passed the value filters
func (c *ConsoleRenderer) Screen(records []contracts.FundamentalRecord) {
	if len(records) == 0 {
		fmt.Fprintln(c.out, mutedStyle.Render("No tickers passed the value filters."))
		return
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Ticker,
			FormatCell(stringOrNil(r.Name.Ptr())),
			FormatCell(stringOrNil(r.Sector.Ptr())),
			FormatCell(floatOrNil(r.ROE.Ptr())),
			FormatCell(floatOrNil(r.PE.Ptr())),
			FormatCell(floatOrNil(r.DividendYieldPct.Ptr())),
			FormatCell(floatOrNil(r.DebtToEquity.Ptr())),
		}
	}
	c.render([]string{"Ticker", "Name", "Sector", "ROE", "P/E", "Dividend Yield (%)", "Debt/Equity"}, rows, nil)
}

// Sentiment prints classified headlines
func (c *ConsoleRenderer) Sentiment(results []contracts.SentimentResult) {
	if len(results) == 0 {
		fmt.Fprintln(c.out, mutedStyle.Render("No headlines classified."))
		return
	}

	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{r.Ticker, r.Headline, r.Label, FormatFloat(r.Confidence)}
	}
	c.render([]string{"Ticker", "Headline", "Sentiment", "Confidence"}, rows, nil)
}

func (c *ConsoleRenderer) render(headers []string, rows [][]string, rowStyle func(row int) lipgloss.Style) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if rowStyle != nil {
				return rowStyle(row)
			}
			return cellStyle
		})

	fmt.Fprintln(c.out, t.Render())
}

func formatRow(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, v := range cells {
		out[i] = FormatCell(v)
	}
	return out
}

func indexOf(values []string, want string) int {
	for i, v := range values {
		if v == want {
			return i
		}
	}
	return -1
}

func floatOrNil(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func stringOrNil(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
