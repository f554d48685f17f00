package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/pkg/logger"
)

func sampleTable() *contracts.ScoredTable {
	return &contracts.ScoredTable{
		Records: []contracts.ScoredRecord{
			{
				FundamentalRecord: contracts.FundamentalRecord{
					Ticker:           "A",
					Name:             null.StringFrom("Alpha"),
					Sector:           null.StringFrom("Energy"),
					Price:            null.FloatFrom(12.345),
					PE:               null.FloatFrom(8),
					ROE:              null.FloatFrom(0.2),
					DividendYieldPct: null.FloatFrom(6),
					DebtToEquity:     null.FloatFrom(0.5),
				},
				BuySignal: true,
				TrendUp:   true,
				Oversold:  true,
				Beta:      null.FloatFrom(0.8),
				Score:     37,
			},
			{
				FundamentalRecord: contracts.FundamentalRecord{
					Ticker:           "C",
					ROE:              null.FloatFrom(0.1),
					PE:               null.FloatFrom(10),
					DividendYieldPct: null.FloatFrom(4),
					DebtToEquity:     null.FloatFrom(1),
				},
				Score: -14.0049,
			},
		},
		Excluded: []contracts.Exclusion{{Ticker: "B", Reason: contracts.FaultIncompleteFundamentals}},
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, "N/A"},
		{37.0, "37.00"},
		{12.345, "12.35"},
		{-14.0049, "-14.00"},
		{math.NaN(), "N/A"},
		{true, "Yes"},
		{false, "No"},
		{"PETR4.SA", "PETR4.SA"},
		{3, "3"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCell(tt.in), "%v", tt.in)
	}
}

func TestBlocks(t *testing.T) {
	blocks := Blocks(sampleTable())
	require.Len(t, blocks, 2)

	assert.Equal(t, "A – Score: 37.00", blocks[0].Header)
	assert.Equal(t, []string{
		"Name: Alpha",
		"Sector: Energy",
		"Price: 12.35",
		"P/E: 8.00",
		"ROE: 0.20",
		"Dividend Yield (%): 6.00",
		"Debt/Equity: 0.50",
		"Market Cap (B): N/A",
		"Trend Up: Yes",
		"Oversold: Yes",
		"Buy Signal: Yes",
		"Beta: 0.80",
		"Avg Volume: N/A",
	}, blocks[0].Lines)

	assert.Equal(t, "C – Score: -14.00", blocks[1].Header)
	assert.Empty(t, Blocks(&contracts.ScoredTable{}))
	assert.Empty(t, Blocks(nil))
}

func TestPDFRenderer(t *testing.T) {
	r := NewPDFRenderer("Relatório de Oportunidades – B3", logger.Nop())
	r.compress = false
	r.now = func() time.Time { return time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC) }

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, sampleTable()))

	out := buf.String()
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, out, "Score: 37.00")
	assert.Contains(t, out, "Dividend Yield \\(%\\): 6.00")
}

func TestPDFRenderer_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	r := NewPDFRenderer("Empty", logger.Nop())

	require.NoError(t, r.RenderFile(path, &contracts.ScoredTable{}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, r.RenderFile(filepath.Join(t.TempDir(), "missing", "x.pdf"), sampleTable()))
}

func TestConsoleRenderer(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleRenderer(&buf)

	c.Title("Ranking")
	c.Scored(sampleTable(), 0)
	out := buf.String()
	assert.Contains(t, out, "Ranking")
	assert.Contains(t, out, "Buy Signal")
	assert.Contains(t, out, "37.00")
	assert.Contains(t, out, "-14.00")
	assert.Contains(t, out, "Excluded: B (incomplete_fundamentals)")

	buf.Reset()
	c.Scored(sampleTable(), 1)
	assert.NotContains(t, buf.String(), "-14.00")

	buf.Reset()
	c.Sectors([]contracts.SectorStats{{Sector: "Energy", AvgROE: null.FloatFrom(0.25), Count: 2}})
	assert.Contains(t, buf.String(), "Energy")
	assert.Contains(t, buf.String(), "0.25")

	buf.Reset()
	c.Sentiment(nil)
	assert.Contains(t, buf.String(), "No headlines classified.")

	buf.Reset()
	c.Screen([]contracts.FundamentalRecord{{Ticker: "PETR4.SA", ROE: null.FloatFrom(0.29)}})
	assert.Contains(t, buf.String(), "PETR4.SA")
}
