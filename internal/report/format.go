// Package report renders the ranked table for people: PDF and terminal.
// Rounding happens here only; stored scores keep full precision.
package report

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/wonny/aegis-b3/internal/contracts"
)

// Missing is shown for absent values
const Missing = "N/A"

// FormatCell renders one table cell; floats are rounded to 2 decimals
func FormatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return Missing
	case float64:
		return FormatFloat(x)
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// FormatFloat rounds half away from zero to 2 decimals
func FormatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing
	}
	return decimal.NewFromFloat(f).Round(2).StringFixed(2)
}

// Block is one ticker's labeled lines
type Block struct {
	Header string
	Lines  []string
}

// Blocks lays out the table as one block per record, in table order:
// "<ticker> – Score: <score>" followed by "<column>: <value>" for the rest
func Blocks(table *contracts.ScoredTable) []Block {
	if table.Len() == 0 {
		return []Block{}
	}

	cols := table.Columns()
	blocks := make([]Block, table.Len())
	for i := range table.Records {
		cells := table.Cells(i)
		lines := make([]string, 0, len(cols)-2)
		for j := 2; j < len(cols); j++ {
			lines = append(lines, fmt.Sprintf("%s: %s", cols[j], FormatCell(cells[j])))
		}
		blocks[i] = Block{
			Header: fmt.Sprintf("%s – Score: %s", FormatCell(cells[0]), FormatCell(cells[1])),
			Lines:  lines,
		}
	}
	return blocks
}
