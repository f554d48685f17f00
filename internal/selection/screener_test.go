package selection

import (
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"

	"github.com/wonny/aegis-b3/internal/contracts"
	"github.com/wonny/aegis-b3/internal/strategyconfig"
	"github.com/wonny/aegis-b3/pkg/logger"
)

func TestScreener_Screen(t *testing.T) {
	screener := NewScreener(strategyconfig.Default().Screening.Value, logger.Nop())

	missingDY := fund("NODY", 0.3, 5, 0, 0.5)
	missingDY.DividendYieldPct = null.Float{}

	input := []contracts.FundamentalRecord{
		fund("PASS1", 0.18, 6, 7, 0.4),
		fund("LOWROE", 0.15, 6, 7, 0.4), // strict >
		fund("HIGHPE", 0.30, 12, 7, 0.4),
		fund("LOWDY", 0.30, 6, 5, 0.4),
		fund("HIGHDE", 0.30, 6, 7, 1.0),
		missingDY,
		fund("PASS2", 0.25, 3, 9, 0.1),
		fund("PASS0", 0.25, 4, 9, 0.1),
	}

	passed := screener.Screen(input)

	got := make([]string, 0, len(passed))
	for _, f := range passed {
		got = append(got, f.Ticker)
	}
	assert.Equal(t, []string{"PASS0", "PASS2", "PASS1"}, got)
}

func TestScreener_Empty(t *testing.T) {
	passed := NewScreener(strategyconfig.Default().Screening.Value, logger.Nop()).Screen(nil)
	assert.NotNil(t, passed)
	assert.Empty(t, passed)
}
