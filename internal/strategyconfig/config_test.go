package strategyconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
meta:
  strategy_id: b3_value
  version: "1.0"
  market: B3
screening:
  value:
    roe_min: 0.15
    pe_max: 12
    dividend_yield_min_pct: 5
    debt_to_equity_max: 1.0
sentiment:
  max_headlines: 5
report:
  title: "Relatório"
  top_n: 10
`

func TestLoad_RepoStrategyFile(t *testing.T) {
	path := "../../config/strategy/b3_value.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "b3_value", cfg.Meta.StrategyID)
	assert.Equal(t, 0.15, cfg.Screening.Value.ROEMin)
	assert.NotEmpty(t, yamlData)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, 12.0, cfg.Screening.Value.PEMax)
	assert.Equal(t, 5, cfg.Sentiment.MaxHeadlines)
	assert.Equal(t, 10, cfg.Report.TopN)
}

func TestParse_UnknownFieldFails(t *testing.T) {
	_, err := Parse([]byte(validYAML + "\nunknown_section: true\n"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meta: ["), 0o600))
	_, err = LoadOrDefault(path)
	assert.Error(t, err)
}

func TestHash(t *testing.T) {
	cfg := Default()

	hash, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	// 동일 설정 → 동일 해시
	hash2, _ := Hash(Default())
	assert.Equal(t, hash, hash2)

	cfg.Screening.Value.PEMax = 15
	hash3, _ := Hash(cfg)
	assert.NotEqual(t, hash, hash3)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"default is valid", func(*Config) {}, ""},
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"roe as percent", func(c *Config) { c.Screening.Value.ROEMin = 15 }, "screening.value.roe_min"},
		{"zero pe max", func(c *Config) { c.Screening.Value.PEMax = 0 }, "screening.value.pe_max"},
		{"negative dy", func(c *Config) { c.Screening.Value.DividendYieldMinPct = -1 }, "screening.value.dividend_yield_min_pct"},
		{"zero de max", func(c *Config) { c.Screening.Value.DebtToEquityMax = 0 }, "screening.value.debt_to_equity_max"},
		{"no headlines", func(c *Config) { c.Sentiment.MaxHeadlines = 0 }, "sentiment.max_headlines"},
		{"empty title", func(c *Config) { c.Report.Title = "" }, "report.title"},
		{"negative top n", func(c *Config) { c.Report.TopN = -1 }, "report.top_n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestWarn(t *testing.T) {
	cfg := Default()
	codes := func(ws []Warning) []string {
		out := make([]string, 0, len(ws))
		for _, w := range ws {
			out = append(out, w.Code)
		}
		return out
	}

	assert.Contains(t, codes(Warn(cfg)), "DE_UNIT")

	cfg.Screening.Value.PEMax = 30
	cfg.Sentiment.MaxHeadlines = 25
	ws := codes(Warn(cfg))
	assert.Contains(t, ws, "LOOSE_PE")
	assert.Contains(t, ws, "MANY_HEADLINES")
}
