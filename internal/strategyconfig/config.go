package strategyconfig

// Config는 스크리닝 전략의 전체 설정
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Screening Screening `yaml:"screening" json:"screening"`
	Sentiment Sentiment `yaml:"sentiment" json:"sentiment"`
	Report    Report    `yaml:"report" json:"report"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Market     string `yaml:"market" json:"market"` // B3
}

// Screening 가치 필터 (Hard Cut)
type Screening struct {
	Value ValueFilter `yaml:"value" json:"value"`
}

// ValueFilter thresholds; all comparisons are strict
type ValueFilter struct {
	ROEMin              float64 `yaml:"roe_min" json:"roe_min"`                               // fraction
	PEMax               float64 `yaml:"pe_max" json:"pe_max"`                                 // 배수
	DividendYieldMinPct float64 `yaml:"dividend_yield_min_pct" json:"dividend_yield_min_pct"` // percent
	DebtToEquityMax     float64 `yaml:"debt_to_equity_max" json:"debt_to_equity_max"`
}

// Sentiment 뉴스 감성 분석
type Sentiment struct {
	MaxHeadlines int `yaml:"max_headlines" json:"max_headlines"`
}

// Report 리포트 출력
type Report struct {
	Title string `yaml:"title" json:"title"`
	TopN  int    `yaml:"top_n" json:"top_n"` // 0 = all rows
}

// Default returns the built-in B3 value strategy
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "b3_value",
			Version:    "1.0",
			Market:     "B3",
		},
		Screening: Screening{
			Value: ValueFilter{
				ROEMin:              0.15,
				PEMax:               12,
				DividendYieldMinPct: 5,
				DebtToEquityMax:     1.0,
			},
		},
		Sentiment: Sentiment{MaxHeadlines: 5},
		Report: Report{
			Title: "Relatório de Oportunidades – B3",
		},
	}
}
