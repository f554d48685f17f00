package strategyconfig

import "fmt"

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Screening ===
	v := cfg.Screening.Value
	if v.ROEMin <= -1 || v.ROEMin >= 1 {
		return ValidationError{"screening.value.roe_min", "must be a fraction in (-1, 1)"}
	}
	if v.PEMax <= 0 {
		return ValidationError{"screening.value.pe_max", "must be > 0"}
	}
	if v.DividendYieldMinPct < 0 || v.DividendYieldMinPct > 100 {
		return ValidationError{"screening.value.dividend_yield_min_pct", "must be in [0, 100]"}
	}
	if v.DebtToEquityMax <= 0 {
		return ValidationError{"screening.value.debt_to_equity_max", "must be > 0"}
	}

	// === Sentiment ===
	if cfg.Sentiment.MaxHeadlines < 1 || cfg.Sentiment.MaxHeadlines > 50 {
		return ValidationError{"sentiment.max_headlines", "must be in [1, 50]"}
	}

	// === Report ===
	if cfg.Report.Title == "" {
		return ValidationError{"report.title", "required"}
	}
	if cfg.Report.TopN < 0 {
		return ValidationError{"report.top_n", "must be >= 0"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// P/L 상한이 너무 느슨함
	if cfg.Screening.Value.PEMax > 25 {
		warnings = append(warnings, Warning{
			Code:    "LOOSE_PE",
			Message: "pe_max > 25: value screen barely filters",
		})
	}

	// 부채비율 지표는 Yahoo에서 퍼센트 단위로 올 수 있음
	if cfg.Screening.Value.DebtToEquityMax < 5 {
		warnings = append(warnings, Warning{
			Code:    "DE_UNIT",
			Message: "debt_to_equity_max < 5: Yahoo reports debtToEquity in percent points for most B3 tickers",
		})
	}

	if cfg.Sentiment.MaxHeadlines > 20 {
		warnings = append(warnings, Warning{
			Code:    "MANY_HEADLINES",
			Message: "max_headlines > 20: model calls grow linearly per ticker",
		})
	}

	return warnings
}
