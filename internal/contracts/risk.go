package contracts

import "github.com/guregu/null/v6"

// GovernanceFlag is the tri-state governance indicator
type GovernanceFlag string

const (
	GovernanceYes     GovernanceFlag = "Yes"
	GovernanceNo      GovernanceFlag = "No"
	GovernanceUnknown GovernanceFlag = "Unknown"
)

// RiskRecord is the Risk Evaluator output for one ticker
type RiskRecord struct {
	Ticker     string         `json:"ticker"`
	Liquidity  null.Float     `json:"liquidity"` // average daily volume
	Beta       null.Float     `json:"beta"`
	Governance GovernanceFlag `json:"governance"`
}

// UnknownRisk returns the degraded record used when the snapshot fetch failed
func UnknownRisk(ticker string) RiskRecord {
	return RiskRecord{Ticker: ticker, Governance: GovernanceUnknown}
}
