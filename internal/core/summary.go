package core

import "github.com/shopspring/decimal"

// ReportStats are the headline cards of the report page. The money fields are
// already formatted for display; RawOmzet keeps the unformatted revenue.
type ReportStats struct {
	Omzet    string          `json:"omzet"`
	Laba     string          `json:"laba"`
	AOV      string          `json:"aov"`
	Margin   string          `json:"margin"`
	TotalTx  int             `json:"totalTx"`
	RawOmzet decimal.Decimal `json:"rawOmzet"`
}

// WeeklyBucket is revenue and profit for one weekday.
type WeeklyBucket struct {
	Day   string          `json:"day"`
	Omzet decimal.Decimal `json:"omzet"`
	Laba  decimal.Decimal `json:"laba"`
}

type TopProduct struct {
	Name string `json:"name"`
	Sold int    `json:"sold"`
	Icon string `json:"icon"`
}
