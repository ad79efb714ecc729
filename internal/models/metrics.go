package models

import "github.com/shopspring/decimal"

// PerformanceMetrics is an aggregate over a closed-trade population. It
// is derived and disposable: cached copies can always be recomputed from
// the trades themselves.
type PerformanceMetrics struct {
	TotalTrades   int `json:"totalTrades"`
	WinningTrades int `json:"winningTrades"`
	LosingTrades  int `json:"losingTrades"`

	WinRate      decimal.Decimal `json:"winRate"`
	ProfitFactor decimal.Decimal `json:"profitFactor"`

	GrossProfit decimal.Decimal `json:"grossProfit"`
	GrossLoss   decimal.Decimal `json:"grossLoss"`
	NetProfit   decimal.Decimal `json:"netProfit"`

	AverageWin  decimal.Decimal `json:"averageWin"`
	AverageLoss decimal.Decimal `json:"averageLoss"`
	LargestWin  decimal.Decimal `json:"largestWin"`
	LargestLoss decimal.Decimal `json:"largestLoss"`

	Expectancy decimal.Decimal `json:"expectancy"`
}
