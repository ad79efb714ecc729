// Package analytics aggregates closed-trade populations into performance
// metrics, as a whole or grouped by a dimension. Aggregation is read-only
// and side-effect-free.
package analytics

import (
	"github.com/shopspring/decimal"

	"trade-journal-go/internal/models"
)

// Dimension selects the key a trade population is partitioned by.
type Dimension string

const (
	DimensionSymbol     Dimension = "symbol"
	DimensionDirection  Dimension = "direction"
	DimensionAssetClass Dimension = "assetClass"
	DimensionSetup      Dimension = "setup"
)

// NoSetupBucket collects trades without a setup reference when grouping
// by setup.
const NoSetupBucket = "No Setup"

var (
	hundred = decimal.NewFromInt(100)
	// profitFactorInfinite stands in for an infinite profit factor when
	// there are profits but no losses. 999 is a policy choice inherited
	// from the product, not a real ratio; consumers should treat it as
	// "effectively infinite".
	profitFactorInfinite = decimal.NewFromInt(999)
)

// ValidDimension reports whether d is a known grouping dimension.
func ValidDimension(d Dimension) bool {
	switch d {
	case DimensionSymbol, DimensionDirection, DimensionAssetClass, DimensionSetup:
		return true
	}
	return false
}

// Summarize reduces a closed-trade population to performance metrics. An
// empty population yields all-zero metrics, never NaN. A breakeven trade
// (pnl == 0) counts as a loss, not a win.
func Summarize(trades []models.Trade) models.PerformanceMetrics {
	m := models.PerformanceMetrics{
		WinRate:      decimal.Zero,
		ProfitFactor: decimal.Zero,
		GrossProfit:  decimal.Zero,
		GrossLoss:    decimal.Zero,
		NetProfit:    decimal.Zero,
		AverageWin:   decimal.Zero,
		AverageLoss:  decimal.Zero,
		LargestWin:   decimal.Zero,
		LargestLoss:  decimal.Zero,
		Expectancy:   decimal.Zero,
	}

	m.TotalTrades = len(trades)
	for _, t := range trades {
		if t.PnL.IsPositive() {
			m.WinningTrades++
			m.GrossProfit = m.GrossProfit.Add(t.PnL)
			if t.PnL.GreaterThan(m.LargestWin) {
				m.LargestWin = t.PnL
			}
		} else {
			m.LosingTrades++
			m.GrossLoss = m.GrossLoss.Add(t.PnL)
			if t.PnL.LessThan(m.LargestLoss) {
				m.LargestLoss = t.PnL
			}
		}
	}
	m.NetProfit = m.GrossProfit.Add(m.GrossLoss)

	if m.TotalTrades > 0 {
		m.WinRate = decimal.NewFromInt(int64(m.WinningTrades)).
			Div(decimal.NewFromInt(int64(m.TotalTrades))).
			Mul(hundred)
	}

	switch {
	case !m.GrossLoss.IsZero():
		m.ProfitFactor = m.GrossProfit.Div(m.GrossLoss).Abs()
	case m.GrossProfit.IsPositive():
		m.ProfitFactor = profitFactorInfinite
	}

	if m.WinningTrades > 0 {
		m.AverageWin = m.GrossProfit.Div(decimal.NewFromInt(int64(m.WinningTrades)))
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = m.GrossLoss.Div(decimal.NewFromInt(int64(m.LosingTrades)))
	}

	winFraction := m.WinRate.Div(hundred)
	m.Expectancy = winFraction.Mul(m.AverageWin).
		Add(decimal.NewFromInt(1).Sub(winFraction).Mul(m.AverageLoss))

	return m
}

// GroupBy partitions the population by the dimension's key and summarizes
// each partition independently. Grouping never changes the
// single-population formulas: each bucket's metrics equal Summarize
// applied to exactly that subset.
func GroupBy(trades []models.Trade, dimension Dimension) map[string]models.PerformanceMetrics {
	buckets := make(map[string][]models.Trade)
	for _, t := range trades {
		key := groupKey(t, dimension)
		buckets[key] = append(buckets[key], t)
	}

	grouped := make(map[string]models.PerformanceMetrics, len(buckets))
	for key, subset := range buckets {
		grouped[key] = Summarize(subset)
	}
	return grouped
}

func groupKey(t models.Trade, dimension Dimension) string {
	switch dimension {
	case DimensionDirection:
		return t.Direction
	case DimensionAssetClass:
		return t.AssetClass
	case DimensionSetup:
		if t.SetupID == nil || *t.SetupID == "" {
			return NoSetupBucket
		}
		return *t.SetupID
	default:
		return t.Symbol
	}
}
