package ledger

import (
	"github.com/shopspring/decimal"

	"trade-journal-go/internal/models"
)

// Derived carries the financial fields computed for a closed trade.
type Derived struct {
	PnL           decimal.Decimal
	PnLPercentage decimal.Decimal
	// RMultiple is nil when no stop-loss is set or when the computed risk
	// is not positive; a non-positive risk is not a valid denominator.
	RMultiple *decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Derive computes realized P&L, P&L percentage and R-multiple for a
// trade. The second return value is false when the trade has no exit
// price or exit date, i.e. it is still open and carries no realized
// contribution.
//
// Derive is pure: no rounding, no side effects, same inputs same outputs.
// Display rounding belongs to presentation.
func Derive(t *models.Trade) (Derived, bool) {
	if t.ExitPrice == nil || t.ExitDate == nil {
		return Derived{}, false
	}

	var diff decimal.Decimal
	if t.Direction == models.DirectionShort {
		diff = t.EntryPrice.Sub(*t.ExitPrice)
	} else {
		diff = t.ExitPrice.Sub(t.EntryPrice)
	}

	d := Derived{}
	d.PnL = diff.Mul(t.Quantity).Sub(t.Fees)

	// entryPrice and quantity are validated > 0 at creation, so the
	// denominator cannot be zero here.
	cost := t.EntryPrice.Mul(t.Quantity)
	d.PnLPercentage = d.PnL.Div(cost).Mul(hundred)

	if t.StopLoss != nil {
		var risk decimal.Decimal
		if t.Direction == models.DirectionShort {
			risk = t.StopLoss.Sub(t.EntryPrice).Mul(t.Quantity)
		} else {
			risk = t.EntryPrice.Sub(*t.StopLoss).Mul(t.Quantity)
		}
		if risk.IsPositive() {
			r := d.PnL.Div(risk)
			d.RMultiple = &r
		}
	}

	return d, true
}

// applyDerived writes the derived fields (or clears them for an open
// trade) and sets the trade's status. Status is never independently
// settable: closed iff both exit fields are present.
func applyDerived(t *models.Trade) {
	d, closed := Derive(t)
	if !closed {
		t.Status = models.StatusOpen
		t.PnL = decimal.Zero
		t.PnLPercentage = decimal.Zero
		t.RMultiple = nil
		return
	}
	t.Status = models.StatusClosed
	t.PnL = d.PnL
	t.PnLPercentage = d.PnLPercentage
	t.RMultiple = d.RMultiple
}
