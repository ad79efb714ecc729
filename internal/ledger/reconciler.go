package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trade-journal-go/internal/repository"
)

// Reconciler applies realized-P&L deltas to account balances. The ledger
// calls it exactly once per state transition, inside the same transaction
// as the triggering trade write, with delta already computed as
// newContribution - priorContribution; a zero delta is a no-op.
type Reconciler struct {
	logger *zap.Logger
}

func NewReconciler(logger *zap.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// Apply adds delta to the account's current balance through the
// repository's atomic increment. tx must be the transactional repository
// of the operation being reconciled so a failure here rolls the trade
// write back with it.
func (r *Reconciler) Apply(ctx context.Context, tx repository.Repository, accountID string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	if err := tx.Accounts().IncrementBalance(ctx, accountID, delta); err != nil {
		return fmt.Errorf("%w: account %s: %v", ErrReconciliation, accountID, err)
	}
	r.logger.Debug("Reconciled account balance",
		zap.String("account_id", accountID),
		zap.String("delta", delta.String()),
	)
	return nil
}
