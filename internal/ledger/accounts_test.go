package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccountSeedsCurrentBalance(t *testing.T) {
	f := newLedgerFixture(t)

	assert.Equal(t, "10000", f.account.InitialBalance.String())
	assert.Equal(t, "10000", f.account.CurrentBalance.String())
}

func TestInitialBalanceEditShiftsCurrentBalance(t *testing.T) {
	f := newLedgerFixture(t)

	// Close a trade worth +95 so the current balance diverges from the
	// initial balance.
	_, err := f.service.CreateTrade(context.Background(), ownerID, closedInput(f.account.ID))
	require.NoError(t, err)
	require.Equal(t, "10095", f.balance(t))

	// Shifting the baseline by +500 must shift the current balance by the
	// same amount, independent of trade activity.
	account, err := f.service.UpdateAccount(context.Background(), ownerID, f.account.ID, AccountPatch{
		InitialBalance: dp("10500"),
	})
	require.NoError(t, err)

	assert.Equal(t, "10500", account.InitialBalance.String())
	assert.Equal(t, "10595", account.CurrentBalance.String())
}

func TestUpdateAccountMetadataLeavesBalances(t *testing.T) {
	f := newLedgerFixture(t)

	name := "Swing"
	account, err := f.service.UpdateAccount(context.Background(), ownerID, f.account.ID, AccountPatch{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Swing", account.Name)
	assert.Equal(t, "10000", account.InitialBalance.String())
	assert.Equal(t, "10000", account.CurrentBalance.String())
}

func TestAccountOwnershipEnforced(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.service.GetAccount(context.Background(), "intruder", f.account.ID)
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = f.service.UpdateAccount(context.Background(), "intruder", f.account.ID, AccountPatch{})
	assert.ErrorIs(t, err, ErrNotOwned)

	err = f.service.DeleteAccount(context.Background(), "intruder", f.account.ID)
	assert.ErrorIs(t, err, ErrNotOwned)
}

func TestDeleteAccountRemovesTrades(t *testing.T) {
	f := newLedgerFixture(t)

	trade, err := f.service.CreateTrade(context.Background(), ownerID, closedInput(f.account.ID))
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteAccount(context.Background(), ownerID, f.account.ID))

	_, err = f.service.GetAccount(context.Background(), ownerID, f.account.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	gone, err := f.repo.Trades().GetByID(context.Background(), trade.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCreateAccountValidation(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.service.CreateAccount(context.Background(), ownerID, CreateAccountInput{Broker: "IBKR"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.service.CreateAccount(context.Background(), ownerID, CreateAccountInput{Name: "Main"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.service.CreateAccount(context.Background(), ownerID, CreateAccountInput{
		Name: "Main", Broker: "IBKR", AccountType: "piggybank",
	})
	assert.ErrorIs(t, err, ErrValidation)
}
