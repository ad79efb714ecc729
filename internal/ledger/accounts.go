package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trade-journal-go/internal/models"
	"trade-journal-go/internal/repository"
)

// CreateAccountInput carries the fields for a new account.
type CreateAccountInput struct {
	Name           string
	Broker         string
	AccountType    string
	Currency       string
	InitialBalance decimal.Decimal
}

// AccountPatch amends an existing account. Nil fields are left untouched.
type AccountPatch struct {
	Name           *string
	Broker         *string
	AccountType    *string
	Currency       *string
	InitialBalance *decimal.Decimal
}

// CreateAccount opens a new capital pool with the current balance seeded
// from the initial balance.
func (s *Service) CreateAccount(ctx context.Context, ownerID string, input CreateAccountInput) (*models.Account, error) {
	if input.AccountType == "" {
		input.AccountType = models.AccountCash
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	account := &models.Account{
		ID:             uuid.NewString(),
		UserID:         ownerID,
		Name:           input.Name,
		Broker:         input.Broker,
		AccountType:    input.AccountType,
		Currency:       input.Currency,
		InitialBalance: input.InitialBalance,
		CurrentBalance: input.InitialBalance,
	}
	if err := validateAccount(account); err != nil {
		return nil, err
	}
	if err := s.repo.Accounts().Create(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("Account created",
		zap.String("account_id", account.ID),
		zap.String("name", account.Name),
	)
	return account, nil
}

// UpdateAccount amends account metadata. Editing the initial balance is a
// baseline shift, not a trade-driven reconciliation: the current balance
// moves by exactly the edit delta so trade activity stays untouched.
func (s *Service) UpdateAccount(ctx context.Context, ownerID, accountID string, patch AccountPatch) (*models.Account, error) {
	account, err := s.loadOwnedAccount(ctx, ownerID, accountID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		account.Name = *patch.Name
	}
	if patch.Broker != nil {
		account.Broker = *patch.Broker
	}
	if patch.AccountType != nil {
		account.AccountType = *patch.AccountType
	}
	if patch.Currency != nil {
		account.Currency = *patch.Currency
	}
	if patch.InitialBalance != nil {
		shift := patch.InitialBalance.Sub(account.InitialBalance)
		account.InitialBalance = *patch.InitialBalance
		account.CurrentBalance = account.CurrentBalance.Add(shift)
	}
	if err := validateAccount(account); err != nil {
		return nil, err
	}
	if err := s.repo.Accounts().Save(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("Account updated", zap.String("account_id", account.ID))
	return account, nil
}

// DeleteAccount removes the account together with its trades. The
// balance does not need reconciling on the way out; it ceases to exist
// with the account.
func (s *Service) DeleteAccount(ctx context.Context, ownerID, accountID string) error {
	account, err := s.loadOwnedAccount(ctx, ownerID, accountID)
	if err != nil {
		return err
	}

	err = s.repo.InTx(ctx, func(tx repository.Repository) error {
		if err := tx.Trades().DeleteByAccount(ctx, account.ID); err != nil {
			return err
		}
		return tx.Accounts().Delete(ctx, account.ID)
	})
	if err != nil {
		return err
	}

	s.invalidateSnapshots(ctx, account.ID)
	s.logger.Info("Account deleted", zap.String("account_id", account.ID))
	return nil
}

// GetAccount returns a single account after an ownership check.
func (s *Service) GetAccount(ctx context.Context, ownerID, accountID string) (*models.Account, error) {
	return s.loadOwnedAccount(ctx, ownerID, accountID)
}

// ListAccounts returns the owner's accounts.
func (s *Service) ListAccounts(ctx context.Context, ownerID string) ([]models.Account, error) {
	return s.repo.Accounts().ListByUser(ctx, ownerID)
}

func (s *Service) loadOwnedAccount(ctx context.Context, ownerID, accountID string) (*models.Account, error) {
	account, err := s.repo.Accounts().GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %s", ErrNotFound, accountID)
	}
	if account.UserID != ownerID {
		return nil, fmt.Errorf("%w: account %s", ErrNotOwned, accountID)
	}
	return account, nil
}

func validateAccount(a *models.Account) error {
	if a.Name == "" {
		return validationErr("account name is required")
	}
	if a.Broker == "" {
		return validationErr("broker is required")
	}
	if !models.ValidAccountType(a.AccountType) {
		return validationErr("unknown account type %q", a.AccountType)
	}
	if a.Currency == "" {
		return validationErr("currency is required")
	}
	return nil
}
