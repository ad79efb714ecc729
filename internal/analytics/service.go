package analytics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"trade-journal-go/internal/ledger"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/repository"
	"trade-journal-go/internal/snapshot"
)

// Analysis periods. A period scopes the closed-trade population by exit
// date, counted back from now; PeriodAll places no bound.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
	PeriodAll     = "all"
)

// Filter selects the closed-trade population to aggregate.
type Filter struct {
	AccountID string
	Period    string
	StartDate *time.Time
	EndDate   *time.Time
	Tags      []string
}

// Service answers read-side analytics requests. It is safe for
// concurrent use: aggregation takes no locks and mutates nothing.
type Service struct {
	repo      repository.Repository
	snapshots snapshot.Store
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo repository.Repository, snapshots snapshot.Store, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// Performance summarizes the owner's closed trades matching the filter.
// When the filter reduces to a plain (account, period) key the snapshot
// cache is consulted first and refilled on a miss; invalidation on every
// ledger mutation keeps cached entries from outliving the account state
// they were computed from.
func (s *Service) Performance(ctx context.Context, ownerID string, f Filter) (models.PerformanceMetrics, error) {
	if err := s.checkAccountAccess(ctx, ownerID, f.AccountID); err != nil {
		return models.PerformanceMetrics{}, err
	}

	cacheable := s.snapshots != nil && f.AccountID != "" && f.Period != "" &&
		f.StartDate == nil && f.EndDate == nil && len(f.Tags) == 0
	if cacheable {
		metrics, ok, err := s.snapshots.Get(ctx, f.AccountID, f.Period)
		if err != nil {
			s.logger.Warn("Snapshot lookup failed, recomputing",
				zap.String("account_id", f.AccountID), zap.Error(err))
		} else if ok {
			return metrics, nil
		}
	}

	trades, err := s.closedTrades(ctx, ownerID, f)
	if err != nil {
		return models.PerformanceMetrics{}, err
	}
	metrics := Summarize(trades)

	if cacheable {
		if err := s.snapshots.Put(ctx, f.AccountID, f.Period, metrics); err != nil {
			s.logger.Warn("Failed to cache metrics snapshot",
				zap.String("account_id", f.AccountID), zap.Error(err))
		}
	}
	return metrics, nil
}

// Grouped partitions the owner's closed trades by the dimension and
// summarizes each bucket.
func (s *Service) Grouped(ctx context.Context, ownerID string, f Filter, dimension Dimension) (map[string]models.PerformanceMetrics, error) {
	if !ValidDimension(dimension) {
		return nil, fmt.Errorf("%w: unknown dimension %q", ledger.ErrValidation, dimension)
	}
	if err := s.checkAccountAccess(ctx, ownerID, f.AccountID); err != nil {
		return nil, err
	}
	trades, err := s.closedTrades(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}
	return GroupBy(trades, dimension), nil
}

// RefreshSnapshots recomputes and stores the (account, period) snapshots
// for every account. The cron runner calls it on a schedule to keep the
// cache warm.
func (s *Service) RefreshSnapshots(ctx context.Context, periods []string) error {
	if s.snapshots == nil {
		return nil
	}
	accounts, err := s.repo.Accounts().ListAll(ctx)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		for _, period := range periods {
			f := Filter{AccountID: account.ID, Period: period}
			trades, err := s.closedTrades(ctx, account.UserID, f)
			if err != nil {
				return err
			}
			if err := s.snapshots.Put(ctx, account.ID, period, Summarize(trades)); err != nil {
				return err
			}
		}
	}
	s.logger.Debug("Metrics snapshots refreshed",
		zap.Int("accounts", len(accounts)),
		zap.Strings("periods", periods),
	)
	return nil
}

func (s *Service) closedTrades(ctx context.Context, ownerID string, f Filter) ([]models.Trade, error) {
	filter := repository.TradeFilter{
		UserID:    ownerID,
		AccountID: f.AccountID,
		Status:    models.StatusClosed,
		Tags:      f.Tags,
		ExitFrom:  f.StartDate,
		ExitTo:    f.EndDate,
	}
	if filter.ExitFrom == nil && f.Period != "" {
		filter.ExitFrom = s.periodStart(f.Period)
	}
	return s.repo.Trades().List(ctx, filter)
}

func (s *Service) periodStart(period string) *time.Time {
	now := s.now()
	var start time.Time
	switch period {
	case PeriodDaily:
		start = now.AddDate(0, 0, -1)
	case PeriodWeekly:
		start = now.AddDate(0, 0, -7)
	case PeriodMonthly:
		start = now.AddDate(0, -1, 0)
	case PeriodYearly:
		start = now.AddDate(-1, 0, 0)
	default:
		return nil
	}
	return &start
}

// checkAccountAccess rejects requests scoped to an account the caller
// does not own before any population (or cached snapshot) is read.
func (s *Service) checkAccountAccess(ctx context.Context, ownerID, accountID string) error {
	if accountID == "" {
		return nil
	}
	account, err := s.repo.Accounts().GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: account %s", ledger.ErrNotFound, accountID)
	}
	if account.UserID != ownerID {
		return fmt.Errorf("%w: account %s", ledger.ErrNotOwned, accountID)
	}
	return nil
}
