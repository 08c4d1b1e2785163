package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mkraev/finflow/internal/metrics"
	"github.com/mkraev/finflow/internal/models"
)

const (
	// lookbackDays is how far back completed transactions feed the
	// spending estimate.
	lookbackDays = 90

	// maxForecastDays caps the requested projection span.
	maxForecastDays = 366
)

// TransactionReader supplies the transaction history for an account.
type TransactionReader interface {
	ListCompletedTransactions(ctx context.Context, accountID int64, since time.Time) ([]models.Transaction, error)
	ListPlannedTransactions(ctx context.Context, accountID int64, until time.Time) ([]models.Transaction, error)
}

// SettingsReader supplies the forecasting settings for a workspace.
// A missing settings row must surface as ErrSettingsNotFound.
type SettingsReader interface {
	GetUserSettings(ctx context.Context, workspaceID int64) (*models.UserSettings, error)
}

// BalanceReader supplies the current balance of an account. A missing
// account must surface as ErrAccountNotFound.
type BalanceReader interface {
	GetCurrentBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
}

// Options selects the projection range. Dates are calendar days; any
// time-of-day component is discarded.
type Options struct {
	StartDate time.Time
	EndDate   time.Time
}

// Service orchestrates the forecast pipeline: resolve inputs through
// the reader interfaces, run the analyzer, calculator and assessor in
// sequence, assemble the result and memoize it. Access control is the
// caller's responsibility; the service assumes the (workspace,
// account) pair has already been authorized.
type Service struct {
	transactions TransactionReader
	settings     SettingsReader
	balances     BalanceReader
	cache        Cache
	metrics      metrics.Recorder
	analyzer     *Analyzer
	calculator   *Calculator
	assessor     *Assessor
	log          *logrus.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewService initializes the forecast service. A nil cache gets a
// fresh in-memory one; a nil recorder gets a no-op.
func NewService(transactions TransactionReader, settings SettingsReader, balances BalanceReader, cache Cache, rec metrics.Recorder, log *logrus.Logger) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return &Service{
		transactions: transactions,
		settings:     settings,
		balances:     balances,
		cache:        cache,
		metrics:      rec,
		analyzer:     NewAnalyzer(log),
		calculator:   NewCalculator(log),
		assessor:     NewAssessor(log),
		log:          log,
		now:          time.Now,
	}
}

// GetForecast returns the complete forecast for one account, either
// from cache or by running the full pipeline. Nothing is cached on a
// failure path.
func (s *Service) GetForecast(ctx context.Context, workspaceID, accountID int64, opts Options) (*models.CompleteForecast, error) {
	start := DateOnly(opts.StartDate)
	end := DateOnly(opts.EndDate)
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	if daysBetween(start, end) > maxForecastDays {
		return nil, ErrRangeTooLarge
	}

	if cached, ok := s.cache.Get(workspaceID, accountID); ok {
		s.metrics.ForecastCacheHit()
		return cached, nil
	}
	s.metrics.ForecastCacheMiss()

	began := time.Now()
	today := DateOnly(s.now())

	settings, err := s.settings.GetUserSettings(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("resolve settings: %w", err)
	}
	balance, err := s.balances.GetCurrentBalance(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve balance: %w", err)
	}
	completed, err := s.transactions.ListCompletedTransactions(ctx, accountID, today.AddDate(0, 0, -(lookbackDays-1)))
	if err != nil {
		return nil, fmt.Errorf("list completed transactions: %w", err)
	}
	planned, err := s.transactions.ListPlannedTransactions(ctx, accountID, end)
	if err != nil {
		return nil, fmt.Errorf("list planned transactions: %w", err)
	}

	estimate := s.analyzer.Estimate(completed, today.AddDate(0, 0, -(lookbackDays-1)), today)
	days := s.calculator.Project(balance, start, end, planned, estimate, today)
	risks := s.assessor.Assess(days, planned, *settings, today)

	result := &models.CompleteForecast{
		WorkspaceID:    workspaceID,
		AccountID:      accountID,
		CurrentBalance: balance,
		Days:           days,
		Risks:          risks,
		Estimate:       estimate,
		Settings:       *settings,
		GeneratedAt:    s.now(),
	}
	s.cache.Set(workspaceID, accountID, result)
	s.metrics.ObserveForecastDuration(time.Since(began))

	s.log.Infof("Forecast computed for workspace %d account %d: %d days, %d risks",
		workspaceID, accountID, len(days), len(risks))
	return result, nil
}

// InvalidateCache drops the cached forecast for one account. Callers
// invoke it after any transaction mutation affecting the account.
func (s *Service) InvalidateCache(workspaceID, accountID int64) {
	s.cache.Invalidate(workspaceID, accountID)
}

// InvalidateWorkspaceCache drops every cached forecast in a workspace.
// Callers invoke it after a settings change.
func (s *Service) InvalidateWorkspaceCache(workspaceID int64) {
	s.cache.InvalidateWorkspace(workspaceID)
}
