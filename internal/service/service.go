package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkraev/finflow/internal/config"
	"github.com/mkraev/finflow/internal/forecast"
	"github.com/mkraev/finflow/internal/middleware"
	"github.com/mkraev/finflow/internal/models"
	"github.com/mkraev/finflow/internal/repository"
)

// ErrForbidden is returned when the requester is not a member of the
// workspace or the account belongs to another workspace.
var ErrForbidden = errors.New("access denied")

// Service handles business logic
type Service struct {
	repo      *repository.Repository
	forecasts *forecast.Service
	log       *logrus.Logger
	config    *config.Config
}

// NewService initializes a new service
func NewService(repo *repository.Repository, forecasts *forecast.Service, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{repo: repo, forecasts: forecasts, log: log, config: cfg}
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// CreateWorkspace creates a workspace owned by the authenticated user
func (s *Service) CreateWorkspace(ctx context.Context, name string) (*models.Workspace, error) {
	userID, err := middleware.UserID(ctx)
	if err != nil {
		return nil, err
	}

	ws := &models.Workspace{Name: name, OwnerID: userID}
	if err := s.repo.CreateWorkspace(ctx, ws); err != nil {
		return nil, err
	}

	s.log.Infof("Workspace created for user %d: %s", userID, ws.Name)
	return ws, nil
}

// CreateAccount creates a new account inside a workspace
func (s *Service) CreateAccount(ctx context.Context, workspaceID int64, name, currency string) (*models.Account, error) {
	if err := s.authorizeWorkspace(ctx, workspaceID); err != nil {
		return nil, err
	}

	account := &models.Account{
		WorkspaceID: workspaceID,
		Name:        name,
		Balance:     decimal.Zero,
		Currency:    currency,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	s.log.Infof("Account created in workspace %d: %s", workspaceID, account.Name)
	return account, nil
}

// TransactionInput carries the mutable fields of a transaction
type TransactionInput struct {
	Amount      decimal.Decimal
	Currency    string
	Status      string
	Date        time.Time
	PlannedDate *time.Time
	Description string
}

func (in *TransactionInput) validate() error {
	switch in.Status {
	case models.StatusCompleted:
		if in.Date.IsZero() {
			return fmt.Errorf("completed transaction requires a transaction date")
		}
	case models.StatusPlanned:
		if in.PlannedDate == nil {
			return fmt.Errorf("planned transaction requires a planned date")
		}
	default:
		return fmt.Errorf("unknown transaction status %q", in.Status)
	}
	return nil
}

// CreateTransaction records a transaction and invalidates the cached
// forecast for the account
func (s *Service) CreateTransaction(ctx context.Context, workspaceID, accountID int64, in TransactionInput) (*models.Transaction, error) {
	account, err := s.authorizeAccount(ctx, workspaceID, accountID)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Currency != "" && in.Currency != account.Currency {
		return nil, fmt.Errorf("transaction currency %s does not match account currency %s", in.Currency, account.Currency)
	}

	t := &models.Transaction{
		AccountID:       accountID,
		Amount:          in.Amount,
		Currency:        account.Currency,
		Status:          in.Status,
		TransactionDate: in.Date,
		PlannedDate:     in.PlannedDate,
		Description:     in.Description,
	}
	if err := s.repo.CreateTransaction(ctx, t); err != nil {
		return nil, err
	}

	s.forecasts.InvalidateCache(workspaceID, accountID)
	s.log.Infof("Transaction %d created on account %d", t.ID, accountID)
	return t, nil
}

// UpdateTransaction updates a transaction and invalidates the cached
// forecast for its account
func (s *Service) UpdateTransaction(ctx context.Context, workspaceID, transactionID int64, in TransactionInput) (*models.Transaction, error) {
	existing, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeAccount(ctx, workspaceID, existing.AccountID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing.Amount = in.Amount
	existing.Status = in.Status
	existing.TransactionDate = in.Date
	existing.PlannedDate = in.PlannedDate
	existing.Description = in.Description
	if in.Currency != "" {
		existing.Currency = in.Currency
	}
	if err := s.repo.UpdateTransaction(ctx, existing); err != nil {
		return nil, err
	}

	s.forecasts.InvalidateCache(workspaceID, existing.AccountID)
	s.log.Infof("Transaction %d updated on account %d", transactionID, existing.AccountID)
	return existing, nil
}

// DeleteTransaction removes a transaction and invalidates the cached
// forecast for its account
func (s *Service) DeleteTransaction(ctx context.Context, workspaceID, transactionID int64) error {
	existing, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if _, err := s.authorizeAccount(ctx, workspaceID, existing.AccountID); err != nil {
		return err
	}
	if err := s.repo.DeleteTransaction(ctx, transactionID); err != nil {
		return err
	}

	s.forecasts.InvalidateCache(workspaceID, existing.AccountID)
	s.log.Infof("Transaction %d deleted from account %d", transactionID, existing.AccountID)
	return nil
}

// GetSettings returns the workspace forecasting settings
func (s *Service) GetSettings(ctx context.Context, workspaceID int64) (*models.UserSettings, error) {
	if err := s.authorizeWorkspace(ctx, workspaceID); err != nil {
		return nil, err
	}
	return s.repo.GetUserSettings(ctx, workspaceID)
}

// UpdateSettings upserts the workspace settings and flushes every
// cached forecast in the workspace
func (s *Service) UpdateSettings(ctx context.Context, workspaceID int64, minimumSafeBalance decimal.Decimal, safetyBufferDays int) (*models.UserSettings, error) {
	if err := s.authorizeWorkspace(ctx, workspaceID); err != nil {
		return nil, err
	}
	if safetyBufferDays < 0 {
		return nil, fmt.Errorf("safety buffer days must not be negative")
	}

	settings := &models.UserSettings{
		WorkspaceID:        workspaceID,
		MinimumSafeBalance: minimumSafeBalance,
		SafetyBufferDays:   safetyBufferDays,
	}
	if err := s.repo.UpsertUserSettings(ctx, settings); err != nil {
		return nil, err
	}

	s.forecasts.InvalidateWorkspaceCache(workspaceID)
	s.log.Infof("Settings updated for workspace %d", workspaceID)
	return settings, nil
}

// GetForecast authorizes the request and delegates to the forecast
// engine
func (s *Service) GetForecast(ctx context.Context, workspaceID, accountID int64, opts forecast.Options) (*models.CompleteForecast, error) {
	if _, err := s.authorizeAccount(ctx, workspaceID, accountID); err != nil {
		return nil, err
	}
	return s.forecasts.GetForecast(ctx, workspaceID, accountID, opts)
}

// authorizeWorkspace verifies the authenticated user belongs to the
// workspace
func (s *Service) authorizeWorkspace(ctx context.Context, workspaceID int64) error {
	userID, err := middleware.UserID(ctx)
	if err != nil {
		return err
	}
	member, err := s.repo.IsWorkspaceMember(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrForbidden
	}
	return nil
}

// authorizeAccount verifies workspace membership and that the account
// belongs to the workspace
func (s *Service) authorizeAccount(ctx context.Context, workspaceID, accountID int64) (*models.Account, error) {
	if err := s.authorizeWorkspace(ctx, workspaceID); err != nil {
		return nil, err
	}
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.WorkspaceID != workspaceID {
		return nil, ErrForbidden
	}
	return account, nil
}
