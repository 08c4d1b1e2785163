package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkraev/finflow/internal/forecast"
	"github.com/mkraev/finflow/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO finflow.users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM finflow.users
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateWorkspace creates a workspace and enrolls the owner as a member
func (r *Repository) CreateWorkspace(ctx context.Context, ws *models.Workspace) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO finflow.workspaces (name, owner_id, created_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	if err := tx.QueryRowContext(ctx, query, ws.Name, ws.OwnerID).Scan(&ws.ID, &ws.CreatedAt); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}

	memberQuery := `
		INSERT INTO finflow.workspace_members (workspace_id, user_id, role, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)`
	if _, err := tx.ExecContext(ctx, memberQuery, ws.ID, ws.OwnerID, models.RoleOwner); err != nil {
		return fmt.Errorf("failed to add workspace owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit workspace: %w", err)
	}
	return nil
}

// AddWorkspaceMember enrolls a user into a workspace
func (r *Repository) AddWorkspaceMember(ctx context.Context, workspaceID, userID int64, role string) error {
	query := `
		INSERT INTO finflow.workspace_members (workspace_id, user_id, role, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)`
	if _, err := r.db.ExecContext(ctx, query, workspaceID, userID, role); err != nil {
		return fmt.Errorf("failed to add workspace member: %w", err)
	}
	return nil
}

// IsWorkspaceMember reports whether the user belongs to the workspace
func (r *Repository) IsWorkspaceMember(ctx context.Context, workspaceID, userID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM finflow.workspace_members
			WHERE workspace_id = $1 AND user_id = $2
		)`
	if err := r.db.QueryRowContext(ctx, query, workspaceID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check workspace membership: %w", err)
	}
	return exists, nil
}

// CreateAccount creates a new account in the database
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO finflow.accounts (workspace_id, name, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, account.WorkspaceID, account.Name, account.Balance, account.Currency).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindAccountByID retrieves an account, including its workspace for
// ownership checks
func (r *Repository) FindAccountByID(ctx context.Context, accountID int64) (*models.Account, error) {
	account := &models.Account{}
	query := `
		SELECT id, workspace_id, name, balance, currency, created_at, updated_at
		FROM finflow.accounts
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, accountID).
		Scan(&account.ID, &account.WorkspaceID, &account.Name, &account.Balance, &account.Currency, &account.CreatedAt, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, forecast.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// GetCurrentBalance returns the current balance of an account
func (r *Repository) GetCurrentBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `SELECT balance FROM finflow.accounts WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&balance)
	if err == sql.ErrNoRows {
		return decimal.Zero, forecast.ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// CreateTransaction creates a new transaction in the database
func (r *Repository) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO finflow.transactions
			(account_id, amount, currency, status, transaction_date, planned_date, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		t.AccountID, t.Amount, t.Currency, t.Status, t.TransactionDate, t.PlannedDate, t.Description).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// FindTransactionByID retrieves a single transaction
func (r *Repository) FindTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	t := &models.Transaction{}
	query := `
		SELECT id, account_id, amount, currency, status, transaction_date, planned_date, description, created_at, updated_at
		FROM finflow.transactions
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.AccountID, &t.Amount, &t.Currency, &t.Status, &t.TransactionDate, &t.PlannedDate, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction updates a transaction's mutable fields
func (r *Repository) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		UPDATE finflow.transactions
		SET amount = $2, currency = $3, status = $4, transaction_date = $5, planned_date = $6,
		    description = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Amount, t.Currency, t.Status, t.TransactionDate, t.PlannedDate, t.Description).
		Scan(&t.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("transaction not found")
	}
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes a transaction
func (r *Repository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM finflow.transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("transaction not found")
	}
	return nil
}

// ListCompletedTransactions returns completed transactions for an
// account dated on or after since, ascending by date
func (r *Repository) ListCompletedTransactions(ctx context.Context, accountID int64, since time.Time) ([]models.Transaction, error) {
	query := `
		SELECT id, account_id, amount, currency, status, transaction_date, planned_date, description, created_at, updated_at
		FROM finflow.transactions
		WHERE account_id = $1 AND status = $2 AND transaction_date >= $3
		ORDER BY transaction_date ASC, id ASC`
	return r.listTransactions(ctx, query, accountID, models.StatusCompleted, since)
}

// ListPlannedTransactions returns planned transactions for an account
// dated up to and including until, ascending by planned date
func (r *Repository) ListPlannedTransactions(ctx context.Context, accountID int64, until time.Time) ([]models.Transaction, error) {
	query := `
		SELECT id, account_id, amount, currency, status, transaction_date, planned_date, description, created_at, updated_at
		FROM finflow.transactions
		WHERE account_id = $1 AND status = $2 AND planned_date <= $3
		ORDER BY planned_date ASC, id ASC`
	return r.listTransactions(ctx, query, accountID, models.StatusPlanned, until)
}

func (r *Repository) listTransactions(ctx context.Context, query string, args ...interface{}) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Currency, &t.Status,
			&t.TransactionDate, &t.PlannedDate, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// GetUserSettings retrieves the forecasting settings for a workspace
func (r *Repository) GetUserSettings(ctx context.Context, workspaceID int64) (*models.UserSettings, error) {
	s := &models.UserSettings{}
	query := `
		SELECT workspace_id, minimum_safe_balance, safety_buffer_days, created_at, updated_at
		FROM finflow.user_settings
		WHERE workspace_id = $1`
	err := r.db.QueryRowContext(ctx, query, workspaceID).
		Scan(&s.WorkspaceID, &s.MinimumSafeBalance, &s.SafetyBufferDays, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, forecast.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return s, nil
}

// UpsertUserSettings creates or replaces the workspace settings
func (r *Repository) UpsertUserSettings(ctx context.Context, s *models.UserSettings) error {
	query := `
		INSERT INTO finflow.user_settings (workspace_id, minimum_safe_balance, safety_buffer_days, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (workspace_id) DO UPDATE
		SET minimum_safe_balance = EXCLUDED.minimum_safe_balance,
		    safety_buffer_days = EXCLUDED.safety_buffer_days,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, s.WorkspaceID, s.MinimumSafeBalance, s.SafetyBufferDays).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}

// AlertAccount pairs an account with the owner contact used by the
// daily risk sweep
type AlertAccount struct {
	AccountID   int64
	WorkspaceID int64
	AccountName string
	Email       string
	Username    string
}

// ListAlertAccounts returns every account whose workspace has settings
// configured, together with the workspace owner's contact
func (r *Repository) ListAlertAccounts(ctx context.Context) ([]AlertAccount, error) {
	query := `
		SELECT a.id, a.workspace_id, a.name, u.email, u.username
		FROM finflow.accounts a
		JOIN finflow.workspaces w ON w.id = a.workspace_id
		JOIN finflow.users u ON u.id = w.owner_id
		JOIN finflow.user_settings s ON s.workspace_id = a.workspace_id
		ORDER BY a.id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert accounts: %w", err)
	}
	defer rows.Close()

	var accounts []AlertAccount
	for rows.Next() {
		var a AlertAccount
		if err := rows.Scan(&a.AccountID, &a.WorkspaceID, &a.AccountName, &a.Email, &a.Username); err != nil {
			return nil, fmt.Errorf("failed to scan alert account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert accounts: %w", err)
	}
	return accounts, nil
}
