package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountService owns the chart of accounts. Accounts are created by
// seed/setup, looked up constantly during posting, and never deleted —
// only deactivated.
type AccountService interface {
	Create(ctx context.Context, code, name string, accountType AccountType) (*Account, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByCode(ctx context.Context, code string) (*Account, error)
	List(ctx context.Context, activeOnly bool) ([]Account, error)
	Deactivate(ctx context.Context, id int64) error
}

type accountService struct {
	pool *pgxpool.Pool
}

func NewAccountService(pool *pgxpool.Pool) AccountService {
	return &accountService{pool: pool}
}

const accountColumns = "id, code, name, type, is_active, created_at"

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *accountService) Create(ctx context.Context, code, name string, accountType AccountType) (*Account, error) {
	if code == "" {
		return nil, fmt.Errorf("account code must not be empty")
	}

	a, err := scanAccount(s.pool.QueryRow(ctx, `
		INSERT INTO accounts (code, name, type)
		VALUES ($1, $2, $3)
		RETURNING `+accountColumns+`
	`, code, name, string(accountType)))
	if err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", code, err)
	}
	return a, nil
}

func (s *accountService) GetByID(ctx context.Context, id int64) (*Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %d: %w", id, ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to fetch account %d: %w", id, err)
	}
	return a, nil
}

func (s *accountService) GetByCode(ctx context.Context, code string) (*Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE code = $1", code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account code %s: %w", code, ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to fetch account %s: %w", code, err)
	}
	return a, nil
}

func (s *accountService) List(ctx context.Context, activeOnly bool) ([]Account, error) {
	q := "SELECT " + accountColumns + " FROM accounts"
	if activeOnly {
		q += " WHERE is_active = true"
	}
	q += " ORDER BY code"

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *accountService) Deactivate(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "UPDATE accounts SET is_active = false WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", id, ErrAccountNotFound)
	}
	return nil
}

// SeedChartOfAccounts inserts the baseline commerce chart if the codes are
// not present yet. Safe to run repeatedly.
func SeedChartOfAccounts(ctx context.Context, pool *pgxpool.Pool) error {
	seed := []struct {
		code string
		name string
		typ  AccountType
	}{
		{"CASH", "Cash", Asset},
		{"ACCOUNTS_RECEIVABLE", "Accounts Receivable", Asset},
		{"ACCOUNTS_PAYABLE", "Accounts Payable", Liability},
		{"TAX_PAYABLE", "Tax Payable", Liability},
		{"OWNERS_EQUITY", "Owners Equity", Equity},
		{"SALES_REVENUE", "Sales Revenue", Revenue},
		{"SHIPPING_REVENUE", "Shipping Revenue", Revenue},
		{"PAYMENT_PROCESSING_FEES", "Payment Processing Fees", Expense},
		{"REFUNDS_AND_ALLOWANCES", "Refunds and Allowances", Expense},
	}

	for _, a := range seed {
		if _, err := pool.Exec(ctx, `
			INSERT INTO accounts (code, name, type)
			VALUES ($1, $2, $3)
			ON CONFLICT (code) DO NOTHING
		`, a.code, a.name, string(a.typ)); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", a.code, err)
		}
	}
	return nil
}
