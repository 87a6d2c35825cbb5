package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared
// query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LedgerLine is one entry of an account ledger in chronological order.
type LedgerLine struct {
	TransactionID   int64
	ReferenceNumber string
	TransactionDate time.Time
	Description     string
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	Notes           string
}

// Ledger is the append-only store of financial transactions. It re-validates
// the debit/credit balance of everything it persists regardless of what the
// caller already checked, and models posting as an explicit idempotent
// transition after which a transaction and its entries are immutable.
type Ledger struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewLedger(pool *pgxpool.Pool, log zerolog.Logger) *Ledger {
	return &Ledger{pool: pool, log: log}
}

// ── Create ───────────────────────────────────────────────────────────────────

// CreateTransaction persists a transaction and its entries atomically,
// always unposted. If entries are attached they must balance exactly;
// an empty transaction may be created and built up with AddEntry, in which
// case the balance is enforced at posting time.
func (l *Ledger) CreateTransaction(ctx context.Context, t *Transaction) (*Transaction, error) {
	if len(t.Entries) > 0 {
		if err := validateEntries(t.Entries); err != nil {
			return nil, err
		}
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := l.createTransactionTx(ctx, tx, t)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction creation: %w", err)
	}

	l.log.Info().
		Int64("transaction_id", created.ID).
		Str("reference", created.ReferenceNumber).
		Int("entries", len(created.Entries)).
		Msg("transaction recorded")
	return created, nil
}

// createTransactionTx inserts the transaction and its entries inside the
// caller's database transaction. Used directly by the invoice lifecycle so
// the ledger posting and the invoice row commit together or not at all.
func (l *Ledger) createTransactionTx(ctx context.Context, tx pgx.Tx, t *Transaction) (*Transaction, error) {
	if len(t.Entries) > 0 {
		if err := validateEntries(t.Entries); err != nil {
			return nil, err
		}
	}

	ref := t.ReferenceNumber
	if ref == "" {
		ref = "TXN-" + uuid.NewString()
	}
	date := t.TransactionDate
	if date.IsZero() {
		date = dateOnly(time.Now())
	}

	created := &Transaction{
		ReferenceNumber: ref,
		TransactionDate: date,
		Description:     t.Description,
		Type:            t.Type,
		UserID:          t.UserID,
		OrderID:         t.OrderID,
	}
	err := tx.QueryRow(ctx, `
		INSERT INTO transactions (reference_number, transaction_date, description, type, user_id, order_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_posted, created_at
	`, ref, date, t.Description, string(t.Type), t.UserID, t.OrderID).Scan(
		&created.ID, &created.IsPosted, &created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction %s: %w", ref, err)
	}

	for i, e := range t.Entries {
		var inserted Entry
		err := tx.QueryRow(ctx, `
			INSERT INTO entries (transaction_id, account_id, debit_amount, credit_amount, notes)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, transaction_id, account_id, debit_amount, credit_amount, notes
		`, created.ID, e.AccountID, e.DebitAmount, e.CreditAmount, e.Notes).Scan(
			&inserted.ID, &inserted.TransactionID, &inserted.AccountID,
			&inserted.DebitAmount, &inserted.CreditAmount, &inserted.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert entry %d: %w", i+1, err)
		}
		created.Entries = append(created.Entries, inserted)
	}

	return created, nil
}

// ── Lookups ──────────────────────────────────────────────────────────────────

const transactionColumns = "id, reference_number, transaction_date, description, type, user_id, order_id, is_posted, created_at"

func (l *Ledger) GetTransactionByID(ctx context.Context, id int64) (*Transaction, error) {
	return l.fetchTransaction(ctx, l.pool, "id = $1", id)
}

func (l *Ledger) GetTransactionByReference(ctx context.Context, ref string) (*Transaction, error) {
	return l.fetchTransaction(ctx, l.pool, "reference_number = $1", ref)
}

func (l *Ledger) fetchTransaction(ctx context.Context, q pgxQuerier, where string, arg any) (*Transaction, error) {
	var t Transaction
	err := q.QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE "+where, arg,
	).Scan(&t.ID, &t.ReferenceNumber, &t.TransactionDate, &t.Description, &t.Type,
		&t.UserID, &t.OrderID, &t.IsPosted, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %v: %w", arg, ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("failed to fetch transaction %v: %w", arg, err)
	}

	entries, err := listEntries(ctx, q, t.ID)
	if err != nil {
		return nil, err
	}
	t.Entries = entries
	return &t, nil
}

// ── Entries ──────────────────────────────────────────────────────────────────

// AddEntry appends a line to an unposted transaction. Posted transactions
// are immutable and reject the append.
func (l *Ledger) AddEntry(ctx context.Context, transactionID int64, e Entry) (*Entry, error) {
	if e.DebitAmount.IsNegative() || e.CreditAmount.IsNegative() {
		return nil, fmt.Errorf("entry amounts must be >= 0")
	}
	if e.DebitAmount.IsPositive() && e.CreditAmount.IsPositive() {
		return nil, fmt.Errorf("entry debit and credit cannot both be set")
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var posted bool
	err = tx.QueryRow(ctx,
		"SELECT is_posted FROM transactions WHERE id = $1 FOR UPDATE", transactionID,
	).Scan(&posted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d: %w", transactionID, ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("failed to lock transaction %d: %w", transactionID, err)
	}
	if posted {
		return nil, fmt.Errorf("transaction %d: %w", transactionID, ErrTransactionPosted)
	}

	var inserted Entry
	err = tx.QueryRow(ctx, `
		INSERT INTO entries (transaction_id, account_id, debit_amount, credit_amount, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, transaction_id, account_id, debit_amount, credit_amount, notes
	`, transactionID, e.AccountID, e.DebitAmount, e.CreditAmount, e.Notes).Scan(
		&inserted.ID, &inserted.TransactionID, &inserted.AccountID,
		&inserted.DebitAmount, &inserted.CreditAmount, &inserted.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit entry: %w", err)
	}
	return &inserted, nil
}

func (l *Ledger) ListEntries(ctx context.Context, transactionID int64) ([]Entry, error) {
	return listEntries(ctx, l.pool, transactionID)
}

func listEntries(ctx context.Context, q pgxQuerier, transactionID int64) ([]Entry, error) {
	rows, err := q.Query(ctx, `
		SELECT id, transaction_id, account_id, debit_amount, credit_amount, notes
		FROM entries
		WHERE transaction_id = $1
		ORDER BY id
	`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for transaction %d: %w", transactionID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID,
			&e.DebitAmount, &e.CreditAmount, &e.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ── Posting ──────────────────────────────────────────────────────────────────

// PostTransaction finalizes a transaction. Posting is idempotent: posting an
// already-posted transaction is a no-op. The balance invariant is
// re-verified under the row lock; an unbalanced transaction can never become
// posted.
func (l *Ledger) PostTransaction(ctx context.Context, id int64) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := l.postTransactionTx(ctx, tx, id); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit posting: %w", err)
	}

	l.log.Info().Int64("transaction_id", id).Msg("transaction posted")
	return nil
}

func (l *Ledger) postTransactionTx(ctx context.Context, tx pgx.Tx, id int64) error {
	var posted bool
	err := tx.QueryRow(ctx,
		"SELECT is_posted FROM transactions WHERE id = $1 FOR UPDATE", id,
	).Scan(&posted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("transaction %d: %w", id, ErrTransactionNotFound)
		}
		return fmt.Errorf("failed to lock transaction %d: %w", id, err)
	}
	if posted {
		return nil
	}

	entries, err := listEntries(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := validateEntries(entries); err != nil {
		return fmt.Errorf("transaction %d cannot be posted: %w", id, err)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE transactions SET is_posted = true WHERE id = $1", id,
	); err != nil {
		return fmt.Errorf("failed to post transaction %d: %w", id, err)
	}
	return nil
}

// ── Balances and ledgers ─────────────────────────────────────────────────────

// GetAccountBalance sums the account's entries dated on or before asOf
// (all time when asOf is nil), signed by the account type's normal side.
func (l *Ledger) GetAccountBalance(ctx context.Context, accountID int64, asOf *time.Time) (decimal.Decimal, error) {
	accountType, err := l.accountType(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	q := `
		SELECT COALESCE(SUM(e.debit_amount), 0), COALESCE(SUM(e.credit_amount), 0)
		FROM entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE e.account_id = $1`
	args := []any{accountID}
	if asOf != nil {
		args = append(args, dateOnly(*asOf))
		q += fmt.Sprintf(" AND t.transaction_date <= $%d", len(args))
	}

	var debit, credit decimal.Decimal
	if err := l.pool.QueryRow(ctx, q, args...).Scan(&debit, &credit); err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance for account %d: %w", accountID, err)
	}
	return signedAmount(accountType, debit, credit), nil
}

// GetAccountLedger returns the account's entries within [start, end] in
// stable chronological order: transaction date ascending, transaction id as
// the deterministic tie-break.
func (l *Ledger) GetAccountLedger(ctx context.Context, accountID int64, start, end time.Time) ([]LedgerLine, error) {
	if _, err := l.accountType(ctx, accountID); err != nil {
		return nil, err
	}

	rows, err := l.pool.Query(ctx, `
		SELECT t.id, t.reference_number, t.transaction_date, t.description,
		       e.debit_amount, e.credit_amount, e.notes
		FROM entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE e.account_id = $1
		  AND t.transaction_date >= $2
		  AND t.transaction_date <= $3
		ORDER BY t.transaction_date ASC, t.id ASC, e.id ASC
	`, accountID, dateOnly(start), dateOnly(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var lines []LedgerLine
	for rows.Next() {
		var ln LedgerLine
		if err := rows.Scan(&ln.TransactionID, &ln.ReferenceNumber, &ln.TransactionDate,
			&ln.Description, &ln.Debit, &ln.Credit, &ln.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan ledger line: %w", err)
		}
		lines = append(lines, ln)
	}
	return lines, rows.Err()
}

func (l *Ledger) accountType(ctx context.Context, accountID int64) (AccountType, error) {
	var t AccountType
	err := l.pool.QueryRow(ctx, "SELECT type FROM accounts WHERE id = $1", accountID).Scan(&t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("account %d: %w", accountID, ErrAccountNotFound)
		}
		return "", fmt.Errorf("failed to fetch account %d: %w", accountID, err)
	}
	return t, nil
}
