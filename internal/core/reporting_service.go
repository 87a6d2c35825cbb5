package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// AccountLine is a single account entry in a balance sheet or income
// statement. Balance is expressed in the sign convention for that section:
// positive means the account's normal balance side.
type AccountLine struct {
	Code    string
	Name    string
	Balance decimal.Decimal
}

// BalanceSheetReport groups account balances as of a date. Revenue and
// expense activity is folded into equity as current-period earnings, so
// IsBalanced holds without requiring a period-closing process.
type BalanceSheetReport struct {
	AsOf             time.Time
	Assets           []AccountLine
	Liabilities      []AccountLine
	Equity           []AccountLine
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal
	IsBalanced       bool
}

// IncomeStatementReport sums revenue and expense account activity over a
// period. NetIncome = TotalRevenue - TotalExpenses.
type IncomeStatementReport struct {
	Start         time.Time
	End           time.Time
	Revenue       []AccountLine
	Expenses      []AccountLine
	TotalRevenue  decimal.Decimal
	TotalExpenses decimal.Decimal
	NetIncome     decimal.Decimal
}

// StatementLine is one row of an account ledger with running balance. The
// first row is a synthetic opening line carrying the balance brought
// forward into the period.
type StatementLine struct {
	TransactionID   int64
	ReferenceNumber string
	TransactionDate time.Time
	Description     string
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	RunningBalance  decimal.Decimal
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService derives read-only financial reports from the ledger. It
// never writes.
type ReportingService interface {
	// BalanceSheet groups balances by account type as of the given date
	// (all time when asOf is nil).
	BalanceSheet(ctx context.Context, asOf *time.Time) (*BalanceSheetReport, error)

	// IncomeStatement sums revenue and expense activity dated within
	// [start, end].
	IncomeStatement(ctx context.Context, start, end time.Time) (*IncomeStatementReport, error)

	// AccountLedger returns the account's ledger for [start, end] with a
	// synthetic opening line, accumulating the running balance in the
	// account type's sign convention. The final running balance equals
	// Ledger.GetAccountBalance(accountID, end).
	AccountLedger(ctx context.Context, accountID int64, start, end time.Time) ([]StatementLine, error)
}

type reportingService struct {
	pool   *pgxpool.Pool
	ledger *Ledger
}

func NewReportingService(pool *pgxpool.Pool, ledger *Ledger) ReportingService {
	return &reportingService{pool: pool, ledger: ledger}
}

// ── BalanceSheet ──────────────────────────────────────────────────────────────

func (s *reportingService) BalanceSheet(ctx context.Context, asOf *time.Time) (*BalanceSheetReport, error) {
	ceiling := dateOnly(time.Now())
	if asOf != nil {
		ceiling = dateOnly(*asOf)
	}

	// Aggregates entries dated on or before the ceiling across every
	// account, including revenue/expense so earnings can be derived.
	const q = `
		SELECT a.code, a.name, a.type,
		       COALESCE(s.total_debit, 0) - COALESCE(s.total_credit, 0) AS net_debit
		FROM accounts a
		LEFT JOIN (
		    SELECT e.account_id,
		           SUM(e.debit_amount)  AS total_debit,
		           SUM(e.credit_amount) AS total_credit
		    FROM entries e
		    JOIN transactions t ON t.id = e.transaction_id
		    WHERE t.transaction_date <= $1
		    GROUP BY e.account_id
		) s ON s.account_id = a.id
		ORDER BY a.type, a.code`

	rows, err := s.pool.Query(ctx, q, ceiling)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance sheet: %w", err)
	}
	defer rows.Close()

	report := &BalanceSheetReport{AsOf: ceiling}
	earnings := decimal.Zero

	for rows.Next() {
		var code, name string
		var accType AccountType
		var netDebit decimal.Decimal
		if err := rows.Scan(&code, &name, &accType, &netDebit); err != nil {
			return nil, fmt.Errorf("failed to scan balance sheet row: %w", err)
		}

		switch accType {
		case Asset:
			report.Assets = append(report.Assets, AccountLine{Code: code, Name: name, Balance: netDebit})
			report.TotalAssets = report.TotalAssets.Add(netDebit)
		case Liability:
			bal := netDebit.Neg()
			report.Liabilities = append(report.Liabilities, AccountLine{Code: code, Name: name, Balance: bal})
			report.TotalLiabilities = report.TotalLiabilities.Add(bal)
		case Equity:
			bal := netDebit.Neg()
			report.Equity = append(report.Equity, AccountLine{Code: code, Name: name, Balance: bal})
			report.TotalEquity = report.TotalEquity.Add(bal)
		case Revenue:
			earnings = earnings.Add(netDebit.Neg())
		case Expense:
			earnings = earnings.Sub(netDebit)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("balance sheet row iteration error: %w", err)
	}

	if !earnings.IsZero() {
		report.Equity = append(report.Equity, AccountLine{
			Code:    "CURRENT_EARNINGS",
			Name:    "Current Period Earnings",
			Balance: earnings,
		})
		report.TotalEquity = report.TotalEquity.Add(earnings)
	}

	report.IsBalanced = report.TotalAssets.Equal(report.TotalLiabilities.Add(report.TotalEquity))
	return report, nil
}

// ── IncomeStatement ───────────────────────────────────────────────────────────

func (s *reportingService) IncomeStatement(ctx context.Context, start, end time.Time) (*IncomeStatementReport, error) {
	const q = `
		SELECT a.code, a.name, a.type,
		       COALESCE(s.total_debit, 0)  AS total_debit,
		       COALESCE(s.total_credit, 0) AS total_credit
		FROM accounts a
		LEFT JOIN (
		    SELECT e.account_id,
		           SUM(e.debit_amount)  AS total_debit,
		           SUM(e.credit_amount) AS total_credit
		    FROM entries e
		    JOIN transactions t ON t.id = e.transaction_id
		    WHERE t.transaction_date >= $1 AND t.transaction_date <= $2
		    GROUP BY e.account_id
		) s ON s.account_id = a.id
		WHERE a.type IN ('revenue', 'expense')
		ORDER BY a.type, a.code`

	rows, err := s.pool.Query(ctx, q, dateOnly(start), dateOnly(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query income statement: %w", err)
	}
	defer rows.Close()

	report := &IncomeStatementReport{Start: dateOnly(start), End: dateOnly(end)}

	for rows.Next() {
		var code, name string
		var accType AccountType
		var debit, credit decimal.Decimal
		if err := rows.Scan(&code, &name, &accType, &debit, &credit); err != nil {
			return nil, fmt.Errorf("failed to scan income statement row: %w", err)
		}

		bal := signedAmount(accType, debit, credit)
		line := AccountLine{Code: code, Name: name, Balance: bal}
		switch accType {
		case Revenue:
			report.Revenue = append(report.Revenue, line)
			report.TotalRevenue = report.TotalRevenue.Add(bal)
		case Expense:
			report.Expenses = append(report.Expenses, line)
			report.TotalExpenses = report.TotalExpenses.Add(bal)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("income statement row iteration error: %w", err)
	}

	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)
	return report, nil
}

// ── AccountLedger ─────────────────────────────────────────────────────────────

func (s *reportingService) AccountLedger(ctx context.Context, accountID int64, start, end time.Time) ([]StatementLine, error) {
	accountType, err := s.ledger.accountType(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// Balance brought forward: everything dated strictly before the period.
	before := dateOnly(start).AddDate(0, 0, -1)
	opening, err := s.ledger.GetAccountBalance(ctx, accountID, &before)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledger.GetAccountLedger(ctx, accountID, start, end)
	if err != nil {
		return nil, err
	}

	lines := make([]StatementLine, 0, len(entries)+1)
	lines = append(lines, StatementLine{
		TransactionDate: dateOnly(start),
		Description:     "Opening balance",
		RunningBalance:  opening,
	})

	running := opening
	for _, e := range entries {
		running = running.Add(signedAmount(accountType, e.Debit, e.Credit))
		lines = append(lines, StatementLine{
			TransactionID:   e.TransactionID,
			ReferenceNumber: e.ReferenceNumber,
			TransactionDate: e.TransactionDate,
			Description:     e.Description,
			Debit:           e.Debit,
			Credit:          e.Credit,
			RunningBalance:  running,
		})
	}
	return lines, nil
}
