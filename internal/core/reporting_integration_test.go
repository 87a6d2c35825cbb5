package core_test

import (
	"context"
	"testing"
	"time"

	"commerce-ledger/internal/core"

	"github.com/rs/zerolog"
)

func TestBalanceSheet_AfterSale(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := newTestInvoiceService(pool, &stubAuthority{generateSuccess: true})
	reporting := core.NewReportingService(pool, core.NewLedger(pool, zerolog.Nop()))

	if _, err := svc.Generate(ctx, 42); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	report, err := reporting.BalanceSheet(ctx, nil)
	if err != nil {
		t.Fatalf("BalanceSheet failed: %v", err)
	}

	if report.TotalAssets.StringFixed(2) != "112.00" {
		t.Errorf("Expected total assets 112.00, got %s", report.TotalAssets.StringFixed(2))
	}
	if report.TotalLiabilities.StringFixed(2) != "14.61" {
		t.Errorf("Expected total liabilities 14.61, got %s", report.TotalLiabilities.StringFixed(2))
	}
	if report.TotalEquity.StringFixed(2) != "97.39" {
		t.Errorf("Expected total equity 97.39, got %s", report.TotalEquity.StringFixed(2))
	}
	if !report.IsBalanced {
		t.Error("Expected assets = liabilities + equity")
	}

	// Earnings are folded into equity as a synthetic line.
	var earnings *core.AccountLine
	for i := range report.Equity {
		if report.Equity[i].Code == "CURRENT_EARNINGS" {
			earnings = &report.Equity[i]
		}
	}
	if earnings == nil {
		t.Fatal("Expected a CURRENT_EARNINGS equity line")
	}
	if earnings.Balance.StringFixed(2) != "97.39" {
		t.Errorf("Expected current earnings 97.39, got %s", earnings.Balance.StringFixed(2))
	}
}

func TestBalanceSheet_BalancedAfterCancellation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := newTestInvoiceService(pool, &stubAuthority{generateSuccess: true, cancelSuccess: true})
	reporting := core.NewReportingService(pool, core.NewLedger(pool, zerolog.Nop()))

	inv, err := svc.Generate(ctx, 42)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := svc.Cancel(ctx, inv.ID, "returned"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	report, err := reporting.BalanceSheet(ctx, nil)
	if err != nil {
		t.Fatalf("BalanceSheet failed: %v", err)
	}
	if !report.IsBalanced {
		t.Error("Expected the balance sheet to hold after the reversal")
	}
	if !report.TotalAssets.IsZero() {
		t.Errorf("Expected zero assets after reversal, got %s", report.TotalAssets.StringFixed(2))
	}
	if !report.TotalLiabilities.IsZero() {
		t.Errorf("Expected zero liabilities after reversal, got %s", report.TotalLiabilities.StringFixed(2))
	}
}

func TestIncomeStatement_Period(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	ids := accountIDs(t, pool)
	ledger := core.NewLedger(pool, zerolog.Nop())
	svc := newTestInvoiceService(pool, &stubAuthority{generateSuccess: true})
	reporting := core.NewReportingService(pool, ledger)

	if _, err := svc.Generate(ctx, 42); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	// An expense in the same period.
	_, err := ledger.CreateTransaction(ctx, &core.Transaction{
		Description: "Card processing fee",
		Type:        core.TransactionPayment,
		UserID:      1,
		Entries: []core.Entry{
			{AccountID: ids["PAYMENT_PROCESSING_FEES"], DebitAmount: d("2.50")},
			{AccountID: ids["CASH"], CreditAmount: d("2.50")},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().AddDate(0, 0, 1)
	report, err := reporting.IncomeStatement(ctx, start, end)
	if err != nil {
		t.Fatalf("IncomeStatement failed: %v", err)
	}

	if report.TotalRevenue.StringFixed(2) != "97.39" {
		t.Errorf("Expected revenue 97.39, got %s", report.TotalRevenue.StringFixed(2))
	}
	if report.TotalExpenses.StringFixed(2) != "2.50" {
		t.Errorf("Expected expenses 2.50, got %s", report.TotalExpenses.StringFixed(2))
	}
	if report.NetIncome.StringFixed(2) != "94.89" {
		t.Errorf("Expected net income 94.89, got %s", report.NetIncome.StringFixed(2))
	}

	// A window before any activity reports nothing.
	empty, err := reporting.IncomeStatement(ctx, start.AddDate(0, -1, 0), start.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("IncomeStatement failed: %v", err)
	}
	if !empty.TotalRevenue.IsZero() || !empty.TotalExpenses.IsZero() {
		t.Errorf("Expected empty period, got revenue=%s expenses=%s",
			empty.TotalRevenue, empty.TotalExpenses)
	}
}

func TestAccountLedger_RunningBalance(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	ids := accountIDs(t, pool)
	ledger := core.NewLedger(pool, zerolog.Nop())
	svc := newTestInvoiceService(pool, &stubAuthority{generateSuccess: true, cancelSuccess: true})
	reporting := core.NewReportingService(pool, ledger)

	inv, err := svc.Generate(ctx, 42)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := svc.Cancel(ctx, inv.ID, "returned"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().AddDate(0, 0, 1)
	lines, err := reporting.AccountLedger(ctx, ids["ACCOUNTS_RECEIVABLE"], start, end)
	if err != nil {
		t.Fatalf("AccountLedger failed: %v", err)
	}

	// Opening line, the sale debit, the reversal credit.
	if len(lines) != 3 {
		t.Fatalf("Expected 3 statement lines, got %d", len(lines))
	}
	if lines[0].Description != "Opening balance" {
		t.Errorf("Expected an opening line first, got %q", lines[0].Description)
	}
	if !lines[0].RunningBalance.IsZero() {
		t.Errorf("Expected opening balance 0, got %s", lines[0].RunningBalance.StringFixed(2))
	}
	if lines[1].RunningBalance.StringFixed(2) != "112.00" {
		t.Errorf("Expected running balance 112.00 after sale, got %s",
			lines[1].RunningBalance.StringFixed(2))
	}
	if lines[2].RunningBalance.StringFixed(2) != "0.00" {
		t.Errorf("Expected running balance 0.00 after reversal, got %s",
			lines[2].RunningBalance.StringFixed(2))
	}

	// The final running balance matches the point-in-time balance.
	bal, err := ledger.GetAccountBalance(ctx, ids["ACCOUNTS_RECEIVABLE"], &end)
	if err != nil {
		t.Fatalf("GetAccountBalance failed: %v", err)
	}
	if !lines[len(lines)-1].RunningBalance.Equal(bal) {
		t.Errorf("Running balance %s diverges from account balance %s",
			lines[len(lines)-1].RunningBalance, bal)
	}
}

func TestAccountLedger_OpeningCarriesForward(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	ids := accountIDs(t, pool)
	ledger := core.NewLedger(pool, zerolog.Nop())
	reporting := core.NewReportingService(pool, ledger)

	lastWeek := time.Now().AddDate(0, 0, -7)
	_, err := ledger.CreateTransaction(ctx, &core.Transaction{
		Description:     "Old sale",
		TransactionDate: lastWeek,
		Type:            core.TransactionSale,
		UserID:          1,
		Entries: []core.Entry{
			{AccountID: ids["CASH"], DebitAmount: d("40.00")},
			{AccountID: ids["SALES_REVENUE"], CreditAmount: d("40.00")},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	_, err = ledger.CreateTransaction(ctx, &core.Transaction{
		Description: "Recent sale",
		Type:        core.TransactionSale,
		UserID:      1,
		Entries: []core.Entry{
			{AccountID: ids["CASH"], DebitAmount: d("60.00")},
			{AccountID: ids["SALES_REVENUE"], CreditAmount: d("60.00")},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	start := time.Now().AddDate(0, 0, -1)
	end := time.Now()
	lines, err := reporting.AccountLedger(ctx, ids["CASH"], start, end)
	if err != nil {
		t.Fatalf("AccountLedger failed: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("Expected opening line plus one entry, got %d lines", len(lines))
	}
	if lines[0].RunningBalance.StringFixed(2) != "40.00" {
		t.Errorf("Expected opening balance 40.00, got %s", lines[0].RunningBalance.StringFixed(2))
	}
	if lines[1].RunningBalance.StringFixed(2) != "100.00" {
		t.Errorf("Expected closing balance 100.00, got %s", lines[1].RunningBalance.StringFixed(2))
	}

	if lines[1].Debit.StringFixed(2) != "60.00" {
		t.Errorf("Expected the in-period debit 60.00, got %s", lines[1].Debit.StringFixed(2))
	}
}
