package core_test

import (
	"testing"

	"commerce-ledger/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() core.PostingPolicy {
	return core.PostingPolicy{
		TaxRate:               decimal.RequireFromString("0.15"),
		ReceivableAccountCode: "ACCOUNTS_RECEIVABLE",
		RevenueAccountCode:    "SALES_REVENUE",
		TaxPayableAccountCode: "TAX_PAYABLE",
	}
}

func TestSaleSplit(t *testing.T) {
	policy := testPolicy()

	subtotal, tax := policy.SaleSplit(decimal.RequireFromString("112.00"))
	assert.Equal(t, "97.39", subtotal.StringFixed(2))
	assert.Equal(t, "14.61", tax.StringFixed(2))

	// Subtotal plus tax must reconstruct the total exactly: tax is the
	// remainder, not an independently rounded figure.
	assert.True(t, subtotal.Add(tax).Equal(decimal.RequireFromString("112.00")))
}

func TestSaleSplit_ZeroTotal(t *testing.T) {
	subtotal, tax := testPolicy().SaleSplit(decimal.Zero)
	assert.True(t, subtotal.IsZero())
	assert.True(t, tax.IsZero())
}

func TestSaleEntries_Balanced(t *testing.T) {
	policy := testPolicy()
	entries := policy.SaleEntries(1, 2, 3, decimal.RequireFromString("112.00"), 42)
	require.Len(t, entries, 3)

	assert.Equal(t, "112.00", entries[0].DebitAmount.StringFixed(2))
	assert.True(t, entries[0].CreditAmount.IsZero())
	assert.Equal(t, "97.39", entries[1].CreditAmount.StringFixed(2))
	assert.Equal(t, "14.61", entries[2].CreditAmount.StringFixed(2))

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, e := range entries {
		totalDebit = totalDebit.Add(e.DebitAmount)
		totalCredit = totalCredit.Add(e.CreditAmount)
	}
	assert.True(t, totalDebit.Equal(totalCredit))
}

func TestItemAmounts(t *testing.T) {
	policy := testPolicy()

	tax, total := policy.ItemAmounts(
		decimal.RequireFromString("10.00"),
		decimal.RequireFromString("2"),
		decimal.Zero,
	)
	assert.Equal(t, "3.00", tax.StringFixed(2))
	assert.Equal(t, "23.00", total.StringFixed(2))

	// Discount reduces the taxable net.
	tax, total = policy.ItemAmounts(
		decimal.RequireFromString("10.00"),
		decimal.RequireFromString("2"),
		decimal.RequireFromString("5.00"),
	)
	assert.Equal(t, "2.25", tax.StringFixed(2))
	assert.Equal(t, "17.25", total.StringFixed(2))
}

func TestReversalEntries(t *testing.T) {
	original := []core.Entry{
		{AccountID: 1, DebitAmount: decimal.RequireFromString("112.00"), CreditAmount: decimal.Zero},
		{AccountID: 2, DebitAmount: decimal.Zero, CreditAmount: decimal.RequireFromString("97.39")},
		{AccountID: 3, DebitAmount: decimal.Zero, CreditAmount: decimal.RequireFromString("14.61")},
	}

	reversed := core.ReversalEntries(original)
	require.Len(t, reversed, 3)
	for i := range original {
		assert.Equal(t, original[i].AccountID, reversed[i].AccountID)
		assert.True(t, reversed[i].DebitAmount.Equal(original[i].CreditAmount))
		assert.True(t, reversed[i].CreditAmount.Equal(original[i].DebitAmount))
	}
}

func TestReversalReference(t *testing.T) {
	assert.Equal(t, "REV-TXN-abc", core.ReversalReference("TXN-abc"))
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-00000001", core.FormatInvoiceNumber(1))
	assert.Equal(t, "INV-00000042", core.FormatInvoiceNumber(42))
	assert.Equal(t, "INV-12345678", core.FormatInvoiceNumber(12345678))
}

func TestInvoiceStatusTransitions(t *testing.T) {
	assert.True(t, core.InvoiceDraft.CanTransitionTo(core.InvoiceIssued))
	assert.True(t, core.InvoiceIssued.CanTransitionTo(core.InvoiceAuthorized))
	assert.True(t, core.InvoiceIssued.CanTransitionTo(core.InvoiceCancelled))
	assert.True(t, core.InvoiceAuthorized.CanTransitionTo(core.InvoiceCancelled))

	// CANCELLED is terminal.
	assert.False(t, core.InvoiceCancelled.CanTransitionTo(core.InvoiceDraft))
	assert.False(t, core.InvoiceCancelled.CanTransitionTo(core.InvoiceIssued))
	assert.False(t, core.InvoiceCancelled.CanTransitionTo(core.InvoiceAuthorized))

	// No skipping DRAFT straight to AUTHORIZED.
	assert.False(t, core.InvoiceDraft.CanTransitionTo(core.InvoiceAuthorized))
}

func TestAccountTypeNormalSide(t *testing.T) {
	assert.True(t, core.Asset.IsDebitNormal())
	assert.True(t, core.Expense.IsDebitNormal())
	assert.False(t, core.Liability.IsDebitNormal())
	assert.False(t, core.Equity.IsDebitNormal())
	assert.False(t, core.Revenue.IsDebitNormal())
}
