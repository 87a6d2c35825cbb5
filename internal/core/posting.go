package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PostingPolicy centralizes the tax rate and chart account codes the sale
// posting pattern uses. It is resolved once from configuration and
// injected, never re-derived per call site.
type PostingPolicy struct {
	TaxRate               decimal.Decimal
	ReceivableAccountCode string
	RevenueAccountCode    string
	TaxPayableAccountCode string
}

// SaleSplit divides a tax-inclusive order total into its net and tax
// portions. The subtotal is computed first (total / (1 + rate), rounded to
// cents) and the tax is the remainder, so the three sale entries always sum
// exactly back to the total.
func (p PostingPolicy) SaleSplit(total decimal.Decimal) (subtotal, tax decimal.Decimal) {
	subtotal = total.Div(decimal.NewFromInt(1).Add(p.TaxRate)).Round(2)
	tax = total.Sub(subtotal)
	return subtotal, tax
}

// SaleEntries builds the canonical three-entry sale posting: debit the
// receivable for the full total, credit revenue for the net subtotal,
// credit tax payable for the remainder.
func (p PostingPolicy) SaleEntries(receivableID, revenueID, taxPayableID int64, total decimal.Decimal, orderID int64) []Entry {
	subtotal, tax := p.SaleSplit(total)
	note := fmt.Sprintf("order %d", orderID)
	return []Entry{
		{AccountID: receivableID, DebitAmount: total, CreditAmount: decimal.Zero, Notes: note},
		{AccountID: revenueID, DebitAmount: decimal.Zero, CreditAmount: subtotal, Notes: note},
		{AccountID: taxPayableID, DebitAmount: decimal.Zero, CreditAmount: tax, Notes: note},
	}
}

// ItemAmounts computes the tax and gross total of one invoice line:
// net = unitPrice*quantity - discount, tax = round2(net * rate).
func (p PostingPolicy) ItemAmounts(unitPrice, quantity, discount decimal.Decimal) (tax, total decimal.Decimal) {
	net := unitPrice.Mul(quantity).Sub(discount)
	tax = net.Mul(p.TaxRate).Round(2)
	return tax, net.Add(tax)
}

// ReversalEntries mirrors a transaction's entries by swapping the debit and
// credit sides against the same accounts. Applying both the original and
// the reversal nets every touched account back to zero while leaving the
// original untouched for audit.
func ReversalEntries(original []Entry) []Entry {
	reversed := make([]Entry, 0, len(original))
	for _, e := range original {
		reversed = append(reversed, Entry{
			AccountID:    e.AccountID,
			DebitAmount:  e.CreditAmount,
			CreditAmount: e.DebitAmount,
			Notes:        e.Notes,
		})
	}
	return reversed
}

// ReversalReference derives the reversal's reference from the original's.
func ReversalReference(original string) string {
	return "REV-" + original
}

// FormatInvoiceNumber renders a sequence value as a fixed-width invoice
// number, e.g. INV-00000042.
func FormatInvoiceNumber(n int64) string {
	return fmt.Sprintf("INV-%08d", n)
}

// validateEntries enforces the per-entry and per-transaction invariants:
// no negative amounts, no entry with both sides set, and total debits
// exactly equal to total credits.
func validateEntries(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: transaction has no entries", ErrUnbalancedTransaction)
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i, e := range entries {
		if e.DebitAmount.IsNegative() || e.CreditAmount.IsNegative() {
			return fmt.Errorf("entry %d: amounts must be >= 0", i+1)
		}
		if e.DebitAmount.IsPositive() && e.CreditAmount.IsPositive() {
			return fmt.Errorf("entry %d: debit and credit cannot both be set", i+1)
		}
		totalDebit = totalDebit.Add(e.DebitAmount)
		totalCredit = totalCredit.Add(e.CreditAmount)
	}

	if !totalDebit.Equal(totalCredit) {
		return fmt.Errorf("%w: debits %s != credits %s", ErrUnbalancedTransaction, totalDebit, totalCredit)
	}
	return nil
}

// signedAmount returns the balance contribution of one entry under the
// account-type sign convention: asset/expense accounts increase on debit,
// liability/equity/revenue accounts increase on credit.
func signedAmount(accountType AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	if accountType.IsDebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// dateOnly truncates a timestamp to its calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
