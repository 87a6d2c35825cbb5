package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	Asset     AccountType = "asset"
	Liability AccountType = "liability"
	Equity    AccountType = "equity"
	Revenue   AccountType = "revenue"
	Expense   AccountType = "expense"
)

// IsDebitNormal reports whether balances of this account type increase on
// the debit side (asset, expense) rather than the credit side.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

type Account struct {
	ID        int64       `json:"id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

type TransactionType string

const (
	TransactionSale       TransactionType = "SALE"
	TransactionAdjustment TransactionType = "ADJUSTMENT"
	TransactionPayment    TransactionType = "PAYMENT"
	TransactionReversal   TransactionType = "REVERSAL"
)

// Transaction is one balanced financial event. Once IsPosted is true the
// transaction and its entries are immutable; any correction is a new
// reversal transaction referencing this one.
type Transaction struct {
	ID              int64           `json:"id"`
	ReferenceNumber string          `json:"reference_number"`
	TransactionDate time.Time       `json:"transaction_date"`
	Description     string          `json:"description"`
	Type            TransactionType `json:"type"`
	UserID          int64           `json:"user_id"`
	OrderID         *int64          `json:"order_id,omitempty"`
	IsPosted        bool            `json:"is_posted"`
	CreatedAt       time.Time       `json:"created_at"`
	Entries         []Entry         `json:"entries"`
}

// Entry is a single debit-or-credit line against one account. Exactly one
// of DebitAmount/CreditAmount carries the value (both may be zero for a
// zero-value economic event).
type Entry struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	AccountID     int64           `json:"account_id"`
	DebitAmount   decimal.Decimal `json:"debit_amount"`
	CreditAmount  decimal.Decimal `json:"credit_amount"`
	Notes         string          `json:"notes"`
}

type InvoiceStatus string

const (
	InvoiceDraft      InvoiceStatus = "DRAFT"
	InvoiceIssued     InvoiceStatus = "ISSUED"
	InvoiceAuthorized InvoiceStatus = "AUTHORIZED"
	InvoiceCancelled  InvoiceStatus = "CANCELLED"
)

var validInvoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:      {InvoiceIssued, InvoiceCancelled},
	InvoiceIssued:     {InvoiceAuthorized, InvoiceCancelled},
	InvoiceAuthorized: {InvoiceCancelled},
}

// CanTransitionTo reports whether the invoice state machine permits moving
// from s to target. CANCELLED is terminal.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	for _, allowed := range validInvoiceTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

type Invoice struct {
	ID            int64           `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	OrderID       int64           `json:"order_id"`
	UserID        int64           `json:"user_id"`
	SellerID      int64           `json:"seller_id"`
	TransactionID *int64          `json:"transaction_id,omitempty"`
	IssueDate     time.Time       `json:"issue_date"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        InvoiceStatus   `json:"status"`
	CancelReason  string          `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []InvoiceItem   `json:"items"`
}

type InvoiceItem struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoice_id"`
	LineNumber  int             `json:"line_number"`
	ProductID   int64           `json:"product_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
	ProductCode string          `json:"product_code,omitempty"`
}
