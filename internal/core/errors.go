package core

import "errors"

// Domain errors. Storage errors bubble up wrapped with %w; business-rule
// violations are translated into these sentinels at the service boundary
// and checked with errors.Is.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrProductNotFound     = errors.New("product not found")

	// ErrInvoiceCancelled rejects any operation on an invoice that has
	// already reached its terminal state.
	ErrInvoiceCancelled = errors.New("invoice is already cancelled")

	// ErrInvoiceNotEditable rejects mutation of an invoice past DRAFT.
	ErrInvoiceNotEditable = errors.New("invoice can no longer be edited")

	// ErrTransactionPosted rejects any mutation of a posted transaction or
	// its entries.
	ErrTransactionPosted = errors.New("transaction is posted and immutable")

	// ErrUnbalancedTransaction means total debits != total credits. An
	// unbalanced transaction must never be persisted or posted.
	ErrUnbalancedTransaction = errors.New("transaction debits do not equal credits")

	// ErrAuthorityRejected means the external tax authority declined or
	// failed the requested operation.
	ErrAuthorityRejected = errors.New("tax authority rejected the operation")

	// ErrNumberingConflict surfaces after invoice number allocation has
	// exhausted its bounded retry budget.
	ErrNumberingConflict = errors.New("invoice number allocation conflict")
)
