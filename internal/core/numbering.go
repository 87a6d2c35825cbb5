package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const invoiceSequenceScope = "invoice"

// nextInvoiceNumberTx allocates the next invoice number inside the caller's
// database transaction. The upsert takes a row lock on the sequence row, so
// concurrent allocations serialize and the resulting numbers are strictly
// increasing and collision-free. The number only becomes durable when the
// surrounding transaction commits.
func nextInvoiceNumberTx(ctx context.Context, tx pgx.Tx) (string, error) {
	var n int64
	err := tx.QueryRow(ctx, `
		INSERT INTO invoice_sequences (scope, last_number)
		VALUES ($1, 1)
		ON CONFLICT (scope)
		DO UPDATE SET last_number = invoice_sequences.last_number + 1
		RETURNING last_number
	`, invoiceSequenceScope).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	return FormatInvoiceNumber(n), nil
}

// isUniqueViolation reports whether err is a unique-constraint violation,
// optionally on a specific constraint name.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || strings.Contains(pgErr.ConstraintName, constraint)
}
