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

// InvoiceFilter narrows List results. Nil fields are ignored.
type InvoiceFilter struct {
	Status   *InvoiceStatus
	UserID   *int64
	SellerID *int64
}

// InvoiceService drives the invoice lifecycle: it turns completed orders
// into balanced ledger transactions plus statutory invoices, synchronizes
// with the external tax authority, and cancels via compensating reversal
// transactions. Generation is idempotent per order.
type InvoiceService interface {
	// Generate creates (or returns the existing) invoice for an order,
	// posting the canonical sale transaction. Authority failure is
	// non-fatal: the invoice stays ISSUED for manual retry.
	Generate(ctx context.Context, orderID int64) (*Invoice, error)

	// Cancel asks the authority first and only then writes: it records a
	// mirrored reversal transaction and marks the invoice CANCELLED, both
	// in one atomic unit. Cancelling a cancelled invoice fails cleanly.
	Cancel(ctx context.Context, invoiceID int64, reason string) (*Invoice, error)

	Create(ctx context.Context, inv *Invoice) (*Invoice, error)
	GetByID(ctx context.Context, id int64) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	GetByOrderID(ctx context.Context, orderID int64) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) (*Invoice, error)
	AddItem(ctx context.Context, invoiceID int64, item InvoiceItem) (*InvoiceItem, error)
	ListItems(ctx context.Context, invoiceID int64) ([]InvoiceItem, error)
	List(ctx context.Context, filter InvoiceFilter, page, perPage int) ([]Invoice, int, error)
}

type invoiceService struct {
	pool        *pgxpool.Pool
	ledger      *Ledger
	accounts    AccountService
	orders      OrderSource
	products    ProductSource
	authority   TaxAuthority
	policy      PostingPolicy
	maxAttempts int
	log         zerolog.Logger
}

func NewInvoiceService(
	pool *pgxpool.Pool,
	ledger *Ledger,
	accounts AccountService,
	orders OrderSource,
	products ProductSource,
	authority TaxAuthority,
	policy PostingPolicy,
	numberingMaxAttempts int,
	log zerolog.Logger,
) InvoiceService {
	if numberingMaxAttempts < 1 {
		numberingMaxAttempts = 1
	}
	return &invoiceService{
		pool:        pool,
		ledger:      ledger,
		accounts:    accounts,
		orders:      orders,
		products:    products,
		authority:   authority,
		policy:      policy,
		maxAttempts: numberingMaxAttempts,
		log:         log,
	}
}

// ── Generate ─────────────────────────────────────────────────────────────────

func (s *invoiceService) Generate(ctx context.Context, orderID int64) (*Invoice, error) {
	// Idempotency guard. The unique index on invoices.order_id closes the
	// remaining check-then-act window below.
	existing, err := s.GetByOrderID(ctx, orderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrInvoiceNotFound) {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	receivable, err := s.accounts.GetByCode(ctx, s.policy.ReceivableAccountCode)
	if err != nil {
		return nil, err
	}
	revenue, err := s.accounts.GetByCode(ctx, s.policy.RevenueAccountCode)
	if err != nil {
		return nil, err
	}
	taxPayable, err := s.accounts.GetByCode(ctx, s.policy.TaxPayableAccountCode)
	if err != nil {
		return nil, err
	}

	entries := s.policy.SaleEntries(receivable.ID, revenue.ID, taxPayable.ID, order.Total, order.ID)
	subtotal, tax := s.policy.SaleSplit(order.Total)
	items := s.buildItems(ctx, order)

	var inv *Invoice
	for attempt := 1; ; attempt++ {
		inv, err = s.generateOnce(ctx, order, entries, subtotal, tax, items)
		if err == nil {
			break
		}
		if isUniqueViolation(err, "order_id") {
			// Lost the race: a concurrent call created the invoice first.
			return s.GetByOrderID(ctx, orderID)
		}
		if isUniqueViolation(err, "invoice_number") {
			if attempt < s.maxAttempts {
				s.log.Warn().Int("attempt", attempt).Int64("order_id", orderID).
					Msg("invoice number conflict, retrying")
				continue
			}
			return nil, fmt.Errorf("order %d after %d attempts: %w", orderID, attempt, ErrNumberingConflict)
		}
		return nil, err
	}

	s.log.Info().
		Int64("order_id", orderID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("total", inv.TotalAmount.StringFixed(2)).
		Msg("invoice issued")

	return s.authorize(ctx, inv)
}

// buildItems converts order lines to invoice items, resolving product
// descriptions where the product source knows them.
func (s *invoiceService) buildItems(ctx context.Context, order *Order) []InvoiceItem {
	items := make([]InvoiceItem, 0, len(order.Lines))
	for i, line := range order.Lines {
		desc := fmt.Sprintf("product %d", line.ProductID)
		sku := ""
		if prod, err := s.products.FindByID(ctx, line.ProductID); err == nil {
			desc = prod.Name
			sku = prod.SKU
		}

		taxAmount, total := s.policy.ItemAmounts(line.Price, line.Quantity, line.Discount)
		items = append(items, InvoiceItem{
			LineNumber:  i + 1,
			ProductID:   line.ProductID,
			Description: desc,
			Quantity:    line.Quantity,
			UnitPrice:   line.Price,
			Discount:    line.Discount,
			TaxRate:     s.policy.TaxRate,
			TaxAmount:   taxAmount,
			Total:       total,
			ProductCode: sku,
		})
	}
	return items
}

// generateOnce runs one attempt of the atomic unit of work: sale
// transaction, invoice number allocation, invoice row and items commit
// together or not at all.
func (s *invoiceService) generateOnce(ctx context.Context, order *Order, entries []Entry, subtotal, tax decimal.Decimal, items []InvoiceItem) (*Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	saleTx, err := s.ledger.createTransactionTx(ctx, tx, &Transaction{
		ReferenceNumber: "TXN-" + uuid.NewString(),
		TransactionDate: dateOnly(time.Now()),
		Description:     fmt.Sprintf("Sale for order %d", order.ID),
		Type:            TransactionSale,
		UserID:          order.UserID,
		OrderID:         &order.ID,
		Entries:         entries,
	})
	if err != nil {
		return nil, err
	}

	number, err := nextInvoiceNumberTx(ctx, tx)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		InvoiceNumber: number,
		OrderID:       order.ID,
		UserID:        order.UserID,
		SellerID:      order.SellerID,
		TransactionID: &saleTx.ID,
		IssueDate:     dateOnly(time.Now()),
		Subtotal:      subtotal,
		TaxAmount:     tax,
		TotalAmount:   order.Total,
		Status:        InvoiceIssued,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, order_id, user_id, seller_id, transaction_id,
		                      issue_date, subtotal, tax_amount, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, inv.InvoiceNumber, inv.OrderID, inv.UserID, inv.SellerID, inv.TransactionID,
		inv.IssueDate, inv.Subtotal, inv.TaxAmount, inv.TotalAmount, string(inv.Status),
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert invoice for order %d: %w", order.ID, err)
	}

	for i := range items {
		item := &items[i]
		item.InvoiceID = inv.ID
		if err := insertItemTx(ctx, tx, item); err != nil {
			return nil, err
		}
	}
	inv.Items = items

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invoice generation: %w", err)
	}
	return inv, nil
}

// authorize reports the freshly issued invoice to the tax authority. A
// rejection or transport failure is logged and swallowed: the invoice is
// returned ISSUED and the sale transaction stays unposted for manual retry.
func (s *invoiceService) authorize(ctx context.Context, inv *Invoice) (*Invoice, error) {
	res, err := s.authority.GenerateInvoice(ctx, inv)
	if err != nil || !res.Success {
		evt := s.log.Warn().Str("invoice_number", inv.InvoiceNumber)
		if err != nil {
			evt = evt.Err(err)
		} else {
			evt = evt.Str("authority_message", res.Message)
		}
		evt.Msg("authority did not confirm invoice, left ISSUED")
		return inv, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if inv.TransactionID != nil {
		if err := s.ledger.postTransactionTx(ctx, tx, *inv.TransactionID); err != nil {
			return nil, err
		}
	}
	if _, err := tx.Exec(ctx,
		"UPDATE invoices SET status = $1 WHERE id = $2 AND status = $3",
		string(InvoiceAuthorized), inv.ID, string(InvoiceIssued),
	); err != nil {
		return nil, fmt.Errorf("failed to mark invoice %d authorized: %w", inv.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit authorization: %w", err)
	}

	inv.Status = InvoiceAuthorized
	s.log.Info().Str("invoice_number", inv.InvoiceNumber).
		Str("authorization_code", res.AuthorizationCode).
		Msg("invoice authorized")
	return inv, nil
}

// ── Cancel ───────────────────────────────────────────────────────────────────

func (s *invoiceService) Cancel(ctx context.Context, invoiceID int64, reason string) (*Invoice, error) {
	inv, err := s.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == InvoiceCancelled {
		return nil, fmt.Errorf("invoice %s: %w", inv.InvoiceNumber, ErrInvoiceCancelled)
	}

	// The authority decides first. If it declines or is unreachable the
	// whole cancellation fails and the invoice keeps its prior status.
	res, err := s.authority.CancelInvoice(ctx, inv, reason)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthorityRejected, err)
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrAuthorityRejected, res.Message)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Re-check under the row lock so a concurrent cancel cannot
	// double-reverse.
	var status InvoiceStatus
	err = tx.QueryRow(ctx,
		"SELECT status FROM invoices WHERE id = $1 FOR UPDATE", invoiceID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d: %w", invoiceID, ErrInvoiceNotFound)
		}
		return nil, fmt.Errorf("failed to lock invoice %d: %w", invoiceID, err)
	}
	if status == InvoiceCancelled {
		return nil, fmt.Errorf("invoice %s: %w", inv.InvoiceNumber, ErrInvoiceCancelled)
	}

	if inv.TransactionID != nil {
		original, err := s.ledger.fetchTransaction(ctx, tx, "id = $1", *inv.TransactionID)
		if err != nil {
			return nil, err
		}

		reversal, err := s.ledger.createTransactionTx(ctx, tx, &Transaction{
			ReferenceNumber: ReversalReference(original.ReferenceNumber),
			TransactionDate: dateOnly(time.Now()),
			Description:     fmt.Sprintf("Reversal of invoice %s: %s", inv.InvoiceNumber, reason),
			Type:            TransactionReversal,
			UserID:          inv.UserID,
			OrderID:         original.OrderID,
			Entries:         ReversalEntries(original.Entries),
		})
		if err != nil {
			return nil, err
		}
		// The reversal is final the moment it exists.
		if err := s.ledger.postTransactionTx(ctx, tx, reversal.ID); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE invoices SET status = $1, cancel_reason = $2 WHERE id = $3",
		string(InvoiceCancelled), reason, invoiceID,
	); err != nil {
		return nil, fmt.Errorf("failed to cancel invoice %d: %w", invoiceID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	s.log.Info().Str("invoice_number", inv.InvoiceNumber).Str("reason", reason).
		Msg("invoice cancelled")
	return s.GetByID(ctx, invoiceID)
}

// ── CRUD and queries ─────────────────────────────────────────────────────────

const invoiceColumns = `id, invoice_number, order_id, user_id, seller_id, transaction_id,
	issue_date, subtotal, tax_amount, total_amount, status, cancel_reason, created_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.OrderID, &inv.UserID, &inv.SellerID,
		&inv.TransactionID, &inv.IssueDate, &inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount,
		&inv.Status, &inv.CancelReason, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create persists a DRAFT invoice shell. Items are attached with AddItem;
// the invoice number is allocated immediately so drafts are sequenced too.
func (s *invoiceService) Create(ctx context.Context, inv *Invoice) (*Invoice, error) {
	for attempt := 1; ; attempt++ {
		created, err := s.createOnce(ctx, inv)
		if err == nil {
			return created, nil
		}
		if isUniqueViolation(err, "invoice_number") && attempt < s.maxAttempts {
			continue
		}
		if isUniqueViolation(err, "invoice_number") {
			return nil, fmt.Errorf("order %d after %d attempts: %w", inv.OrderID, attempt, ErrNumberingConflict)
		}
		return nil, err
	}
}

func (s *invoiceService) createOnce(ctx context.Context, inv *Invoice) (*Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	number, err := nextInvoiceNumberTx(ctx, tx)
	if err != nil {
		return nil, err
	}

	issueDate := inv.IssueDate
	if issueDate.IsZero() {
		issueDate = dateOnly(time.Now())
	}

	created := &Invoice{
		InvoiceNumber: number,
		OrderID:       inv.OrderID,
		UserID:        inv.UserID,
		SellerID:      inv.SellerID,
		TransactionID: inv.TransactionID,
		IssueDate:     issueDate,
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		Status:        InvoiceDraft,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, order_id, user_id, seller_id, transaction_id,
		                      issue_date, subtotal, tax_amount, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, number, created.OrderID, created.UserID, created.SellerID, created.TransactionID,
		created.IssueDate, created.Subtotal, created.TaxAmount, created.TotalAmount,
		string(created.Status),
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert invoice: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invoice creation: %w", err)
	}
	return created, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id int64) (*Invoice, error) {
	return s.fetchInvoice(ctx, "id = $1", id)
}

func (s *invoiceService) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	return s.fetchInvoice(ctx, "invoice_number = $1", number)
}

func (s *invoiceService) GetByOrderID(ctx context.Context, orderID int64) (*Invoice, error) {
	return s.fetchInvoice(ctx, "order_id = $1", orderID)
}

func (s *invoiceService) fetchInvoice(ctx context.Context, where string, arg any) (*Invoice, error) {
	inv, err := scanInvoice(s.pool.QueryRow(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE "+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %v: %w", arg, ErrInvoiceNotFound)
		}
		return nil, fmt.Errorf("failed to fetch invoice %v: %w", arg, err)
	}

	items, err := s.ListItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

// Update mutates header fields of a DRAFT invoice. Anything past DRAFT is
// immutable apart from the lifecycle transitions.
func (s *invoiceService) Update(ctx context.Context, inv *Invoice) (*Invoice, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status InvoiceStatus
	err = tx.QueryRow(ctx,
		"SELECT status FROM invoices WHERE id = $1 FOR UPDATE", inv.ID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d: %w", inv.ID, ErrInvoiceNotFound)
		}
		return nil, fmt.Errorf("failed to lock invoice %d: %w", inv.ID, err)
	}
	if status != InvoiceDraft {
		return nil, fmt.Errorf("invoice %d is %s: %w", inv.ID, status, ErrInvoiceNotEditable)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE invoices
		SET issue_date = $1, subtotal = $2, tax_amount = $3, total_amount = $4
		WHERE id = $5
	`, inv.IssueDate, inv.Subtotal, inv.TaxAmount, inv.TotalAmount, inv.ID); err != nil {
		return nil, fmt.Errorf("failed to update invoice %d: %w", inv.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invoice update: %w", err)
	}
	return s.GetByID(ctx, inv.ID)
}

// AddItem appends a line to a DRAFT invoice, computing its tax and total
// under the injected posting policy.
func (s *invoiceService) AddItem(ctx context.Context, invoiceID int64, item InvoiceItem) (*InvoiceItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status InvoiceStatus
	err = tx.QueryRow(ctx,
		"SELECT status FROM invoices WHERE id = $1 FOR UPDATE", invoiceID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invoice %d: %w", invoiceID, ErrInvoiceNotFound)
		}
		return nil, fmt.Errorf("failed to lock invoice %d: %w", invoiceID, err)
	}
	if status != InvoiceDraft {
		return nil, fmt.Errorf("invoice %d is %s: %w", invoiceID, status, ErrInvoiceNotEditable)
	}

	var next int
	if err := tx.QueryRow(ctx,
		"SELECT COALESCE(MAX(line_number), 0) + 1 FROM invoice_items WHERE invoice_id = $1",
		invoiceID,
	).Scan(&next); err != nil {
		return nil, fmt.Errorf("failed to compute line number: %w", err)
	}

	item.InvoiceID = invoiceID
	item.LineNumber = next
	item.TaxRate = s.policy.TaxRate
	item.TaxAmount, item.Total = s.policy.ItemAmounts(item.UnitPrice, item.Quantity, item.Discount)
	if err := insertItemTx(ctx, tx, &item); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit invoice item: %w", err)
	}
	return &item, nil
}

func insertItemTx(ctx context.Context, tx pgx.Tx, item *InvoiceItem) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO invoice_items (invoice_id, line_number, product_id, description, quantity,
		                           unit_price, discount, tax_rate, tax_amount, total, product_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, item.InvoiceID, item.LineNumber, item.ProductID, item.Description, item.Quantity,
		item.UnitPrice, item.Discount, item.TaxRate, item.TaxAmount, item.Total, item.ProductCode,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to insert invoice item %d: %w", item.LineNumber, err)
	}
	return nil
}

func (s *invoiceService) ListItems(ctx context.Context, invoiceID int64) ([]InvoiceItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, invoice_id, line_number, product_id, description, quantity,
		       unit_price, discount, tax_rate, tax_amount, total, product_code
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY line_number
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for invoice %d: %w", invoiceID, err)
	}
	defer rows.Close()

	var items []InvoiceItem
	for rows.Next() {
		var it InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.LineNumber, &it.ProductID, &it.Description,
			&it.Quantity, &it.UnitPrice, &it.Discount, &it.TaxRate, &it.TaxAmount,
			&it.Total, &it.ProductCode); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// List returns invoice headers (no items) matching the filter, newest
// first, plus the total match count for pagination.
func (s *invoiceService) List(ctx context.Context, filter InvoiceFilter, page, perPage int) ([]Invoice, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	where := "WHERE 1=1"
	var args []any
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.SellerID != nil {
		args = append(args, *filter.SellerID)
		where += fmt.Sprintf(" AND seller_id = $%d", len(args))
	}

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM invoices "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	args = append(args, perPage, (page-1)*perPage)
	q := fmt.Sprintf("SELECT %s FROM invoices %s ORDER BY id DESC LIMIT $%d OFFSET $%d",
		invoiceColumns, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.OrderID, &inv.UserID, &inv.SellerID,
			&inv.TransactionID, &inv.IssueDate, &inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount,
			&inv.Status, &inv.CancelReason, &inv.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}
