package core_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"commerce-ledger/internal/core"
	"commerce-ledger/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// setupTestDB connects to the dedicated test database, applies migrations,
// wipes all tables and reseeds the chart of accounts. Integration tests are
// skipped unless TEST_DATABASE_URL is set, to protect live databases.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE invoice_items, invoices, entries, transactions, invoice_sequences, accounts
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}

	if err := core.SeedChartOfAccounts(ctx, pool); err != nil {
		t.Fatalf("Failed to seed chart of accounts: %v", err)
	}

	return pool
}

// accountIDs maps chart account codes to their ids.
func accountIDs(t *testing.T, pool *pgxpool.Pool) map[string]int64 {
	t.Helper()
	rows, err := pool.Query(context.Background(), "SELECT code, id FROM accounts")
	if err != nil {
		t.Fatalf("Failed to query accounts: %v", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var code string
		var id int64
		if err := rows.Scan(&code, &id); err != nil {
			t.Fatalf("Failed to scan account: %v", err)
		}
		ids[code] = id
	}
	return ids
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ── Collaborator fakes ───────────────────────────────────────────────────────

type stubOrders struct {
	orders map[int64]*core.Order
}

func (s *stubOrders) FindByID(ctx context.Context, orderID int64) (*core.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", orderID, core.ErrOrderNotFound)
	}
	return o, nil
}

type stubProducts struct {
	products map[int64]*core.ProductInfo
}

func (s *stubProducts) FindByID(ctx context.Context, productID int64) (*core.ProductInfo, error) {
	p, ok := s.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, core.ErrProductNotFound)
	}
	return p, nil
}

type stubAuthority struct {
	generateSuccess bool
	cancelSuccess   bool
	generateErr     error
	cancelErr       error
	generateCalls   int
	cancelCalls     int
}

func (s *stubAuthority) GenerateInvoice(ctx context.Context, inv *core.Invoice) (*core.AuthorityResult, error) {
	s.generateCalls++
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return &core.AuthorityResult{Success: s.generateSuccess, AuthorizationCode: "AUTH-1", Message: "stub"}, nil
}

func (s *stubAuthority) CancelInvoice(ctx context.Context, inv *core.Invoice, reason string) (*core.AuthorityResult, error) {
	s.cancelCalls++
	if s.cancelErr != nil {
		return nil, s.cancelErr
	}
	return &core.AuthorityResult{Success: s.cancelSuccess, Message: "stub"}, nil
}

// defaultOrders returns the order fixtures shared across invoice tests.
func defaultOrders() *stubOrders {
	return &stubOrders{orders: map[int64]*core.Order{
		42: {
			ID: 42, UserID: 7, SellerID: 3,
			Total: d("112.00"),
			Lines: []core.OrderLine{
				{ProductID: 100, Price: d("30.00"), Quantity: d("2"), Discount: d("0")},
				{ProductID: 101, Price: d("40.00"), Quantity: d("1"), Discount: d("2.61")},
			},
		},
		43: {
			ID: 43, UserID: 8, SellerID: 3,
			Total: d("50.00"),
			Lines: []core.OrderLine{
				{ProductID: 100, Price: d("43.48"), Quantity: d("1"), Discount: d("0")},
			},
		},
		44: {
			ID: 44, UserID: 9, SellerID: 4,
			Total: d("0.00"),
			Lines: []core.OrderLine{
				{ProductID: 102, Price: d("0.00"), Quantity: d("1"), Discount: d("0")},
			},
		},
	}}
}

func defaultProducts() *stubProducts {
	return &stubProducts{products: map[int64]*core.ProductInfo{
		100: {Name: "Mechanical Keyboard", SKU: "KB-100"},
		101: {Name: "USB Hub", SKU: "HUB-101"},
		102: {Name: "Promotional Sticker Pack", SKU: "PROMO-102"},
	}}
}

// newTestInvoiceService wires an InvoiceService against the test database
// with stub collaborators and a no-op logger.
func newTestInvoiceService(pool *pgxpool.Pool, authority core.TaxAuthority) core.InvoiceService {
	ledger := core.NewLedger(pool, zerolog.Nop())
	return core.NewInvoiceService(
		pool,
		ledger,
		core.NewAccountService(pool),
		defaultOrders(),
		defaultProducts(),
		authority,
		core.PostingPolicy{
			TaxRate:               d("0.15"),
			ReceivableAccountCode: "ACCOUNTS_RECEIVABLE",
			RevenueAccountCode:    "SALES_REVENUE",
			TaxPayableAccountCode: "TAX_PAYABLE",
		},
		3,
		zerolog.Nop(),
	)
}
