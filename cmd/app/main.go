package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"commerce-ledger/internal/config"
	"commerce-ledger/internal/core"
	"commerce-ledger/internal/db"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	ledger := core.NewLedger(pool, logger)
	reporting := core.NewReportingService(pool, ledger)
	accounts := core.NewAccountService(pool)

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "migrate":
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("Migrations applied.")

	case "seed":
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		if err := core.SeedChartOfAccounts(ctx, pool); err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
		fmt.Println("Chart of accounts seeded.")

	case "balances":
		list, err := accounts.List(ctx, true)
		if err != nil {
			log.Fatalf("Failed to list accounts: %v", err)
		}
		for _, a := range list {
			bal, err := ledger.GetAccountBalance(ctx, a.ID, nil)
			if err != nil {
				log.Fatalf("Failed to compute balance for %s: %v", a.Code, err)
			}
			fmt.Printf("%-28s %-10s %12s\n", a.Code, a.Type, bal.StringFixed(2))
		}

	case "balance-sheet":
		report, err := reporting.BalanceSheet(ctx, nil)
		if err != nil {
			log.Fatalf("Failed to build balance sheet: %v", err)
		}
		printSection("ASSETS", report.Assets, report.TotalAssets)
		printSection("LIABILITIES", report.Liabilities, report.TotalLiabilities)
		printSection("EQUITY", report.Equity, report.TotalEquity)
		fmt.Printf("Balanced: %v\n", report.IsBalanced)

	case "income-statement":
		if len(os.Args) < 4 {
			log.Fatal("Usage: app income-statement <start YYYY-MM-DD> <end YYYY-MM-DD>")
		}
		start, err := time.Parse("2006-01-02", os.Args[2])
		if err != nil {
			log.Fatalf("Invalid start date: %v", err)
		}
		end, err := time.Parse("2006-01-02", os.Args[3])
		if err != nil {
			log.Fatalf("Invalid end date: %v", err)
		}
		report, err := reporting.IncomeStatement(ctx, start, end)
		if err != nil {
			log.Fatalf("Failed to build income statement: %v", err)
		}
		printSection("REVENUE", report.Revenue, report.TotalRevenue)
		printSection("EXPENSES", report.Expenses, report.TotalExpenses)
		fmt.Printf("Net income: %s\n", report.NetIncome.StringFixed(2))

	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: app <migrate|seed|balances|balance-sheet|income-statement>")
	os.Exit(2)
}

func printSection(title string, lines []core.AccountLine, total decimal.Decimal) {
	fmt.Println(title)
	for _, l := range lines {
		fmt.Printf("  %-28s %12s\n", l.Code, l.Balance.StringFixed(2))
	}
	fmt.Printf("  %-28s %12s\n", "TOTAL", total.StringFixed(2))
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var out = os.Stderr
	logger := zerolog.New(out)
	if cfg.LogFormat == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Logger(), nil
}
