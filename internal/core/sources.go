package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// Order is the slice of an order this subsystem needs to invoice it.
// Order management itself lives outside this core.
type Order struct {
	ID       int64
	UserID   int64
	SellerID int64
	Total    decimal.Decimal
	Lines    []OrderLine
}

type OrderLine struct {
	ProductID int64
	Price     decimal.Decimal
	Quantity  decimal.Decimal
	Discount  decimal.Decimal
}

// ProductInfo carries the product fields used for invoice line
// descriptions.
type ProductInfo struct {
	Name string
	SKU  string
}

// OrderSource resolves orders from the surrounding commerce platform.
// Implementations return ErrOrderNotFound for unknown ids.
type OrderSource interface {
	FindByID(ctx context.Context, orderID int64) (*Order, error)
}

// ProductSource resolves product master data for line descriptions.
// Implementations return ErrProductNotFound for unknown ids.
type ProductSource interface {
	FindByID(ctx context.Context, productID int64) (*ProductInfo, error)
}
