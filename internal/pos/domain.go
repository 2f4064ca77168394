// Package pos serves the scoped listings of the point-of-sale data: every
// read goes through the row scoping engine for the caller's tenant and store.
package pos

import "time"

// Product is a tenant catalogue entry.
type Product struct {
	ID         int64     `json:"id"`
	TenantID   int64     `json:"tenant_id"`
	CategoryID *int64    `json:"category_id,omitempty"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// Supplier belongs to a tenant.
type Supplier struct {
	ID       int64  `json:"id"`
	TenantID int64  `json:"tenant_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	IsActive bool   `json:"is_active"`
}

// Stock is the quantity of one product held by one store.
type Stock struct {
	ID        int64   `json:"id"`
	TenantID  int64   `json:"tenant_id"`
	StoreID   int64   `json:"store_id"`
	ProductID int64   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	MinStock  float64 `json:"min_stock"`
}

// Low reports whether the stock is at or below its minimum.
func (s Stock) Low() bool {
	return s.Quantity <= s.MinStock
}

// Transaction is a completed sale at a store.
type Transaction struct {
	ID        int64     `json:"id"`
	TenantID  int64     `json:"tenant_id"`
	StoreID   int64     `json:"store_id"`
	CashierID int64     `json:"cashier_id"`
	Number    string    `json:"number"`
	Total     float64   `json:"total"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Default paging.
const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// ListFilters narrows a listing beyond the caller's scope.
type ListFilters struct {
	Page     int
	Limit    int
	IsActive *bool
	// TenantID and StoreID come from the route; guards have already checked
	// them against the caller.
	TenantID  *int64
	StoreID   *int64
	CashierID *int64
}

func (f ListFilters) offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.limit()
}

func (f ListFilters) limit() int {
	switch {
	case f.Limit < 1:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	default:
		return f.Limit
	}
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
