package pos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/scope"
)

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads POS data under the caller's scope.
type Repository struct {
	db DB
}

// NewRepository builds a Repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// ListProducts lists the caller's tenant products.
func (r *Repository) ListProducts(ctx context.Context, ac access.Context, f ListFilters) (Page[Product], error) {
	q := scope.Products.Query(ac).
		Select("products.id", "products.tenant_id", "products.category_id", "products.sku", "products.name", "products.price", "products.is_active", "products.created_at").
		OrderBy("products.name")
	if f.IsActive != nil {
		q.Where("products.is_active", *f.IsActive)
	}
	return list(ctx, r.db, scope.Products, ac, q, f, func(row pgx.Rows) (Product, error) {
		var p Product
		err := row.Scan(&p.ID, &p.TenantID, &p.CategoryID, &p.SKU, &p.Name, &p.Price, &p.IsActive, &p.CreatedAt)
		return p, err
	})
}

// ListSuppliers lists suppliers, optionally of one tenant.
func (r *Repository) ListSuppliers(ctx context.Context, ac access.Context, f ListFilters) (Page[Supplier], error) {
	q := scope.Suppliers.Query(ac).
		Select("suppliers.id", "suppliers.tenant_id", "suppliers.name", "COALESCE(suppliers.phone, '')", "suppliers.is_active").
		OrderBy("suppliers.name")
	if f.TenantID != nil {
		q.Where("suppliers."+scope.TenantColumn, *f.TenantID)
	}
	if f.IsActive != nil {
		q.Where("suppliers.is_active", *f.IsActive)
	}
	return list(ctx, r.db, scope.Suppliers, ac, q, f, func(row pgx.Rows) (Supplier, error) {
		var s Supplier
		err := row.Scan(&s.ID, &s.TenantID, &s.Name, &s.Phone, &s.IsActive)
		return s, err
	})
}

// ListStocks lists stock levels, optionally of one store.
func (r *Repository) ListStocks(ctx context.Context, ac access.Context, f ListFilters) (Page[Stock], error) {
	q := scope.Stocks.Query(ac).
		Select("stocks.id", "stocks.tenant_id", "stocks.store_id", "stocks.product_id", "stocks.quantity", "stocks.min_stock").
		OrderBy("stocks.store_id", "stocks.product_id")
	if f.StoreID != nil {
		q.Where("stocks."+scope.StoreColumn, *f.StoreID)
	}
	return list(ctx, r.db, scope.Stocks, ac, q, f, func(row pgx.Rows) (Stock, error) {
		var s Stock
		err := row.Scan(&s.ID, &s.TenantID, &s.StoreID, &s.ProductID, &s.Quantity, &s.MinStock)
		return s, err
	})
}

// ListTransactions lists sales, newest first.
func (r *Repository) ListTransactions(ctx context.Context, ac access.Context, f ListFilters) (Page[Transaction], error) {
	q := scope.Transactions.Query(ac).
		Select("transactions.id", "transactions.tenant_id", "transactions.store_id", "transactions.cashier_id", "transactions.number", "transactions.total", "transactions.status", "transactions.created_at").
		OrderBy("transactions.created_at DESC")
	if f.StoreID != nil {
		q.Where("transactions."+scope.StoreColumn, *f.StoreID)
	}
	if f.CashierID != nil {
		q.Where("transactions.cashier_id", *f.CashierID)
	}
	return list(ctx, r.db, scope.Transactions, ac, q, f, func(row pgx.Rows) (Transaction, error) {
		var t Transaction
		err := row.Scan(&t.ID, &t.TenantID, &t.StoreID, &t.CashierID, &t.Number, &t.Total, &t.Status, &t.CreatedAt)
		return t, err
	})
}

func list[T any](ctx context.Context, db DB, entity scope.Entity, ac access.Context, q *scope.Query, f ListFilters, scan func(pgx.Rows) (T, error)) (Page[T], error) {
	page := Page[T]{Items: []T{}, Page: max(f.Page, 1), Limit: f.limit()}
	if !entity.Visible(ac) {
		return page, nil
	}

	countSQL, countArgs, err := q.CountSQL()
	if err != nil {
		return page, err
	}
	if err := db.QueryRow(ctx, countSQL, countArgs...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("pos: count %s: %w", entity.Table, err)
	}
	if page.Total == 0 {
		return page, nil
	}

	sql, args, err := q.Limit(f.limit()).Offset(f.offset()).SQL()
	if err != nil {
		return page, err
	}
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return page, fmt.Errorf("pos: list %s: %w", entity.Table, err)
	}
	defer rows.Close()
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return page, fmt.Errorf("pos: scan %s: %w", entity.Table, err)
		}
		page.Items = append(page.Items, item)
	}
	return page, rows.Err()
}
