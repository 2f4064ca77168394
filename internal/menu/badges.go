package menu

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vince123890/website-kasir/internal/access"
	"github.com/vince123890/website-kasir/internal/scope"
)

// Querier is the read side of a pgx pool or transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Counter produces the number shown on a badge for the caller.
type Counter func(ctx context.Context, ac access.Context) (int, error)

// Counters is the closed set of badge producers keyed by kind.
type Counters map[BadgeKind]Counter

// DefaultCounters returns the badge producers backed by q. Each one reads a
// scoped entity, so results never cross the caller's tenant or store.
func DefaultCounters(q Querier) Counters {
	return Counters{
		BadgePendingPurchaseOrders: scopedCount(q, scope.PurchaseOrders, func(sq *scope.Query) {
			sq.Where("purchase_orders.status", "pending")
		}),
		BadgeLowStock: scopedCount(q, scope.Stocks, func(sq *scope.Query) {
			sq.WhereRaw("stocks.quantity <= stocks.min_stock")
		}),
		BadgeOpenStoreSessions: scopedCount(q, scope.StoreSessions, func(sq *scope.Query) {
			sq.Where("store_sessions.status", "open")
		}),
		BadgeDraftStockOpnames: scopedCount(q, scope.StockOpnames, func(sq *scope.Query) {
			sq.Where("stock_opnames.status", "draft")
		}),
	}
}

func scopedCount(q Querier, entity scope.Entity, narrow func(*scope.Query)) Counter {
	return func(ctx context.Context, ac access.Context) (int, error) {
		if !entity.Visible(ac) {
			return 0, nil
		}
		sq := entity.Query(ac)
		narrow(sq)
		sql, args, err := sq.CountSQL()
		if err != nil {
			return 0, err
		}
		var n int
		if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
			return 0, fmt.Errorf("menu: count %s: %w", entity.Table, err)
		}
		return n, nil
	}
}
