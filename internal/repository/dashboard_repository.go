package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/epinapi/epin-store/internal/model"
)

// DashboardSummary aggregates the storefront's headline numbers.
type DashboardSummary struct {
	TotalSales  float64 // sum of completed order totals
	TotalOrders uint64
	TotalUsers  uint64
	ActiveUsers uint64
}

// DailySales is one day's completed revenue and order count.
type DailySales struct {
	Date       time.Time
	TotalSales float64
	OrderCount uint64
}

// TopEpin ranks a pin name by number of completed sales.
type TopEpin struct {
	Name      string
	SoldCount uint64
}

// DashboardRepo runs the admin dashboard aggregation queries. It is
// read-only; all writes happen through the entity repositories.
type DashboardRepo struct{ DB *sql.DB }

func NewDashboardRepo(db *sql.DB) *DashboardRepo { return &DashboardRepo{DB: db} }

// Summary returns totals across orders and users.
func (r *DashboardRepo) Summary(ctx context.Context) (DashboardSummary, error) {
	var s DashboardSummary
	err := r.DB.QueryRowContext(ctx,
		`SELECT
		   COALESCE((SELECT SUM(total_price) FROM orders WHERE status=?),0),
		   (SELECT COUNT(*) FROM orders),
		   (SELECT COUNT(*) FROM users),
		   (SELECT COUNT(*) FROM users WHERE is_active=1)`,
		model.OrderCompleted.String()).
		Scan(&s.TotalSales, &s.TotalOrders, &s.TotalUsers, &s.ActiveUsers)
	return s, err
}

// SalesSince groups completed orders per calendar day from start onward.
func (r *DashboardRepo) SalesSince(ctx context.Context, start time.Time) ([]DailySales, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DATE(order_date), SUM(total_price), COUNT(*)
		 FROM orders WHERE status=? AND order_date >= ?
		 GROUP BY DATE(order_date) ORDER BY DATE(order_date)`,
		model.OrderCompleted.String(), start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailySales
	for rows.Next() {
		var d DailySales
		if err := rows.Scan(&d.Date, &d.TotalSales, &d.OrderCount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TopEpins returns the best-selling pin names among completed orders.
func (r *DashboardRepo) TopEpins(ctx context.Context, limit int) ([]TopEpin, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT e.name, COUNT(*) AS sold
		 FROM orders o JOIN epins e ON e.id = o.epin_id
		 WHERE o.status=?
		 GROUP BY e.name ORDER BY sold DESC LIMIT ?`,
		model.OrderCompleted.String(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopEpin
	for rows.Next() {
		var t TopEpin
		if err := rows.Scan(&t.Name, &t.SoldCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
