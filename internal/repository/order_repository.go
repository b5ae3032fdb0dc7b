package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/epinapi/epin-store/internal/model"
)

// ErrOrderNotFound is returned when an order cannot be found.
var ErrOrderNotFound = errors.New("order not found")

// OrderFilter narrows order listings. UserID zero means "all users" and is
// only honored for admins; the handler fills it in for regular callers.
type OrderFilter struct {
	UserID    uint64
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

// OrderRepo encapsulates queries against the `orders` table plus the
// purchase transaction that spans users and epins.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// Place executes the purchase as one transaction: lock the buyer and the
// pin, check balance and availability, deduct, mark sold, insert the order.
// Locking both rows keeps two concurrent buyers from selling the same code
// twice or overdrawing a balance.
func (r *OrderRepo) Place(ctx context.Context, userID, epinID uint64) (model.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	defer tx.Rollback()

	var balance float64
	err = tx.QueryRowContext(ctx,
		"SELECT balance FROM users WHERE id=? FOR UPDATE", userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Order{}, ErrUserNotFound
		}
		return model.Order{}, err
	}

	var price float64
	var isSold, isActive bool
	err = tx.QueryRowContext(ctx,
		"SELECT price, is_sold, is_active FROM epins WHERE id=? FOR UPDATE", epinID).
		Scan(&price, &isSold, &isActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Order{}, ErrEpinNotFound
		}
		return model.Order{}, err
	}
	if isSold || !isActive {
		return model.Order{}, ErrEpinUnavailable
	}
	if balance < price {
		return model.Order{}, ErrInsufficientBalance
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET balance = balance - ? WHERE id=?", price, userID); err != nil {
		return model.Order{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE epins SET is_sold=1 WHERE id=?", epinID); err != nil {
		return model.Order{}, err
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (user_id, epin_id, status, total_price, order_date) VALUES (?,?,?,?,?)",
		userID, epinID, model.OrderPending.String(), price, now)
	if err != nil {
		return model.Order{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Order{}, err
	}

	return model.Order{
		ID:         uint64(id),
		UserID:     userID,
		EpinID:     epinID,
		Status:     model.OrderPending,
		TotalPrice: price,
		OrderDate:  now,
	}, nil
}

const orderColumns = "id, user_id, epin_id, status, total_price, order_date"

func scanOrder(row interface{ Scan(...any) error }) (model.Order, error) {
	var o model.Order
	var status string
	err := row.Scan(&o.ID, &o.UserID, &o.EpinID, &status, &o.TotalPrice, &o.OrderDate)
	if err == nil {
		o.Status, _ = model.ParseOrderStatus(status)
	}
	return o, err
}

// List returns orders matching the filter, newest first.
func (r *OrderRepo) List(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + orderColumns + " FROM orders WHERE 1=1")
	args := []any{}
	if f.UserID != 0 {
		sb.WriteString(" AND user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		sb.WriteString(" AND status = ?")
		args = append(args, f.Status)
	}
	if f.StartDate != nil {
		sb.WriteString(" AND order_date >= ?")
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		sb.WriteString(" AND order_date <= ?")
		args = append(args, *f.EndDate)
	}
	sb.WriteString(" ORDER BY order_date DESC, id DESC")

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetByID fetches a single order.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	o, err := scanOrder(r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id=? LIMIT 1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Order{}, ErrOrderNotFound
		}
		return model.Order{}, err
	}
	return o, nil
}

// UpdateStatus moves an order to a new (validated) state.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET status=? WHERE id=?", status.String(), id)
	return err
}
