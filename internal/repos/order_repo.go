package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"fashionstore/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// Begin opens the transaction that scopes one order placement. Stock
// decrements and the header/item inserts all ride on it.
func (r *OrderRepo) Begin() (*sqlx.Tx, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, domain.Storage("begin order tx", err)
	}
	return tx, nil
}

// CreateWithItemsTx inserts the order header and all of its line items inside
// the caller's transaction. Any constraint violation fails the whole batch.
func (r *OrderRepo) CreateWithItemsTx(tx *sqlx.Tx, o domain.Order, items []domain.OrderItem) error {
	_, err := tx.Exec(`
	  INSERT INTO orders(id, user_id, total, status, shipping_address, payment_method, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.UserID, o.Total, o.Status, o.ShippingAddress, o.PaymentMethod, o.CreatedAt)
	if err != nil {
		return domain.Storage("insert order", err)
	}
	for _, it := range items {
		_, err := tx.Exec(`
		  INSERT INTO order_items(id, order_id, product_id, quantity, price)
		  VALUES(?, ?, ?, ?, ?)
		`, it.ID, o.ID, it.ProductID, it.Quantity, it.Price)
		if err != nil {
			return domain.Storage("insert order item", err)
		}
	}
	return nil
}

// ItemDetail joins a line item with its product name for display.
type ItemDetail struct {
	ProductID string          `db:"product_id" json:"product_id"`
	Name      string          `db:"name" json:"name"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Subtotal  decimal.Decimal `db:"-" json:"subtotal"`
}

func (r *OrderRepo) Get(id string) (domain.Order, []ItemDetail, error) {
	var o domain.Order
	err := r.db.Get(&o, `
		SELECT id, user_id, total, status, shipping_address, payment_method, created_at
		FROM orders WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, nil, &domain.NotFoundError{Entity: "order", ID: id}
	}
	if err != nil {
		return domain.Order{}, nil, domain.Storage("get order", err)
	}

	items := []ItemDetail{}
	err = r.db.Select(&items, `
		SELECT oi.product_id, p.name, oi.quantity, oi.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY p.name
	`, id)
	if err != nil {
		return domain.Order{}, nil, domain.Storage("get order items", err)
	}
	for i := range items {
		items[i].Subtotal = items[i].Price.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
	}
	return o, items, nil
}

// List returns all orders, oldest first. Ties on the timestamp break on id
// so repeated listings stay deterministic.
func (r *OrderRepo) List() ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.Select(&out, `
		SELECT id, user_id, total, status, shipping_address, payment_method, created_at
		FROM orders
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, domain.Storage("list orders", err)
	}
	return out, nil
}

func (r *OrderRepo) ListByUser(userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	err := r.db.Select(&out, `
		SELECT id, user_id, total, status, shipping_address, payment_method, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, domain.Storage("list orders by user", err)
	}
	return out, nil
}

// UpdateStatus applies a status transition to a committed order. Illegal
// moves (shipped back to paid, leaving a terminal state) are rejected before
// any write happens.
func (r *OrderRepo) UpdateStatus(id, status string) error {
	if !domain.ValidStatus(status) {
		return domain.Validation("unknown order status %q", status)
	}
	tx, err := r.db.Beginx()
	if err != nil {
		return domain.Storage("begin status tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	var cur string
	err = tx.Get(&cur, `SELECT status FROM orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Entity: "order", ID: id}
	}
	if err != nil {
		return domain.Storage("read order status", err)
	}
	if !domain.CanTransition(cur, status) {
		return domain.Validation("order %s cannot move from %s to %s", id, cur, status)
	}
	if _, err := tx.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id); err != nil {
		return domain.Storage("update order status", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Storage("commit status tx", err)
	}
	return nil
}
