package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"fashionstore/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, COALESCE(description,'') AS description, price,
  COALESCE(image_url,'') AS image_url, COALESCE(category,'') AS category,
  stock, COALESCE(size,'') AS size, COALESCE(color,'') AS color,
  COALESCE(created_at,'') AS created_at`

func (r *ProductRepo) List() ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.Select(&out, `SELECT `+productCols+` FROM products ORDER BY name, id`)
	if err != nil {
		return nil, domain.Storage("list products", err)
	}
	return out, nil
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, &domain.NotFoundError{Entity: "product", ID: id}
	}
	if err != nil {
		return domain.Product{}, domain.Storage("get product", err)
	}
	return p, nil
}

// GetTx reads a product inside the caller's transaction so that existence
// and stock observations stay consistent with the eventual commit.
func (r *ProductRepo) GetTx(tx *sqlx.Tx, id string) (domain.Product, error) {
	var p domain.Product
	err := tx.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, &domain.NotFoundError{Entity: "product", ID: id}
	}
	if err != nil {
		return domain.Product{}, domain.Storage("get product", err)
	}
	return p, nil
}

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(id, name, description, price, image_url, category, stock, size, color, created_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.Stock, p.Size, p.Color)
	if err != nil {
		return domain.Storage("create product", err)
	}
	return nil
}

// ProductUpdate carries the mutable catalog fields; nil means leave as is.
type ProductUpdate struct {
	Name  *string
	Price *decimal.Decimal
	Stock *int
}

func (r *ProductRepo) Update(id string, upd ProductUpdate) error {
	set := []string{}
	args := []any{}
	if upd.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Price != nil {
		set = append(set, "price = ?")
		args = append(args, *upd.Price)
	}
	if upd.Stock != nil {
		set = append(set, "stock = ?")
		args = append(args, *upd.Stock)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.db.Exec(`UPDATE products SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return domain.Storage("update product", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &domain.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}

// Stock returns the current stock level for a product.
func (r *ProductRepo) Stock(id string) (int, error) {
	var qty int
	err := r.db.Get(&qty, `SELECT stock FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &domain.NotFoundError{Entity: "product", ID: id}
	}
	if err != nil {
		return 0, domain.Storage("read stock", err)
	}
	return qty, nil
}

// DecrementStockTx subtracts amount within the caller's transaction and
// returns the remaining stock. The guard clause rejects the update when it
// would drive stock negative; in that case the stock is re-read inside the
// same transaction to report an accurate shortfall.
func (r *ProductRepo) DecrementStockTx(tx *sqlx.Tx, id string, amount int) (int, error) {
	res, err := tx.Exec(`
		UPDATE products
		SET stock = stock - ?
		WHERE id = ? AND stock >= ?
	`, amount, id, amount)
	if err != nil {
		return 0, domain.Storage("decrement stock", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		var have int
		err := tx.Get(&have, `SELECT stock FROM products WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, &domain.NotFoundError{Entity: "product", ID: id}
		}
		if err != nil {
			return 0, domain.Storage("read stock", err)
		}
		return 0, &domain.InsufficientStockError{ProductID: id, Requested: amount, Available: have}
	}
	var left int
	if err := tx.Get(&left, `SELECT stock FROM products WHERE id = ?`, id); err != nil {
		return 0, domain.Storage("read stock", err)
	}
	return left, nil
}
