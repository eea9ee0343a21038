package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fashionstore/internal/domain"
	"fashionstore/internal/repos"
)

// CartLine is one submitted cart entry. Price is the caller-supplied unit
// price and becomes the order item's snapshot price.
type CartLine struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

type OrderService struct {
	Products *repos.ProductRepo
	Orders   *repos.OrderRepo
}

func NewOrderService(products *repos.ProductRepo, orders *repos.OrderRepo) *OrderService {
	return &OrderService{Products: products, Orders: orders}
}

// Place validates a cart submission and commits the order in one transaction:
// every referenced product's stock is checked and decremented, the header and
// all line items are inserted, and any failure rolls the whole unit back.
// It returns the new order id and the server-computed total.
func (s *OrderService) Place(userID string, lines []CartLine, shippingAddress, paymentMethod string) (string, decimal.Decimal, error) {
	if len(lines) == 0 {
		return "", decimal.Zero, domain.Validation("cart is empty")
	}
	if strings.TrimSpace(shippingAddress) == "" {
		return "", decimal.Zero, domain.Validation("missing shipping address")
	}
	if strings.TrimSpace(paymentMethod) == "" {
		return "", decimal.Zero, domain.Validation("missing payment method")
	}
	for _, ln := range lines {
		if strings.TrimSpace(ln.ProductID) == "" {
			return "", decimal.Zero, domain.Validation("cart line missing product id")
		}
		if ln.Quantity < 1 {
			return "", decimal.Zero, domain.Validation("quantity for %s must be at least 1", ln.ProductID)
		}
		if ln.Price.IsNegative() {
			return "", decimal.Zero, domain.Validation("unit price for %s must not be negative", ln.ProductID)
		}
	}

	// Aggregate demand per product; the same product may appear on several
	// lines but its stock is decremented once.
	demand := map[string]int{}
	productIDs := []string{}
	for _, ln := range lines {
		if _, seen := demand[ln.ProductID]; !seen {
			productIDs = append(productIDs, ln.ProductID)
		}
		demand[ln.ProductID] += ln.Quantity
	}

	tx, err := s.Orders.Begin()
	if err != nil {
		return "", decimal.Zero, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, pid := range productIDs {
		if _, err := s.Products.GetTx(tx, pid); err != nil {
			return "", decimal.Zero, err
		}
	}
	for _, pid := range productIDs {
		if _, err := s.Products.DecrementStockTx(tx, pid, demand[pid]); err != nil {
			return "", decimal.Zero, err
		}
	}

	orderID := uuid.NewString()
	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(lines))
	for _, ln := range lines {
		total = total.Add(ln.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
		items = append(items, domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			ProductID: ln.ProductID,
			Quantity:  ln.Quantity,
			Price:     ln.Price,
		})
	}

	o := domain.Order{
		ID:              orderID,
		UserID:          userID,
		Total:           total,
		Status:          domain.StatusPending,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Orders.CreateWithItemsTx(tx, o, items); err != nil {
		return "", decimal.Zero, err
	}
	if err := tx.Commit(); err != nil {
		return "", decimal.Zero, domain.Storage("commit order", err)
	}
	return orderID, total, nil
}
