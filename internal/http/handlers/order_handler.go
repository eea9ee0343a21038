package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	applog "fashionstore/internal/log"
	"fashionstore/internal/repos"
	"fashionstore/internal/services"
	"fashionstore/internal/validate"
)

type OrderHandler struct {
	Order *services.OrderService
	Repo  *repos.OrderRepo
	Auth  *services.AuthService
}

type orderLinePayload struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type placeOrderPayload struct {
	UserID          string             `json:"user_id"`
	Total           decimal.Decimal    `json:"total"`
	ShippingAddress string             `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
	Items           []orderLinePayload `json:"items"`
}

// Place handles POST /api/orders. The payload's total is advisory only; the
// persisted total is recomputed server-side and a mismatch is audit-logged.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in placeOrderPayload
	if err := c.BodyParser(&in); err != nil {
		applog.Security(c, "order.payload.malformed", map[string]any{"error": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed order payload"})
	}

	lines := make([]services.CartLine, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, services.CartLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	orderID, serverTotal, err := h.Order.Place(in.UserID, lines, in.ShippingAddress, in.PaymentMethod)
	if err != nil {
		return writeErr(c, "order.place.fail", err)
	}

	applog.Audit(c, "order.place", map[string]any{
		"order_id":     orderID,
		"user_id":      in.UserID,
		"server_total": serverTotal.String(),
		"client_total": in.Total.String(),
		"mismatch":     !serverTotal.Equal(in.Total),
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Order created",
		"order_id": orderID,
	})
}

// Get handles GET /api/orders/:id. Only the owner or an admin may read an
// order; everyone else sees 404 to avoid leaking order ids.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	o, items, err := h.Repo.Get(id)
	if err != nil {
		return writeErr(c, "order.get.fail", err)
	}

	u := currentUser(c, h.Auth)
	if u == nil || (u.ID != o.UserID && u.Role != "ADMIN") {
		applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}

	return c.JSON(fiber.Map{
		"id":               o.ID,
		"user_id":          o.UserID,
		"total":            o.Total,
		"status":           o.Status,
		"shipping_address": o.ShippingAddress,
		"payment_method":   o.PaymentMethod,
		"created_at":       o.CreatedAt,
		"items":            items,
	})
}

// History handles GET /api/orders for the authenticated user.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u := currentUser(c, h.Auth)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}
	orders, err := h.Repo.ListByUser(u.ID)
	if err != nil {
		return writeErr(c, "order.history.fail", err)
	}
	return c.JSON(orders)
}
