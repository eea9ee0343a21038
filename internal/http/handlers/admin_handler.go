package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	applog "fashionstore/internal/log"
	"fashionstore/internal/repos"
	"fashionstore/internal/validate"
)

type AdminHandler struct {
	Orders *repos.OrderRepo
}

type adminOrderSummary struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Total           decimal.Decimal `json:"total"`
	Status          string          `json:"status"`
	CreatedAt       string          `json:"created_at"`
	ShippingAddress string          `json:"shipping_address"`
}

// OrdersPage handles GET /api/admin/orders: every order, oldest first.
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	orders, err := h.Orders.List()
	if err != nil {
		return writeErr(c, "admin.orders.list.fail", err)
	}
	out := make([]adminOrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, adminOrderSummary{
			ID:              o.ID,
			UserID:          o.UserID,
			Total:           o.Total,
			Status:          o.Status,
			CreatedAt:       o.CreatedAt,
			ShippingAddress: o.ShippingAddress,
		})
	}
	return c.JSON(out)
}

type statusPayload struct {
	Status string `json:"status"`
}

// UpdateOrderStatus handles PUT /api/admin/orders/:id/status.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing order id"})
	}
	var in statusPayload
	if err := c.BodyParser(&in); err != nil || in.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing status"})
	}
	if err := h.Orders.UpdateStatus(id, in.Status); err != nil {
		return writeErr(c, "admin.orders.update.fail", err)
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": in.Status})
	return c.JSON(fiber.Map{"message": "Order updated"})
}
