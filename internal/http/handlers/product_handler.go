package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	applog "fashionstore/internal/log"
	"fashionstore/internal/repos"
	"fashionstore/internal/services"
	"fashionstore/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// List handles GET /api/products.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.Catalog.List()
	if err != nil {
		return writeErr(c, "products.list.fail", err)
	}
	return c.JSON(products)
}

// Get handles GET /api/products/:id.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return writeErr(c, "products.get.fail", err)
	}
	return c.JSON(p)
}

// Create handles POST /api/products (admin).
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed product payload"})
	}
	p, err := h.Catalog.Create(in)
	if err != nil {
		return writeErr(c, "products.create.fail", err)
	}
	applog.Audit(c, "products.create", map[string]any{"product_id": p.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "id": p.ID})
}

type productUpdatePayload struct {
	Name  *string          `json:"name"`
	Price *decimal.Decimal `json:"price"`
	Stock *int             `json:"stock"`
}

// Update handles PUT /api/products/:id (admin). Absent fields keep their
// current values.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	var in productUpdatePayload
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed product payload"})
	}
	upd := repos.ProductUpdate{Name: in.Name, Price: in.Price, Stock: in.Stock}
	if err := h.Catalog.Update(id, upd); err != nil {
		return writeErr(c, "products.update.fail", err)
	}
	applog.Audit(c, "products.update", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"message": "Product updated"})
}
