package handler

import (
	"go-social-shop/internal/middleware"
	"go-social-shop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

type AddToCartRequest struct {
	SKUCode  string `json:"sku_code"`
	Quantity int    `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

type BatchRemoveRequest struct {
	ItemIDs []uint `json:"item_ids"`
}

type CheckoutRequest struct {
	ItemIDs []uint `json:"item_ids"`
}

// List returns the cart with per-line subtotals and the total
// GET /api/v1/cart
func (h *CartHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	cart, err := h.cartService.List(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(cart)
}

// Add puts a SKU in the cart, merging quantities
// POST /api/v1/cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	line, err := h.cartService.Add(userID, req.SKUCode, req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(line)
}

// Update sets a line's quantity
// PUT /api/v1/cart/:id
func (h *CartHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cart item ID"})
	}

	var req UpdateCartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	line, err := h.cartService.UpdateQuantity(userID, uint(id), req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(line)
}

// Remove deletes one line
// DELETE /api/v1/cart/:id
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid cart item ID"})
	}

	if err := h.cartService.Remove(userID, uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart item removed"})
}

// RemoveBatch deletes several lines at once
// POST /api/v1/cart/batch-remove
func (h *CartHandler) RemoveBatch(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req BatchRemoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.cartService.RemoveBatch(userID, req.ItemIDs); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart items removed"})
}

// Checkout turns selected lines into owned products
// POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.cartService.Checkout(userID, req.ItemIDs); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Checkout complete"})
}

// ListOwned returns purchased SKUs
// GET /api/v1/owned-products
func (h *CartHandler) ListOwned(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	owned, err := h.cartService.ListOwned(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(owned)
}

// ListAddresses returns the user's addresses, default first
// GET /api/v1/addresses
func (h *CartHandler) ListAddresses(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	addresses, err := h.cartService.ListAddresses(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(addresses)
}

// CreateAddress adds a shipping address
// POST /api/v1/addresses
func (h *CartHandler) CreateAddress(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var input service.AddressInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	address, err := h.cartService.CreateAddress(userID, input)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(address)
}

// UpdateAddress edits a shipping address
// PUT /api/v1/addresses/:id
func (h *CartHandler) UpdateAddress(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid address ID"})
	}

	var input service.AddressInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	address, err := h.cartService.UpdateAddress(userID, uint(id), input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(address)
}

// DeleteAddress removes a shipping address
// DELETE /api/v1/addresses/:id
func (h *CartHandler) DeleteAddress(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid address ID"})
	}

	if err := h.cartService.DeleteAddress(userID, uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Address deleted"})
}
