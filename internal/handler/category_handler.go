package handler

import (
	"go-social-shop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	categoryService service.CategoryService
}

func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

type CategoryRequest struct {
	Name     string `json:"name"`
	ParentID *uint  `json:"parent"`
}

// List returns the whole tree in traversal order
// GET /api/v1/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.categoryService.List()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(categories)
}

// Descendants returns a category's subtree
// GET /api/v1/categories/:id/descendants
func (h *CategoryHandler) Descendants(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid category ID"})
	}

	includeSelf := c.QueryBool("include_self", true)
	descendants, err := h.categoryService.Descendants(uint(id), includeSelf)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(descendants)
}

// Create adds a category under an optional parent
// POST /api/v1/admin/categories
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	category, err := h.categoryService.Create(req.Name, req.ParentID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(category)
}

// Update renames or moves a category
// PUT /api/v1/admin/categories/:id
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid category ID"})
	}

	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	category, err := h.categoryService.Update(uint(id), req.Name, req.ParentID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(category)
}

// Delete removes a leaf category not referenced by products
// DELETE /api/v1/admin/categories/:id
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid category ID"})
	}

	if err := h.categoryService.Delete(uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}
