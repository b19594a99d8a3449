package handler

import (
	"go-social-shop/internal/middleware"
	"go-social-shop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	catalogService   service.CatalogService
	attributeService service.AttributeService
}

func NewCatalogHandler(catalogService service.CatalogService, attributeService service.AttributeService) *CatalogHandler {
	return &CatalogHandler{
		catalogService:   catalogService,
		attributeService: attributeService,
	}
}

// ListProducts is the storefront listing with filters and aggregates
// GET /api/v1/products?category=&brand=&search=&page=&page_size=
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	opts := service.ListSPUOptions{
		Brand:           c.Query("brand"),
		Search:          c.Query("search"),
		Page:            c.QueryInt("page", 1),
		PageSize:        c.QueryInt("page_size", 0),
		ViewerID:        middleware.OptionalUserID(c),
		IncludeInactive: middleware.IsStaff(c) && c.QueryBool("include_inactive", false),
	}
	if category := c.QueryInt("category", 0); category > 0 {
		id := uint(category)
		opts.CategoryID = &id
	}

	page, err := h.catalogService.ListSPUs(opts)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(page)
}

// GetProduct returns one product with its aggregates
// GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.catalogService.GetSPU(uint(id), middleware.OptionalUserID(c), middleware.IsStaff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

// ListSKUs returns the variant matrix of a product
// GET /api/v1/products/:id/skus
func (h *CatalogHandler) ListSKUs(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	includeInactive := middleware.IsStaff(c) && c.QueryBool("include_inactive", false)
	matrix, err := h.catalogService.SKUMatrix(uint(id), includeInactive)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(matrix)
}

// ListReviews returns reviews for a product, newest first
// GET /api/v1/products/:id/reviews
func (h *CatalogHandler) ListReviews(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	reviews, err := h.catalogService.ListReviews(uint(id), middleware.IsStaff(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(reviews)
}

type ReviewRequest struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// CreateReview posts a review on a product
// POST /api/v1/products/:id/reviews
func (h *CatalogHandler) CreateReview(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	review, err := h.catalogService.CreateReview(userID, uint(id), req.Content, req.Rating)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(review)
}

// CreateProduct adds an SPU
// POST /api/v1/admin/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var input service.SPUInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.catalogService.CreateSPU(input)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(product)
}

// UpdateProduct edits an SPU
// PUT /api/v1/admin/products/:id
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var input service.SPUInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.catalogService.UpdateSPU(uint(id), input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

// DeleteProduct removes an SPU and everything hanging off it
// DELETE /api/v1/admin/products/:id
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := h.catalogService.DeleteSPU(uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

type SetAttributesRequest struct {
	AttributeIDs []uint `json:"attributes"`
}

// SetProductAttributes replaces the declared attribute set of an SPU
// PUT /api/v1/admin/products/:id/attributes
func (h *CatalogHandler) SetProductAttributes(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req SetAttributesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.catalogService.SetSPUAttributes(uint(id), req.AttributeIDs); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Attributes updated"})
}

// CreateSKU adds a variant under an SPU
// POST /api/v1/admin/products/:id/skus
func (h *CatalogHandler) CreateSKU(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var input service.SKUInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sku, err := h.catalogService.CreateSKU(uint(id), input)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(sku)
}

// UpdateSKU edits a variant
// PUT /api/v1/admin/skus/:code
func (h *CatalogHandler) UpdateSKU(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid SKU code"})
	}

	var input service.SKUInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sku, err := h.catalogService.UpdateSKU(code, input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sku)
}

// DeleteSKU removes a variant
// DELETE /api/v1/admin/skus/:code
func (h *CatalogHandler) DeleteSKU(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid SKU code"})
	}

	if err := h.catalogService.DeleteSKU(code); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "SKU deleted"})
}

// ListAttributes returns the attribute catalog with values
// GET /api/v1/attributes
func (h *CatalogHandler) ListAttributes(c *fiber.Ctx) error {
	attributes, err := h.attributeService.List()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(attributes)
}

type AttributeRequest struct {
	Name string `json:"name"`
}

// CreateAttribute adds an attribute
// POST /api/v1/admin/attributes
func (h *CatalogHandler) CreateAttribute(c *fiber.Ctx) error {
	var req AttributeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	attribute, err := h.attributeService.Create(req.Name)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(attribute)
}

// DeleteAttribute removes an attribute and cascades to its links
// DELETE /api/v1/admin/attributes/:id
func (h *CatalogHandler) DeleteAttribute(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid attribute ID"})
	}

	if err := h.attributeService.Delete(uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Attribute deleted"})
}

type AttributeValueRequest struct {
	Value string `json:"value"`
}

// AddAttributeValue registers a new permitted value
// POST /api/v1/admin/attributes/:id/values
func (h *CatalogHandler) AddAttributeValue(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid attribute ID"})
	}

	var req AttributeValueRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	value, err := h.attributeService.AddValue(uint(id), req.Value)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(value)
}

// DeleteAttributeValue removes a value and the SKU links carrying it
// DELETE /api/v1/admin/attribute-values/:id
func (h *CatalogHandler) DeleteAttributeValue(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid attribute value ID"})
	}

	if err := h.attributeService.DeleteValue(uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Attribute value deleted"})
}
