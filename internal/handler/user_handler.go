package handler

import (
	"go-social-shop/internal/middleware"
	"go-social-shop/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetUser returns a public profile
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	profile, err := h.userService.GetPublicProfile(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// ToggleProductFavorite flips the favorite mark on a product
// POST /api/v1/products/:id/favorite
func (h *UserHandler) ToggleProductFavorite(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	spuID, err := c.ParamsInt("id")
	if err != nil || spuID < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	favorited, err := h.userService.ToggleProductFavorite(userID, uint(spuID))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"favorited": favorited})
}

// ListProductFavorites returns the user's favorited products
// GET /api/v1/favorites/products
func (h *UserHandler) ListProductFavorites(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	favorites, err := h.userService.ListProductFavorites(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(favorites)
}

// TogglePostFavorite flips the favorite mark on a forum post
// POST /api/v1/posts/:id/favorite
func (h *UserHandler) TogglePostFavorite(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	postID, err := c.ParamsInt("id")
	if err != nil || postID < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid post ID"})
	}

	favorited, err := h.userService.TogglePostFavorite(userID, uint(postID))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"favorited": favorited})
}

// ListPostFavorites returns ids of the user's favorited posts
// GET /api/v1/favorites/posts
func (h *UserHandler) ListPostFavorites(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	ids, err := h.userService.ListPostFavoriteIDs(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"post_ids": ids})
}
