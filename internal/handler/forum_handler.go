package handler

import (
	"strings"

	"go-social-shop/internal/middleware"
	"go-social-shop/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ForumHandler struct {
	forumService service.ForumService
}

func NewForumHandler(forumService service.ForumService) *ForumHandler {
	return &ForumHandler{forumService: forumService}
}

// ListPosts filters by author, tags and search term
// GET /api/v1/posts?author=&tags=a,b&search=&page=&page_size=
func (h *ForumHandler) ListPosts(c *fiber.Ctx) error {
	opts := service.ListPostOptions{
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 0),
		ViewerID: middleware.OptionalUserID(c),
	}
	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid author ID"})
		}
		opts.AuthorID = &id
	}
	if tags := c.Query("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				opts.Tags = append(opts.Tags, tag)
			}
		}
	}

	page, err := h.forumService.ListPosts(opts)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(page)
}

// GetPost returns one thread
// GET /api/v1/posts/:id
func (h *ForumHandler) GetPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid post ID"})
	}

	post, err := h.forumService.GetPost(uint(id), middleware.OptionalUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// CreatePost opens a thread
// POST /api/v1/posts
func (h *ForumHandler) CreatePost(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var input service.PostInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	post, err := h.forumService.CreatePost(userID, input)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(post)
}

// UpdatePost edits one's own thread
// PUT /api/v1/posts/:id
func (h *ForumHandler) UpdatePost(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid post ID"})
	}

	var input service.PostInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	post, err := h.forumService.UpdatePost(userID, uint(id), input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// DeletePost removes a thread; staff may remove any
// DELETE /api/v1/posts/:id
func (h *ForumHandler) DeletePost(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid post ID"})
	}

	if err := h.forumService.DeletePost(userID, middleware.IsStaff(c), uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// ListTags returns all tags in use
// GET /api/v1/tags
func (h *ForumHandler) ListTags(c *fiber.Ctx) error {
	tags, err := h.forumService.ListTags()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(tags)
}

// ListReplies returns a thread's replies, oldest first
// GET /api/v1/posts/:id/replies
func (h *ForumHandler) ListReplies(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid post ID"})
	}

	replies, err := h.forumService.ListReplies(uint(id))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(replies)
}

type ReplyRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent"`
}

// CreateReply posts a reply, optionally threaded under another
// POST /api/v1/posts/:id/replies
func (h *ForumHandler) CreateReply(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid post ID"})
	}

	var req ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	reply, err := h.forumService.CreateReply(userID, uint(id), req.Content, req.ParentID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(reply)
}

// DeleteReply removes a reply and its children
// DELETE /api/v1/replies/:id
func (h *ForumHandler) DeleteReply(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid reply ID"})
	}

	if err := h.forumService.DeleteReply(userID, middleware.IsStaff(c), uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Reply deleted"})
}
