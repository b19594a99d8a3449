package handler

import (
	"go-social-shop/internal/middleware"
	"go-social-shop/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PublishHandler struct {
	publishService service.PublishService
}

func NewPublishHandler(publishService service.PublishService) *PublishHandler {
	return &PublishHandler{publishService: publishService}
}

// ListArtists
// GET /api/v1/artists
func (h *PublishHandler) ListArtists(c *fiber.Ctx) error {
	artists, err := h.publishService.ListArtists()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(artists)
}

type ArtistRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// CreateArtist
// POST /api/v1/admin/artists
func (h *PublishHandler) CreateArtist(c *fiber.Ctx) error {
	var req ArtistRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	artist, err := h.publishService.CreateArtist(req.Name, req.Image)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(artist)
}

// ListAlbums, optionally for one artist
// GET /api/v1/albums?artist=
func (h *PublishHandler) ListAlbums(c *fiber.Ctx) error {
	var artistID *uint
	if artist := c.QueryInt("artist", 0); artist > 0 {
		id := uint(artist)
		artistID = &id
	}

	albums, err := h.publishService.ListAlbums(artistID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(albums)
}

// CreateAlbum
// POST /api/v1/admin/albums
func (h *PublishHandler) CreateAlbum(c *fiber.Ctx) error {
	var input service.AlbumInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	album, err := h.publishService.CreateAlbum(input)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(album)
}

// DeleteAlbum detaches tracks and removes the album
// DELETE /api/v1/admin/albums/:id
func (h *PublishHandler) DeleteAlbum(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid album ID"})
	}

	if err := h.publishService.DeleteAlbum(uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Album deleted"})
}

// ListMusic, filtered by artist and album
// GET /api/v1/music?artist=&album=
func (h *PublishHandler) ListMusic(c *fiber.Ctx) error {
	var artistID, albumID *uint
	if artist := c.QueryInt("artist", 0); artist > 0 {
		id := uint(artist)
		artistID = &id
	}
	if album := c.QueryInt("album", 0); album > 0 {
		id := uint(album)
		albumID = &id
	}

	tracks, err := h.publishService.ListMusic(artistID, albumID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(tracks)
}

// CreateMusic
// POST /api/v1/admin/music
func (h *PublishHandler) CreateMusic(c *fiber.Ctx) error {
	var input service.MusicInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	track, err := h.publishService.CreateMusic(input)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(track)
}

// ListVideos, optionally by type
// GET /api/v1/videos?type=
func (h *PublishHandler) ListVideos(c *fiber.Ctx) error {
	videos, err := h.publishService.ListVideos(c.Query("type"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(videos)
}

// CreateVideo
// POST /api/v1/admin/videos
func (h *PublishHandler) CreateVideo(c *fiber.Ctx) error {
	var input service.VideoInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	video, err := h.publishService.CreateVideo(input)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(video)
}

// ListNotices returns active announcements, newest first
// GET /api/v1/notices
func (h *PublishHandler) ListNotices(c *fiber.Ctx) error {
	notices, err := h.publishService.ListNotices()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(notices)
}

type NoticeRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateNotice
// POST /api/v1/admin/notices
func (h *PublishHandler) CreateNotice(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req NoticeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	notice, err := h.publishService.CreateNotice(userID, req.Title, req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(notice)
}

// DeleteNotice
// DELETE /api/v1/admin/notices/:id
func (h *PublishHandler) DeleteNotice(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid notice ID"})
	}

	if err := h.publishService.DeleteNotice(uint(id)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notice deleted"})
}
