package service

import (
	"strings"
	"time"

	"go-social-shop/internal/model"
	"go-social-shop/pkg/apperr"
	"go-social-shop/pkg/mediaurl"
	"go-social-shop/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ForumService interface {
	ListPosts(opts ListPostOptions) (*PostPage, error)
	GetPost(id uint, viewerID *uuid.UUID) (*PostResponse, error)
	CreatePost(authorID uuid.UUID, input PostInput) (*PostResponse, error)
	UpdatePost(authorID uuid.UUID, postID uint, input PostInput) (*PostResponse, error)
	DeletePost(actorID uuid.UUID, isStaff bool, postID uint) error

	ListTags() ([]model.Tag, error)

	ListReplies(postID uint) ([]ReplyResponse, error)
	CreateReply(authorID uuid.UUID, postID uint, content string, parentID *uint) (*ReplyResponse, error)
	DeleteReply(actorID uuid.UUID, isStaff bool, replyID uint) error
}

type ListPostOptions struct {
	AuthorID *uuid.UUID
	Tags     []string
	Search   string
	Page     int
	PageSize int
	ViewerID *uuid.UUID
}

type PostInput struct {
	Title      string   `json:"title" validate:"required"`
	Content    string   `json:"content" validate:"required"`
	Tags       []string `json:"tags"`
	Images     []string `json:"images"`
	ProductIDs []uint   `json:"products"`
}

type PostResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Author       uuid.UUID `json:"author"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	Tags         []string  `json:"tags"`
	Images       []string  `json:"images"`
	ProductIDs   []uint    `json:"products"`
	ReplyCount   int64     `json:"reply_count"`
	IsFavorited  bool      `json:"is_favorited"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PostPage struct {
	Count    int64          `json:"count"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Results  []PostResponse `json:"results"`
}

type ReplyResponse struct {
	ID           uint      `json:"id"`
	Content      string    `json:"content"`
	Author       uuid.UUID `json:"author"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	Post         uint      `json:"post"`
	Parent       *uint     `json:"parent"`
	CreatedAt    time.Time `json:"created_at"`
}

type forumService struct {
	db *gorm.DB
}

func NewForumService(db *gorm.DB) ForumService {
	return &forumService{db: db}
}

// ListPosts filters by author, tag set (a post must carry every requested
// tag) and a search term matched against the title and the names of
// linked products. Newest activity first.
func (s *forumService) ListPosts(opts ListPostOptions) (*PostPage, error) {
	q := s.db.Model(&model.Post{})

	if opts.AuthorID != nil {
		q = q.Where("author_id = ?", *opts.AuthorID)
	}
	for _, tag := range opts.Tags {
		q = q.Where(`EXISTS (
			SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = posts.id AND t.name = ?)`, tag)
	}
	if opts.Search != "" {
		like := "%" + strings.ToLower(opts.Search) + "%"
		q = q.Where(`LOWER(posts.title) LIKE ? OR EXISTS (
			SELECT 1 FROM post_products pp JOIN product_spus sp ON sp.id = pp.product_spu_id
			WHERE pp.post_id = posts.id AND LOWER(sp.name) LIKE ?)`, like, like)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(opts.Page, opts.PageSize)
	var posts []model.Post
	err := q.Preload("Author").Preload("Tags").Preload("Images").Preload("Products").
		Order("updated_at DESC, id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	results, err := s.buildPostResponses(posts, opts.ViewerID)
	if err != nil {
		return nil, err
	}
	return &PostPage{Count: count, Page: page, PageSize: pageSize, Results: results}, nil
}

func (s *forumService) GetPost(id uint, viewerID *uuid.UUID) (*PostResponse, error) {
	var post model.Post
	err := s.db.Preload("Author").Preload("Tags").Preload("Images").Preload("Products").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrNotFound, "post %d", id)
	}
	results, err := s.buildPostResponses([]model.Post{post}, viewerID)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

func (s *forumService) buildPostResponses(posts []model.Post, viewerID *uuid.UUID) ([]PostResponse, error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	replyCounts := make(map[uint]int64)
	if len(ids) > 0 {
		rows := []struct {
			PostID uint
			N      int64
		}{}
		err := s.db.Model(&model.Reply{}).Select("post_id, COUNT(*) AS n").
			Where("post_id IN ?", ids).Group("post_id").Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			replyCounts[r.PostID] = r.N
		}
	}

	favorited := make(map[uint]bool)
	if viewerID != nil && len(ids) > 0 {
		var favs []model.PostFavorite
		if err := s.db.Where("user_id = ? AND post_id IN ?", *viewerID, ids).Find(&favs).Error; err != nil {
			return nil, err
		}
		for _, f := range favs {
			favorited[f.PostID] = true
		}
	}

	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		resp := PostResponse{
			ID:          p.ID,
			Title:       p.Title,
			Content:     p.Content,
			Author:      p.AuthorID,
			Tags:        make([]string, 0, len(p.Tags)),
			Images:      make([]string, 0, len(p.Images)),
			ProductIDs:  make([]uint, 0, len(p.Products)),
			ReplyCount:  replyCounts[p.ID],
			IsFavorited: favorited[p.ID],
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		}
		if p.Author != nil {
			resp.AuthorName = p.Author.Username
			resp.AuthorAvatar = p.Author.AvatarURL()
		}
		for _, t := range p.Tags {
			resp.Tags = append(resp.Tags, t.Name)
		}
		for _, img := range p.Images {
			resp.Images = append(resp.Images, mediaurl.Resolve(img.FilePath))
		}
		for _, prod := range p.Products {
			resp.ProductIDs = append(resp.ProductIDs, prod.ID)
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *forumService) CreatePost(authorID uuid.UUID, input PostInput) (*PostResponse, error) {
	if err := validator.Check(&input); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:    input.Title,
		Content:  input.Content,
		AuthorID: authorID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return s.linkPostRelations(tx, post, input)
	})
	if err != nil {
		return nil, err
	}
	return s.GetPost(post.ID, &authorID)
}

func (s *forumService) UpdatePost(authorID uuid.UUID, postID uint, input PostInput) (*PostResponse, error) {
	if err := validator.Check(&input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Preload("Images").First(&post, "id = ?", postID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "post %d", postID)
		}
		if post.AuthorID != authorID {
			return apperr.Wrap(apperr.ErrForbidden, "not the post author")
		}

		post.Title = input.Title
		post.Content = input.Content
		if err := tx.Save(&post).Error; err != nil {
			return err
		}

		prior := post.Images
		if err := clearPostRelations(tx, &post); err != nil {
			return err
		}
		if err := s.linkPostRelations(tx, &post, input); err != nil {
			return err
		}
		return reapOrphanImages(tx, prior)
	})
	if err != nil {
		return nil, err
	}
	return s.GetPost(postID, &authorID)
}

// DeletePost removes a post with its replies, favorites, tag and product
// links, and any images no longer referenced by another post. Staff may
// delete any post, others only their own.
func (s *forumService) DeletePost(actorID uuid.UUID, isStaff bool, postID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Preload("Images").First(&post, "id = ?", postID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "post %d", postID)
		}
		if !isStaff && post.AuthorID != actorID {
			return apperr.Wrap(apperr.ErrForbidden, "not the post author")
		}

		prior := post.Images
		if err := clearPostRelations(tx, &post); err != nil {
			return err
		}
		for _, del := range []error{
			tx.Where("post_id = ?", postID).Delete(&model.Reply{}).Error,
			tx.Where("post_id = ?", postID).Delete(&model.PostFavorite{}).Error,
		} {
			if del != nil {
				return del
			}
		}
		if err := tx.Delete(&model.Post{}, "id = ?", postID).Error; err != nil {
			return err
		}
		return reapOrphanImages(tx, prior)
	})
}

func (s *forumService) linkPostRelations(tx *gorm.DB, post *model.Post, input PostInput) error {
	for _, name := range input.Tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var tag model.Tag
		if err := tx.Where("name = ?", name).FirstOrCreate(&tag, model.Tag{Name: name}).Error; err != nil {
			return err
		}
		if err := tx.Exec("INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)", post.ID, tag.ID).Error; err != nil {
			return err
		}
	}

	for _, path := range input.Images {
		var img model.PostImage
		if err := tx.Where("file_path = ?", path).FirstOrCreate(&img, model.PostImage{FilePath: path}).Error; err != nil {
			return err
		}
		if err := tx.Exec("INSERT INTO post_image_links (post_id, post_image_id) VALUES (?, ?)", post.ID, img.ID).Error; err != nil {
			return err
		}
	}

	for _, spuID := range input.ProductIDs {
		var spu model.ProductSPU
		if err := tx.First(&spu, "id = ?", spuID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "product %d", spuID)
		}
		if err := tx.Exec("INSERT INTO post_products (post_id, product_spu_id) VALUES (?, ?)", post.ID, spuID).Error; err != nil {
			return err
		}
	}
	return nil
}

func clearPostRelations(tx *gorm.DB, post *model.Post) error {
	for _, del := range []error{
		tx.Exec("DELETE FROM post_tags WHERE post_id = ?", post.ID).Error,
		tx.Exec("DELETE FROM post_image_links WHERE post_id = ?", post.ID).Error,
		tx.Exec("DELETE FROM post_products WHERE post_id = ?", post.ID).Error,
	} {
		if del != nil {
			return del
		}
	}
	return nil
}

// reapOrphanImages drops image rows that no post references anymore.
func reapOrphanImages(tx *gorm.DB, candidates []model.PostImage) error {
	for _, img := range candidates {
		var refs int64
		if err := tx.Table("post_image_links").Where("post_image_id = ?", img.ID).Count(&refs).Error; err != nil {
			return err
		}
		if refs == 0 {
			if err := tx.Delete(&model.PostImage{}, "id = ?", img.ID).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *forumService) ListTags() ([]model.Tag, error) {
	var tags []model.Tag
	err := s.db.Order("name").Find(&tags).Error
	return tags, err
}

func (s *forumService) ListReplies(postID uint) ([]ReplyResponse, error) {
	var replies []model.Reply
	err := s.db.Preload("Author").Where("post_id = ?", postID).
		Order("created_at, id").Find(&replies).Error
	if err != nil {
		return nil, err
	}

	out := make([]ReplyResponse, 0, len(replies))
	for i := range replies {
		out = append(out, replyResponse(&replies[i]))
	}
	return out, nil
}

func (s *forumService) CreateReply(authorID uuid.UUID, postID uint, content string, parentID *uint) (*ReplyResponse, error) {
	if content == "" {
		return nil, apperr.Wrap(apperr.ErrValidation, "reply content is required")
	}

	reply := &model.Reply{
		Content:  content,
		AuthorID: authorID,
		PostID:   postID,
		ParentID: parentID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.First(&post, "id = ?", postID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "post %d", postID)
		}
		if parentID != nil {
			var parent model.Reply
			if err := tx.First(&parent, "id = ? AND post_id = ?", *parentID, postID).Error; err != nil {
				return apperr.Wrap(apperr.ErrNotFound, "parent reply %d", *parentID)
			}
		}
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		// Bump the thread so the listing surfaces fresh activity.
		return tx.Model(&post).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Author").First(reply, "id = ?", reply.ID)
	resp := replyResponse(reply)
	return &resp, nil
}

// DeleteReply removes a reply and, recursively, the replies threaded
// under it.
func (s *forumService) DeleteReply(actorID uuid.UUID, isStaff bool, replyID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var reply model.Reply
		if err := tx.First(&reply, "id = ?", replyID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "reply %d", replyID)
		}
		if !isStaff && reply.AuthorID != actorID {
			return apperr.Wrap(apperr.ErrForbidden, "not the reply author")
		}
		return deleteReplyTree(tx, replyID)
	})
}

func deleteReplyTree(tx *gorm.DB, replyID uint) error {
	var children []model.Reply
	if err := tx.Where("parent_id = ?", replyID).Find(&children).Error; err != nil {
		return err
	}
	for _, child := range children {
		if err := deleteReplyTree(tx, child.ID); err != nil {
			return err
		}
	}
	return tx.Delete(&model.Reply{}, "id = ?", replyID).Error
}

func replyResponse(r *model.Reply) ReplyResponse {
	resp := ReplyResponse{
		ID:        r.ID,
		Content:   r.Content,
		Author:    r.AuthorID,
		Post:      r.PostID,
		Parent:    r.ParentID,
		CreatedAt: r.CreatedAt,
	}
	if r.Author != nil {
		resp.AuthorName = r.Author.Username
		resp.AuthorAvatar = r.Author.AvatarURL()
	}
	return resp
}
