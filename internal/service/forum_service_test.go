package service

import (
	"errors"
	"testing"

	"go-social-shop/internal/model"
	"go-social-shop/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newForumFixture(t *testing.T) (ForumService, *gorm.DB, *model.User) {
	t.Helper()
	db := setupTestDB(t)
	return NewForumService(db), db, createTestUser(t, db, "poster", false)
}

func TestCreatePostLinksTagsAndProducts(t *testing.T) {
	svc, db, author := newForumFixture(t)

	spu := model.ProductSPU{Name: "Vinyl Record", CategoryID: 1, IsActive: true}
	require.NoError(t, db.Create(&spu).Error)

	post, err := svc.CreatePost(author.ID, PostInput{
		Title:      "First spin",
		Content:    "sounds great",
		Tags:       []string{"music", "review"},
		Images:     []string{"posts/a.jpg"},
		ProductIDs: []uint{spu.ID},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"music", "review"}, post.Tags)
	assert.Equal(t, []uint{spu.ID}, post.ProductIDs)
	assert.Equal(t, "poster", post.AuthorName)

	// Reusing a tag does not duplicate it.
	_, err = svc.CreatePost(author.ID, PostInput{
		Title: "Second spin", Content: "still great", Tags: []string{"music"},
	})
	require.NoError(t, err)
	var tagCount int64
	require.NoError(t, db.Model(&model.Tag{}).Count(&tagCount).Error)
	assert.EqualValues(t, 2, tagCount)

	_, err = svc.CreatePost(author.ID, PostInput{
		Title: "Bad link", Content: "x", ProductIDs: []uint{999},
	})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListPostsFilters(t *testing.T) {
	svc, db, author := newForumFixture(t)
	other := createTestUser(t, db, "other", false)

	spu := model.ProductSPU{Name: "Drum Kit", CategoryID: 1, IsActive: true}
	require.NoError(t, db.Create(&spu).Error)

	_, err := svc.CreatePost(author.ID, PostInput{
		Title: "Setup tips", Content: "x", Tags: []string{"gear", "howto"}, ProductIDs: []uint{spu.ID},
	})
	require.NoError(t, err)
	_, err = svc.CreatePost(other.ID, PostInput{
		Title: "Hello", Content: "y", Tags: []string{"gear"},
	})
	require.NoError(t, err)

	page, err := svc.ListPosts(ListPostOptions{AuthorID: &author.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Count)

	// Tag intersection: both tags must be present.
	page, err = svc.ListPosts(ListPostOptions{Tags: []string{"gear", "howto"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Count)
	page, err = svc.ListPosts(ListPostOptions{Tags: []string{"gear"}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Count)

	// Search matches linked product names too.
	page, err = svc.ListPosts(ListPostOptions{Search: "drum"})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Count)
	assert.Equal(t, "Setup tips", page.Results[0].Title)
}

func TestUpdatePostAuthorOnly(t *testing.T) {
	svc, db, author := newForumFixture(t)
	other := createTestUser(t, db, "other", false)

	post, err := svc.CreatePost(author.ID, PostInput{Title: "Mine", Content: "x"})
	require.NoError(t, err)

	_, err = svc.UpdatePost(other.ID, post.ID, PostInput{Title: "Hijack", Content: "y"})
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	updated, err := svc.UpdatePost(author.ID, post.ID, PostInput{Title: "Mine v2", Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Mine v2", updated.Title)
}

func TestDeletePostReapsOrphanImages(t *testing.T) {
	svc, db, author := newForumFixture(t)

	a, err := svc.CreatePost(author.ID, PostInput{
		Title: "A", Content: "x", Images: []string{"posts/shared.jpg", "posts/only-a.jpg"},
	})
	require.NoError(t, err)
	_, err = svc.CreatePost(author.ID, PostInput{
		Title: "B", Content: "y", Images: []string{"posts/shared.jpg"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(author.ID, false, a.ID))

	var images []model.PostImage
	require.NoError(t, db.Find(&images).Error)
	require.Len(t, images, 1)
	assert.Equal(t, "posts/shared.jpg", images[0].FilePath)
}

func TestRepliesThreadAndCascade(t *testing.T) {
	svc, db, author := newForumFixture(t)
	staff := createTestUser(t, db, "mod", true)

	post, err := svc.CreatePost(author.ID, PostInput{Title: "Thread", Content: "x"})
	require.NoError(t, err)

	root, err := svc.CreateReply(author.ID, post.ID, "first", nil)
	require.NoError(t, err)
	child, err := svc.CreateReply(author.ID, post.ID, "second", &root.ID)
	require.NoError(t, err)
	_, err = svc.CreateReply(author.ID, post.ID, "third", &child.ID)
	require.NoError(t, err)

	_, err = svc.CreateReply(author.ID, post.ID, "bad parent", &[]uint{999}[0])
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	replies, err := svc.ListReplies(post.ID)
	require.NoError(t, err)
	assert.Len(t, replies, 3)

	// Staff can moderate; deletion takes the whole subthread with it.
	require.NoError(t, svc.DeleteReply(staff.ID, true, root.ID))
	replies, err = svc.ListReplies(post.ID)
	require.NoError(t, err)
	assert.Empty(t, replies)
}
