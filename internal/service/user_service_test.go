package service

import (
	"testing"

	"go-social-shop/internal/model"
	"go-social-shop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserFixture(t *testing.T) (UserService, *gorm.DB, *model.User) {
	t.Helper()
	db := setupTestDB(t)

	categoryRepo := repository.NewCategoryRepo(db)
	attributeRepo := repository.NewAttributeRepo(db)
	catalog := NewCatalogService(
		repository.NewSPURepo(db), repository.NewSKURepo(db),
		attributeRepo, categoryRepo, db, nil,
	)
	svc := NewUserService(repository.NewUserRepo(db), catalog, db)
	return svc, db, createTestUser(t, db, "alice", false)
}

func TestProductFavoriteToggle(t *testing.T) {
	svc, db, user := newUserFixture(t)

	spu := model.ProductSPU{Name: "Poster", CategoryID: 1, IsActive: true}
	require.NoError(t, db.Create(&spu).Error)

	on, err := svc.ToggleProductFavorite(user.ID, spu.ID)
	require.NoError(t, err)
	assert.True(t, on)

	favorited, err := svc.IsProductFavorited(user.ID, spu.ID)
	require.NoError(t, err)
	assert.True(t, favorited)

	list, err := svc.ListProductFavorites(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsFavorited)

	off, err := svc.ToggleProductFavorite(user.ID, spu.ID)
	require.NoError(t, err)
	assert.False(t, off)

	list, err = svc.ListProductFavorites(user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPostFavoriteToggle(t *testing.T) {
	svc, db, user := newUserFixture(t)

	post := model.Post{Title: "T", Content: "c", AuthorID: user.ID}
	require.NoError(t, db.Create(&post).Error)

	on, err := svc.TogglePostFavorite(user.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, on)

	ids, err := svc.ListPostFavoriteIDs(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{post.ID}, ids)

	off, err := svc.TogglePostFavorite(user.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, off)
}
