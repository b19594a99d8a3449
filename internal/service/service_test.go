package service

import (
	"testing"

	"go-social-shop/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.ProductSPU{}, &model.ProductSKU{},
		&model.Attribute{}, &model.AttributeValue{},
		&model.ProductSPUAttribute{}, &model.ProductSKUAttributeValue{},
		&model.Inventory{}, &model.ProductImage{}, &model.ProductReview{},
		&model.CartItem{}, &model.Address{},
		&model.ProductFavorite{}, &model.PostFavorite{}, &model.OwnedProduct{},
		&model.Tag{}, &model.PostImage{}, &model.Post{}, &model.Reply{},
		&model.Artist{}, &model.Album{}, &model.Music{}, &model.Video{}, &model.Notice{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, staff bool) *model.User {
	t.Helper()

	user := &model.User{
		Username:   username,
		Email:      username + "@example.com",
		Gender:     "O",
		AvatarPath: model.DefaultAvatarPath,
		IsStaff:    staff,
		IsActive:   true,
	}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(user).Error)
	return user
}
