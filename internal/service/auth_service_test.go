package service

import (
	"errors"
	"strings"
	"testing"

	"go-social-shop/internal/model"
	"go-social-shop/internal/repository"
	"go-social-shop/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) (AuthService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewAuthService(repository.NewUserRepo(db), db), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)

	resp, err := svc.Register(&RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.False(t, resp.User.IsStaff)

	login, err := svc.Login("alice", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)

	_, err = svc.Login("alice", "wrong")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	_, err = svc.Login("nobody", "secret123")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(&RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "secret123",
	})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = svc.Register(&RegisterRequest{
		Username: "alice2", Email: "alice@example.com", Password: "secret123",
	})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = svc.Register(&RegisterRequest{
		Username: "bob", Email: "bob@example.com", Password: "short",
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestUpdateProfileBioLimit(t *testing.T) {
	svc, db := newAuthService(t)
	user := createTestUser(t, db, "alice", false)

	updated, err := svc.UpdateProfile(user.ID, &UpdateProfileRequest{Bio: "hello", Gender: "F"})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "F", updated.Gender)

	_, err = svc.UpdateProfile(user.ID, &UpdateProfileRequest{Bio: strings.Repeat("x", 301)})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = svc.UpdateProfile(user.ID, &UpdateProfileRequest{Gender: "Q"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestChangePasswordRequiresOldPassword(t *testing.T) {
	svc, db := newAuthService(t)
	user := createTestUser(t, db, "alice", false)

	err := svc.ChangePassword(user.ID, "wrong", "newsecret")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	require.NoError(t, svc.ChangePassword(user.ID, "secret123", "newsecret"))

	_, err = svc.Login("alice", "newsecret")
	require.NoError(t, err)
}

func TestDeleteAccountRemovesPersonalData(t *testing.T) {
	svc, db := newAuthService(t)
	user := createTestUser(t, db, "alice", false)

	require.NoError(t, db.Create(&model.CartItem{UserID: user.ID, SKUCode: "1-1", Quantity: 1}).Error)
	require.NoError(t, db.Create(&model.Address{UserID: user.ID, Name: "Home", Phone: "123"}).Error)
	require.NoError(t, db.Create(&model.ProductFavorite{UserID: user.ID, SPUID: 1}).Error)

	err := svc.DeleteAccount(user.ID, "wrong")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	require.NoError(t, svc.DeleteAccount(user.ID, "secret123"))

	for _, modelPtr := range []interface{}{
		&model.CartItem{}, &model.Address{}, &model.ProductFavorite{},
	} {
		var count int64
		require.NoError(t, db.Model(modelPtr).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.Zero(t, count)
	}

	_, err = svc.Login("alice", "secret123")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}
