package service

import (
	"go-social-shop/internal/model"
	"go-social-shop/internal/repository"
	"go-social-shop/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	GetPublicProfile(userID uuid.UUID) (*model.UserResponse, error)

	ToggleProductFavorite(userID uuid.UUID, spuID uint) (bool, error)
	IsProductFavorited(userID uuid.UUID, spuID uint) (bool, error)
	ListProductFavorites(userID uuid.UUID) ([]SPUResponse, error)

	TogglePostFavorite(userID uuid.UUID, postID uint) (bool, error)
	ListPostFavoriteIDs(userID uuid.UUID) ([]uint, error)
}

type userService struct {
	userRepo repository.UserRepository
	catalog  CatalogService
	db       *gorm.DB
}

func NewUserService(userRepo repository.UserRepository, catalog CatalogService, db *gorm.DB) UserService {
	return &userService{
		userRepo: userRepo,
		catalog:  catalog,
		db:       db,
	}
}

func (s *userService) GetPublicProfile(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrNotFound, "user %s", userID)
	}
	resp := user.ToResponse()
	return &resp, nil
}

// ToggleProductFavorite flips the favorite mark and reports the new state.
func (s *userService) ToggleProductFavorite(userID uuid.UUID, spuID uint) (bool, error) {
	var favorited bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var spu model.ProductSPU
		if err := tx.First(&spu, "id = ?", spuID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "product %d", spuID)
		}

		res := tx.Where("user_id = ? AND spu_id = ?", userID, spuID).Delete(&model.ProductFavorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			favorited = false
			return nil
		}
		favorited = true
		return tx.Create(&model.ProductFavorite{UserID: userID, SPUID: spuID}).Error
	})
	return favorited, err
}

func (s *userService) IsProductFavorited(userID uuid.UUID, spuID uint) (bool, error) {
	var count int64
	err := s.db.Model(&model.ProductFavorite{}).
		Where("user_id = ? AND spu_id = ?", userID, spuID).Count(&count).Error
	return count > 0, err
}

func (s *userService) ListProductFavorites(userID uuid.UUID) ([]SPUResponse, error) {
	var favs []model.ProductFavorite
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&favs).Error; err != nil {
		return nil, err
	}

	out := make([]SPUResponse, 0, len(favs))
	for _, fav := range favs {
		// Favorites keep deactivated products visible to their owner.
		spu, err := s.catalog.GetSPU(fav.SPUID, &userID, true)
		if err != nil {
			// Favorite pointing at a removed product; skip it.
			continue
		}
		out = append(out, *spu)
	}
	return out, nil
}

func (s *userService) TogglePostFavorite(userID uuid.UUID, postID uint) (bool, error) {
	var favorited bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.First(&post, "id = ?", postID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "post %d", postID)
		}

		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&model.PostFavorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			favorited = false
			return nil
		}
		favorited = true
		return tx.Create(&model.PostFavorite{UserID: userID, PostID: postID}).Error
	})
	return favorited, err
}

func (s *userService) ListPostFavoriteIDs(userID uuid.UUID) ([]uint, error) {
	var favs []model.PostFavorite
	if err := s.db.Where("user_id = ?", userID).Order("id DESC").Find(&favs).Error; err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(favs))
	for _, fav := range favs {
		ids = append(ids, fav.PostID)
	}
	return ids, nil
}
