package service

import (
	"errors"

	"go-social-shop/internal/model"
	"go-social-shop/internal/repository"
	"go-social-shop/pkg/apperr"
	"go-social-shop/pkg/jwt"
	"go-social-shop/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxBioLength = 300

type AuthService interface {
	Register(req *RegisterRequest) (*LoginResponse, error)
	Login(username, password string) (*LoginResponse, error)
	GetProfile(userID uuid.UUID) (*model.UserResponse, error)
	UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error)
	UpdateAvatar(userID uuid.UUID, avatarPath string) (*model.UserResponse, error)
	ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error
	DeleteAccount(userID uuid.UUID, password string) error
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Gender   string `json:"gender" validate:"omitempty,oneof=M F O"`
}

type UpdateProfileRequest struct {
	Email  string `json:"email" validate:"omitempty,email"`
	Gender string `json:"gender" validate:"omitempty,oneof=M F O"`
	Bio    string `json:"bio"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	db       *gorm.DB
}

func NewAuthService(userRepo repository.UserRepository, db *gorm.DB) AuthService {
	return &authService{
		userRepo: userRepo,
		db:       db,
	}
}

func (s *authService) Register(req *RegisterRequest) (*LoginResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	if existing, _ := s.userRepo.FindByUsername(req.Username); existing != nil {
		return nil, apperr.Wrap(apperr.ErrConflict, "username %q is taken", req.Username)
	}
	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, apperr.Wrap(apperr.ErrConflict, "email %q is taken", req.Email)
	}

	gender := req.Gender
	if gender == "" {
		gender = "O"
	}
	user := &model.User{
		Username:   req.Username,
		Email:      req.Email,
		Gender:     gender,
		AvatarPath: model.DefaultAvatarPath,
		IsActive:   true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	token, err := jwt.GenerateToken(user.ID, user.Username, user.IsStaff)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) Login(username, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUnauthorized, "invalid username or password")
	}
	if !user.IsActive {
		return nil, apperr.Wrap(apperr.ErrUnauthorized, "account is inactive")
	}
	if !user.CheckPassword(password) {
		return nil, apperr.Wrap(apperr.ErrUnauthorized, "invalid username or password")
	}

	token, err := jwt.GenerateToken(user.ID, user.Username, user.IsStaff)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) GetProfile(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrNotFound, "user %s", userID)
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if len(req.Bio) > maxBioLength {
		return nil, apperr.Wrap(apperr.ErrValidation, "bio exceeds %d characters", maxBioLength)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrNotFound, "user %s", userID)
	}

	if req.Email != "" && req.Email != user.Email {
		if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
			return nil, apperr.Wrap(apperr.ErrConflict, "email %q is taken", req.Email)
		}
		user.Email = req.Email
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}
	user.Bio = req.Bio

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) UpdateAvatar(userID uuid.UUID, avatarPath string) (*model.UserResponse, error) {
	if avatarPath == "" {
		return nil, apperr.Wrap(apperr.ErrValidation, "avatar path is required")
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrNotFound, "user %s", userID)
	}
	user.AvatarPath = avatarPath
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return apperr.Wrap(apperr.ErrValidation, "password must be at least 6 characters")
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return apperr.Wrap(apperr.ErrNotFound, "user %s", userID)
	}
	if !user.CheckPassword(oldPassword) {
		return apperr.Wrap(apperr.ErrUnauthorized, "current password is incorrect")
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.userRepo.Update(user)
}

// DeleteAccount verifies the password and then removes the account with
// its personal data: cart, addresses, favorites and owned products.
// Reviews, posts and replies stay, attributed to the removed author id.
func (s *authService) DeleteAccount(userID uuid.UUID, password string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return apperr.Wrap(apperr.ErrNotFound, "user %s", userID)
	}
	if !user.CheckPassword(password) {
		return apperr.Wrap(apperr.ErrUnauthorized, "password is incorrect")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, del := range []error{
			tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error,
			tx.Where("user_id = ?", userID).Delete(&model.Address{}).Error,
			tx.Where("user_id = ?", userID).Delete(&model.ProductFavorite{}).Error,
			tx.Where("user_id = ?", userID).Delete(&model.PostFavorite{}).Error,
			tx.Where("user_id = ?", userID).Delete(&model.OwnedProduct{}).Error,
		} {
			if del != nil {
				return del
			}
		}
		res := tx.Unscoped().Delete(&model.User{}, "id = ?", userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("account already removed")
		}
		return nil
	})
}
