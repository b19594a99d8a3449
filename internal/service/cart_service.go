package service

import (
	"errors"

	"go-social-shop/internal/model"
	"go-social-shop/internal/repository"
	"go-social-shop/pkg/apperr"
	"go-social-shop/pkg/mediaurl"
	"go-social-shop/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartService interface {
	List(userID uuid.UUID) (*CartResponse, error)
	Add(userID uuid.UUID, skuCode string, quantity int) (*CartLine, error)
	UpdateQuantity(userID uuid.UUID, itemID uint, quantity int) (*CartLine, error)
	Remove(userID uuid.UUID, itemID uint) error
	RemoveBatch(userID uuid.UUID, itemIDs []uint) error

	ListAddresses(userID uuid.UUID) ([]model.Address, error)
	CreateAddress(userID uuid.UUID, input AddressInput) (*model.Address, error)
	UpdateAddress(userID uuid.UUID, addressID uint, input AddressInput) (*model.Address, error)
	DeleteAddress(userID uuid.UUID, addressID uint) error

	ListOwned(userID uuid.UUID) ([]model.OwnedProduct, error)
	Checkout(userID uuid.UUID, itemIDs []uint) error
}

type CartLine struct {
	ID       uint            `json:"id"`
	SKUCode  string          `json:"sku_code"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Stock    int             `json:"stock"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Image    string          `json:"image"`
}

type CartResponse struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type AddressInput struct {
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Province  string `json:"province"`
	City      string `json:"city"`
	District  string `json:"district"`
	Detail    string `json:"address"`
	IsDefault bool   `json:"is_default"`
}

type cartService struct {
	skuRepo repository.SKURepository
	spuRepo repository.SPURepository
	db      *gorm.DB
}

func NewCartService(skuRepo repository.SKURepository, spuRepo repository.SPURepository, db *gorm.DB) CartService {
	return &cartService{
		skuRepo: skuRepo,
		spuRepo: spuRepo,
		db:      db,
	}
}

func (s *cartService) List(userID uuid.UUID) (*CartResponse, error) {
	var items []model.CartItem
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}

	resp := &CartResponse{Items: make([]CartLine, 0, len(items)), Total: decimal.Zero}
	for _, item := range items {
		sku, err := s.skuRepo.FindByCode(item.SKUCode)
		if err != nil {
			// The SKU vanished under the cart row; skip the orphan.
			continue
		}
		stock, err := s.skuRepo.Stock(item.SKUCode)
		if err != nil {
			return nil, err
		}

		image := ""
		if img, err := s.skuRepo.FirstImage(item.SKUCode); err == nil {
			image = mediaurl.Resolve(img.ImagePath)
		} else if img, err := s.spuRepo.MainImage(sku.SPUID); err == nil {
			image = mediaurl.Resolve(img.ImagePath)
		}

		subtotal := sku.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		resp.Items = append(resp.Items, CartLine{
			ID:       item.ID,
			SKUCode:  item.SKUCode,
			Title:    sku.Title,
			Price:    sku.Price,
			Quantity: item.Quantity,
			Stock:    stock,
			Subtotal: subtotal,
			Image:    image,
		})
		resp.Total = resp.Total.Add(subtotal)
	}
	return resp, nil
}

// Add puts a SKU in the cart, merging quantities when the SKU is already
// there. The merged quantity is capped against available stock.
func (s *cartService) Add(userID uuid.UUID, skuCode string, quantity int) (*CartLine, error) {
	if quantity < 1 {
		return nil, apperr.Wrap(apperr.ErrValidation, "quantity must be at least 1")
	}

	var item model.CartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sku model.ProductSKU
		if err := tx.First(&sku, "sku_code = ? AND is_active = ?", skuCode, true).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "sku %s", skuCode)
		}

		stock, err := stockFor(tx, skuCode)
		if err != nil {
			return err
		}

		err = tx.Where("user_id = ? AND sku_code = ?", userID, skuCode).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if quantity > stock {
				return apperr.Wrap(apperr.ErrInsufficientStock, "sku %s has %d in stock", skuCode, stock)
			}
			item = model.CartItem{UserID: userID, SKUCode: skuCode, Quantity: quantity}
			return tx.Create(&item).Error
		case err != nil:
			return err
		default:
			merged := item.Quantity + quantity
			if merged > stock {
				return apperr.Wrap(apperr.ErrInsufficientStock, "sku %s has %d in stock", skuCode, stock)
			}
			item.Quantity = merged
			return tx.Model(&item).Update("quantity", merged).Error
		}
	})
	if err != nil {
		return nil, err
	}
	return s.lineFor(&item)
}

func (s *cartService) UpdateQuantity(userID uuid.UUID, itemID uint, quantity int) (*CartLine, error) {
	if quantity < 1 {
		return nil, apperr.Wrap(apperr.ErrValidation, "quantity must be at least 1")
	}

	var item model.CartItem
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ? AND user_id = ?", itemID, userID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "cart item %d", itemID)
		}
		stock, err := stockFor(tx, item.SKUCode)
		if err != nil {
			return err
		}
		if quantity > stock {
			return apperr.Wrap(apperr.ErrInsufficientStock, "sku %s has %d in stock", item.SKUCode, stock)
		}
		item.Quantity = quantity
		return tx.Model(&item).Update("quantity", quantity).Error
	})
	if err != nil {
		return nil, err
	}
	return s.lineFor(&item)
}

func (s *cartService) Remove(userID uuid.UUID, itemID uint) error {
	res := s.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&model.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Wrap(apperr.ErrNotFound, "cart item %d", itemID)
	}
	return nil
}

func (s *cartService) RemoveBatch(userID uuid.UUID, itemIDs []uint) error {
	if len(itemIDs) == 0 {
		return nil
	}
	return s.db.Where("user_id = ? AND id IN ?", userID, itemIDs).
		Delete(&model.CartItem{}).Error
}

// stockFor reads stock on the transaction's connection so the ceiling
// check sees the same state the write commits against.
func stockFor(tx *gorm.DB, skuCode string) (int, error) {
	var inv model.Inventory
	err := tx.Where("sku_code = ?", skuCode).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return inv.Quantity, nil
}

func (s *cartService) lineFor(item *model.CartItem) (*CartLine, error) {
	sku, err := s.skuRepo.FindByCode(item.SKUCode)
	if err != nil {
		return nil, err
	}
	stock, err := s.skuRepo.Stock(item.SKUCode)
	if err != nil {
		return nil, err
	}
	image := ""
	if img, err := s.skuRepo.FirstImage(item.SKUCode); err == nil {
		image = mediaurl.Resolve(img.ImagePath)
	} else if img, err := s.spuRepo.MainImage(sku.SPUID); err == nil {
		image = mediaurl.Resolve(img.ImagePath)
	}
	return &CartLine{
		ID:       item.ID,
		SKUCode:  item.SKUCode,
		Title:    sku.Title,
		Price:    sku.Price,
		Quantity: item.Quantity,
		Stock:    stock,
		Subtotal: sku.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		Image:    image,
	}, nil
}

func (s *cartService) ListAddresses(userID uuid.UUID) ([]model.Address, error) {
	var addrs []model.Address
	err := s.db.Where("user_id = ?", userID).
		Order("is_default DESC, id").Find(&addrs).Error
	return addrs, err
}

func (s *cartService) CreateAddress(userID uuid.UUID, input AddressInput) (*model.Address, error) {
	if err := validator.Check(&input); err != nil {
		return nil, err
	}

	addr := &model.Address{
		UserID:    userID,
		Name:      input.Name,
		Phone:     input.Phone,
		Province:  input.Province,
		City:      input.City,
		District:  input.District,
		Detail:    input.Detail,
		IsDefault: input.IsDefault,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if input.IsDefault {
			if err := clearDefaultAddress(tx, userID, 0); err != nil {
				return err
			}
		}
		return tx.Create(addr).Error
	})
	if err != nil {
		return nil, err
	}
	return addr, nil
}

func (s *cartService) UpdateAddress(userID uuid.UUID, addressID uint, input AddressInput) (*model.Address, error) {
	if err := validator.Check(&input); err != nil {
		return nil, err
	}

	var addr model.Address
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&addr, "id = ? AND user_id = ?", addressID, userID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "address %d", addressID)
		}
		if input.IsDefault {
			if err := clearDefaultAddress(tx, userID, addressID); err != nil {
				return err
			}
		}
		addr.Name = input.Name
		addr.Phone = input.Phone
		addr.Province = input.Province
		addr.City = input.City
		addr.District = input.District
		addr.Detail = input.Detail
		addr.IsDefault = input.IsDefault
		return tx.Save(&addr).Error
	})
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (s *cartService) DeleteAddress(userID uuid.UUID, addressID uint) error {
	res := s.db.Where("id = ? AND user_id = ?", addressID, userID).Delete(&model.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Wrap(apperr.ErrNotFound, "address %d", addressID)
	}
	return nil
}

// clearDefaultAddress drops the default flag from every other address of
// the user, keeping at most one default.
func clearDefaultAddress(tx *gorm.DB, userID uuid.UUID, keepID uint) error {
	q := tx.Model(&model.Address{}).Where("user_id = ? AND is_default = ?", userID, true)
	if keepID != 0 {
		q = q.Where("id <> ?", keepID)
	}
	return q.Update("is_default", false).Error
}

func (s *cartService) ListOwned(userID uuid.UUID) ([]model.OwnedProduct, error) {
	var owned []model.OwnedProduct
	err := s.db.Where("user_id = ?", userID).Order("purchased_at DESC, id DESC").Find(&owned).Error
	return owned, err
}

// Checkout converts the selected cart rows into owned products and
// decrements inventory, all-or-nothing. Already-owned SKUs stay owned.
func (s *cartService) Checkout(userID uuid.UUID, itemIDs []uint) error {
	if len(itemIDs) == 0 {
		return apperr.Wrap(apperr.ErrValidation, "no cart items selected")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var items []model.CartItem
		if err := tx.Where("user_id = ? AND id IN ?", userID, itemIDs).Find(&items).Error; err != nil {
			return err
		}
		if len(items) != len(itemIDs) {
			return apperr.Wrap(apperr.ErrNotFound, "cart item")
		}

		for _, item := range items {
			var inv model.Inventory
			if err := tx.Set("gorm:query_option", "FOR UPDATE").
				First(&inv, "sku_code = ?", item.SKUCode).Error; err != nil {
				return apperr.Wrap(apperr.ErrInsufficientStock, "sku %s has 0 in stock", item.SKUCode)
			}
			if inv.Quantity < item.Quantity {
				return apperr.Wrap(apperr.ErrInsufficientStock, "sku %s has %d in stock", item.SKUCode, inv.Quantity)
			}
			if err := tx.Model(&inv).Update("quantity", inv.Quantity-item.Quantity).Error; err != nil {
				return err
			}

			var owned model.OwnedProduct
			err := tx.Where("user_id = ? AND sku_code = ?", userID, item.SKUCode).First(&owned).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				owned = model.OwnedProduct{UserID: userID, SKUCode: item.SKUCode}
				if err := tx.Create(&owned).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}

		return tx.Where("user_id = ? AND id IN ?", userID, itemIDs).
			Delete(&model.CartItem{}).Error
	})
}
