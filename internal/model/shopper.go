package model

import (
	"time"

	"github.com/google/uuid"
)

// CartItem holds one SKU in a user's cart. Unique per (user, sku): adding
// the same SKU again merges quantities.
type CartItem struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_sku" json:"-"`
	SKUCode  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_cart_user_sku" json:"sku_code"`
	Quantity int       `gorm:"not null;default:1" json:"quantity" validate:"required,gte=1"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Address is a shipping address. At most one default per user, enforced
// by clearing the flag on sibling rows in the same transaction.
type Address struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name" validate:"required"`
	Phone     string    `gorm:"type:varchar(20);not null" json:"phone" validate:"required"`
	Province  string    `gorm:"type:varchar(50)" json:"province"`
	City      string    `gorm:"type:varchar(50)" json:"city"`
	District  string    `gorm:"type:varchar(50)" json:"district"`
	Detail    string    `gorm:"type:varchar(200)" json:"address"`
	IsDefault bool      `gorm:"default:false" json:"is_default"`
}

func (Address) TableName() string {
	return "addresses"
}

// ProductFavorite marks an SPU as favorited by a user, unique per pair.
type ProductFavorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_fav_user_spu" json:"-"`
	SPUID     uint      `gorm:"column:spu_id;not null;uniqueIndex:idx_fav_user_spu" json:"product"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProductFavorite) TableName() string {
	return "product_favorites"
}

// PostFavorite marks a forum post as favorited by a user, unique per pair.
type PostFavorite struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_fav_user_post" json:"-"`
	PostID uint      `gorm:"not null;uniqueIndex:idx_fav_user_post" json:"post"`
}

func (PostFavorite) TableName() string {
	return "post_favorites"
}

// OwnedProduct records a purchased SKU, unique per (user, sku).
type OwnedProduct struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_owned_user_sku" json:"-"`
	SKUCode     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_owned_user_sku" json:"sku_code"`
	PurchasedAt time.Time `gorm:"autoCreateTime" json:"purchased_at"`
}

func (OwnedProduct) TableName() string {
	return "owned_products"
}
