package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSPU is the abstract sellable product; concrete variants live in
// ProductSKU rows. SKUSeq is a monotonic counter backing SKU code
// generation; it never decreases, so deleted codes are not reused.
type ProductSPU struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(200);not null;index" json:"name" validate:"required"`
	Description string    `gorm:"type:text" json:"description"`
	CategoryID  uint      `gorm:"not null;index:idx_spus_category_active" json:"category" validate:"required"`
	Brand       string    `gorm:"type:varchar(100);index" json:"brand"`
	Series      string    `gorm:"type:varchar(100);index" json:"series"`
	IsActive    bool      `gorm:"default:true;index:idx_spus_category_active" json:"is_active"`
	SKUSeq      uint      `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ProductSPU) TableName() string {
	return "product_spus"
}

// ProductSKU is one purchasable variant. SKUCode is the primary key,
// derived at creation time as "{spu_id}-{seq}".
type ProductSKU struct {
	SKUCode   string          `gorm:"type:varchar(100);primaryKey" json:"sku_code"`
	SPUID     uint            `gorm:"column:spu_id;not null;index:idx_skus_spu_active" json:"spu"`
	Title     string          `gorm:"type:varchar(200);not null" json:"title" validate:"required"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	IsActive  bool            `gorm:"default:true;index:idx_skus_spu_active" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (ProductSKU) TableName() string {
	return "product_skus"
}

// Attribute is a named variant dimension, e.g. "Color". Names are
// globally unique.
type Attribute struct {
	ID     uint             `gorm:"primaryKey" json:"id"`
	Name   string           `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required"`
	Values []AttributeValue `gorm:"foreignKey:AttributeID" json:"values,omitempty"`
}

func (Attribute) TableName() string {
	return "attributes"
}

// AttributeValue is one permitted setting of an attribute, unique per
// (attribute, value) pair.
type AttributeValue struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	AttributeID uint   `gorm:"not null;uniqueIndex:idx_attr_value" json:"attribute"`
	Value       string `gorm:"type:varchar(100);not null;uniqueIndex:idx_attr_value" json:"value" validate:"required"`
}

func (AttributeValue) TableName() string {
	return "attribute_values"
}

// ProductSPUAttribute declares that an attribute is selectable for
// variants of an SPU. Unique per (spu, attribute).
type ProductSPUAttribute struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	SPUID       uint `gorm:"column:spu_id;not null;uniqueIndex:idx_spu_attr;index" json:"spu"`
	AttributeID uint `gorm:"not null;uniqueIndex:idx_spu_attr" json:"attribute"`
}

func (ProductSPUAttribute) TableName() string {
	return "product_spu_attributes"
}

// ProductSKUAttributeValue pins one attribute value on a SKU. Unique per
// (sku, attribute): a SKU carries at most one value per attribute.
type ProductSKUAttributeValue struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	SKUCode          string `gorm:"type:varchar(100);not null;uniqueIndex:idx_sku_attr;index" json:"sku"`
	AttributeID      uint   `gorm:"not null;uniqueIndex:idx_sku_attr;index" json:"attribute"`
	AttributeValueID uint   `gorm:"not null;index" json:"attribute_value"`
}

func (ProductSKUAttributeValue) TableName() string {
	return "product_sku_attribute_values"
}

// Inventory is the available quantity of one SKU.
type Inventory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SKUCode   string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Quantity  int       `gorm:"not null;default:0;index" json:"quantity" validate:"gte=0"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Inventory) TableName() string {
	return "inventories"
}

// ProductImage links an image path to an SPU, a SKU, or both. At most one
// is_main image per SPU, enforced by replace-on-write in the mutation path.
type ProductImage struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SPUID     *uint   `gorm:"column:spu_id;index:idx_images_spu_main" json:"spu"`
	SKUCode   *string `gorm:"type:varchar(100);index:idx_images_sku_main" json:"sku"`
	ImagePath string  `gorm:"type:varchar(255);not null" json:"image_path"`
	IsMain    bool    `gorm:"default:false;index:idx_images_spu_main;index:idx_images_sku_main" json:"is_main"`
}

func (ProductImage) TableName() string {
	return "product_images"
}

// ProductReview is a user review on an SPU, rating 1..5.
type ProductReview struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SPUID     uint      `gorm:"column:spu_id;not null;index:idx_reviews_spu_created" json:"spu" validate:"required"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user"`
	User      *User     `gorm:"foreignKey:UserID" json:"-" validate:"-"`
	Content   string    `gorm:"type:text;not null" json:"content" validate:"required"`
	Rating    int       `gorm:"not null;default:5" json:"rating" validate:"required,min=1,max=5"`
	CreatedAt time.Time `gorm:"index:idx_reviews_spu_created" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProductReview) TableName() string {
	return "product_reviews"
}
