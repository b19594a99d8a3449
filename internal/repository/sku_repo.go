package repository

import (
	"go-social-shop/internal/model"

	"gorm.io/gorm"
)

type SKURepository interface {
	FindByCode(code string) (*model.ProductSKU, error)
	FindBySPU(spuID uint, activeOnly bool) ([]model.ProductSKU, error)
	AttributeValues(skuCode string) ([]model.ProductSKUAttributeValue, error)
	// UsedValues returns the attribute values actually pinned by at least
	// one SKU of the SPU for the given attribute: the storefront variant
	// selector data, not the full global value list.
	UsedValues(spuID, attributeID uint) ([]model.AttributeValue, error)
	Stock(skuCode string) (int, error)
	FirstImage(skuCode string) (*model.ProductImage, error)
}

type skuRepo struct {
	db *gorm.DB
}

func NewSKURepo(db *gorm.DB) SKURepository {
	return &skuRepo{db}
}

func (r *skuRepo) FindByCode(code string) (*model.ProductSKU, error) {
	var sku model.ProductSKU
	if err := r.db.First(&sku, "sku_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *skuRepo) FindBySPU(spuID uint, activeOnly bool) ([]model.ProductSKU, error) {
	var skus []model.ProductSKU
	q := r.db.Where("spu_id = ?", spuID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("sku_code").Find(&skus).Error
	return skus, err
}

func (r *skuRepo) AttributeValues(skuCode string) ([]model.ProductSKUAttributeValue, error) {
	var links []model.ProductSKUAttributeValue
	err := r.db.Where("sku_code = ?", skuCode).Find(&links).Error
	return links, err
}

func (r *skuRepo) UsedValues(spuID, attributeID uint) ([]model.AttributeValue, error) {
	var values []model.AttributeValue
	err := r.db.Model(&model.AttributeValue{}).
		Distinct("attribute_values.*").
		Joins("JOIN product_sku_attribute_values sav ON sav.attribute_value_id = attribute_values.id").
		Joins("JOIN product_skus s ON s.sku_code = sav.sku_code").
		Where("s.spu_id = ? AND attribute_values.attribute_id = ?", spuID, attributeID).
		Order("attribute_values.id").
		Find(&values).Error
	return values, err
}

func (r *skuRepo) Stock(skuCode string) (int, error) {
	var inv model.Inventory
	err := r.db.Where("sku_code = ?", skuCode).First(&inv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return inv.Quantity, nil
}

func (r *skuRepo) FirstImage(skuCode string) (*model.ProductImage, error) {
	var img model.ProductImage
	err := r.db.Where("sku_code = ?", skuCode).Order("is_main DESC, id").First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}
