package repository

import (
	"go-social-shop/internal/model"

	"gorm.io/gorm"
)

type AttributeRepository interface {
	FindAll() ([]model.Attribute, error)
	FindByID(id uint) (*model.Attribute, error)
	DeclaredForSPU(spuID uint) ([]model.ProductSPUAttribute, error)
}

type attributeRepo struct {
	db *gorm.DB
}

func NewAttributeRepo(db *gorm.DB) AttributeRepository {
	return &attributeRepo{db}
}

func (r *attributeRepo) FindAll() ([]model.Attribute, error) {
	var attrs []model.Attribute
	err := r.db.Preload("Values").Order("id").Find(&attrs).Error
	return attrs, err
}

func (r *attributeRepo) FindByID(id uint) (*model.Attribute, error) {
	var attr model.Attribute
	if err := r.db.Preload("Values").First(&attr, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attr, nil
}

func (r *attributeRepo) DeclaredForSPU(spuID uint) ([]model.ProductSPUAttribute, error) {
	var links []model.ProductSPUAttribute
	err := r.db.Where("spu_id = ?", spuID).Order("id").Find(&links).Error
	return links, err
}
