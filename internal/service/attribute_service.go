package service

import (
	"errors"
	"log"

	"go-social-shop/internal/model"
	"go-social-shop/internal/repository"
	"go-social-shop/pkg/apperr"

	"gorm.io/gorm"
)

type AttributeService interface {
	List() ([]model.Attribute, error)
	Create(name string) (*model.Attribute, error)
	Delete(id uint) error
	AddValue(attributeID uint, value string) (*model.AttributeValue, error)
	DeleteValue(valueID uint) error
}

type attributeService struct {
	attributeRepo repository.AttributeRepository
	db            *gorm.DB
}

func NewAttributeService(attributeRepo repository.AttributeRepository, db *gorm.DB) AttributeService {
	return &attributeService{
		attributeRepo: attributeRepo,
		db:            db,
	}
}

func (s *attributeService) List() ([]model.Attribute, error) {
	return s.attributeRepo.FindAll()
}

func (s *attributeService) Create(name string) (*model.Attribute, error) {
	if name == "" {
		return nil, apperr.Wrap(apperr.ErrValidation, "attribute name is required")
	}

	attr := &model.Attribute{Name: name}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Attribute{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Wrap(apperr.ErrConflict, "attribute %q", name)
		}
		return tx.Create(attr).Error
	})
	if err != nil {
		return nil, err
	}
	return attr, nil
}

// Delete hard-deletes an attribute and cascades to its values and to every
// SPU/SKU link referencing them. SKUs that carried the attribute lose that
// variant dimension; the count is logged so the invalidation is visible.
func (s *attributeService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var attr model.Attribute
		if err := tx.First(&attr, "id = ?", id).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "attribute %d", id)
		}

		var skuLinks int64
		if err := tx.Model(&model.ProductSKUAttributeValue{}).Where("attribute_id = ?", id).Count(&skuLinks).Error; err != nil {
			return err
		}
		if skuLinks > 0 {
			log.Printf("deleting attribute %q invalidates %d SKU attribute value(s)", attr.Name, skuLinks)
		}

		if err := tx.Where("attribute_id = ?", id).Delete(&model.ProductSKUAttributeValue{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_id = ?", id).Delete(&model.ProductSPUAttribute{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attribute_id = ?", id).Delete(&model.AttributeValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Attribute{}, "id = ?", id).Error
	})
}

func (s *attributeService) AddValue(attributeID uint, value string) (*model.AttributeValue, error) {
	if value == "" {
		return nil, apperr.Wrap(apperr.ErrValidation, "attribute value is required")
	}

	av := &model.AttributeValue{AttributeID: attributeID, Value: value}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var attr model.Attribute
		if err := tx.First(&attr, "id = ?", attributeID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "attribute %d", attributeID)
		}

		var existing model.AttributeValue
		err := tx.First(&existing, "attribute_id = ? AND value = ?", attributeID, value).Error
		if err == nil {
			return apperr.Wrap(apperr.ErrConflict, "%s: %s", attr.Name, value)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(av).Error
	})
	if err != nil {
		return nil, err
	}
	return av, nil
}

func (s *attributeService) DeleteValue(valueID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var av model.AttributeValue
		if err := tx.First(&av, "id = ?", valueID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "attribute value %d", valueID)
		}
		if err := tx.Where("attribute_value_id = ?", valueID).Delete(&model.ProductSKUAttributeValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.AttributeValue{}, "id = ?", valueID).Error
	})
}
