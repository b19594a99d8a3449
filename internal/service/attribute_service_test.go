package service

import (
	"errors"
	"testing"

	"go-social-shop/internal/model"
	"go-social-shop/internal/repository"
	"go-social-shop/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAttributeService(t *testing.T) (AttributeService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewAttributeService(repository.NewAttributeRepo(db), db), db
}

func TestAttributeCreateRejectsDuplicateName(t *testing.T) {
	svc, _ := newAttributeService(t)

	_, err := svc.Create("Color")
	require.NoError(t, err)

	_, err = svc.Create("Color")
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = svc.Create("")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestAttributeValuePairUniqueness(t *testing.T) {
	svc, _ := newAttributeService(t)

	color, err := svc.Create("Color")
	require.NoError(t, err)
	size, err := svc.Create("Size")
	require.NoError(t, err)

	_, err = svc.AddValue(color.ID, "Red")
	require.NoError(t, err)

	_, err = svc.AddValue(color.ID, "Red")
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	// Same literal under another attribute is a different pair.
	_, err = svc.AddValue(size.ID, "Red")
	require.NoError(t, err)

	_, err = svc.AddValue(999, "Blue")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestAttributeDeleteCascades(t *testing.T) {
	svc, db := newAttributeService(t)

	color, err := svc.Create("Color")
	require.NoError(t, err)
	red, err := svc.AddValue(color.ID, "Red")
	require.NoError(t, err)

	spu := model.ProductSPU{Name: "Shirt", CategoryID: 1, IsActive: true}
	require.NoError(t, db.Create(&spu).Error)
	require.NoError(t, db.Create(&model.ProductSPUAttribute{SPUID: spu.ID, AttributeID: color.ID}).Error)
	sku := model.ProductSKU{SKUCode: "1-1", SPUID: spu.ID, Title: "Red Shirt", IsActive: true}
	require.NoError(t, db.Create(&sku).Error)
	require.NoError(t, db.Create(&model.ProductSKUAttributeValue{
		SKUCode: sku.SKUCode, AttributeID: color.ID, AttributeValueID: red.ID,
	}).Error)

	require.NoError(t, svc.Delete(color.ID))

	var counts [3]int64
	require.NoError(t, db.Model(&model.AttributeValue{}).Where("attribute_id = ?", color.ID).Count(&counts[0]).Error)
	require.NoError(t, db.Model(&model.ProductSPUAttribute{}).Where("attribute_id = ?", color.ID).Count(&counts[1]).Error)
	require.NoError(t, db.Model(&model.ProductSKUAttributeValue{}).Where("attribute_id = ?", color.ID).Count(&counts[2]).Error)
	for _, n := range counts {
		assert.Zero(t, n)
	}

	// The SKU itself survives with one variant dimension less.
	var survivor model.ProductSKU
	require.NoError(t, db.First(&survivor, "sku_code = ?", sku.SKUCode).Error)
}

func TestAttributeDeleteValueCascadesLinks(t *testing.T) {
	svc, db := newAttributeService(t)

	color, err := svc.Create("Color")
	require.NoError(t, err)
	red, err := svc.AddValue(color.ID, "Red")
	require.NoError(t, err)
	blue, err := svc.AddValue(color.ID, "Blue")
	require.NoError(t, err)

	require.NoError(t, db.Create(&model.ProductSKUAttributeValue{
		SKUCode: "1-1", AttributeID: color.ID, AttributeValueID: red.ID,
	}).Error)

	require.NoError(t, svc.DeleteValue(red.ID))

	var links int64
	require.NoError(t, db.Model(&model.ProductSKUAttributeValue{}).
		Where("attribute_value_id = ?", red.ID).Count(&links).Error)
	assert.Zero(t, links)

	// The sibling value is untouched.
	var remaining model.AttributeValue
	require.NoError(t, db.First(&remaining, "id = ?", blue.ID).Error)
}
