package service

import (
	"errors"
	"fmt"
	"testing"

	"go-social-shop/internal/model"
	"go-social-shop/internal/repository"
	"go-social-shop/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type catalogFixture struct {
	db         *gorm.DB
	catalog    CatalogService
	categories CategoryService
	attributes AttributeService

	root  *model.Category
	child *model.Category
	spu   *SPUResponse

	color *model.Attribute
	size  *model.Attribute
	red   *model.AttributeValue
	blue  *model.AttributeValue
	small *model.AttributeValue
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	db := setupTestDB(t)

	categoryRepo := repository.NewCategoryRepo(db)
	attributeRepo := repository.NewAttributeRepo(db)
	spuRepo := repository.NewSPURepo(db)
	skuRepo := repository.NewSKURepo(db)

	f := &catalogFixture{
		db:         db,
		categories: NewCategoryService(categoryRepo, db),
		attributes: NewAttributeService(attributeRepo, db),
		catalog:    NewCatalogService(spuRepo, skuRepo, attributeRepo, categoryRepo, db, nil),
	}

	var err error
	f.root, err = f.categories.Create("Apparel", nil)
	require.NoError(t, err)
	f.child, err = f.categories.Create("Shirts", &f.root.ID)
	require.NoError(t, err)

	f.spu, err = f.catalog.CreateSPU(SPUInput{Name: "Band Tee", Category: f.child.ID})
	require.NoError(t, err)

	f.color, err = f.attributes.Create("Color")
	require.NoError(t, err)
	f.size, err = f.attributes.Create("Size")
	require.NoError(t, err)
	f.red, err = f.attributes.AddValue(f.color.ID, "Red")
	require.NoError(t, err)
	f.blue, err = f.attributes.AddValue(f.color.ID, "Blue")
	require.NoError(t, err)
	f.small, err = f.attributes.AddValue(f.size.ID, "S")
	require.NoError(t, err)

	require.NoError(t, f.catalog.SetSPUAttributes(f.spu.ID, []uint{f.color.ID, f.size.ID}))
	return f
}

func (f *catalogFixture) createSKU(t *testing.T, title string, stock int, attrs map[uint]uint) *SKUDetail {
	t.Helper()
	sku, err := f.catalog.CreateSKU(f.spu.ID, SKUInput{
		Title:      title,
		Price:      decimal.NewFromInt(99),
		Stock:      stock,
		Attributes: attrs,
	})
	require.NoError(t, err)
	return sku
}

func TestCreateSKUCodesAreMonotonic(t *testing.T) {
	f := newCatalogFixture(t)

	first := f.createSKU(t, "Red S", 5, map[uint]uint{f.color.ID: f.red.ID, f.size.ID: f.small.ID})
	second := f.createSKU(t, "Blue S", 5, map[uint]uint{f.color.ID: f.blue.ID, f.size.ID: f.small.ID})

	assert.Equal(t, fmt.Sprintf("%d-1", f.spu.ID), first.SKUCode)
	assert.Equal(t, fmt.Sprintf("%d-2", f.spu.ID), second.SKUCode)

	// A deleted code is never reissued.
	require.NoError(t, f.catalog.DeleteSKU(second.SKUCode))
	third := f.createSKU(t, "Blue S v2", 5, map[uint]uint{f.color.ID: f.blue.ID})
	assert.Equal(t, fmt.Sprintf("%d-3", f.spu.ID), third.SKUCode)
}

func TestCreateSKUEnforcesAttributeInvariants(t *testing.T) {
	f := newCatalogFixture(t)

	material, err := f.attributes.Create("Material")
	require.NoError(t, err)
	cotton, err := f.attributes.AddValue(material.ID, "Cotton")
	require.NoError(t, err)

	// Material is not declared on the SPU.
	_, err = f.catalog.CreateSKU(f.spu.ID, SKUInput{
		Title:      "Cotton Tee",
		Stock:      1,
		Attributes: map[uint]uint{material.ID: cotton.ID},
	})
	assert.True(t, errors.Is(err, apperr.ErrAttributeNotApplicable))

	// "S" is a Size value, not a Color value.
	_, err = f.catalog.CreateSKU(f.spu.ID, SKUInput{
		Title:      "Odd Tee",
		Stock:      1,
		Attributes: map[uint]uint{f.color.ID: f.small.ID},
	})
	assert.True(t, errors.Is(err, apperr.ErrValueMismatch))

	// Nothing is half-created when validation fails.
	var skus int64
	require.NoError(t, f.db.Model(&model.ProductSKU{}).Where("spu_id = ?", f.spu.ID).Count(&skus).Error)
	assert.Zero(t, skus)

	sku := f.createSKU(t, "Red Tee", 7, map[uint]uint{f.color.ID: f.red.ID})
	assert.Equal(t, 7, sku.Stock)
	assert.Equal(t, f.red.ID, sku.Attributes[f.color.ID])
}

func TestUpdateSKUReplacesSelectionInFull(t *testing.T) {
	f := newCatalogFixture(t)
	sku := f.createSKU(t, "Red S", 5, map[uint]uint{f.color.ID: f.red.ID, f.size.ID: f.small.ID})

	input := SKUInput{
		Title:      "Blue only",
		Price:      decimal.NewFromInt(120),
		Stock:      3,
		Attributes: map[uint]uint{f.color.ID: f.blue.ID},
	}
	updated, err := f.catalog.UpdateSKU(sku.SKUCode, input)
	require.NoError(t, err)
	assert.Equal(t, map[uint]uint{f.color.ID: f.blue.ID}, updated.Attributes)
	assert.Equal(t, 3, updated.Stock)

	// Running the same replace again leaves an identical link set.
	updated, err = f.catalog.UpdateSKU(sku.SKUCode, input)
	require.NoError(t, err)
	assert.Equal(t, map[uint]uint{f.color.ID: f.blue.ID}, updated.Attributes)

	var links int64
	require.NoError(t, f.db.Model(&model.ProductSKUAttributeValue{}).
		Where("sku_code = ?", sku.SKUCode).Count(&links).Error)
	assert.EqualValues(t, 1, links)
}

func TestSKUMatrixListsOnlyUsedValues(t *testing.T) {
	f := newCatalogFixture(t)

	// Blue exists in the catalog but no SKU pins it.
	f.createSKU(t, "Red S", 5, map[uint]uint{f.color.ID: f.red.ID, f.size.ID: f.small.ID})

	matrix, err := f.catalog.SKUMatrix(f.spu.ID, false)
	require.NoError(t, err)
	require.Len(t, matrix.Attributes, 2)
	require.Len(t, matrix.SKUs, 1)

	byName := make(map[string][]AttributeValueOption)
	for _, attr := range matrix.Attributes {
		byName[attr.Name] = attr.Values
	}
	require.Len(t, byName["Color"], 1)
	assert.Equal(t, "Red", byName["Color"][0].Value)
	require.Len(t, byName["Size"], 1)
	assert.Equal(t, "S", byName["Size"][0].Value)
}

func TestSKUMatrixHidesInactiveVariants(t *testing.T) {
	f := newCatalogFixture(t)

	active := f.createSKU(t, "Red S", 5, map[uint]uint{f.color.ID: f.red.ID})
	inactive := f.createSKU(t, "Blue S", 5, map[uint]uint{f.color.ID: f.blue.ID})

	off := false
	_, err := f.catalog.UpdateSKU(inactive.SKUCode, SKUInput{
		Title:      inactive.Title,
		Price:      inactive.Price,
		Stock:      5,
		IsActive:   &off,
		Attributes: map[uint]uint{f.color.ID: f.blue.ID},
	})
	require.NoError(t, err)

	matrix, err := f.catalog.SKUMatrix(f.spu.ID, false)
	require.NoError(t, err)
	require.Len(t, matrix.SKUs, 1)
	assert.Equal(t, active.SKUCode, matrix.SKUs[0].SKUCode)

	all, err := f.catalog.SKUMatrix(f.spu.ID, true)
	require.NoError(t, err)
	assert.Len(t, all.SKUs, 2)
}

func TestListSPUsExpandsCategoryFilterToSubtree(t *testing.T) {
	f := newCatalogFixture(t)

	// A product in an unrelated tree must not match.
	other, err := f.categories.Create("Grocery", nil)
	require.NoError(t, err)
	_, err = f.catalog.CreateSPU(SPUInput{Name: "Apples", Category: other.ID})
	require.NoError(t, err)

	page, err := f.catalog.ListSPUs(ListSPUOptions{CategoryID: &f.root.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Count)
	assert.Equal(t, "Band Tee", page.Results[0].Name)

	page, err = f.catalog.ListSPUs(ListSPUOptions{CategoryID: &f.child.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Count)
}

func TestListSPUsFiltersAndVisibility(t *testing.T) {
	f := newCatalogFixture(t)

	off := false
	_, err := f.catalog.UpdateSPU(f.spu.ID, SPUInput{
		Name: "Band Tee", Category: f.child.ID, IsActive: &off,
	})
	require.NoError(t, err)

	page, err := f.catalog.ListSPUs(ListSPUOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Count)

	page, err = f.catalog.ListSPUs(ListSPUOptions{IncludeInactive: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Count)

	// Search is case-insensitive substring match.
	page, err = f.catalog.ListSPUs(ListSPUOptions{Search: "band", IncludeInactive: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Count)

	page, err = f.catalog.ListSPUs(ListSPUOptions{Search: "drum", IncludeInactive: true})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Count)
}

func TestReviewAggregates(t *testing.T) {
	f := newCatalogFixture(t)
	alice := createTestUser(t, f.db, "alice", false)
	bob := createTestUser(t, f.db, "bob", false)
	carol := createTestUser(t, f.db, "carol", false)

	// No reviews yet: count 0, rating reported as 0.
	spu, err := f.catalog.GetSPU(f.spu.ID, nil, false)
	require.NoError(t, err)
	assert.EqualValues(t, 0, spu.ReviewCount)
	assert.Equal(t, 0.0, spu.AverageRating)

	_, err = f.catalog.CreateReview(alice.ID, f.spu.ID, "good", 4)
	require.NoError(t, err)
	_, err = f.catalog.CreateReview(bob.ID, f.spu.ID, "great", 4)
	require.NoError(t, err)
	_, err = f.catalog.CreateReview(carol.ID, f.spu.ID, "superb", 5)
	require.NoError(t, err)

	spu, err = f.catalog.GetSPU(f.spu.ID, nil, false)
	require.NoError(t, err)
	assert.EqualValues(t, 3, spu.ReviewCount)
	// (4+4+5)/3 = 4.333..., rounded to one decimal.
	assert.Equal(t, 4.3, spu.AverageRating)

	_, err = f.catalog.CreateReview(alice.ID, f.spu.ID, "meh", 6)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = f.catalog.CreateReview(alice.ID, f.spu.ID, "meh", 0)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	reviews, err := f.catalog.ListReviews(f.spu.ID, false)
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.Equal(t, "superb", reviews[0].Content) // newest first
	assert.Equal(t, "carol", reviews[0].Username)
}

func TestSKUImageFallsBackToSPUMainImage(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.catalog.UpdateSPU(f.spu.ID, SPUInput{
		Name: "Band Tee", Category: f.child.ID, MainImage: "products/tee.jpg",
	})
	require.NoError(t, err)

	bare := f.createSKU(t, "No image", 1, nil)
	withImage, err := f.catalog.CreateSKU(f.spu.ID, SKUInput{
		Title:  "Own image",
		Stock:  1,
		Images: []string{"products/tee-red.jpg"},
	})
	require.NoError(t, err)

	matrix, err := f.catalog.SKUMatrix(f.spu.ID, false)
	require.NoError(t, err)

	images := make(map[string]string, len(matrix.SKUs))
	for _, sku := range matrix.SKUs {
		images[sku.SKUCode] = sku.Image
	}
	assert.Contains(t, images[bare.SKUCode], "tee.jpg")
	assert.Contains(t, images[withImage.SKUCode], "tee-red.jpg")
}

func TestDeleteSPUCascades(t *testing.T) {
	f := newCatalogFixture(t)
	alice := createTestUser(t, f.db, "alice", false)

	sku := f.createSKU(t, "Red S", 5, map[uint]uint{f.color.ID: f.red.ID})
	_, err := f.catalog.CreateReview(alice.ID, f.spu.ID, "nice", 5)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&model.CartItem{UserID: alice.ID, SKUCode: sku.SKUCode, Quantity: 1}).Error)
	require.NoError(t, f.db.Create(&model.ProductFavorite{UserID: alice.ID, SPUID: f.spu.ID}).Error)

	require.NoError(t, f.catalog.DeleteSPU(f.spu.ID))

	tables := map[string]interface{}{
		"skus":       &model.ProductSKU{},
		"inventory":  &model.Inventory{},
		"sku links":  &model.ProductSKUAttributeValue{},
		"spu links":  &model.ProductSPUAttribute{},
		"reviews":    &model.ProductReview{},
		"favorites":  &model.ProductFavorite{},
		"cart items": &model.CartItem{},
	}
	for name, modelPtr := range tables {
		var count int64
		require.NoError(t, f.db.Model(modelPtr).Count(&count).Error, name)
		assert.Zero(t, count, name)
	}

	_, err = f.catalog.GetSPU(f.spu.ID, nil, true)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeactivatedProductHiddenFromPublicReads(t *testing.T) {
	f := newCatalogFixture(t)
	alice := createTestUser(t, f.db, "alice", false)

	f.createSKU(t, "Red S", 5, map[uint]uint{f.color.ID: f.red.ID})
	_, err := f.catalog.CreateReview(alice.ID, f.spu.ID, "nice", 5)
	require.NoError(t, err)

	off := false
	_, err = f.catalog.UpdateSPU(f.spu.ID, SPUInput{
		Name: "Band Tee", Category: f.child.ID, IsActive: &off,
	})
	require.NoError(t, err)

	// Detail, variant matrix and reviews all 404 for shoppers.
	_, err = f.catalog.GetSPU(f.spu.ID, nil, false)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	_, err = f.catalog.SKUMatrix(f.spu.ID, false)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	_, err = f.catalog.ListReviews(f.spu.ID, false)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	// Staff reads still see the product.
	spu, err := f.catalog.GetSPU(f.spu.ID, nil, true)
	require.NoError(t, err)
	assert.False(t, spu.IsActive)
	matrix, err := f.catalog.SKUMatrix(f.spu.ID, true)
	require.NoError(t, err)
	assert.Len(t, matrix.SKUs, 1)
	reviews, err := f.catalog.ListReviews(f.spu.ID, true)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestSetSPUAttributesDeduplicatesInput(t *testing.T) {
	f := newCatalogFixture(t)

	err := f.catalog.SetSPUAttributes(f.spu.ID, []uint{f.color.ID, f.color.ID, f.size.ID})
	require.NoError(t, err)

	var links int64
	require.NoError(t, f.db.Model(&model.ProductSPUAttribute{}).
		Where("spu_id = ?", f.spu.ID).Count(&links).Error)
	assert.EqualValues(t, 2, links)
}
