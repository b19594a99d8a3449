package service

import (
	"errors"
	"testing"

	"go-social-shop/internal/model"
	"go-social-shop/internal/repository"
	"go-social-shop/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCartFixture(t *testing.T) (CartService, *gorm.DB, *model.User) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewCartService(repository.NewSKURepo(db), repository.NewSPURepo(db), db)
	user := createTestUser(t, db, "shopper", false)
	return svc, db, user
}

func seedSKU(t *testing.T, db *gorm.DB, code string, price int64, stock int) {
	t.Helper()
	spu := model.ProductSPU{Name: "Product " + code, CategoryID: 1, IsActive: true}
	require.NoError(t, db.Create(&spu).Error)
	require.NoError(t, db.Create(&model.ProductSKU{
		SKUCode: code, SPUID: spu.ID, Title: "SKU " + code,
		Price: decimal.NewFromInt(price), IsActive: true,
	}).Error)
	require.NoError(t, db.Create(&model.Inventory{SKUCode: code, Quantity: stock}).Error)
}

func TestCartAddMergesQuantities(t *testing.T) {
	svc, db, user := newCartFixture(t)
	seedSKU(t, db, "10-1", 50, 5)

	line, err := svc.Add(user.ID, "10-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	line, err = svc.Add(user.ID, "10-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)

	// One row per (user, sku).
	var rows int64
	require.NoError(t, db.Model(&model.CartItem{}).Where("user_id = ?", user.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	// Merging past available stock is refused.
	_, err = svc.Add(user.ID, "10-1", 2)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))

	_, err = svc.Add(user.ID, "no-such-sku", 1)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCartTotalsUseDecimalMath(t *testing.T) {
	svc, db, user := newCartFixture(t)
	seedSKU(t, db, "10-1", 50, 10)
	seedSKU(t, db, "11-1", 19, 10)

	_, err := svc.Add(user.ID, "10-1", 2)
	require.NoError(t, err)
	_, err = svc.Add(user.ID, "11-1", 3)
	require.NoError(t, err)

	cart, err := svc.List(user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(157)), "total = %s", cart.Total)
}

func TestCartUpdateAndRemove(t *testing.T) {
	svc, db, user := newCartFixture(t)
	stranger := createTestUser(t, db, "stranger", false)
	seedSKU(t, db, "10-1", 50, 5)

	line, err := svc.Add(user.ID, "10-1", 1)
	require.NoError(t, err)

	updated, err := svc.UpdateQuantity(user.ID, line.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	_, err = svc.UpdateQuantity(user.ID, line.ID, 6)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))

	// Another user cannot touch the row.
	_, err = svc.UpdateQuantity(stranger.ID, line.ID, 1)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	err = svc.Remove(stranger.ID, line.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	require.NoError(t, svc.Remove(user.ID, line.ID))
	cart, err := svc.List(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCheckoutMovesLinesToOwned(t *testing.T) {
	svc, db, user := newCartFixture(t)
	seedSKU(t, db, "10-1", 50, 5)
	seedSKU(t, db, "11-1", 20, 1)

	a, err := svc.Add(user.ID, "10-1", 2)
	require.NoError(t, err)
	b, err := svc.Add(user.ID, "11-1", 1)
	require.NoError(t, err)

	require.NoError(t, svc.Checkout(user.ID, []uint{a.ID, b.ID}))

	owned, err := svc.ListOwned(user.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	var inv model.Inventory
	require.NoError(t, db.First(&inv, "sku_code = ?", "10-1").Error)
	assert.Equal(t, 3, inv.Quantity)

	cart, err := svc.List(user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCheckoutIsAllOrNothing(t *testing.T) {
	svc, db, user := newCartFixture(t)
	seedSKU(t, db, "10-1", 50, 5)
	seedSKU(t, db, "11-1", 20, 1)

	a, err := svc.Add(user.ID, "10-1", 2)
	require.NoError(t, err)
	b, err := svc.Add(user.ID, "11-1", 1)
	require.NoError(t, err)

	// Stock drains between add and checkout.
	require.NoError(t, db.Model(&model.Inventory{}).
		Where("sku_code = ?", "11-1").Update("quantity", 0).Error)

	err = svc.Checkout(user.ID, []uint{a.ID, b.ID})
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))

	// Nothing moved: inventory intact, cart intact, nothing owned.
	var inv model.Inventory
	require.NoError(t, db.First(&inv, "sku_code = ?", "10-1").Error)
	assert.Equal(t, 5, inv.Quantity)
	cart, err := svc.List(user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	owned, err := svc.ListOwned(user.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestAddressDefaultIsExclusive(t *testing.T) {
	svc, db, user := newCartFixture(t)

	first, err := svc.CreateAddress(user.ID, AddressInput{
		Name: "Home", Phone: "123", IsDefault: true,
	})
	require.NoError(t, err)
	second, err := svc.CreateAddress(user.ID, AddressInput{
		Name: "Office", Phone: "456", IsDefault: true,
	})
	require.NoError(t, err)

	addrs, err := svc.ListAddresses(user.ID)
	require.NoError(t, err)
	require.Len(t, addrs, 2)

	defaults := 0
	for _, a := range addrs {
		if a.IsDefault {
			defaults++
			assert.Equal(t, second.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	// Flipping the first back clears the second.
	_, err = svc.UpdateAddress(user.ID, first.ID, AddressInput{
		Name: "Home", Phone: "123", IsDefault: true,
	})
	require.NoError(t, err)

	var flagged int64
	require.NoError(t, db.Model(&model.Address{}).
		Where("user_id = ? AND is_default = ?", user.ID, true).Count(&flagged).Error)
	assert.EqualValues(t, 1, flagged)
}
