package service

import (
	"errors"
	"testing"

	"go-social-shop/internal/model"
	"go-social-shop/internal/repository"
	"go-social-shop/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCategoryService(t *testing.T) (CategoryService, repository.CategoryRepository) {
	t.Helper()
	db := setupTestDB(t)
	repo := repository.NewCategoryRepo(db)
	return NewCategoryService(repo, db), repo
}

func TestCategoryCreateRebuildsCoordinates(t *testing.T) {
	svc, repo := newCategoryService(t)

	root, err := svc.Create("Apparel", nil)
	require.NoError(t, err)
	shoes, err := svc.Create("Shoes", &root.ID)
	require.NoError(t, err)
	bags, err := svc.Create("Bags", &root.ID)
	require.NoError(t, err)

	root, err = repo.FindByID(root.ID)
	require.NoError(t, err)
	shoesNode, err := repo.FindByID(shoes.ID)
	require.NoError(t, err)
	bagsNode, err := repo.FindByID(bags.ID)
	require.NoError(t, err)

	// Root spans all children; siblings ordered by name: Bags before Shoes.
	assert.Equal(t, 1, root.Lft)
	assert.Equal(t, 6, root.Rgt)
	assert.Equal(t, 0, root.Level)
	assert.Equal(t, 2, bagsNode.Lft)
	assert.Equal(t, 3, bagsNode.Rgt)
	assert.Equal(t, 4, shoesNode.Lft)
	assert.Equal(t, 5, shoesNode.Rgt)
	assert.Equal(t, 1, shoesNode.Level)
	assert.Equal(t, root.ID, shoesNode.TreeID)
}

func TestCategoryDescendantsClosure(t *testing.T) {
	svc, _ := newCategoryService(t)

	root, err := svc.Create("Electronics", nil)
	require.NoError(t, err)
	phones, err := svc.Create("Phones", &root.ID)
	require.NoError(t, err)
	_, err = svc.Create("Android", &phones.ID)
	require.NoError(t, err)
	_, err = svc.Create("Laptops", &root.ID)
	require.NoError(t, err)

	// Separate tree should never leak into the subtree.
	other, err := svc.Create("Grocery", nil)
	require.NoError(t, err)
	_, err = svc.Create("Fruit", &other.ID)
	require.NoError(t, err)

	descendants, err := svc.Descendants(root.ID, true)
	require.NoError(t, err)
	assert.Len(t, descendants, 4)

	withoutSelf, err := svc.Descendants(root.ID, false)
	require.NoError(t, err)
	assert.Len(t, withoutSelf, 3)
	for _, d := range withoutSelf {
		assert.NotEqual(t, root.ID, d.ID)
	}
}

func TestCategoryListFullNames(t *testing.T) {
	svc, _ := newCategoryService(t)

	root, err := svc.Create("Home", nil)
	require.NoError(t, err)
	kitchen, err := svc.Create("Kitchen", &root.ID)
	require.NoError(t, err)
	_, err = svc.Create("Cookware", &kitchen.ID)
	require.NoError(t, err)

	list, err := svc.List()
	require.NoError(t, err)
	require.Len(t, list, 3)

	paths := make(map[string]string, len(list))
	for _, c := range list {
		paths[c.Name] = c.FullName
	}
	assert.Equal(t, "Home", paths["Home"])
	assert.Equal(t, "Home > Kitchen", paths["Kitchen"])
	assert.Equal(t, "Home > Kitchen > Cookware", paths["Cookware"])
}

func TestCategoryMoveRejectsCycles(t *testing.T) {
	svc, _ := newCategoryService(t)

	root, err := svc.Create("A", nil)
	require.NoError(t, err)
	child, err := svc.Create("B", &root.ID)
	require.NoError(t, err)
	grandchild, err := svc.Create("C", &child.ID)
	require.NoError(t, err)

	_, err = svc.Update(root.ID, "A", &grandchild.ID)
	assert.True(t, errors.Is(err, apperr.ErrInvalidParent))

	_, err = svc.Update(root.ID, "A", &root.ID)
	assert.True(t, errors.Is(err, apperr.ErrInvalidParent))

	// A legal move reparents and recomputes the subtree.
	moved, err := svc.Update(grandchild.ID, "C", &root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, *moved.ParentID)
	assert.Equal(t, 1, moved.Level)
}

func TestCategoryDeleteGuards(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewCategoryRepo(db)
	svc := NewCategoryService(repo, db)

	root, err := svc.Create("Outdoors", nil)
	require.NoError(t, err)
	camping, err := svc.Create("Camping", &root.ID)
	require.NoError(t, err)

	err = svc.Delete(root.ID)
	assert.True(t, errors.Is(err, apperr.ErrHasChildren))

	spu := model.ProductSPU{Name: "Tent", CategoryID: camping.ID, IsActive: true}
	require.NoError(t, db.Create(&spu).Error)

	err = svc.Delete(camping.ID)
	assert.True(t, errors.Is(err, apperr.ErrCategoryInUse))

	require.NoError(t, db.Delete(&model.ProductSPU{}, "id = ?", spu.ID).Error)
	require.NoError(t, svc.Delete(camping.ID))

	// Remaining root is a leaf again with tight bounds.
	rootNode, err := repo.FindByID(root.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rootNode.Lft)
	assert.Equal(t, 2, rootNode.Rgt)

	err = svc.Delete(camping.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
