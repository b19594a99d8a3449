package repository

import (
	"go-social-shop/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindByID(id uint) (*model.Category, error)
	// FindAllOrdered returns every category in tree traversal order
	// (tree_id, lft), which yields a depth-first flattening per tree.
	FindAllOrdered() ([]model.Category, error)
	// Descendants answers the subtree of node with a single nested-set
	// range predicate instead of recursive traversal.
	Descendants(node *model.Category, includeSelf bool) ([]model.Category, error)
	DescendantIDs(node *model.Category, includeSelf bool) ([]uint, error)
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) FindByID(id uint) (*model.Category, error) {
	var cat model.Category
	if err := r.db.First(&cat, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *categoryRepo) FindAllOrdered() ([]model.Category, error) {
	var cats []model.Category
	err := r.db.Order("tree_id, lft").Find(&cats).Error
	return cats, err
}

func (r *categoryRepo) Descendants(node *model.Category, includeSelf bool) ([]model.Category, error) {
	var cats []model.Category
	q := r.db.Order("lft")
	if includeSelf {
		q = q.Where("tree_id = ? AND lft >= ? AND rgt <= ?", node.TreeID, node.Lft, node.Rgt)
	} else {
		q = q.Where("tree_id = ? AND lft > ? AND rgt < ?", node.TreeID, node.Lft, node.Rgt)
	}
	err := q.Find(&cats).Error
	return cats, err
}

func (r *categoryRepo) DescendantIDs(node *model.Category, includeSelf bool) ([]uint, error) {
	cats, err := r.Descendants(node, includeSelf)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	return ids, nil
}
