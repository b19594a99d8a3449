package service

import (
	"errors"
	"sort"
	"strings"

	"go-social-shop/internal/model"
	"go-social-shop/internal/repository"
	"go-social-shop/pkg/apperr"
	"go-social-shop/pkg/validator"

	"gorm.io/gorm"
)

type CategoryService interface {
	List() ([]model.CategoryResponse, error)
	Create(name string, parentID *uint) (*model.Category, error)
	Update(id uint, name string, parentID *uint) (*model.Category, error)
	Delete(id uint) error
	Descendants(id uint, includeSelf bool) ([]model.Category, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	db           *gorm.DB
}

func NewCategoryService(categoryRepo repository.CategoryRepository, db *gorm.DB) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		db:           db,
	}
}

// List returns every category in tree traversal order with its display path.
func (s *categoryService) List() ([]model.CategoryResponse, error) {
	cats, err := s.categoryRepo.FindAllOrdered()
	if err != nil {
		return nil, err
	}

	names := make(map[uint]string, len(cats))
	parents := make(map[uint]*uint, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
		parents[c.ID] = c.ParentID
	}

	out := make([]model.CategoryResponse, 0, len(cats))
	for _, c := range cats {
		path := []string{c.Name}
		parent := c.ParentID
		for parent != nil {
			path = append([]string{names[*parent]}, path...)
			parent = parents[*parent]
		}
		out = append(out, model.CategoryResponse{
			ID:       c.ID,
			Name:     c.Name,
			ParentID: c.ParentID,
			Level:    c.Level,
			FullName: strings.Join(path, " > "),
		})
	}
	return out, nil
}

func (s *categoryService) Create(name string, parentID *uint) (*model.Category, error) {
	cat := &model.Category{Name: name, ParentID: parentID}
	if err := validator.Check(cat); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if parentID != nil {
			var parent model.Category
			if err := tx.First(&parent, "id = ?", *parentID).Error; err != nil {
				return apperr.Wrap(apperr.ErrNotFound, "parent category %d", *parentID)
			}
		}
		if err := tx.Create(cat).Error; err != nil {
			return err
		}
		return rebuildForest(tx)
	})
	if err != nil {
		return nil, err
	}

	return s.categoryRepo.FindByID(cat.ID)
}

func (s *categoryService) Update(id uint, name string, parentID *uint) (*model.Category, error) {
	if name == "" {
		return nil, apperr.Wrap(apperr.ErrValidation, "category name is required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cat model.Category
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&cat, "id = ?", id).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "category %d", id)
		}

		if parentID != nil {
			var parent model.Category
			if err := tx.First(&parent, "id = ?", *parentID).Error; err != nil {
				return apperr.Wrap(apperr.ErrNotFound, "parent category %d", *parentID)
			}
			// A node may not become a child of itself or of its own subtree.
			if parent.ID == cat.ID ||
				(parent.TreeID == cat.TreeID && parent.Lft > cat.Lft && parent.Rgt < cat.Rgt) {
				return apperr.Wrap(apperr.ErrInvalidParent, "category %d", id)
			}
		}

		cat.Name = name
		cat.ParentID = parentID
		if err := tx.Save(&cat).Error; err != nil {
			return err
		}
		return rebuildForest(tx)
	})
	if err != nil {
		return nil, err
	}

	return s.categoryRepo.FindByID(id)
}

// Delete removes a leaf category. Both guards run inside the same
// transaction as the delete, with the row locked, so a concurrent SPU
// re-categorization cannot slip between check and delete.
func (s *categoryService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var cat model.Category
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&cat, "id = ?", id).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "category %d", id)
		}

		var children int64
		if err := tx.Model(&model.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return err
		}
		if children > 0 {
			return apperr.Wrap(apperr.ErrHasChildren, "category %q", cat.Name)
		}

		var inUse int64
		if err := tx.Model(&model.ProductSPU{}).
			Where("category_id IN (?)", tx.Model(&model.Category{}).Select("id").
				Where("tree_id = ? AND lft >= ? AND rgt <= ?", cat.TreeID, cat.Lft, cat.Rgt)).
			Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return apperr.Wrap(apperr.ErrCategoryInUse, "category %q", cat.Name)
		}

		if err := tx.Delete(&model.Category{}, "id = ?", id).Error; err != nil {
			return err
		}
		return rebuildForest(tx)
	})
}

func (s *categoryService) Descendants(id uint, includeSelf bool) ([]model.Category, error) {
	cat, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Wrap(apperr.ErrNotFound, "category %d", id)
		}
		return nil, err
	}
	return s.categoryRepo.Descendants(cat, includeSelf)
}

// rebuildForest recomputes the nested-set coordinates for every tree from
// the parent links. Nodes are held in an arena slice and addressed by id;
// siblings are ordered by name, each root starts its own tree with
// tree_id = root id. Runs inside the caller's transaction so readers
// never observe half-updated bounds.
func rebuildForest(tx *gorm.DB) error {
	var cats []model.Category
	if err := tx.Find(&cats).Error; err != nil {
		return err
	}

	children := make(map[uint][]int, len(cats)) // parent id -> arena indexes
	var roots []int
	for i := range cats {
		if cats[i].ParentID == nil {
			roots = append(roots, i)
		} else {
			children[*cats[i].ParentID] = append(children[*cats[i].ParentID], i)
		}
	}
	byName := func(idx []int) {
		sort.Slice(idx, func(a, b int) bool { return cats[idx[a]].Name < cats[idx[b]].Name })
	}
	byName(roots)
	for _, idx := range children {
		byName(idx)
	}

	var assign func(i int, level int, treeID uint, counter *int)
	assign = func(i int, level int, treeID uint, counter *int) {
		cats[i].Lft = *counter
		*counter++
		cats[i].Level = level
		cats[i].TreeID = treeID
		for _, child := range children[cats[i].ID] {
			assign(child, level+1, treeID, counter)
		}
		cats[i].Rgt = *counter
		*counter++
	}

	for _, root := range roots {
		counter := 1
		assign(root, 0, cats[root].ID, &counter)
	}

	for i := range cats {
		err := tx.Model(&model.Category{}).Where("id = ?", cats[i].ID).
			Updates(map[string]interface{}{
				"lft":     cats[i].Lft,
				"rgt":     cats[i].Rgt,
				"tree_id": cats[i].TreeID,
				"level":   cats[i].Level,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
