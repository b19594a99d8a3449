package model

// Category is a node in the product taxonomy. The tree is stored as an
// adjacency list (ParentID); Lft/Rgt/TreeID/Level are derived nested-set
// coordinates rebuilt on every structural change so that "all descendants
// of N" is a single range predicate:
//
//	tree_id = N.tree_id AND lft BETWEEN N.lft AND N.rgt
type Category struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(100);not null" json:"name" validate:"required"`
	ParentID *uint  `gorm:"index" json:"parent"`

	Lft    int  `gorm:"not null;default:0" json:"-"`
	Rgt    int  `gorm:"not null;default:0" json:"-"`
	TreeID uint `gorm:"not null;default:0;index" json:"-"`
	Level  int  `gorm:"not null;default:0" json:"level"`
}

func (Category) TableName() string {
	return "categories"
}

// CategoryResponse adds the display path, e.g. "Clothing > Tops > T-Shirts".
type CategoryResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ParentID *uint  `json:"parent"`
	Level    int    `json:"level"`
	FullName string `json:"full_name"`
}
