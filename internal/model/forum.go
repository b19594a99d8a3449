package model

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a forum label, unique by name.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name" validate:"required"`
}

func (Tag) TableName() string {
	return "tags"
}

// PostImage is an image inserted into forum posts. Images are shared
// between posts; an image row is removed once no post links to it.
type PostImage struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	FilePath string `gorm:"type:varchar(255);not null;index" json:"file_path"`
}

func (PostImage) TableName() string {
	return "post_images"
}

// Post is a forum thread root. Products links the discussion to catalog
// SPUs so post search can match product names.
type Post struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Title     string       `gorm:"type:varchar(200);not null" json:"title" validate:"required"`
	Content   string       `gorm:"type:text;not null" json:"content" validate:"required"`
	AuthorID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"author"`
	Author    *User        `gorm:"foreignKey:AuthorID" json:"-" validate:"-"`
	Tags      []Tag        `gorm:"many2many:post_tags;" json:"tags,omitempty" validate:"-"`
	Images    []PostImage  `gorm:"many2many:post_image_links;" json:"images,omitempty" validate:"-"`
	Products  []ProductSPU `gorm:"many2many:post_products;joinForeignKey:PostID;joinReferences:ProductSpuID" json:"products,omitempty" validate:"-"`
	CreatedAt time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

// Reply is a comment on a post. ParentID threads replies; the API returns
// them flat, ordered by creation time.
type Reply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content" validate:"required"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"-" validate:"-"`
	PostID    uint      `gorm:"not null;index" json:"post" validate:"required"`
	ParentID  *uint     `gorm:"index" json:"parent"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Reply) TableName() string {
	return "replies"
}
