package model

import (
	"time"

	"github.com/google/uuid"
)

// Artist in the media-publishing section.
type Artist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required"`
	ImagePath string    `gorm:"type:varchar(255)" json:"image_path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Artist) TableName() string {
	return "artists"
}

// Album groups music tracks under an artist.
type Album struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"type:varchar(200);not null" json:"name" validate:"required"`
	ArtistID       uint       `gorm:"not null;index" json:"artist" validate:"required"`
	CoverImagePath string     `gorm:"type:varchar(255)" json:"cover_image_path"`
	ReleaseDate    *time.Time `gorm:"type:date" json:"release_date"`
	Description    string     `gorm:"type:text" json:"description"`
	IsActive       bool       `gorm:"default:true;index" json:"is_active"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Album) TableName() string {
	return "albums"
}

// Music is a published track. AlbumID is nullable; deleting an album
// detaches its tracks rather than removing them.
type Music struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"type:varchar(200);not null" json:"title" validate:"required"`
	ArtistID     uint      `gorm:"not null;index" json:"artist" validate:"required"`
	AlbumID      *uint     `gorm:"index" json:"album"`
	TrackNumber  *uint     `gorm:"index" json:"track_number"`
	DurationSecs *int      `json:"duration_secs"`
	FilePath     string    `gorm:"type:varchar(255)" json:"file_path"`
	IsActive     bool      `gorm:"default:true;index" json:"is_active"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Music) TableName() string {
	return "music"
}

// Video types
const (
	VideoLive        = "live"
	VideoInterview   = "interview"
	VideoDocumentary = "documentary"
)

type Video struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"type:varchar(200);not null" json:"title" validate:"required"`
	Description   string    `gorm:"type:text" json:"description"`
	VideoType     string    `gorm:"type:varchar(20);default:'live'" json:"video_type" validate:"omitempty,oneof=live interview documentary"`
	FilePath      string    `gorm:"type:varchar(255)" json:"file_path"`
	ExternalURL   string    `gorm:"type:varchar(255)" json:"external_url" validate:"omitempty,url"`
	ThumbnailPath string    `gorm:"type:varchar(255)" json:"thumbnail_path"`
	DurationSecs  *int      `json:"duration_secs"`
	IsActive      bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Video) TableName() string {
	return "videos"
}

// Notice is a site announcement written by a staff user.
type Notice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"type:varchar(200);not null" json:"title" validate:"required"`
	Content   string    `gorm:"type:text;not null" json:"content" validate:"required"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Notice) TableName() string {
	return "notices"
}
