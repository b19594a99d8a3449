package service

import (
	"time"

	"go-social-shop/internal/model"
	"go-social-shop/pkg/apperr"
	"go-social-shop/pkg/mediaurl"
	"go-social-shop/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PublishService interface {
	ListArtists() ([]ArtistResponse, error)
	CreateArtist(name, imagePath string) (*model.Artist, error)

	ListAlbums(artistID *uint) ([]AlbumResponse, error)
	CreateAlbum(input AlbumInput) (*model.Album, error)
	DeleteAlbum(id uint) error

	ListMusic(artistID, albumID *uint) ([]MusicResponse, error)
	CreateMusic(input MusicInput) (*model.Music, error)

	ListVideos(videoType string) ([]VideoResponse, error)
	CreateVideo(input VideoInput) (*model.Video, error)

	ListNotices() ([]model.Notice, error)
	CreateNotice(authorID uuid.UUID, title, content string) (*model.Notice, error)
	DeleteNotice(id uint) error
}

type ArtistResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type AlbumResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Artist      uint       `json:"artist"`
	ArtistName  string     `json:"artist_name"`
	Cover       string     `json:"cover"`
	ReleaseDate *time.Time `json:"release_date"`
	Description string     `json:"description"`
}

type AlbumInput struct {
	Name        string `json:"name" validate:"required"`
	ArtistID    uint   `json:"artist" validate:"required"`
	CoverImage  string `json:"cover_image"`
	ReleaseDate string `json:"release_date"` // YYYY-MM-DD
	Description string `json:"description"`
}

type MusicResponse struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Artist       uint   `json:"artist"`
	ArtistName   string `json:"artist_name"`
	Album        *uint  `json:"album"`
	TrackNumber  *uint  `json:"track_number"`
	DurationSecs *int   `json:"duration_secs"`
	File         string `json:"file"`
	Cover        string `json:"cover"`
}

type MusicInput struct {
	Title        string `json:"title" validate:"required"`
	ArtistID     uint   `json:"artist" validate:"required"`
	AlbumID      *uint  `json:"album"`
	TrackNumber  *uint  `json:"track_number"`
	DurationSecs *int   `json:"duration_secs"`
	FilePath     string `json:"file_path"`
}

type VideoResponse struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	VideoType    string `json:"video_type"`
	File         string `json:"file"`
	ExternalURL  string `json:"external_url"`
	Thumbnail    string `json:"thumbnail"`
	DurationSecs *int   `json:"duration_secs"`
}

type VideoInput struct {
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	VideoType     string `json:"video_type" validate:"omitempty,oneof=live interview documentary"`
	FilePath      string `json:"file_path"`
	ExternalURL   string `json:"external_url" validate:"omitempty,url"`
	ThumbnailPath string `json:"thumbnail_path"`
	DurationSecs  *int   `json:"duration_secs"`
}

type publishService struct {
	db *gorm.DB
}

func NewPublishService(db *gorm.DB) PublishService {
	return &publishService{db: db}
}

func (s *publishService) ListArtists() ([]ArtistResponse, error) {
	var artists []model.Artist
	if err := s.db.Order("name").Find(&artists).Error; err != nil {
		return nil, err
	}
	out := make([]ArtistResponse, 0, len(artists))
	for _, a := range artists {
		out = append(out, ArtistResponse{
			ID:    a.ID,
			Name:  a.Name,
			Image: mediaurl.Resolve(a.ImagePath),
		})
	}
	return out, nil
}

func (s *publishService) CreateArtist(name, imagePath string) (*model.Artist, error) {
	if name == "" {
		return nil, apperr.Wrap(apperr.ErrValidation, "artist name is required")
	}
	artist := &model.Artist{Name: name, ImagePath: imagePath}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Artist{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Wrap(apperr.ErrConflict, "artist %q", name)
		}
		return tx.Create(artist).Error
	})
	if err != nil {
		return nil, err
	}
	return artist, nil
}

func (s *publishService) ListAlbums(artistID *uint) ([]AlbumResponse, error) {
	q := s.db.Model(&model.Album{}).Where("is_active = ?", true)
	if artistID != nil {
		q = q.Where("artist_id = ?", *artistID)
	}
	var albums []model.Album
	if err := q.Order("release_date DESC, id DESC").Find(&albums).Error; err != nil {
		return nil, err
	}

	names, err := s.artistNames()
	if err != nil {
		return nil, err
	}

	out := make([]AlbumResponse, 0, len(albums))
	for _, a := range albums {
		out = append(out, AlbumResponse{
			ID:          a.ID,
			Name:        a.Name,
			Artist:      a.ArtistID,
			ArtistName:  names[a.ArtistID],
			Cover:       mediaurl.Resolve(a.CoverImagePath),
			ReleaseDate: a.ReleaseDate,
			Description: a.Description,
		})
	}
	return out, nil
}

func (s *publishService) CreateAlbum(input AlbumInput) (*model.Album, error) {
	if err := validator.Check(&input); err != nil {
		return nil, err
	}

	var releaseDate *time.Time
	if input.ReleaseDate != "" {
		parsed, err := time.Parse("2006-01-02", input.ReleaseDate)
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrValidation, "release_date must be YYYY-MM-DD")
		}
		releaseDate = &parsed
	}

	album := &model.Album{
		Name:           input.Name,
		ArtistID:       input.ArtistID,
		CoverImagePath: input.CoverImage,
		ReleaseDate:    releaseDate,
		Description:    input.Description,
		IsActive:       true,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var artist model.Artist
		if err := tx.First(&artist, "id = ?", input.ArtistID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "artist %d", input.ArtistID)
		}
		return tx.Create(album).Error
	})
	if err != nil {
		return nil, err
	}
	return album, nil
}

// DeleteAlbum removes the album and detaches its tracks instead of
// deleting them.
func (s *publishService) DeleteAlbum(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var album model.Album
		if err := tx.First(&album, "id = ?", id).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "album %d", id)
		}
		if err := tx.Model(&model.Music{}).Where("album_id = ?", id).
			Update("album_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Album{}, "id = ?", id).Error
	})
}

func (s *publishService) ListMusic(artistID, albumID *uint) ([]MusicResponse, error) {
	q := s.db.Model(&model.Music{}).Where("is_active = ?", true)
	if artistID != nil {
		q = q.Where("artist_id = ?", *artistID)
	}
	if albumID != nil {
		q = q.Where("album_id = ?", *albumID)
	}
	var tracks []model.Music
	if err := q.Order("album_id, track_number, id").Find(&tracks).Error; err != nil {
		return nil, err
	}

	names, err := s.artistNames()
	if err != nil {
		return nil, err
	}
	covers := make(map[uint]string)
	var albums []model.Album
	if err := s.db.Find(&albums).Error; err != nil {
		return nil, err
	}
	for _, a := range albums {
		covers[a.ID] = a.CoverImagePath
	}

	out := make([]MusicResponse, 0, len(tracks))
	for _, m := range tracks {
		// A track's display cover comes from its album when it has one.
		cover := ""
		if m.AlbumID != nil {
			cover = mediaurl.Resolve(covers[*m.AlbumID])
		}
		out = append(out, MusicResponse{
			ID:           m.ID,
			Title:        m.Title,
			Artist:       m.ArtistID,
			ArtistName:   names[m.ArtistID],
			Album:        m.AlbumID,
			TrackNumber:  m.TrackNumber,
			DurationSecs: m.DurationSecs,
			File:         mediaurl.Resolve(m.FilePath),
			Cover:        cover,
		})
	}
	return out, nil
}

func (s *publishService) CreateMusic(input MusicInput) (*model.Music, error) {
	if err := validator.Check(&input); err != nil {
		return nil, err
	}

	track := &model.Music{
		Title:        input.Title,
		ArtistID:     input.ArtistID,
		AlbumID:      input.AlbumID,
		TrackNumber:  input.TrackNumber,
		DurationSecs: input.DurationSecs,
		FilePath:     input.FilePath,
		IsActive:     true,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var artist model.Artist
		if err := tx.First(&artist, "id = ?", input.ArtistID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "artist %d", input.ArtistID)
		}
		if input.AlbumID != nil {
			var album model.Album
			if err := tx.First(&album, "id = ?", *input.AlbumID).Error; err != nil {
				return apperr.Wrap(apperr.ErrNotFound, "album %d", *input.AlbumID)
			}
			if album.ArtistID != input.ArtistID {
				return apperr.Wrap(apperr.ErrValidation, "album %d belongs to another artist", *input.AlbumID)
			}
		}
		return tx.Create(track).Error
	})
	if err != nil {
		return nil, err
	}
	return track, nil
}

func (s *publishService) ListVideos(videoType string) ([]VideoResponse, error) {
	q := s.db.Model(&model.Video{}).Where("is_active = ?", true)
	if videoType != "" {
		q = q.Where("video_type = ?", videoType)
	}
	var videos []model.Video
	if err := q.Order("created_at DESC, id DESC").Find(&videos).Error; err != nil {
		return nil, err
	}

	out := make([]VideoResponse, 0, len(videos))
	for _, v := range videos {
		out = append(out, VideoResponse{
			ID:           v.ID,
			Title:        v.Title,
			Description:  v.Description,
			VideoType:    v.VideoType,
			File:         mediaurl.Resolve(v.FilePath),
			ExternalURL:  v.ExternalURL,
			Thumbnail:    mediaurl.Resolve(v.ThumbnailPath),
			DurationSecs: v.DurationSecs,
		})
	}
	return out, nil
}

func (s *publishService) CreateVideo(input VideoInput) (*model.Video, error) {
	if err := validator.Check(&input); err != nil {
		return nil, err
	}
	if input.FilePath == "" && input.ExternalURL == "" {
		return nil, apperr.Wrap(apperr.ErrValidation, "either file_path or external_url is required")
	}

	videoType := input.VideoType
	if videoType == "" {
		videoType = model.VideoLive
	}
	video := &model.Video{
		Title:         input.Title,
		Description:   input.Description,
		VideoType:     videoType,
		FilePath:      input.FilePath,
		ExternalURL:   input.ExternalURL,
		ThumbnailPath: input.ThumbnailPath,
		DurationSecs:  input.DurationSecs,
		IsActive:      true,
	}
	if err := s.db.Create(video).Error; err != nil {
		return nil, err
	}
	return video, nil
}

func (s *publishService) ListNotices() ([]model.Notice, error) {
	var notices []model.Notice
	err := s.db.Where("is_active = ?", true).Order("created_at DESC, id DESC").Find(&notices).Error
	return notices, err
}

func (s *publishService) CreateNotice(authorID uuid.UUID, title, content string) (*model.Notice, error) {
	if title == "" || content == "" {
		return nil, apperr.Wrap(apperr.ErrValidation, "title and content are required")
	}
	notice := &model.Notice{
		Title:    title,
		Content:  content,
		AuthorID: authorID,
		IsActive: true,
	}
	if err := s.db.Create(notice).Error; err != nil {
		return nil, err
	}
	return notice, nil
}

func (s *publishService) DeleteNotice(id uint) error {
	res := s.db.Delete(&model.Notice{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Wrap(apperr.ErrNotFound, "notice %d", id)
	}
	return nil
}

func (s *publishService) artistNames() (map[uint]string, error) {
	var artists []model.Artist
	if err := s.db.Find(&artists).Error; err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(artists))
	for _, a := range artists {
		names[a.ID] = a.Name
	}
	return names, nil
}
