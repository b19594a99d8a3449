package repository

import (
	"go-social-shop/internal/model"

	"gorm.io/gorm"
)

type SPURepository interface {
	FindByID(id uint) (*model.ProductSPU, error)
	MainImage(spuID uint) (*model.ProductImage, error)
	// ReviewStats returns review count and average rating per SPU as one
	// grouped query instead of per-row iteration.
	ReviewStats(spuIDs []uint) (map[uint]ReviewStat, error)
}

type ReviewStat struct {
	SPUID  uint
	Count  int64
	Rating float64
}

type spuRepo struct {
	db *gorm.DB
}

func NewSPURepo(db *gorm.DB) SPURepository {
	return &spuRepo{db}
}

func (r *spuRepo) FindByID(id uint) (*model.ProductSPU, error) {
	var spu model.ProductSPU
	if err := r.db.First(&spu, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &spu, nil
}

func (r *spuRepo) MainImage(spuID uint) (*model.ProductImage, error) {
	var img model.ProductImage
	err := r.db.Where("spu_id = ? AND is_main = ?", spuID, true).First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *spuRepo) ReviewStats(spuIDs []uint) (map[uint]ReviewStat, error) {
	stats := make(map[uint]ReviewStat)
	if len(spuIDs) == 0 {
		return stats, nil
	}
	var rows []struct {
		SPUID  uint `gorm:"column:spu_id"`
		Count  int64
		Rating float64
	}
	err := r.db.Model(&model.ProductReview{}).
		Select("spu_id AS spu_id, COUNT(*) AS count, AVG(rating) AS rating").
		Where("spu_id IN ?", spuIDs).
		Group("spu_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats[row.SPUID] = ReviewStat{SPUID: row.SPUID, Count: row.Count, Rating: row.Rating}
	}
	return stats, nil
}
