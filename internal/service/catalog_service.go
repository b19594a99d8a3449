package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go-social-shop/internal/model"
	"go-social-shop/internal/repository"
	"go-social-shop/internal/ws"
	"go-social-shop/pkg/apperr"
	"go-social-shop/pkg/mediaurl"
	"go-social-shop/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type CatalogService interface {
	ListSPUs(opts ListSPUOptions) (*SPUPage, error)
	GetSPU(id uint, viewerID *uuid.UUID, includeInactive bool) (*SPUResponse, error)
	CreateSPU(input SPUInput) (*SPUResponse, error)
	UpdateSPU(id uint, input SPUInput) (*SPUResponse, error)
	DeleteSPU(id uint) error
	SetSPUAttributes(spuID uint, attributeIDs []uint) error

	SKUMatrix(spuID uint, includeInactive bool) (*SKUMatrixResponse, error)
	CreateSKU(spuID uint, input SKUInput) (*SKUDetail, error)
	UpdateSKU(skuCode string, input SKUInput) (*SKUDetail, error)
	DeleteSKU(skuCode string) error

	CreateReview(userID uuid.UUID, spuID uint, content string, rating int) (*ReviewResponse, error)
	ListReviews(spuID uint, includeInactive bool) ([]ReviewResponse, error)
}

type ListSPUOptions struct {
	CategoryID      *uint
	Brand           string
	Search          string
	Page            int
	PageSize        int
	ViewerID        *uuid.UUID
	IncludeInactive bool
}

type SPUResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      uint      `json:"category"`
	Brand         string    `json:"brand"`
	Series        string    `json:"series"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Image         string    `json:"image"`
	IsFavorited   bool      `json:"is_favorited"`
	ReviewCount   int64     `json:"review_count"`
	AverageRating float64   `json:"average_rating"`
}

type SPUPage struct {
	Count    int64         `json:"count"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Results  []SPUResponse `json:"results"`
}

type SPUInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Category    uint   `json:"category" validate:"required"`
	Brand       string `json:"brand"`
	Series      string `json:"series"`
	IsActive    *bool  `json:"is_active"`
	MainImage   string `json:"main_image"`
}

type SKUInput struct {
	Title      string          `json:"title" validate:"required"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock" validate:"gte=0"`
	IsActive   *bool           `json:"is_active"`
	Attributes map[uint]uint   `json:"attributes"` // attribute id -> value id
	Images     []string        `json:"images"`
}

type AttributeOption struct {
	ID     uint                   `json:"id"`
	Name   string                 `json:"name"`
	Values []AttributeValueOption `json:"values"`
}

type AttributeValueOption struct {
	ID    uint   `json:"id"`
	Value string `json:"value"`
}

type SKUDetail struct {
	SKUCode    string          `json:"sku_code"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	IsActive   bool            `json:"is_active"`
	Attributes map[uint]uint   `json:"attributes"`
	Image      string          `json:"image"`
}

type SKUMatrixResponse struct {
	Attributes []AttributeOption `json:"attributes"`
	SKUs       []SKUDetail       `json:"skus"`
}

type ReviewResponse struct {
	ID         uint      `json:"id"`
	SPU        uint      `json:"spu"`
	User       uuid.UUID `json:"user"`
	Username   string    `json:"username"`
	UserAvatar string    `json:"user_avatar"`
	Content    string    `json:"content"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type catalogService struct {
	spuRepo       repository.SPURepository
	skuRepo       repository.SKURepository
	attributeRepo repository.AttributeRepository
	categoryRepo  repository.CategoryRepository
	db            *gorm.DB
	wsHub         *ws.Hub
}

func NewCatalogService(
	spuRepo repository.SPURepository,
	skuRepo repository.SKURepository,
	attributeRepo repository.AttributeRepository,
	categoryRepo repository.CategoryRepository,
	db *gorm.DB,
	hub *ws.Hub,
) CatalogService {
	return &catalogService{
		spuRepo:       spuRepo,
		skuRepo:       skuRepo,
		attributeRepo: attributeRepo,
		categoryRepo:  categoryRepo,
		db:            db,
		wsHub:         hub,
	}
}

// ListSPUs answers the storefront product listing. A category filter is
// expanded to the category's whole subtree, so a product tagged with a
// subcategory matches its parent-category filter.
func (s *catalogService) ListSPUs(opts ListSPUOptions) (*SPUPage, error) {
	q := s.db.Model(&model.ProductSPU{})
	if !opts.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}

	if opts.CategoryID != nil {
		cat, err := s.categoryRepo.FindByID(*opts.CategoryID)
		if err == nil {
			ids, derr := s.categoryRepo.DescendantIDs(cat, true)
			if derr != nil {
				return nil, derr
			}
			q = q.Where("category_id IN ?", ids)
		}
		// Unknown category ids are ignored rather than erroring, matching
		// the listing's lenient filter semantics.
	}

	if opts.Brand != "" {
		q = q.Where("LOWER(brand) LIKE ?", "%"+strings.ToLower(opts.Brand)+"%")
	}
	if opts.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(opts.Search)+"%")
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(opts.Page, opts.PageSize)
	var spus []model.ProductSPU
	if err := q.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&spus).Error; err != nil {
		return nil, err
	}

	results, err := s.buildSPUResponses(spus, opts.ViewerID)
	if err != nil {
		return nil, err
	}

	return &SPUPage{
		Count:    count,
		Page:     page,
		PageSize: pageSize,
		Results:  results,
	}, nil
}

// GetSPU answers the product detail. Inactive products are invisible to
// non-staff callers, matching the listing's visibility rule.
func (s *catalogService) GetSPU(id uint, viewerID *uuid.UUID, includeInactive bool) (*SPUResponse, error) {
	spu, err := s.spuRepo.FindByID(id)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrNotFound, "product %d", id)
	}
	if !spu.IsActive && !includeInactive {
		return nil, apperr.Wrap(apperr.ErrNotFound, "product %d", id)
	}
	results, err := s.buildSPUResponses([]model.ProductSPU{*spu}, viewerID)
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

func (s *catalogService) buildSPUResponses(spus []model.ProductSPU, viewerID *uuid.UUID) ([]SPUResponse, error) {
	ids := make([]uint, len(spus))
	for i, spu := range spus {
		ids[i] = spu.ID
	}

	stats, err := s.spuRepo.ReviewStats(ids)
	if err != nil {
		return nil, err
	}

	favorited := make(map[uint]bool)
	if viewerID != nil && len(ids) > 0 {
		var favs []model.ProductFavorite
		if err := s.db.Where("user_id = ? AND spu_id IN ?", *viewerID, ids).Find(&favs).Error; err != nil {
			return nil, err
		}
		for _, f := range favs {
			favorited[f.SPUID] = true
		}
	}

	results := make([]SPUResponse, 0, len(spus))
	for _, spu := range spus {
		image := ""
		if img, err := s.spuRepo.MainImage(spu.ID); err == nil {
			image = mediaurl.Resolve(img.ImagePath)
		}

		stat := stats[spu.ID]
		rating := 0.0
		if stat.Count > 0 {
			rating = math.Round(stat.Rating*10) / 10
		}

		results = append(results, SPUResponse{
			ID:            spu.ID,
			Name:          spu.Name,
			Description:   spu.Description,
			Category:      spu.CategoryID,
			Brand:         spu.Brand,
			Series:        spu.Series,
			IsActive:      spu.IsActive,
			CreatedAt:     spu.CreatedAt,
			UpdatedAt:     spu.UpdatedAt,
			Image:         image,
			IsFavorited:   favorited[spu.ID],
			ReviewCount:   stat.Count,
			AverageRating: rating,
		})
	}
	return results, nil
}

func (s *catalogService) CreateSPU(input SPUInput) (*SPUResponse, error) {
	if err := validator.Check(&input); err != nil {
		return nil, err
	}

	spu := &model.ProductSPU{
		Name:        input.Name,
		Description: input.Description,
		CategoryID:  input.Category,
		Brand:       input.Brand,
		Series:      input.Series,
		IsActive:    input.IsActive == nil || *input.IsActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cat model.Category
		if err := tx.First(&cat, "id = ?", input.Category).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "category %d", input.Category)
		}
		if err := tx.Create(spu).Error; err != nil {
			return err
		}
		if input.MainImage != "" {
			return tx.Create(&model.ProductImage{
				SPUID:     &spu.ID,
				ImagePath: input.MainImage,
				IsMain:    true,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetSPU(spu.ID, nil, true)
}

func (s *catalogService) UpdateSPU(id uint, input SPUInput) (*SPUResponse, error) {
	if err := validator.Check(&input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var spu model.ProductSPU
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&spu, "id = ?", id).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "product %d", id)
		}
		var cat model.Category
		if err := tx.First(&cat, "id = ?", input.Category).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "category %d", input.Category)
		}

		spu.Name = input.Name
		spu.Description = input.Description
		spu.CategoryID = input.Category
		spu.Brand = input.Brand
		spu.Series = input.Series
		if input.IsActive != nil {
			spu.IsActive = *input.IsActive
		}
		if err := tx.Save(&spu).Error; err != nil {
			return err
		}

		// Replace-on-write keeps at most one main image per SPU.
		if input.MainImage != "" {
			if err := tx.Where("spu_id = ? AND is_main = ?", id, true).
				Delete(&model.ProductImage{}).Error; err != nil {
				return err
			}
			return tx.Create(&model.ProductImage{
				SPUID:     &spu.ID,
				ImagePath: input.MainImage,
				IsMain:    true,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetSPU(id, nil, true)
}

// DeleteSPU removes the product and enumerates its dependents explicitly:
// SKUs with their inventory, attribute links, images, cart rows and owned
// records, then SPU-level links, reviews, favorites and forum references.
func (s *catalogService) DeleteSPU(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var spu model.ProductSPU
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&spu, "id = ?", id).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "product %d", id)
		}

		var skus []model.ProductSKU
		if err := tx.Where("spu_id = ?", id).Find(&skus).Error; err != nil {
			return err
		}
		for _, sku := range skus {
			if err := deleteSKUDependents(tx, sku.SKUCode); err != nil {
				return err
			}
		}
		if err := tx.Where("spu_id = ?", id).Delete(&model.ProductSKU{}).Error; err != nil {
			return err
		}

		for _, del := range []error{
			tx.Where("spu_id = ?", id).Delete(&model.ProductSPUAttribute{}).Error,
			tx.Where("spu_id = ?", id).Delete(&model.ProductImage{}).Error,
			tx.Where("spu_id = ?", id).Delete(&model.ProductReview{}).Error,
			tx.Where("spu_id = ?", id).Delete(&model.ProductFavorite{}).Error,
			tx.Exec("DELETE FROM post_products WHERE product_spu_id = ?", id).Error,
		} {
			if del != nil {
				return del
			}
		}

		return tx.Delete(&model.ProductSPU{}, "id = ?", id).Error
	})
}

// SetSPUAttributes replaces the declared attribute set for an SPU in full.
// Repeated attribute ids in the request collapse to one declaration.
func (s *catalogService) SetSPUAttributes(spuID uint, attributeIDs []uint) error {
	seen := make(map[uint]bool, len(attributeIDs))
	unique := make([]uint, 0, len(attributeIDs))
	for _, attrID := range attributeIDs {
		if seen[attrID] {
			continue
		}
		seen[attrID] = true
		unique = append(unique, attrID)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var spu model.ProductSPU
		if err := tx.First(&spu, "id = ?", spuID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "product %d", spuID)
		}
		for _, attrID := range unique {
			var attr model.Attribute
			if err := tx.First(&attr, "id = ?", attrID).Error; err != nil {
				return apperr.Wrap(apperr.ErrNotFound, "attribute %d", attrID)
			}
		}
		if err := tx.Where("spu_id = ?", spuID).Delete(&model.ProductSPUAttribute{}).Error; err != nil {
			return err
		}
		for _, attrID := range unique {
			link := model.ProductSPUAttribute{SPUID: spuID, AttributeID: attrID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SKUMatrix returns the variant selector data for a product: per declared
// attribute, only the values actually used by at least one SKU, plus the
// SKU rows with their resolved attribute map, stock, price and image.
func (s *catalogService) SKUMatrix(spuID uint, includeInactive bool) (*SKUMatrixResponse, error) {
	spu, err := s.spuRepo.FindByID(spuID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrNotFound, "product %d", spuID)
	}
	if !spu.IsActive && !includeInactive {
		return nil, apperr.Wrap(apperr.ErrNotFound, "product %d", spuID)
	}

	declared, err := s.attributeRepo.DeclaredForSPU(spuID)
	if err != nil {
		return nil, err
	}

	attributes := make([]AttributeOption, 0, len(declared))
	for _, link := range declared {
		attr, err := s.attributeRepo.FindByID(link.AttributeID)
		if err != nil {
			return nil, err
		}
		used, err := s.skuRepo.UsedValues(spuID, link.AttributeID)
		if err != nil {
			return nil, err
		}
		values := make([]AttributeValueOption, 0, len(used))
		for _, v := range used {
			values = append(values, AttributeValueOption{ID: v.ID, Value: v.Value})
		}
		attributes = append(attributes, AttributeOption{ID: attr.ID, Name: attr.Name, Values: values})
	}

	spuImage := ""
	if img, err := s.spuRepo.MainImage(spu.ID); err == nil {
		spuImage = mediaurl.Resolve(img.ImagePath)
	}

	skus, err := s.skuRepo.FindBySPU(spuID, !includeInactive)
	if err != nil {
		return nil, err
	}

	details := make([]SKUDetail, 0, len(skus))
	for _, sku := range skus {
		detail, err := s.buildSKUDetail(&sku, spuImage)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}

	return &SKUMatrixResponse{Attributes: attributes, SKUs: details}, nil
}

func (s *catalogService) buildSKUDetail(sku *model.ProductSKU, spuImageFallback string) (*SKUDetail, error) {
	links, err := s.skuRepo.AttributeValues(sku.SKUCode)
	if err != nil {
		return nil, err
	}
	attrs := make(map[uint]uint, len(links))
	for _, link := range links {
		attrs[link.AttributeID] = link.AttributeValueID
	}

	stock, err := s.skuRepo.Stock(sku.SKUCode)
	if err != nil {
		return nil, err
	}

	// A SKU without its own image falls back to the SPU's main image.
	image := spuImageFallback
	if img, err := s.skuRepo.FirstImage(sku.SKUCode); err == nil {
		image = mediaurl.Resolve(img.ImagePath)
	}

	return &SKUDetail{
		SKUCode:    sku.SKUCode,
		Title:      sku.Title,
		Price:      sku.Price,
		Stock:      stock,
		IsActive:   sku.IsActive,
		Attributes: attrs,
		Image:      image,
	}, nil
}

// CreateSKU creates the SKU row, its inventory and one attribute-value
// link per selection in one transaction. The code comes from the SPU's
// monotonic sku_seq counter, so deleted codes are never reissued.
func (s *catalogService) CreateSKU(spuID uint, input SKUInput) (*SKUDetail, error) {
	if err := validator.Check(&input); err != nil {
		return nil, err
	}

	var created model.ProductSKU
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var spu model.ProductSPU
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&spu, "id = ?", spuID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "product %d", spuID)
		}

		if err := validateSelections(tx, spuID, input.Attributes); err != nil {
			return err
		}

		spu.SKUSeq++
		if err := tx.Model(&model.ProductSPU{}).Where("id = ?", spuID).
			Update("sku_seq", spu.SKUSeq).Error; err != nil {
			return err
		}

		created = model.ProductSKU{
			SKUCode:  fmt.Sprintf("%d-%d", spu.ID, spu.SKUSeq),
			SPUID:    spu.ID,
			Title:    input.Title,
			Price:    input.Price,
			IsActive: input.IsActive == nil || *input.IsActive,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		if err := tx.Create(&model.Inventory{
			SKUCode:  created.SKUCode,
			Quantity: input.Stock,
		}).Error; err != nil {
			return err
		}

		for attrID, valueID := range input.Attributes {
			link := model.ProductSKUAttributeValue{
				SKUCode:          created.SKUCode,
				AttributeID:      attrID,
				AttributeValueID: valueID,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}

		// Uploaded images are linked to both the SKU and its parent SPU;
		// SKU images never become the SPU main image.
		for _, path := range input.Images {
			img := model.ProductImage{
				SPUID:     &spu.ID,
				SKUCode:   &created.SKUCode,
				ImagePath: path,
			}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStock("sku_created", created.SKUCode, input.Stock)
	return s.skuDetailByCode(created.SKUCode)
}

// UpdateSKU replaces title/price/state, upserts the inventory quantity
// and fully replaces the attribute selection: all prior links are
// deleted and reinserted from the new map. Running it twice with the
// same selection leaves an identical link set.
func (s *catalogService) UpdateSKU(skuCode string, input SKUInput) (*SKUDetail, error) {
	if err := validator.Check(&input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sku model.ProductSKU
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&sku, "sku_code = ?", skuCode).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "sku %s", skuCode)
		}

		if err := validateSelections(tx, sku.SPUID, input.Attributes); err != nil {
			return err
		}

		sku.Title = input.Title
		sku.Price = input.Price
		if input.IsActive != nil {
			sku.IsActive = *input.IsActive
		}
		if err := tx.Save(&sku).Error; err != nil {
			return err
		}

		var inv model.Inventory
		err := tx.Where("sku_code = ?", skuCode).First(&inv).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&model.Inventory{SKUCode: skuCode, Quantity: input.Stock}).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&inv).Update("quantity", input.Stock).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("sku_code = ?", skuCode).Delete(&model.ProductSKUAttributeValue{}).Error; err != nil {
			return err
		}
		for attrID, valueID := range input.Attributes {
			link := model.ProductSKUAttributeValue{
				SKUCode:          skuCode,
				AttributeID:      attrID,
				AttributeValueID: valueID,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}

		for _, path := range input.Images {
			img := model.ProductImage{
				SPUID:     &sku.SPUID,
				SKUCode:   &sku.SKUCode,
				ImagePath: path,
			}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastStock("sku_updated", skuCode, input.Stock)
	return s.skuDetailByCode(skuCode)
}

func (s *catalogService) DeleteSKU(skuCode string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var sku model.ProductSKU
		if err := tx.First(&sku, "sku_code = ?", skuCode).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "sku %s", skuCode)
		}
		if err := deleteSKUDependents(tx, skuCode); err != nil {
			return err
		}
		return tx.Delete(&model.ProductSKU{}, "sku_code = ?", skuCode).Error
	})
}

func deleteSKUDependents(tx *gorm.DB, skuCode string) error {
	for _, del := range []error{
		tx.Where("sku_code = ?", skuCode).Delete(&model.ProductSKUAttributeValue{}).Error,
		tx.Where("sku_code = ?", skuCode).Delete(&model.Inventory{}).Error,
		tx.Where("sku_code = ?", skuCode).Delete(&model.ProductImage{}).Error,
		tx.Where("sku_code = ?", skuCode).Delete(&model.CartItem{}).Error,
		tx.Where("sku_code = ?", skuCode).Delete(&model.OwnedProduct{}).Error,
	} {
		if del != nil {
			return del
		}
	}
	return nil
}

// validateSelections enforces the two SKU attribute invariants: each
// selected attribute must be declared on the SPU, and each selected value
// must belong to the attribute it is selected for.
func validateSelections(tx *gorm.DB, spuID uint, selections map[uint]uint) error {
	if len(selections) == 0 {
		return nil
	}

	var links []model.ProductSPUAttribute
	if err := tx.Where("spu_id = ?", spuID).Find(&links).Error; err != nil {
		return err
	}
	declared := make(map[uint]bool, len(links))
	for _, link := range links {
		declared[link.AttributeID] = true
	}

	for attrID, valueID := range selections {
		if !declared[attrID] {
			return apperr.Wrap(apperr.ErrAttributeNotApplicable, "attribute %d", attrID)
		}
		var value model.AttributeValue
		if err := tx.First(&value, "id = ?", valueID).Error; err != nil {
			return apperr.Wrap(apperr.ErrNotFound, "attribute value %d", valueID)
		}
		if value.AttributeID != attrID {
			return apperr.Wrap(apperr.ErrValueMismatch, "value %d is not a value of attribute %d", valueID, attrID)
		}
	}
	return nil
}

func (s *catalogService) skuDetailByCode(skuCode string) (*SKUDetail, error) {
	sku, err := s.skuRepo.FindByCode(skuCode)
	if err != nil {
		return nil, err
	}
	spuImage := ""
	if img, err := s.spuRepo.MainImage(sku.SPUID); err == nil {
		spuImage = mediaurl.Resolve(img.ImagePath)
	}
	return s.buildSKUDetail(sku, spuImage)
}

func (s *catalogService) broadcastStock(action, skuCode string, stock int) {
	if s.wsHub == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":     "stock_update",
			"action":   action,
			"sku_code": skuCode,
			"stock":    stock,
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}

func (s *catalogService) CreateReview(userID uuid.UUID, spuID uint, content string, rating int) (*ReviewResponse, error) {
	review := &model.ProductReview{
		SPUID:   spuID,
		UserID:  userID,
		Content: content,
		Rating:  rating,
	}
	if err := validator.Check(review); err != nil {
		return nil, err
	}

	if _, err := s.spuRepo.FindByID(spuID); err != nil {
		return nil, apperr.Wrap(apperr.ErrNotFound, "product %d", spuID)
	}
	if err := s.db.Create(review).Error; err != nil {
		return nil, err
	}

	var user model.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	resp := reviewResponse(review, &user)
	return &resp, nil
}

func (s *catalogService) ListReviews(spuID uint, includeInactive bool) ([]ReviewResponse, error) {
	spu, err := s.spuRepo.FindByID(spuID)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrNotFound, "product %d", spuID)
	}
	if !spu.IsActive && !includeInactive {
		return nil, apperr.Wrap(apperr.ErrNotFound, "product %d", spuID)
	}

	var reviews []model.ProductReview
	err = s.db.Preload("User").Where("spu_id = ?", spuID).
		Order("created_at DESC, id DESC").Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, reviewResponse(&reviews[i], reviews[i].User))
	}
	return out, nil
}

func reviewResponse(r *model.ProductReview, user *model.User) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		SPU:       r.SPUID,
		User:      r.UserID,
		Content:   r.Content,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if user != nil {
		resp.Username = user.Username
		resp.UserAvatar = user.AvatarURL()
	}
	return resp
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
