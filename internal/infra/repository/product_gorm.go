package repository

import (
	"context"
	"errors"
	"strings"

	"bakery/internal/domain/model"
	repo "bakery/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func withSizes(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("price asc").Order("id asc") }).
		Preload("Category")
}

// 検索/カテゴリ/価格帯/ソート/ページング付きで返す。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if !q.IncludeInactive {
		tx = tx.Where("is_active = ?", true)
	}

	// q nameとdescriptionを対象
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}
	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}

	//価格帯
	if q.MinPrice != nil {
		tx = tx.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	switch q.Sort {
	case "price_asc":
		tx = tx.Order("price asc").Order("id asc")
	case "price_desc":
		tx = tx.Order("price desc").Order("id desc")
	case "name":
		tx = tx.Order("name asc").Order("id asc")
	default:
		tx = tx.Order("created_at desc").Order("id desc")
	}

	offset := (q.Page - 1) * q.Limit
	if err := withSizes(tx).Offset(offset).Limit(q.Limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := withSizes(r.db.WithContext(ctx)).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	var products []model.Product
	if err := withSizes(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// サイズも一緒に作る
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Omit("Category").Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"category_id": p.CategoryID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"image_url":   p.ImageURL,
		"is_active":   p.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) FindSize(ctx context.Context, sizeID int64) (model.ProductSize, error) {
	var s model.ProductSize
	err := r.db.WithContext(ctx).First(&s, sizeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductSize{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductSize{}, err
	}
	return s, nil
}

func (r *ProductGormRepository) CreateSize(ctx context.Context, s model.ProductSize) (model.ProductSize, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.ProductSize{}, err
	}
	return s, nil
}

func (r *ProductGormRepository) UpdateSize(ctx context.Context, s model.ProductSize) error {
	res := r.db.WithContext(ctx).Model(&model.ProductSize{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"name":  s.Name,
		"price": s.Price,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) DeleteSize(ctx context.Context, sizeID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.ProductSize{}, sizeID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&cats).Error; err != nil {
		return []model.Category{}, err
	}
	return cats, nil
}

// 同名は既存を返す
func (r *ProductGormRepository) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&c).Error
	if err != nil {
		return model.Category{}, err
	}
	if c.ID == 0 {
		if err := r.db.WithContext(ctx).Where("name = ?", c.Name).First(&c).Error; err != nil {
			return model.Category{}, err
		}
	}
	return c, nil
}
