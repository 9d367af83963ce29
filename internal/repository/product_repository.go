package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mamipapa/store-backend/internal/models"
	"gorm.io/gorm"
)

type gormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a gorm backed product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &gormProductRepository{db: db}
}

func (r *gormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *gormProductRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *gormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

func (r *gormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *gormProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *gormProductRepository) List(ctx context.Context, category string, inStockOnly bool) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Order("created_at desc")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if inStockOnly {
		query = query.Where("in_stock = ?", true)
	}

	var products []models.Product
	err := query.Find(&products).Error
	return products, err
}
