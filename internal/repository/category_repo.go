package repository

import (
	"context"

	"facturation/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	List(ctx context.Context, page, limit int) ([]model.Category, int64, error)
	GetOrCreate(ctx context.Context, name, color string) (*model.Category, error)
	CountInvoices(ctx context.Context, id uuid.UUID) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return GetDB(ctx, r.db).Create(category).Error
}

func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	return GetDB(ctx, r.db).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Category{}).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := GetDB(ctx, r.db).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, page, limit int) ([]model.Category, int64, error) {
	var categories []model.Category
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Category{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name ASC").Offset(offset).Limit(limit).Find(&categories).Error; err != nil {
		return nil, 0, err
	}

	return categories, total, nil
}

// GetOrCreate returns the category with the given name, inserting it with the
// given color if absent. The unique index on categories.name makes the
// operation safe under concurrent first use: the loser of an insert race gets
// a duplicate-key error and re-reads the winner's row.
func (r *categoryRepository) GetOrCreate(ctx context.Context, name, color string) (*model.Category, error) {
	db := GetDB(ctx, r.db)

	category := model.Category{Name: name, Color: color}
	err := db.Where(model.Category{Name: name}).
		Attrs(model.Category{Color: color}).
		FirstOrCreate(&category).Error
	if err == nil {
		return &category, nil
	}

	// Lost a concurrent insert race; the row exists now.
	var existing model.Category
	if findErr := db.First(&existing, "name = ?", name).Error; findErr == nil {
		return &existing, nil
	}
	return nil, err
}

func (r *categoryRepository) CountInvoices(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Invoice{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}
