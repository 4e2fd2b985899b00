package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"facturation/internal/model"
	"facturation/internal/repository"

	"github.com/google/uuid"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// --- DTOs ---

type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required"` // "#RRGGBB"
}

type UpdateCategoryRequest = CreateCategoryRequest

type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type CategoryService interface {
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (CategoryResponse, error)
	UpdateCategory(ctx context.Context, id string, req UpdateCategoryRequest) (CategoryResponse, error)
	DeleteCategory(ctx context.Context, id string) error
	GetCategory(ctx context.Context, id string) (CategoryResponse, error)
	ListCategories(ctx context.Context, page, limit int) ([]CategoryResponse, int64, error)
	EnsureFallback(ctx context.Context) (CategoryResponse, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

// --- Implementation ---

func (s *categoryService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (CategoryResponse, error) {
	if !hexColorPattern.MatchString(req.Color) {
		return CategoryResponse{}, fmt.Errorf("invalid color %q (expected #RRGGBB)", req.Color)
	}

	category := model.Category{
		Name:  req.Name,
		Color: req.Color,
	}

	if err := s.categoryRepo.Create(ctx, &category); err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to create category: %w", err)
	}

	return toCategoryResponse(category), nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id string, req UpdateCategoryRequest) (CategoryResponse, error) {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return CategoryResponse{}, fmt.Errorf("invalid category id: %w", err)
	}

	if !hexColorPattern.MatchString(req.Color) {
		return CategoryResponse{}, fmt.Errorf("invalid color %q (expected #RRGGBB)", req.Color)
	}

	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return CategoryResponse{}, fmt.Errorf("category not found: %w", err)
	}

	category.Name = req.Name
	category.Color = req.Color

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to update category: %w", err)
	}

	return toCategoryResponse(*category), nil
}

// DeleteCategory refuses to delete a category still referenced by invoices.
func (s *categoryService) DeleteCategory(ctx context.Context, id string) error {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid category id: %w", err)
	}

	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return fmt.Errorf("category not found: %w", err)
	}

	count, err := s.categoryRepo.CountInvoices(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to check category invoices: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("category still has %d invoice(s)", count)
	}

	if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *categoryService) GetCategory(ctx context.Context, id string) (CategoryResponse, error) {
	categoryID, err := uuid.Parse(id)
	if err != nil {
		return CategoryResponse{}, fmt.Errorf("invalid category id: %w", err)
	}

	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return CategoryResponse{}, fmt.Errorf("category not found: %w", err)
	}

	return toCategoryResponse(*category), nil
}

func (s *categoryService) ListCategories(ctx context.Context, page, limit int) ([]CategoryResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	categories, total, err := s.categoryRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch categories: %w", err)
	}

	result := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		result = append(result, toCategoryResponse(c))
	}
	return result, total, nil
}

// EnsureFallback returns the reserved fallback category, creating it on
// first use.
func (s *categoryService) EnsureFallback(ctx context.Context) (CategoryResponse, error) {
	category, err := s.categoryRepo.GetOrCreate(ctx, model.FallbackCategoryName, model.FallbackCategoryColor)
	if err != nil {
		return CategoryResponse{}, fmt.Errorf("failed to ensure fallback category: %w", err)
	}
	return toCategoryResponse(*category), nil
}

func toCategoryResponse(c model.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
