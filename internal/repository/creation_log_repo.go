package repository

import (
	"context"

	"facturation/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreationLogRepository interface {
	Log(ctx context.Context, entry *model.CreationLog) error
	List(ctx context.Context, page, limit int) ([]model.CreationLog, int64, error)
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.CreationLog, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type creationLogRepository struct {
	db *gorm.DB
}

func NewCreationLogRepository(db *gorm.DB) CreationLogRepository {
	return &creationLogRepository{db: db}
}

func (r *creationLogRepository) Log(ctx context.Context, entry *model.CreationLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *creationLogRepository) List(ctx context.Context, page, limit int) ([]model.CreationLog, int64, error) {
	var logs []model.CreationLog
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.CreationLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Invoice").Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

func (r *creationLogRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]model.CreationLog, error) {
	var logs []model.CreationLog
	err := GetDB(ctx, r.db).Where("invoice_id = ?", invoiceID).Order("created_at DESC").Find(&logs).Error
	return logs, err
}

// Delete exists for maintenance only; entries are otherwise immutable.
func (r *creationLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.CreationLog{}).Error
}
