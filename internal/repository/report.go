package repository

import (
	"context"
	"errors"

	"dating-match-server/internal/models"

	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create files a report. A reporter may report the same user only once.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("reporter_id = ? AND reported_id = ?", report.ReporterID, report.ReportedID).
		Count(&count).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	if count > 0 {
		return models.NewDuplicateActionError("User already reported")
	}
	if report.Status == "" {
		report.Status = models.ReportPending
	}
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *ReportRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	tx := r.db.WithContext(ctx)
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	var reports []models.Report
	if err := tx.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}

func (r *ReportRepository) UpdateStatus(ctx context.Context, id uint, status string) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", id)
		}
		return nil, models.NewInternalError(err)
	}
	report.Status = status
	if err := r.db.WithContext(ctx).Save(&report).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &report, nil
}
