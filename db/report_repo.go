package db

import (
	"github.com/google/uuid"
	"github.com/greenearthng/greenloop/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrStatusConflict is returned when a conditional status update matched
// no row because another collector got there first.
var ErrStatusConflict = errors.New("report status changed concurrently")

type ReportRepository interface {
	WithTx(tx *gorm.DB) ReportRepository
	CreateReport(report *models.Report) error
	GetReportByID(reportID uuid.UUID) (*models.Report, error)
	ListRecentReports(limit int) ([]models.Report, error)
	ListOpenTasks(limit int) ([]models.Report, error)
	ClaimReport(reportID uuid.UUID, collectorID uint, fromStatus, toStatus string) error
	HasPreviousReports(userID uint) (bool, error)
	SaveCollectedWaste(collected *models.CollectedWaste) error
}

type reportRepo struct {
	DB *gorm.DB
}

func NewReportRepo(db *GormDB) ReportRepository {
	return &reportRepo{db.DB}
}

func (r *reportRepo) WithTx(tx *gorm.DB) ReportRepository {
	return &reportRepo{tx}
}

func (r *reportRepo) CreateReport(report *models.Report) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.Status == "" {
		report.Status = models.StatusPending
	}
	if err := r.DB.Create(report).Error; err != nil {
		return errors.Wrap(err, "creating report")
	}
	return nil
}

func (r *reportRepo) GetReportByID(reportID uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.DB.Where("id = ?", reportID).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) ListRecentReports(limit int) ([]models.Report, error) {
	var reports []models.Report
	err := r.DB.Order("created_at DESC").Limit(limit).Find(&reports).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing recent reports")
	}
	return reports, nil
}

// ListOpenTasks returns the task board for collectors, newest first.
// Every status is included; clients filter to what they can act on.
func (r *reportRepo) ListOpenTasks(limit int) ([]models.Report, error) {
	var reports []models.Report
	err := r.DB.Order("created_at DESC").Limit(limit).Find(&reports).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing tasks")
	}
	return reports, nil
}

// ClaimReport moves a report to toStatus and records the collector, but
// only if the row is still in fromStatus. A zero-row update against an
// existing report means another collector won the race.
func (r *reportRepo) ClaimReport(reportID uuid.UUID, collectorID uint, fromStatus, toStatus string) error {
	result := r.DB.Model(&models.Report{}).
		Where("id = ? AND status = ?", reportID, fromStatus).
		Updates(map[string]interface{}{
			"status":       toStatus,
			"collector_id": collectorID,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "claiming report")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.DB.Model(&models.Report{}).Where("id = ?", reportID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "claiming report")
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

func (r *reportRepo) HasPreviousReports(userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&models.Report{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *reportRepo) SaveCollectedWaste(collected *models.CollectedWaste) error {
	if err := r.DB.Create(collected).Error; err != nil {
		return errors.Wrap(err, "saving collected waste")
	}
	return nil
}
