package services

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/greenearthng/greenloop/config"
	"github.com/greenearthng/greenloop/db"
	apiError "github.com/greenearthng/greenloop/errors"
	"github.com/greenearthng/greenloop/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Point policy constants.
const (
	ReporterRewardPoints  = 10
	CollectorRewardPoints = 20
)

type SubmitReportParams struct {
	ReportID     uuid.UUID
	UserID       uint
	Location     string
	WasteType    string
	Amount       string
	ImageURL     string
	ThumbnailURL string
	Verification *models.Verification
}

type ReportService interface {
	SubmitReport(params SubmitReportParams) (*models.Report, error)
	ClaimTask(reportID uuid.UUID, collectorID uint, newStatus string, collection *models.CollectionVerification) (*models.Report, error)
	GetReport(reportID uuid.UUID) (*models.Report, error)
	ListOpenTasks(limit int) ([]models.Report, error)
	ListRecentReports(limit int) ([]models.Report, error)
}

type reportService struct {
	Config              *config.Config
	gormDB              *db.GormDB
	reportRepo          db.ReportRepository
	rewardRepo          db.RewardRepository
	authRepo            db.AuthRepository
	notificationService NotificationService
}

func NewReportService(gormDB *db.GormDB, reportRepo db.ReportRepository, rewardRepo db.RewardRepository, authRepo db.AuthRepository, notificationService NotificationService, conf *config.Config) ReportService {
	return &reportService{
		Config:              conf,
		gormDB:              gormDB,
		reportRepo:          reportRepo,
		rewardRepo:          rewardRepo,
		authRepo:            authRepo,
		notificationService: notificationService,
	}
}

// SubmitReport creates a pending report and credits the fixed reporter
// reward. Report insert, account update and ledger append commit or roll
// back as one unit; the notification is an at-least-once attempt issued
// after commit and never undoes the report.
func (s *reportService) SubmitReport(params SubmitReportParams) (*models.Report, error) {
	user, err := s.authRepo.FindUserByID(params.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("user is not logged in", http.StatusUnauthorized)
		}
		return nil, fmt.Errorf("error resolving user: %w", err)
	}

	if params.Location == "" || params.WasteType == "" || params.Amount == "" {
		return nil, apiError.New("location, waste type and amount are required", http.StatusBadRequest)
	}

	reportID := params.ReportID
	if reportID == uuid.Nil {
		reportID = uuid.New()
	}
	report := &models.Report{
		ID:           reportID,
		UserID:       user.ID,
		Location:     params.Location,
		WasteType:    params.WasteType,
		Amount:       params.Amount,
		ImageURL:     params.ImageURL,
		ThumbnailURL: params.ThumbnailURL,
		Status:       models.StatusPending,
	}
	if params.Verification != nil {
		report.Verification = *params.Verification
		report.SourceVerified = params.Verification.Confidence >= MinClassificationConfidence
	}

	description := "Points earned for reporting waste"
	hasPrevious, err := s.reportRepo.HasPreviousReports(user.ID)
	if err == nil && !hasPrevious {
		description = "Points earned for your first waste report"
	}

	err = s.gormDB.Transaction(func(tx *gorm.DB) error {
		reportRepo := s.reportRepo.WithTx(tx)
		rewardRepo := s.rewardRepo.WithTx(tx)

		if err := reportRepo.CreateReport(report); err != nil {
			return err
		}
		if _, err := rewardRepo.GetOrCreateAccount(user.ID); err != nil {
			return err
		}
		if err := rewardRepo.ApplyPointDelta(user.ID, ReporterRewardPoints); err != nil {
			return err
		}
		return rewardRepo.CreateTransaction(&models.Transaction{
			UserID:      user.ID,
			Kind:        models.TxEarnedReport,
			Amount:      ReporterRewardPoints,
			Description: description,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("error saving report: %w", err)
	}

	message := fmt.Sprintf("You've earned %d points for reporting waste!", ReporterRewardPoints)
	if _, err := s.notificationService.Notify(user.ID, message, "reward"); err != nil {
		log.Printf("report %s saved but notification failed: %v", report.ID, err)
	}

	return report, nil
}

// ClaimTask moves a report one step forward in its lifecycle on behalf
// of a collector. The status change is conditional on the current state,
// so two racing collectors cannot both claim the same report. The
// verified transition additionally records the collection and credits
// the collector, atomically with the status change.
func (s *reportService) ClaimTask(reportID uuid.UUID, collectorID uint, newStatus string, collection *models.CollectionVerification) (*models.Report, error) {
	if !models.IsValidStatus(newStatus) {
		return nil, apiError.New(fmt.Sprintf("unknown status %q", newStatus), http.StatusBadRequest)
	}

	if _, err := s.authRepo.FindUserByID(collectorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("collector is not logged in", http.StatusUnauthorized)
		}
		return nil, fmt.Errorf("error resolving collector: %w", err)
	}

	report, err := s.reportRepo.GetReportByID(reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("report not found", http.StatusNotFound)
		}
		return nil, fmt.Errorf("error fetching report: %w", err)
	}

	if !models.CanTransition(report.Status, newStatus) {
		return nil, apiError.New(fmt.Sprintf("cannot move report from %s to %s", report.Status, newStatus), http.StatusBadRequest)
	}

	err = s.gormDB.Transaction(func(tx *gorm.DB) error {
		reportRepo := s.reportRepo.WithTx(tx)
		rewardRepo := s.rewardRepo.WithTx(tx)

		if err := reportRepo.ClaimReport(reportID, collectorID, report.Status, newStatus); err != nil {
			return err
		}

		if newStatus != models.StatusVerified {
			return nil
		}

		collected := &models.CollectedWaste{
			ReportID:       reportID,
			CollectorID:    collectorID,
			CollectionDate: time.Now(),
		}
		if collection != nil {
			collected.WasteTypeMatch = collection.WasteTypeMatch
			collected.QuantityMatch = collection.QuantityMatch
			collected.Confidence = collection.Confidence
		}
		if err := reportRepo.SaveCollectedWaste(collected); err != nil {
			return err
		}
		if _, err := rewardRepo.GetOrCreateAccount(collectorID); err != nil {
			return err
		}
		if err := rewardRepo.ApplyPointDelta(collectorID, CollectorRewardPoints); err != nil {
			return err
		}
		return rewardRepo.CreateTransaction(&models.Transaction{
			UserID:      collectorID,
			Kind:        models.TxEarnedCollect,
			Amount:      CollectorRewardPoints,
			Description: "Points earned for collecting waste",
		})
	})
	if err != nil {
		if errors.Is(err, db.ErrStatusConflict) {
			return nil, apiError.New("report was claimed by another collector", http.StatusConflict)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("report not found", http.StatusNotFound)
		}
		var apiErr *apiError.Error
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, fmt.Errorf("error updating task status: %w", err)
	}

	if newStatus == models.StatusVerified {
		message := fmt.Sprintf("You've earned %d points for collecting waste!", CollectorRewardPoints)
		if _, err := s.notificationService.Notify(collectorID, message, "reward"); err != nil {
			log.Printf("report %s verified but notification failed: %v", reportID, err)
		}
	}

	return s.reportRepo.GetReportByID(reportID)
}

func (s *reportService) GetReport(reportID uuid.UUID) (*models.Report, error) {
	report, err := s.reportRepo.GetReportByID(reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("report not found", http.StatusNotFound)
		}
		return nil, fmt.Errorf("error fetching report: %w", err)
	}
	return report, nil
}

func (s *reportService) ListOpenTasks(limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.reportRepo.ListOpenTasks(limit)
}

func (s *reportService) ListRecentReports(limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.reportRepo.ListRecentReports(limit)
}
