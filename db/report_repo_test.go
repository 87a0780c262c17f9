package db

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/greenearthng/greenloop/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestGormDB(t *testing.T) *GormDB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migrate(gormDB))
	return &GormDB{DB: gormDB}
}

func TestClaimReportIsConditionalOnStatus(t *testing.T) {
	gormDB := newTestGormDB(t)
	repo := NewReportRepo(gormDB)

	report := &models.Report{
		UserID:    1,
		Location:  "12.9716,77.5946",
		WasteType: "plastic",
		Amount:    "5 kg",
	}
	require.NoError(t, repo.CreateReport(report))

	require.NoError(t, repo.ClaimReport(report.ID, 2, models.StatusPending, models.StatusInProgress))

	// a second claim against the stale status loses the race
	err := repo.ClaimReport(report.ID, 3, models.StatusPending, models.StatusInProgress)
	require.ErrorIs(t, err, ErrStatusConflict)

	claimed, err := repo.GetReportByID(report.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, claimed.Status)
	require.NotNil(t, claimed.CollectorID)
	require.EqualValues(t, 2, *claimed.CollectorID)
}

func TestClaimReportUnknownReport(t *testing.T) {
	gormDB := newTestGormDB(t)
	repo := NewReportRepo(gormDB)

	err := repo.ClaimReport(uuid.New(), 2, models.StatusPending, models.StatusInProgress)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateReportDefaults(t *testing.T) {
	gormDB := newTestGormDB(t)
	repo := NewReportRepo(gormDB)

	report := &models.Report{
		UserID:    1,
		Location:  "somewhere",
		WasteType: "paper",
		Amount:    "1 kg",
	}
	require.NoError(t, repo.CreateReport(report))
	require.NotEqual(t, uuid.Nil, report.ID)
	require.Equal(t, models.StatusPending, report.Status)
}

func TestHasPreviousReports(t *testing.T) {
	gormDB := newTestGormDB(t)
	repo := NewReportRepo(gormDB)

	has, err := repo.HasPreviousReports(7)
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, repo.CreateReport(&models.Report{
		UserID:    7,
		Location:  "somewhere",
		WasteType: "metal",
		Amount:    "3 kg",
	}))

	has, err = repo.HasPreviousReports(7)
	require.NoError(t, err)
	require.True(t, has)
}
