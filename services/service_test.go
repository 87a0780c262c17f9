package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/greenearthng/greenloop/config"
	"github.com/greenearthng/greenloop/db"
	"github.com/greenearthng/greenloop/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway in-memory database with the full schema.
// The pool is capped at one connection so every statement sees the same
// in-memory store.
func newTestDB(t *testing.T) *db.GormDB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = gormDB.AutoMigrate(
		&models.User{},
		&models.Report{},
		&models.RewardAccount{},
		&models.Transaction{},
		&models.RewardItem{},
		&models.Notification{},
		&models.CollectedWaste{},
		&models.Media{},
		&models.Blacklist{},
	)
	require.NoError(t, err)

	return &db.GormDB{DB: gormDB}
}

func createTestUser(t *testing.T, gormDB *db.GormDB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Fullname:       "Test User",
		Email:          email,
		HashedPassword: "not-a-real-hash",
		IsEmailActive:  true,
	}
	require.NoError(t, gormDB.DB.Create(user).Error)
	return user
}

type testEnv struct {
	gormDB              *db.GormDB
	reportRepo          db.ReportRepository
	rewardRepo          db.RewardRepository
	notificationRepo    db.NotificationRepository
	authRepo            db.AuthRepository
	reportService       ReportService
	rewardService       RewardService
	notificationService NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gormDB := newTestDB(t)
	conf := &config.Config{}

	reportRepo := db.NewReportRepo(gormDB)
	rewardRepo := db.NewRewardRepo(gormDB)
	notificationRepo := db.NewNotificationRepo(gormDB)
	authRepo := db.NewAuthRepo(gormDB)

	notificationService := NewNotificationService(notificationRepo, nil)
	rewardService := NewRewardService(gormDB, rewardRepo, notificationRepo, conf)
	reportService := NewReportService(gormDB, reportRepo, rewardRepo, authRepo, notificationService, conf)

	return &testEnv{
		gormDB:              gormDB,
		reportRepo:          reportRepo,
		rewardRepo:          rewardRepo,
		notificationRepo:    notificationRepo,
		authRepo:            authRepo,
		reportService:       reportService,
		rewardService:       rewardService,
		notificationService: notificationService,
	}
}
