package services

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	apiError "github.com/greenearthng/greenloop/errors"
	"github.com/greenearthng/greenloop/models"
	"github.com/stretchr/testify/require"
)

func submitParams(userID uint) SubmitReportParams {
	return SubmitReportParams{
		UserID:    userID,
		Location:  "12.9716,77.5946",
		WasteType: "plastic",
		Amount:    "5 kg",
	}
}

func TestSubmitReportUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reportService.SubmitReport(submitParams(42))
	require.Error(t, err)

	apiErr, ok := err.(*apiError.Error)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)

	var count int64
	for _, model := range []interface{}{&models.Report{}, &models.Transaction{}, &models.Notification{}} {
		require.NoError(t, env.gormDB.DB.Model(model).Count(&count).Error)
		require.Zero(t, count)
	}
}

func TestSubmitReportRequiresFields(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.gormDB, "reporter@example.com")

	params := submitParams(user.ID)
	params.Location = ""
	_, err := env.reportService.SubmitReport(params)

	apiErr, ok := err.(*apiError.Error)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestSubmitReportCreditsReporter(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.gormDB, "reporter@example.com")

	report, err := env.reportService.SubmitReport(submitParams(user.ID))
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, report.Status)
	require.NotEqual(t, uuid.Nil, report.ID)

	var reportCount int64
	require.NoError(t, env.gormDB.DB.Model(&models.Report{}).Count(&reportCount).Error)
	require.EqualValues(t, 1, reportCount)

	transactions, err := env.rewardRepo.ListTransactions(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	require.Equal(t, models.TxEarnedReport, transactions[0].Kind)
	require.Equal(t, ReporterRewardPoints, transactions[0].Amount)

	balance, err := env.rewardService.ComputeBalance(user.ID)
	require.NoError(t, err)
	require.Equal(t, ReporterRewardPoints, balance)

	account, err := env.rewardRepo.GetAccountByUserID(user.ID)
	require.NoError(t, err)
	require.Equal(t, balance, account.Points)

	unread, err := env.notificationService.ListUnread(user.ID)
	require.NoError(t, err)
	require.Len(t, unread, 1)
}

func TestSubmitReportConfidenceGate(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.gormDB, "reporter@example.com")

	low := submitParams(user.ID)
	low.Verification = &models.Verification{WasteType: "plastic", Quantity: "5 kg", Confidence: 0.4}
	report, err := env.reportService.SubmitReport(low)
	require.NoError(t, err)
	require.False(t, report.SourceVerified)

	high := submitParams(user.ID)
	high.Verification = &models.Verification{WasteType: "plastic", Quantity: "5 kg", Confidence: 0.5}
	report, err = env.reportService.SubmitReport(high)
	require.NoError(t, err)
	require.True(t, report.SourceVerified)
}

func TestSubmitReportRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.gormDB, "reporter@example.com")

	params := submitParams(user.ID)
	params.Verification = &models.Verification{WasteType: "glass", Quantity: "2 kg", Confidence: 0.9}
	submitted, err := env.reportService.SubmitReport(params)
	require.NoError(t, err)

	fetched, err := env.reportService.GetReport(submitted.ID)
	require.NoError(t, err)
	require.Equal(t, params.WasteType, fetched.WasteType)
	require.Equal(t, params.Amount, fetched.Amount)
	require.Equal(t, params.Location, fetched.Location)
	require.Equal(t, *params.Verification, fetched.Verification)

	recent, err := env.reportService.ListRecentReports(0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, params.WasteType, recent[0].WasteType)
	require.Equal(t, params.Amount, recent[0].Amount)
}

func TestClaimTaskUnknownReport(t *testing.T) {
	env := newTestEnv(t)
	collector := createTestUser(t, env.gormDB, "collector@example.com")

	_, err := env.reportService.ClaimTask(uuid.New(), collector.ID, models.StatusInProgress, nil)
	apiErr, ok := err.(*apiError.Error)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClaimTaskRejectsInvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	collector := createTestUser(t, env.gormDB, "collector@example.com")

	_, err := env.reportService.ClaimTask(uuid.New(), collector.ID, "abandoned", nil)
	apiErr, ok := err.(*apiError.Error)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestClaimTaskRejectsBackwardTransition(t *testing.T) {
	env := newTestEnv(t)
	reporter := createTestUser(t, env.gormDB, "reporter@example.com")
	collector := createTestUser(t, env.gormDB, "collector@example.com")

	report, err := env.reportService.SubmitReport(submitParams(reporter.ID))
	require.NoError(t, err)

	_, err = env.reportService.ClaimTask(report.ID, collector.ID, models.StatusInProgress, nil)
	require.NoError(t, err)

	_, err = env.reportService.ClaimTask(report.ID, collector.ID, models.StatusPending, nil)
	apiErr, ok := err.(*apiError.Error)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestClaimTaskRejectsSkippedTransition(t *testing.T) {
	env := newTestEnv(t)
	reporter := createTestUser(t, env.gormDB, "reporter@example.com")
	collector := createTestUser(t, env.gormDB, "collector@example.com")

	report, err := env.reportService.SubmitReport(submitParams(reporter.ID))
	require.NoError(t, err)

	_, err = env.reportService.ClaimTask(report.ID, collector.ID, models.StatusVerified, nil)
	apiErr, ok := err.(*apiError.Error)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestClaimTaskRecordsCollector(t *testing.T) {
	env := newTestEnv(t)
	reporter := createTestUser(t, env.gormDB, "reporter@example.com")
	collector := createTestUser(t, env.gormDB, "collector@example.com")

	report, err := env.reportService.SubmitReport(submitParams(reporter.ID))
	require.NoError(t, err)

	claimed, err := env.reportService.ClaimTask(report.ID, collector.ID, models.StatusInProgress, nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, claimed.Status)
	require.NotNil(t, claimed.CollectorID)
	require.Equal(t, collector.ID, *claimed.CollectorID)
}

func TestVerifiedTransitionCreditsCollectorOnce(t *testing.T) {
	env := newTestEnv(t)
	reporter := createTestUser(t, env.gormDB, "reporter@example.com")
	collector := createTestUser(t, env.gormDB, "collector@example.com")

	report, err := env.reportService.SubmitReport(submitParams(reporter.ID))
	require.NoError(t, err)

	_, err = env.reportService.ClaimTask(report.ID, collector.ID, models.StatusInProgress, nil)
	require.NoError(t, err)
	_, err = env.reportService.ClaimTask(report.ID, collector.ID, models.StatusCompleted, nil)
	require.NoError(t, err)

	collection := &models.CollectionVerification{WasteTypeMatch: true, QuantityMatch: true, Confidence: 0.85}
	verified, err := env.reportService.ClaimTask(report.ID, collector.ID, models.StatusVerified, collection)
	require.NoError(t, err)
	require.Equal(t, models.StatusVerified, verified.Status)

	balance, err := env.rewardService.ComputeBalance(collector.ID)
	require.NoError(t, err)
	require.Equal(t, CollectorRewardPoints, balance)

	var collected models.CollectedWaste
	require.NoError(t, env.gormDB.DB.Where("report_id = ?", report.ID).First(&collected).Error)
	require.Equal(t, collector.ID, collected.CollectorID)
	require.True(t, collected.WasteTypeMatch)

	// a repeat verify attempt cannot double-credit
	_, err = env.reportService.ClaimTask(report.ID, collector.ID, models.StatusVerified, collection)
	require.Error(t, err)

	balance, err = env.rewardService.ComputeBalance(collector.ID)
	require.NoError(t, err)
	require.Equal(t, CollectorRewardPoints, balance)
}

func TestListOpenTasksIncludesEveryStatus(t *testing.T) {
	env := newTestEnv(t)
	reporter := createTestUser(t, env.gormDB, "reporter@example.com")
	collector := createTestUser(t, env.gormDB, "collector@example.com")

	first, err := env.reportService.SubmitReport(submitParams(reporter.ID))
	require.NoError(t, err)
	_, err = env.reportService.SubmitReport(submitParams(reporter.ID))
	require.NoError(t, err)

	_, err = env.reportService.ClaimTask(first.ID, collector.ID, models.StatusInProgress, nil)
	require.NoError(t, err)

	tasks, err := env.reportService.ListOpenTasks(0)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
}
