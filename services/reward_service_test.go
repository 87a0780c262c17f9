package services

import (
	"net/http"
	"testing"

	apiError "github.com/greenearthng/greenloop/errors"
	"github.com/greenearthng/greenloop/models"
	"github.com/stretchr/testify/require"
)

func earn(t *testing.T, env *testEnv, userID uint, kind string, amount int) {
	t.Helper()
	_, err := env.rewardRepo.GetOrCreateAccount(userID)
	require.NoError(t, err)
	require.NoError(t, env.rewardRepo.ApplyPointDelta(userID, amount))
	require.NoError(t, env.rewardRepo.CreateTransaction(&models.Transaction{
		UserID:      userID,
		Kind:        kind,
		Amount:      amount,
		Description: "test credit",
	}))
}

func spend(t *testing.T, env *testEnv, userID uint, amount int) {
	t.Helper()
	require.NoError(t, env.rewardRepo.ApplyPointDelta(userID, -amount))
	require.NoError(t, env.rewardRepo.CreateTransaction(&models.Transaction{
		UserID:      userID,
		Kind:        models.TxRedeemed,
		Amount:      amount,
		Description: "test debit",
	}))
}

// 15 transactions, well past any single page, so a balance built from a
// truncated listing would come out wrong.
func TestComputeBalanceFoldsEntireHistory(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.gormDB, "user@example.com")

	for i := 0; i < 10; i++ {
		earn(t, env, user.ID, models.TxEarnedReport, 5)
	}
	for i := 0; i < 5; i++ {
		spend(t, env, user.ID, 3)
	}

	balance, err := env.rewardService.ComputeBalance(user.ID)
	require.NoError(t, err)
	require.Equal(t, 35, balance)

	account, err := env.rewardRepo.GetAccountByUserID(user.ID)
	require.NoError(t, err)
	require.Equal(t, balance, account.Points)
}

func TestComputeBalanceClampsAtZero(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.gormDB, "user@example.com")

	_, err := env.rewardRepo.GetOrCreateAccount(user.ID)
	require.NoError(t, err)
	require.NoError(t, env.rewardRepo.CreateTransaction(&models.Transaction{
		UserID:      user.ID,
		Kind:        models.TxRedeemed,
		Amount:      50,
		Description: "legacy debit",
	}))

	balance, err := env.rewardService.ComputeBalance(user.ID)
	require.NoError(t, err)
	require.Zero(t, balance)
}

func TestRedeemRewardInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.gormDB, "user@example.com")
	earn(t, env, user.ID, models.TxEarnedReport, 10)

	item := models.RewardItem{Name: "Tote Bag", Cost: 50, IsAvailable: true}
	require.NoError(t, env.gormDB.DB.Create(&item).Error)

	_, err := env.rewardService.RedeemReward(user.ID, item.ID)
	apiErr, ok := err.(*apiError.Error)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)

	// the failed redeem must leave no trace in the ledger
	transactions, err := env.rewardRepo.ListTransactions(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, transactions, 1)

	balance, err := env.rewardService.ComputeBalance(user.ID)
	require.NoError(t, err)
	require.Equal(t, 10, balance)
}

// A rival debit can land between the balance read and the debit; the
// guarded counter update must abort the redeem instead of overspending.
func TestRedeemRewardAbortsOnStaleBalance(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.gormDB, "user@example.com")
	earn(t, env, user.ID, models.TxEarnedReport, 30)

	item := models.RewardItem{Name: "Tote Bag", Cost: 10, IsAvailable: true}
	require.NoError(t, env.gormDB.DB.Create(&item).Error)

	// drain the counter behind the ledger's back
	require.NoError(t, env.gormDB.DB.Model(&models.RewardAccount{}).
		Where("user_id = ?", user.ID).
		Update("points", 5).Error)

	_, err := env.rewardService.RedeemReward(user.ID, item.ID)
	apiErr, ok := err.(*apiError.Error)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, apiErr.Status)

	transactions, err := env.rewardRepo.ListTransactions(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
}

func TestRedeemRewardUnknownItem(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.gormDB, "user@example.com")
	earn(t, env, user.ID, models.TxEarnedReport, 10)

	_, err := env.rewardService.RedeemReward(user.ID, 999)
	apiErr, ok := err.(*apiError.Error)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestRedeemAllPoints(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.gormDB, "user@example.com")
	earn(t, env, user.ID, models.TxEarnedReport, 10)
	earn(t, env, user.ID, models.TxEarnedCollect, 20)

	transaction, err := env.rewardService.RedeemReward(user.ID, RedeemAllID)
	require.NoError(t, err)
	require.Equal(t, models.TxRedeemed, transaction.Kind)
	require.Equal(t, 30, transaction.Amount)

	balance, err := env.rewardService.ComputeBalance(user.ID)
	require.NoError(t, err)
	require.Zero(t, balance)

	unread, err := env.notificationService.ListUnread(user.ID)
	require.NoError(t, err)
	require.Len(t, unread, 1)
}

func TestRedeemAllWithEmptyBalance(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.gormDB, "user@example.com")

	_, err := env.rewardService.RedeemReward(user.ID, RedeemAllID)
	apiErr, ok := err.(*apiError.Error)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestListAvailableRewardsSyntheticEntry(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.gormDB, "user@example.com")
	earn(t, env, user.ID, models.TxEarnedReport, 10)

	require.NoError(t, env.gormDB.DB.Create(&models.RewardItem{Name: "Tote Bag", Cost: 50, IsAvailable: true}).Error)
	require.NoError(t, env.gormDB.DB.Create(&models.RewardItem{Name: "Retired Offer", Cost: 10, IsAvailable: false}).Error)

	rewards, err := env.rewardService.ListAvailableRewards(user.ID)
	require.NoError(t, err)
	require.Len(t, rewards, 2)
	require.Equal(t, RedeemAllID, rewards[0].ID)
	require.Equal(t, 10, rewards[0].Cost)
	require.Equal(t, "Tote Bag", rewards[1].Name)
}

func TestRecordTransactionRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.gormDB, "user@example.com")

	_, err := env.rewardService.RecordTransaction(user.ID, models.TxEarnedReport, 0, "nothing")
	apiErr, ok := err.(*apiError.Error)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestLeaderboardOrdersByPoints(t *testing.T) {
	env := newTestEnv(t)
	first := createTestUser(t, env.gormDB, "first@example.com")
	second := createTestUser(t, env.gormDB, "second@example.com")

	earn(t, env, first.ID, models.TxEarnedReport, 10)
	earn(t, env, second.ID, models.TxEarnedCollect, 20)

	entries, err := env.rewardService.Leaderboard(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, second.ID, entries[0].UserID)
	require.Equal(t, 20, entries[0].Points)
}
