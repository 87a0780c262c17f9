package db

import (
	"github.com/greenearthng/greenloop/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrInsufficientPoints is returned by DebitPoints when the account
// holds fewer points than the debit asks for.
var ErrInsufficientPoints = errors.New("insufficient points")

type RewardRepository interface {
	WithTx(tx *gorm.DB) RewardRepository
	GetAccountByUserID(userID uint) (*models.RewardAccount, error)
	GetOrCreateAccount(userID uint) (*models.RewardAccount, error)
	ApplyPointDelta(userID uint, delta int) error
	DebitPoints(userID uint, amount int) error
	CreateTransaction(tx *models.Transaction) error
	ListTransactions(userID uint, limit int) ([]models.Transaction, error)
	SumTransactionBalance(userID uint) (int, error)
	ListAvailableRewardItems() ([]models.RewardItem, error)
	GetRewardItemByID(id uint) (*models.RewardItem, error)
	Leaderboard(limit int) ([]models.LeaderboardEntry, error)
}

type rewardRepo struct {
	DB *gorm.DB
}

func NewRewardRepo(db *GormDB) RewardRepository {
	return &rewardRepo{db.DB}
}

func (r *rewardRepo) WithTx(tx *gorm.DB) RewardRepository {
	return &rewardRepo{tx}
}

func (r *rewardRepo) GetAccountByUserID(userID uint) (*models.RewardAccount, error) {
	var account models.RewardAccount
	if err := r.DB.Where("user_id = ?", userID).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetOrCreateAccount lazily creates the account row on a user's first
// earning event.
func (r *rewardRepo) GetOrCreateAccount(userID uint) (*models.RewardAccount, error) {
	var account models.RewardAccount
	err := r.DB.Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		account = models.RewardAccount{
			UserID:      userID,
			Points:      0,
			Level:       1,
			IsAvailable: true,
		}
		if err := r.DB.Create(&account).Error; err != nil {
			return nil, errors.Wrap(err, "creating reward account")
		}
	}
	return &account, nil
}

func (r *rewardRepo) ApplyPointDelta(userID uint, delta int) error {
	result := r.DB.Model(&models.RewardAccount{}).
		Where("user_id = ?", userID).
		Update("points", gorm.Expr("points + ?", delta))
	if result.Error != nil {
		return errors.Wrap(result.Error, "applying point delta")
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DebitPoints subtracts amount from the account, but only if the stored
// counter still covers it. A zero-row update against an existing account
// means a concurrent debit got there first.
func (r *rewardRepo) DebitPoints(userID uint, amount int) error {
	result := r.DB.Model(&models.RewardAccount{}).
		Where("user_id = ? AND points >= ?", userID, amount).
		Update("points", gorm.Expr("points - ?", amount))
	if result.Error != nil {
		return errors.Wrap(result.Error, "debiting points")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.DB.Model(&models.RewardAccount{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "debiting points")
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrInsufficientPoints
	}
	return nil
}

func (r *rewardRepo) CreateTransaction(tx *models.Transaction) error {
	if err := r.DB.Create(tx).Error; err != nil {
		return errors.Wrap(err, "appending transaction")
	}
	return nil
}

func (r *rewardRepo) ListTransactions(userID uint, limit int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing transactions")
	}
	return transactions, nil
}

// SumTransactionBalance folds the user's entire ledger: earned kinds add,
// all other kinds subtract. No row cap — the balance is the whole history.
func (r *rewardRepo) SumTransactionBalance(userID uint) (int, error) {
	var balance int
	err := r.DB.Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(CASE WHEN kind LIKE 'earned%' THEN amount ELSE -amount END), 0)").
		Scan(&balance).Error
	if err != nil {
		return 0, errors.Wrap(err, "summing transactions")
	}
	return balance, nil
}

func (r *rewardRepo) ListAvailableRewardItems() ([]models.RewardItem, error) {
	var items []models.RewardItem
	err := r.DB.Where("is_available = ?", true).Order("cost ASC").Find(&items).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing reward items")
	}
	return items, nil
}

func (r *rewardRepo) GetRewardItemByID(id uint) (*models.RewardItem, error) {
	var item models.RewardItem
	if err := r.DB.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *rewardRepo) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := r.DB.Model(&models.RewardAccount{}).
		Select("reward_accounts.user_id, users.fullname, reward_accounts.points, reward_accounts.level").
		Joins("JOIN users ON users.id = reward_accounts.user_id").
		Order("reward_accounts.points DESC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, errors.Wrap(err, "building leaderboard")
	}
	return entries, nil
}
