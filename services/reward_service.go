package services

import (
	"fmt"
	"log"
	"net/http"

	"github.com/greenearthng/greenloop/config"
	"github.com/greenearthng/greenloop/db"
	apiError "github.com/greenearthng/greenloop/errors"
	"github.com/greenearthng/greenloop/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// RedeemAllID is the synthetic catalog id representing the user's own
// balance as a pseudo-reward.
const RedeemAllID uint = 0

type RewardService interface {
	ComputeBalance(userID uint) (int, error)
	ApplyPointDelta(userID uint, delta int) error
	RecordTransaction(userID uint, kind string, amount int, description string) (*models.Transaction, error)
	ListAvailableRewards(userID uint) ([]models.AvailableReward, error)
	ListTransactions(userID uint, limit int) ([]models.Transaction, error)
	RedeemReward(userID uint, rewardID uint) (*models.Transaction, error)
	Leaderboard(limit int) ([]models.LeaderboardEntry, error)
}

type rewardService struct {
	Config           *config.Config
	gormDB           *db.GormDB
	rewardRepo       db.RewardRepository
	notificationRepo db.NotificationRepository
}

func NewRewardService(gormDB *db.GormDB, rewardRepo db.RewardRepository, notificationRepo db.NotificationRepository, conf *config.Config) RewardService {
	return &rewardService{
		Config:           conf,
		gormDB:           gormDB,
		rewardRepo:       rewardRepo,
		notificationRepo: notificationRepo,
	}
}

// ComputeBalance derives the balance from the user's entire transaction
// history and clamps it at zero. The stored account counter is never the
// source of truth here.
func (s *rewardService) ComputeBalance(userID uint) (int, error) {
	balance, err := s.rewardRepo.SumTransactionBalance(userID)
	if err != nil {
		return 0, fmt.Errorf("error computing balance: %w", err)
	}
	if balance < 0 {
		balance = 0
	}
	return balance, nil
}

func (s *rewardService) ApplyPointDelta(userID uint, delta int) error {
	err := s.rewardRepo.ApplyPointDelta(userID, delta)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apiError.New("reward account not found", http.StatusNotFound)
		}
		return fmt.Errorf("error applying point delta: %w", err)
	}
	return nil
}

func (s *rewardService) RecordTransaction(userID uint, kind string, amount int, description string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apiError.New("transaction amount must be positive", http.StatusBadRequest)
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
	}
	if err := s.rewardRepo.CreateTransaction(transaction); err != nil {
		return nil, fmt.Errorf("error recording transaction: %w", err)
	}
	return transaction, nil
}

// ListAvailableRewards returns the available catalog prefixed with the
// synthetic "Your Points" entry whose cost is the current balance.
func (s *rewardService) ListAvailableRewards(userID uint) ([]models.AvailableReward, error) {
	balance, err := s.ComputeBalance(userID)
	if err != nil {
		return nil, err
	}

	items, err := s.rewardRepo.ListAvailableRewardItems()
	if err != nil {
		return nil, fmt.Errorf("error listing rewards: %w", err)
	}

	rewards := make([]models.AvailableReward, 0, len(items)+1)
	rewards = append(rewards, models.AvailableReward{
		ID:             RedeemAllID,
		Name:           "Your Points",
		Cost:           balance,
		Description:    "Redeem your earned points",
		CollectionInfo: "Points earned from reporting and collecting waste",
	})
	for _, item := range items {
		rewards = append(rewards, models.AvailableReward{
			ID:             item.ID,
			Name:           item.Name,
			Cost:           item.Cost,
			Description:    item.Description,
			CollectionInfo: item.CollectionInfo,
		})
	}
	return rewards, nil
}

func (s *rewardService) ListTransactions(userID uint, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	transactions, err := s.rewardRepo.ListTransactions(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	return transactions, nil
}

// RedeemReward debits the user's balance, either fully (the synthetic
// id-0 entry) or by one catalog item's cost. The ledger append, counter
// update and notification all commit or roll back together.
func (s *rewardService) RedeemReward(userID uint, rewardID uint) (*models.Transaction, error) {
	var redeemed *models.Transaction

	err := s.gormDB.Transaction(func(tx *gorm.DB) error {
		rewardRepo := s.rewardRepo.WithTx(tx)
		notificationRepo := s.notificationRepo.WithTx(tx)

		balance, err := rewardRepo.SumTransactionBalance(userID)
		if err != nil {
			return err
		}
		if balance < 0 {
			balance = 0
		}

		var amount int
		var description string
		if rewardID == RedeemAllID {
			if balance <= 0 {
				return apiError.New("no points to redeem", http.StatusBadRequest)
			}
			amount = balance
			description = "Redeemed all points"
		} else {
			item, err := rewardRepo.GetRewardItemByID(rewardID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apiError.New("reward not found", http.StatusNotFound)
				}
				return err
			}
			if !item.IsAvailable {
				return apiError.New("reward is not available", http.StatusBadRequest)
			}
			if balance < item.Cost {
				return apiError.New("insufficient point balance", http.StatusBadRequest)
			}
			amount = item.Cost
			description = fmt.Sprintf("Redeemed: %s", item.Name)
		}

		if _, err := rewardRepo.GetOrCreateAccount(userID); err != nil {
			return err
		}
		if err := rewardRepo.DebitPoints(userID, amount); err != nil {
			if errors.Is(err, db.ErrInsufficientPoints) {
				return apiError.New("balance changed, redeem aborted", http.StatusConflict)
			}
			return err
		}

		redeemed = &models.Transaction{
			UserID:      userID,
			Kind:        models.TxRedeemed,
			Amount:      amount,
			Description: description,
		}
		if err := rewardRepo.CreateTransaction(redeemed); err != nil {
			return err
		}

		notification := &models.Notification{
			UserID:  userID,
			Message: fmt.Sprintf("You redeemed %d points: %s", amount, description),
			Type:    "reward",
		}
		return notificationRepo.CreateNotification(notification)
	})
	if err != nil {
		log.Printf("RedeemReward error for user %d: %v", userID, err)
		return nil, err
	}

	return redeemed, nil
}

func (s *rewardService) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	entries, err := s.rewardRepo.Leaderboard(limit)
	if err != nil {
		return nil, fmt.Errorf("error building leaderboard: %w", err)
	}
	return entries, nil
}
