package db

import (
	"github.com/greenearthng/greenloop/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	WithTx(tx *gorm.DB) NotificationRepository
	CreateNotification(notification *models.Notification) error
	MarkRead(notificationID uint) error
	ListUnread(userID uint) ([]models.Notification, error)
}

type notificationRepo struct {
	DB *gorm.DB
}

func NewNotificationRepo(db *GormDB) NotificationRepository {
	return &notificationRepo{db.DB}
}

func (n *notificationRepo) WithTx(tx *gorm.DB) NotificationRepository {
	return &notificationRepo{tx}
}

func (n *notificationRepo) CreateNotification(notification *models.Notification) error {
	if err := n.DB.Create(notification).Error; err != nil {
		return errors.Wrap(err, "creating notification")
	}
	return nil
}

// MarkRead is idempotent: re-marking an already-read row is a no-op, a
// missing row is an error.
func (n *notificationRepo) MarkRead(notificationID uint) error {
	result := n.DB.Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Update("is_read", true)
	if result.Error != nil {
		return errors.Wrap(result.Error, "marking notification read")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := n.DB.Model(&models.Notification{}).Where("id = ?", notificationID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (n *notificationRepo) ListUnread(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := n.DB.Where("user_id = ? AND is_read = ?", userID, false).
		Find(&notifications).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing unread notifications")
	}
	return notifications, nil
}
