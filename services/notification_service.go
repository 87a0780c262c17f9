package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"firebase.google.com/go/messaging"
	"github.com/greenearthng/greenloop/db"
	apiError "github.com/greenearthng/greenloop/errors"
	"github.com/greenearthng/greenloop/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Pusher delivers a notification to whatever device channel the user
// subscribed to. Delivery is best-effort.
type Pusher interface {
	Push(ctx context.Context, userID uint, title, body string) error
}

type NotificationService interface {
	Notify(userID uint, message, notifType string) (*models.Notification, error)
	MarkRead(notificationID uint) error
	ListUnread(userID uint) ([]models.Notification, error)
}

type notificationService struct {
	notificationRepo db.NotificationRepository
	pusher           Pusher
}

// NewNotificationService instantiates the fanout service. pusher may be
// nil when no push channel is configured.
func NewNotificationService(notificationRepo db.NotificationRepository, pusher Pusher) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		pusher:           pusher,
	}
}

func (s *notificationService) Notify(userID uint, message, notifType string) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:  userID,
		Message: message,
		Type:    notifType,
	}
	if err := s.notificationRepo.CreateNotification(notification); err != nil {
		return nil, fmt.Errorf("error creating notification: %w", err)
	}

	if s.pusher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.pusher.Push(ctx, userID, "GreenLoop", message); err != nil {
			log.Printf("push delivery failed for user %d: %v", userID, err)
		}
	}

	return notification, nil
}

func (s *notificationService) MarkRead(notificationID uint) error {
	err := s.notificationRepo.MarkRead(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apiError.New("notification not found", http.StatusNotFound)
		}
		return fmt.Errorf("error marking notification read: %w", err)
	}
	return nil
}

func (s *notificationService) ListUnread(userID uint) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.ListUnread(userID)
	if err != nil {
		return nil, fmt.Errorf("error listing unread notifications: %w", err)
	}
	return notifications, nil
}

// FirebasePusher sends pushes through Firebase Cloud Messaging to the
// per-user topic devices subscribe to at login.
type FirebasePusher struct {
	client *messaging.Client
}

func NewFirebasePusher(client *messaging.Client) *FirebasePusher {
	return &FirebasePusher{client: client}
}

func (p *FirebasePusher) Push(ctx context.Context, userID uint, title, body string) error {
	message := &messaging.Message{
		Topic: fmt.Sprintf("user-%d", userID),
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	}
	_, err := p.client.Send(ctx, message)
	return err
}
