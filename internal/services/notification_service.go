package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/logger"
	"splitledger/internal/models"
)

// notificationService handles in-app notifications.
type notificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(db *gorm.DB) NotificationServicer {
	return &notificationService{db: db}
}

// Create records a notification for the user. Failures are logged and
// swallowed so a notification hiccup never fails the triggering operation.
func (s *notificationService) Create(userID, budgetID string, notifType models.NotificationType, title, message, linkURL, relatedID string) error {
	notification := &models.Notification{
		UserID:    userID,
		BudgetID:  budgetID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		LinkURL:   linkURL,
		RelatedID: relatedID,
	}
	if err := s.db.Create(notification).Error; err != nil {
		logger.Get().Errorw("failed to create notification",
			"error", err,
			"user_id", userID,
			"type", notifType,
		)
	}
	return nil
}

// ListForUser returns the user's notifications, newest first.
func (s *notificationService) ListForUser(userID string, limit int, unreadOnly bool) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notifications, nil
}

// UnreadCount returns how many unread notifications the user has.
func (s *notificationService) UnreadCount(userID string) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// MarkRead marks the given notifications as read. Scoped to the user so a
// caller cannot touch someone else's notifications.
func (s *notificationService) MarkRead(userID string, notificationIDs []string) error {
	if len(notificationIDs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND id IN ? AND is_read = ?", userID, notificationIDs, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *notificationService) MarkAllRead(userID string) error {
	now := time.Now().UTC()
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
