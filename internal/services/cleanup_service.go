package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/logger"
	"splitledger/internal/models"
)

// cleanupService permanently removes rows past the retention window.
// Soft deletes keep data recoverable for a while; this is where it
// actually disappears.
type cleanupService struct {
	db *gorm.DB
}

// NewCleanupService creates a new CleanupServicer.
func NewCleanupService(db *gorm.DB) CleanupServicer {
	return &cleanupService{db: db}
}

// PurgeSoftDeletedEntries hard-deletes entries and comments whose soft
// delete happened before olderThan. Comments of a purged entry go with it.
func (s *cleanupService) PurgeSoftDeletedEntries(olderThan time.Time) (int64, error) {
	var purged int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entryIDs []string
		err := tx.Unscoped().Model(&models.Entry{}).
			Where("deleted_at IS NOT NULL AND deleted_at < ?", olderThan).
			Pluck("id", &entryIDs).Error
		if err != nil {
			return err
		}
		if len(entryIDs) == 0 {
			return nil
		}

		var commentIDs []string
		err = tx.Unscoped().Model(&models.EntryComment{}).
			Where("entry_id IN ?", entryIDs).
			Pluck("id", &commentIDs).Error
		if err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentMention{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", commentIDs).Delete(&models.EntryComment{}).Error; err != nil {
				return err
			}
		}

		res := tx.Unscoped().Where("id IN ?", entryIDs).Delete(&models.Entry{})
		if res.Error != nil {
			return res.Error
		}
		purged = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if purged > 0 {
		logger.Get().Infow("purged soft-deleted entries", "count", purged, "older_than", olderThan)
	}
	return purged, nil
}

// PurgeReadNotifications hard-deletes notifications read before olderThan.
func (s *cleanupService) PurgeReadNotifications(olderThan time.Time) (int64, error) {
	res := s.db.Unscoped().
		Where("is_read = ? AND read_at IS NOT NULL AND read_at < ?", true, olderThan).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}

	if res.RowsAffected > 0 {
		logger.Get().Infow("purged read notifications", "count", res.RowsAffected, "older_than", olderThan)
	}
	return res.RowsAffected, nil
}
