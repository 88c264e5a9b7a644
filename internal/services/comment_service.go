package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/models"
	"splitledger/internal/uuid"
)

// commentService handles entry comments and @mentions.
type commentService struct {
	db            *gorm.DB
	authz         AuthzServicer
	notifications NotificationServicer
}

// NewCommentService creates a new CommentServicer.
func NewCommentService(db *gorm.DB, authz AuthzServicer, notifications NotificationServicer) CommentServicer {
	return &commentService{db: db, authz: authz, notifications: notifications}
}

// ListEntryComments lists an entry's comments oldest first, joined with
// author display fields. Viewer floor on the budget.
func (s *commentService) ListEntryComments(budgetID, entryID, userID string) ([]models.CommentWithUser, error) {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleViewer); err != nil {
		return nil, err
	}
	if err := s.checkEntry(budgetID, entryID); err != nil {
		return nil, err
	}

	var comments []models.CommentWithUser
	err := s.db.Table("entry_comments").
		Select("entry_comments.*, users.name AS user_name, users.email AS user_email, users.avatar").
		Joins("INNER JOIN users ON users.id = entry_comments.user_id").
		Where("entry_comments.entry_id = ? AND entry_comments.deleted_at IS NULL", entryID).
		Order("entry_comments.created_at").
		Scan(&comments).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return comments, nil
}

// CreateComment adds a comment to an entry. Viewer floor: commenting is
// discussion, not a ledger mutation. Mentioned members get a notification.
func (s *commentService) CreateComment(budgetID, entryID, userID, text string, mentionUserIDs []string) (*models.EntryComment, error) {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleViewer); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "comment text is required")
	}
	if err := s.checkEntry(budgetID, entryID); err != nil {
		return nil, err
	}

	mentions, err := s.validMentions(budgetID, userID, mentionUserIDs)
	if err != nil {
		return nil, err
	}

	comment := &models.EntryComment{
		EntryID:     entryID,
		UserID:      userID,
		CommentText: text,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return s.replaceMentions(tx, comment.ID, mentions)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, mentionedID := range mentions {
		_ = s.notifications.Create(mentionedID, budgetID, models.NotificationTypeMention,
			"You were mentioned", "You were mentioned in a comment",
			"/budgets/"+budgetID+"/entries/"+entryID, comment.ID)
	}
	return comment, nil
}

// UpdateComment edits a comment's text and replaces its mentions. Only the
// author may edit.
func (s *commentService) UpdateComment(commentID, userID, text string, mentionUserIDs []string) (*models.EntryComment, error) {
	comment, budgetID, err := s.getWithBudget(commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	if text == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "comment text is required")
	}

	mentions, err := s.validMentions(budgetID, userID, mentionUserIDs)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(comment).Update("comment_text", text).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.CommentMention{}).Error; err != nil {
			return err
		}
		return s.replaceMentions(tx, comment.ID, mentions)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return comment, nil
}

// DeleteComment soft-deletes a comment. The author may delete their own;
// a budget owner may delete any comment in the budget.
func (s *commentService) DeleteComment(commentID, userID string) error {
	comment, budgetID, err := s.getWithBudget(commentID)
	if err != nil {
		return err
	}

	if comment.UserID != userID {
		if err := s.authz.EnsureOwner(budgetID, userID); err != nil {
			return err
		}
	}

	if err := s.db.Delete(comment).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// validMentions filters the requested mention IDs down to budget members,
// dropping self-mentions and duplicates.
func (s *commentService) validMentions(budgetID, authorID string, mentionUserIDs []string) ([]string, error) {
	if len(mentionUserIDs) == 0 {
		return nil, nil
	}

	var memberIDs []string
	err := s.db.Model(&models.BudgetMember{}).
		Where("budget_id = ? AND user_id IN ?", budgetID, mentionUserIDs).
		Pluck("user_id", &memberIDs).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	seen := make(map[string]bool, len(memberIDs))
	var mentions []string
	for _, id := range memberIDs {
		if id == authorID || seen[id] {
			continue
		}
		seen[id] = true
		mentions = append(mentions, id)
	}
	return mentions, nil
}

func (s *commentService) replaceMentions(tx *gorm.DB, commentID string, mentionUserIDs []string) error {
	for _, mentionedID := range mentionUserIDs {
		mention := &models.CommentMention{
			ID:              uuid.New(),
			CommentID:       commentID,
			MentionedUserID: mentionedID,
		}
		if err := tx.Create(mention).Error; err != nil {
			return err
		}
	}
	return nil
}

// checkEntry verifies the entry exists and belongs to the budget.
func (s *commentService) checkEntry(budgetID, entryID string) error {
	var entry models.Entry
	err := s.db.Where("id = ? AND budget_id = ?", entryID, budgetID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrEntryNotFound
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// getWithBudget loads a comment and resolves the budget its entry belongs
// to, which the authorization checks need.
func (s *commentService) getWithBudget(commentID string) (*models.EntryComment, string, error) {
	var comment models.EntryComment
	if err := s.db.Where("id = ?", commentID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.ErrCommentNotFound
		}
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entry models.Entry
	if err := s.db.Unscoped().Where("id = ?", comment.EntryID).First(&entry).Error; err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &comment, entry.BudgetID, nil
}
