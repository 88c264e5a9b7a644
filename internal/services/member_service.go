package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/models"
)

// roleOrderCase sorts membership rows owner first for display. Ties within a
// role are broken by user_id so the order is deterministic.
const roleOrderCase = `CASE role
	WHEN 'owner' THEN 0
	WHEN 'manager' THEN 1
	WHEN 'contributor' THEN 2
	WHEN 'viewer' THEN 3
	ELSE 4
END, user_id`

// memberService manages budget memberships, the source of truth for access
// control.
type memberService struct {
	db            *gorm.DB
	authz         AuthzServicer
	users         UserServicer
	notifications NotificationServicer
}

// NewMemberService creates a new MemberServicer.
func NewMemberService(db *gorm.DB, authz AuthzServicer, users UserServicer, notifications NotificationServicer) MemberServicer {
	return &memberService{db: db, authz: authz, users: users, notifications: notifications}
}

// ListMembers returns the members of a budget joined with user display
// fields, ordered owner through viewer. Any member may view the list.
func (s *memberService) ListMembers(budgetID, actingUserID string) ([]models.BudgetMemberWithUser, error) {
	if _, err := s.authz.EnsureRole(budgetID, actingUserID, models.RoleViewer); err != nil {
		return nil, err
	}

	var members []models.BudgetMemberWithUser
	err := s.db.Table("budget_members").
		Select("budget_members.budget_id, budget_members.user_id, budget_members.role, users.name AS user_name, users.email AS user_email, users.avatar").
		Joins("INNER JOIN users ON users.id = budget_members.user_id").
		Where("budget_members.budget_id = ?", budgetID).
		Order(roleOrderCase).
		Scan(&members).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return members, nil
}

// InviteMember adds a user to the budget by email, or replaces their role if
// they are already a member. Owner only.
func (s *memberService) InviteMember(budgetID, actingUserID, email, role string) (*models.BudgetMember, error) {
	if err := s.authz.EnsureOwner(budgetID, actingUserID); err != nil {
		return nil, err
	}

	if _, ok := models.ParseRole(role); !ok {
		return nil, apperrors.ErrInvalidRole
	}

	userID, err := s.users.GetUserIDByEmail(email)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrUserNotFound.Code {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user not found with this email")
		}
		return nil, err
	}

	member, err := s.upsert(budgetID, userID, role)
	if err != nil {
		return nil, err
	}

	if userID != actingUserID {
		_ = s.notifications.Create(userID, budgetID, models.NotificationTypeMemberJoined,
			"Added to a budget", "You have been added to a budget as "+role, "/budgets/"+budgetID, budgetID)
	}
	return member, nil
}

// UpdateMemberRole replaces an existing member's role. Owner only. Demoting
// the last owner is rejected so a budget can never lose owner-level access.
func (s *memberService) UpdateMemberRole(budgetID, actingUserID, memberUserID, role string) (*models.BudgetMember, error) {
	if err := s.authz.EnsureOwner(budgetID, actingUserID); err != nil {
		return nil, err
	}

	newRole, ok := models.ParseRole(role)
	if !ok {
		return nil, apperrors.ErrInvalidRole
	}

	if newRole != models.RoleOwner {
		if err := s.guardLastOwner(budgetID, memberUserID); err != nil {
			return nil, err
		}
	}

	return s.upsert(budgetID, memberUserID, role)
}

// RemoveMember deletes a membership. Owner only. Removal is idempotent:
// deleting a pair that does not exist succeeds without error. Removing the
// last owner is rejected.
func (s *memberService) RemoveMember(budgetID, actingUserID, memberUserID string) error {
	if err := s.authz.EnsureOwner(budgetID, actingUserID); err != nil {
		return err
	}

	if err := s.guardLastOwner(budgetID, memberUserID); err != nil {
		return err
	}

	if err := s.db.Where("budget_id = ? AND user_id = ?", budgetID, memberUserID).
		Delete(&models.BudgetMember{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// upsert inserts or replaces the role for the (budget, user) pair. The
// composite primary key plus ON CONFLICT keeps the operation atomic: at no
// point does the pair hold zero or two roles.
func (s *memberService) upsert(budgetID, userID, role string) (*models.BudgetMember, error) {
	member := &models.BudgetMember{BudgetID: budgetID, UserID: userID, Role: role}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "budget_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(member).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var saved models.BudgetMember
	if err := s.db.Where("budget_id = ? AND user_id = ?", budgetID, userID).First(&saved).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &saved, nil
}

// guardLastOwner rejects the operation when memberUserID holds the only
// owner role of the budget. Non-members and non-owners pass through.
func (s *memberService) guardLastOwner(budgetID, memberUserID string) error {
	var current models.BudgetMember
	err := s.db.Where("budget_id = ? AND user_id = ?", budgetID, memberUserID).First(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if current.Role != string(models.RoleOwner) {
		return nil
	}

	var owners int64
	if err := s.db.Model(&models.BudgetMember{}).
		Where("budget_id = ? AND role = ?", budgetID, string(models.RoleOwner)).
		Count(&owners).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if owners <= 1 {
		return apperrors.ErrLastOwner
	}
	return nil
}
