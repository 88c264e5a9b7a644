package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/models"
)

// authzService is the single security boundary for budget-scoped data.
// Centralizing the role checks here keeps authorization auditable: every
// mutating domain operation calls EnsureRole or EnsureOwner exactly once,
// before any side effect.
type authzService struct {
	db *gorm.DB
}

// NewAuthzService creates a new AuthzServicer.
func NewAuthzService(db *gorm.DB) AuthzServicer {
	return &authzService{db: db}
}

// lookupRole reads the caller's current membership. A missing row or an
// unrecognized role token both mean zero privilege.
func (s *authzService) lookupRole(budgetID, userID string) (models.Role, bool, error) {
	var member models.BudgetMember
	err := s.db.Where("budget_id = ? AND user_id = ?", budgetID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	role, ok := models.ParseRole(member.Role)
	if !ok {
		return "", false, nil
	}
	return role, true, nil
}

// EnsureRole succeeds iff the user holds a role at least as privileged as
// required. Equal rank passes: a viewer satisfies a viewer floor.
func (s *authzService) EnsureRole(budgetID, userID string, required models.Role) (models.Role, error) {
	role, ok, err := s.lookupRole(budgetID, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.ErrForbidden
	}
	if role.Rank() < required.Rank() {
		return "", apperrors.ErrForbidden
	}
	return role, nil
}

// EnsureOwner succeeds only for an exact owner role.
func (s *authzService) EnsureOwner(budgetID, userID string) error {
	role, ok, err := s.lookupRole(budgetID, userID)
	if err != nil {
		return err
	}
	if !ok || role != models.RoleOwner {
		return apperrors.ErrForbidden
	}
	return nil
}
