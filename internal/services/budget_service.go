package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db    *gorm.DB
	authz AuthzServicer
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, authz AuthzServicer) BudgetServicer {
	return &budgetService{db: db, authz: authz}
}

// CreateBudget creates a budget and its owner membership in one transaction,
// so a budget is never visible without an owner-role member.
func (s *budgetService) CreateBudget(userID, name, currencyCode string, budgetType models.BudgetType, description string) (*models.Budget, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if currencyCode == "" {
		currencyCode = "USD"
	}
	if budgetType == "" {
		budgetType = models.BudgetTypeStandard
	}

	budget := &models.Budget{
		OwnerID:      userID,
		Name:         name,
		CurrencyCode: currencyCode,
		BudgetType:   budgetType,
		Description:  description,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(budget).Error; err != nil {
			return err
		}
		member := &models.BudgetMember{
			BudgetID: budget.ID,
			UserID:   userID,
			Role:     string(models.RoleOwner),
		}
		return tx.Create(member).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetUserBudgets lists the non-archived budgets the user belongs to, newest
// first, each with the user's role. Search matches name or description.
func (s *budgetService) GetUserBudgets(userID, search string) ([]BudgetWithRole, error) {
	q := s.db.Table("budgets").
		Select("budgets.*, budget_members.role AS user_role").
		Joins("INNER JOIN budget_members ON budget_members.budget_id = budgets.id").
		Where("budget_members.user_id = ? AND budgets.archived = ? AND budgets.deleted_at IS NULL", userID, false)

	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where("budgets.name LIKE ? OR budgets.description LIKE ?", pattern, pattern)
	}

	var budgets []BudgetWithRole
	if err := q.Order("budgets.created_at DESC").Scan(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// GetBudget returns a budget if the user is at least a viewer of it.
func (s *budgetService) GetBudget(budgetID, userID string) (*models.Budget, error) {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleViewer); err != nil {
		return nil, err
	}
	return s.getByID(budgetID)
}

// UpdateBudget updates budget fields. Owner only.
func (s *budgetService) UpdateBudget(budgetID, userID string, upd BudgetUpdate) (*models.Budget, error) {
	if err := s.authz.EnsureOwner(budgetID, userID); err != nil {
		return nil, err
	}

	budget, err := s.getByID(budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if upd.Name != nil && *upd.Name != "" {
		updates["name"] = *upd.Name
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if upd.CurrencyCode != nil && *upd.CurrencyCode != "" {
		updates["currency_code"] = *upd.CurrencyCode
	}
	if upd.BudgetType != nil {
		updates["budget_type"] = *upd.BudgetType
	}
	if upd.Archived != nil {
		updates["archived"] = *upd.Archived
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget. Owner only.
func (s *budgetService) DeleteBudget(budgetID, userID string) error {
	if err := s.authz.EnsureOwner(budgetID, userID); err != nil {
		return err
	}

	budget, err := s.getByID(budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBalance sums the budget's non-deleted entries. Viewer floor.
func (s *budgetService) GetBalance(budgetID, userID string) (*BudgetBalance, error) {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleViewer); err != nil {
		return nil, err
	}

	var result struct {
		IncomeMinor  int64
		ExpenseMinor int64
	}
	err := s.db.Model(&models.Entry{}).
		Select(`COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_minor ELSE 0 END), 0) AS income_minor,
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_minor ELSE 0 END), 0) AS expense_minor`).
		Where("budget_id = ?", budgetID).
		Scan(&result).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &BudgetBalance{
		BudgetID:     budgetID,
		IncomeMinor:  result.IncomeMinor,
		ExpenseMinor: result.ExpenseMinor,
		NetMinor:     result.IncomeMinor - result.ExpenseMinor,
	}, nil
}

func (s *budgetService) getByID(budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ?", budgetID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}
