package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db    *gorm.DB
	authz AuthzServicer
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, authz AuthzServicer) CategoryServicer {
	return &categoryService{db: db, authz: authz}
}

// ListCategories lists a budget's categories, optionally filtered by kind.
// Viewer floor.
func (s *categoryService) ListCategories(budgetID, userID string, kind *models.CategoryKind) ([]models.Category, error) {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleViewer); err != nil {
		return nil, err
	}

	q := s.db.Where("budget_id = ?", budgetID)
	if kind != nil {
		q = q.Where("kind = ?", *kind)
	}

	var categories []models.Category
	if err := q.Order("name").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// CreateCategory creates a category in the budget. Contributor floor.
func (s *categoryService) CreateCategory(budgetID, userID, name string, kind models.CategoryKind, color, icon string, hidden bool) (*models.Category, error) {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleContributor); err != nil {
		return nil, err
	}

	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	category := &models.Category{
		BudgetID: budgetID,
		Name:     name,
		Kind:     kind,
		Color:    color,
		Icon:     icon,
		IsHidden: hidden,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// UpdateCategory updates category fields. Contributor floor. Changing the
// kind is rejected while active entries reference the category, since that
// would silently flip their income/expense meaning.
func (s *categoryService) UpdateCategory(budgetID, userID, categoryID string, upd CategoryUpdate) (*models.Category, error) {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleContributor); err != nil {
		return nil, err
	}

	category, err := s.getByID(budgetID, categoryID)
	if err != nil {
		return nil, err
	}

	if upd.Kind != nil && *upd.Kind != category.Kind {
		count, err := s.activeEntryCount(categoryID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperrors.WithMessage(apperrors.ErrCategoryInUse,
				fmt.Sprintf("Cannot change category kind: it has %d active entries", count))
		}
	}

	updates := make(map[string]interface{})
	if upd.Name != nil && *upd.Name != "" {
		updates["name"] = *upd.Name
	}
	if upd.Kind != nil {
		updates["kind"] = *upd.Kind
	}
	if upd.Color != nil {
		updates["color"] = *upd.Color
	}
	if upd.Icon != nil {
		updates["icon"] = *upd.Icon
	}
	if upd.IsHidden != nil {
		updates["is_hidden"] = *upd.IsHidden
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return category, nil
}

// DeleteCategory deletes a category. Contributor floor. Rejected while
// active (non-soft-deleted) entries still reference it; the count is
// included so the client can tell the user what is blocking.
func (s *categoryService) DeleteCategory(budgetID, userID, categoryID string) error {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleContributor); err != nil {
		return err
	}

	category, err := s.getByID(budgetID, categoryID)
	if err != nil {
		return err
	}

	count, err := s.activeEntryCount(categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.WithMessage(apperrors.ErrCategoryInUse,
			fmt.Sprintf("Cannot delete category: it is used by %d active entries", count))
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// activeEntryCount counts non-deleted entries referencing the category.
// Soft-deleted entries do not block category changes.
func (s *categoryService) activeEntryCount(categoryID string) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Entry{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

func (s *categoryService) getByID(budgetID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND budget_id = ?", categoryID, budgetID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}
