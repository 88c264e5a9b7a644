package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/models"
	"splitledger/internal/pagination"
)

// entryService handles entry-related business logic.
type entryService struct {
	db    *gorm.DB
	authz AuthzServicer
}

// NewEntryService creates a new EntryServicer.
func NewEntryService(db *gorm.DB, authz AuthzServicer) EntryServicer {
	return &entryService{db: db, authz: authz}
}

// ListEntries returns a page of the budget's entries. Viewer floor.
func (s *entryService) ListEntries(budgetID, userID string, page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[models.Entry], error) {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleViewer); err != nil {
		return nil, err
	}

	page.Defaults()

	q := s.db.Model(&models.Entry{}).Where("budget_id = ?", budgetID)
	if filter.FromDate != nil {
		q = q.Where("entry_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("entry_date <= ?", *filter.ToDate)
	}
	if filter.Kind != nil {
		q = q.Where("kind = ?", *filter.Kind)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.MemberID != nil {
		q = q.Where("created_by = ?", *filter.MemberID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("description LIKE ? OR counterparty LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.Entry
	err := q.Order(entryOrder(filter.SortBy, filter.SortOrder)).
		Scopes(pagination.Paginate(page)).
		Preload("Category").
		Find(&entries).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(entries, page.Page, page.PageSize, total)
	return &resp, nil
}

// entryOrder maps sort parameters to a whitelisted ORDER BY clause. Unknown
// values fall back to newest-first by date.
func entryOrder(sortBy, sortOrder string) string {
	column := "entry_date"
	switch sortBy {
	case "amount":
		column = "amount_minor"
	case "description":
		column = "description"
	}
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}
	return column + " " + direction + ", created_at " + direction
}

// CreateEntry records an income or expense in the budget. Contributor floor.
// The amount is in minor units and must be non-negative; kind carries the
// sign. An empty currency defaults to the budget's currency.
func (s *entryService) CreateEntry(budgetID, userID, categoryID string, kind models.EntryKind, amountMinor int64, currencyCode string, entryDate time.Time, description, counterparty string) (*models.Entry, error) {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleContributor); err != nil {
		return nil, err
	}

	if amountMinor < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if kind != models.EntryKindIncome && kind != models.EntryKindExpense {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "kind must be income or expense")
	}

	var category models.Category
	if err := s.db.Where("id = ? AND budget_id = ?", categoryID, budgetID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if currencyCode == "" {
		var budget models.Budget
		if err := s.db.Where("id = ?", budgetID).First(&budget).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		currencyCode = budget.CurrencyCode
	}
	if entryDate.IsZero() {
		entryDate = time.Now().UTC()
	}

	entry := &models.Entry{
		BudgetID:     budgetID,
		CategoryID:   categoryID,
		Kind:         kind,
		AmountMinor:  amountMinor,
		CurrencyCode: currencyCode,
		EntryDate:    entryDate,
		Description:  description,
		Counterparty: counterparty,
		CreatedBy:    userID,
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entry, nil
}

// GetEntryByID returns one entry of the budget. Viewer floor. Soft-deleted
// entries are not found.
func (s *entryService) GetEntryByID(budgetID, entryID, userID string) (*models.Entry, error) {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleViewer); err != nil {
		return nil, err
	}
	return s.getByID(budgetID, entryID)
}

// UpdateEntry updates entry fields and stamps the editor. Contributor floor.
func (s *entryService) UpdateEntry(budgetID, entryID, userID string, upd EntryUpdate) (*models.Entry, error) {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleContributor); err != nil {
		return nil, err
	}

	entry, err := s.getByID(budgetID, entryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if upd.CategoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND budget_id = ?", *upd.CategoryID, budgetID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		updates["category_id"] = *upd.CategoryID
	}
	if upd.Kind != nil {
		if *upd.Kind != models.EntryKindIncome && *upd.Kind != models.EntryKindExpense {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "kind must be income or expense")
		}
		updates["kind"] = *upd.Kind
	}
	if upd.AmountMinor != nil {
		if *upd.AmountMinor < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
		}
		updates["amount_minor"] = *upd.AmountMinor
	}
	if upd.EntryDate != nil {
		updates["entry_date"] = *upd.EntryDate
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if upd.Counterparty != nil {
		updates["counterparty"] = *upd.Counterparty
	}

	if len(updates) > 0 {
		updates["updated_by"] = userID
		if err := s.db.Model(entry).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return entry, nil
}

// DeleteEntry soft-deletes an entry. Contributor floor.
func (s *entryService) DeleteEntry(budgetID, entryID, userID string) error {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleContributor); err != nil {
		return err
	}

	entry, err := s.getByID(budgetID, entryID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(entry).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MonthlySummary aggregates entries per calendar month between from and to.
// Viewer floor. Months with no entries are omitted.
func (s *entryService) MonthlySummary(budgetID, userID string, from, to time.Time) ([]MonthlySummaryRow, error) {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleViewer); err != nil {
		return nil, err
	}

	// Month truncation is dialect-specific: postgres in production, sqlite
	// in tests.
	monthExpr := `strftime('%Y-%m-01', entry_date)`
	if s.db.Dialector.Name() == "postgres" {
		monthExpr = `to_char(date_trunc('month', entry_date), 'YYYY-MM-01')`
	}

	var rows []MonthlySummaryRow
	err := s.db.Model(&models.Entry{}).
		Select(monthExpr+` AS month_start,
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_minor ELSE 0 END), 0) AS income_minor,
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount_minor ELSE 0 END), 0) AS expense_minor,
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount_minor ELSE -amount_minor END), 0) AS net_minor`).
		Where("budget_id = ? AND entry_date >= ? AND entry_date <= ?", budgetID, from, to).
		Group("month_start").
		Order("month_start").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

func (s *entryService) getByID(budgetID, entryID string) (*models.Entry, error) {
	var entry models.Entry
	if err := s.db.Where("id = ? AND budget_id = ?", entryID, budgetID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}
