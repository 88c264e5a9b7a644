package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "splitledger/internal/errors"
	"splitledger/internal/models"
)

// transferService moves money between budgets. A transfer is three writes
// that commit or fail as one unit: the transfer record, an expense entry in
// the source budget, and an income entry in the destination budget.
type transferService struct {
	db    *gorm.DB
	authz AuthzServicer
}

// NewTransferService creates a new TransferServicer.
func NewTransferService(db *gorm.DB, authz AuthzServicer) TransferServicer {
	return &transferService{db: db, authz: authz}
}

// CreateTransfer executes a budget-to-budget transfer. The caller must be at
// least a contributor on BOTH budgets; both checks run before any write, so a
// failure on either side leaves nothing behind. The budgets must share a
// currency, which the transfer and both entries are denominated in.
func (s *transferService) CreateTransfer(userID string, input CreateTransferInput) (*TransferResult, error) {
	if input.FromBudgetID == input.ToBudgetID {
		return nil, apperrors.ErrSameBudgetTransfer
	}
	if input.AmountMinor <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transfer amount must be positive")
	}

	if _, err := s.authz.EnsureRole(input.FromBudgetID, userID, models.RoleContributor); err != nil {
		return nil, err
	}
	if _, err := s.authz.EnsureRole(input.ToBudgetID, userID, models.RoleContributor); err != nil {
		return nil, err
	}

	fromBudget, err := s.loadBudget(input.FromBudgetID)
	if err != nil {
		return nil, err
	}
	toBudget, err := s.loadBudget(input.ToBudgetID)
	if err != nil {
		return nil, err
	}

	if fromBudget.CurrencyCode != toBudget.CurrencyCode {
		return nil, apperrors.WithMessage(apperrors.ErrCurrencyMismatch,
			fmt.Sprintf("cannot transfer between budgets with different currencies (%s and %s)",
				fromBudget.CurrencyCode, toBudget.CurrencyCode))
	}

	transferDate := input.TransferDate
	if transferDate.IsZero() {
		transferDate = time.Now().UTC()
	}

	transfer := &models.BudgetTransfer{
		FromBudgetID: input.FromBudgetID,
		ToBudgetID:   input.ToBudgetID,
		AmountMinor:  input.AmountMinor,
		CurrencyCode: fromBudget.CurrencyCode,
		TransferDate: transferDate,
		Note:         input.Note,
		CreatedBy:    userID,
	}

	var fromEntry, toEntry *models.Entry
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transfer).Error; err != nil {
			return err
		}

		fromCategoryID, err := s.resolveCategory(tx, input.FromBudgetID, input.FromCategoryID, models.CategoryKindExpense)
		if err != nil {
			return err
		}
		toCategoryID, err := s.resolveCategory(tx, input.ToBudgetID, input.ToCategoryID, models.CategoryKindIncome)
		if err != nil {
			return err
		}

		fromEntry = &models.Entry{
			BudgetID:     input.FromBudgetID,
			CategoryID:   fromCategoryID,
			Kind:         models.EntryKindExpense,
			AmountMinor:  input.AmountMinor,
			CurrencyCode: transfer.CurrencyCode,
			EntryDate:    transferDate,
			Description:  transferDescription(input.Note, "Transfer to "+toBudget.Name),
			CreatedBy:    userID,
			TransferID:   &transfer.ID,
		}
		if err := tx.Create(fromEntry).Error; err != nil {
			return err
		}

		toEntry = &models.Entry{
			BudgetID:     input.ToBudgetID,
			CategoryID:   toCategoryID,
			Kind:         models.EntryKindIncome,
			AmountMinor:  input.AmountMinor,
			CurrencyCode: transfer.CurrencyCode,
			EntryDate:    transferDate,
			Description:  "Transfer from " + fromBudget.Name,
			CreatedBy:    userID,
			TransferID:   &transfer.ID,
		}
		return tx.Create(toEntry).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &TransferResult{
		Transfer:       *transfer,
		FromEntryID:    fromEntry.ID,
		ToEntryID:      toEntry.ID,
		FromBudgetName: fromBudget.Name,
		ToBudgetName:   toBudget.Name,
	}, nil
}

// GetBudgetTransfers lists transfers where the budget is either side, newest
// first. Viewer floor.
func (s *transferService) GetBudgetTransfers(budgetID, userID string) ([]models.BudgetTransfer, error) {
	if _, err := s.authz.EnsureRole(budgetID, userID, models.RoleViewer); err != nil {
		return nil, err
	}

	var transfers []models.BudgetTransfer
	err := s.db.Where("from_budget_id = ? OR to_budget_id = ?", budgetID, budgetID).
		Order("transfer_date DESC, created_at DESC").
		Find(&transfers).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transfers, nil
}

// resolveCategory validates a caller-supplied category against the budget
// and kind, or finds/creates the budget's "Transfer" category of that kind
// when none was given.
func (s *transferService) resolveCategory(tx *gorm.DB, budgetID, categoryID string, kind models.CategoryKind) (string, error) {
	if categoryID != "" {
		var category models.Category
		err := tx.Where("id = ? AND budget_id = ?", categoryID, budgetID).First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrCategoryNotFound
		}
		if err != nil {
			return "", err
		}
		if category.Kind != kind {
			return "", apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("category %q must be of kind %s", category.Name, kind))
		}
		return category.ID, nil
	}

	var category models.Category
	err := tx.Where("budget_id = ? AND name = ? AND kind = ?", budgetID, "Transfer", kind).First(&category).Error
	if err == nil {
		return category.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	category = models.Category{BudgetID: budgetID, Name: "Transfer", Kind: kind, IsHidden: true}
	if err := tx.Create(&category).Error; err != nil {
		return "", err
	}
	return category.ID, nil
}

// transferDescription uses the caller's note for the source entry when one
// was given, otherwise the generated default.
func transferDescription(note, fallback string) string {
	if note != "" {
		return note
	}
	return fallback
}

func (s *transferService) loadBudget(budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ?", budgetID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}
