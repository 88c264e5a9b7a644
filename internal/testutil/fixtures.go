package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"splitledger/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     fmt.Sprintf("Test User %d", nextID()),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBudget creates a USD budget owned by the given user, including
// the owner membership row.
func CreateTestBudget(t *testing.T, db *gorm.DB, ownerID string) *models.Budget {
	t.Helper()
	return CreateTestBudgetWithCurrency(t, db, ownerID, "USD")
}

// CreateTestBudgetWithCurrency creates a budget in the given currency owned
// by the given user, including the owner membership row.
func CreateTestBudgetWithCurrency(t *testing.T, db *gorm.DB, ownerID, currencyCode string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		OwnerID:      ownerID,
		Name:         fmt.Sprintf("Test Budget %d", nextID()),
		CurrencyCode: currencyCode,
		BudgetType:   models.BudgetTypeStandard,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}

	CreateTestMember(t, db, budget.ID, ownerID, models.RoleOwner)
	return budget
}

// CreateTestMember adds a membership row for the (budget, user) pair.
func CreateTestMember(t *testing.T, db *gorm.DB, budgetID, userID string, role models.Role) *models.BudgetMember {
	t.Helper()

	member := &models.BudgetMember{
		BudgetID: budgetID,
		UserID:   userID,
		Role:     string(role),
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test member: %v", err)
	}
	return member
}

// CreateTestCategory creates a category of the given kind in the budget.
func CreateTestCategory(t *testing.T, db *gorm.DB, budgetID string, kind models.CategoryKind) *models.Category {
	t.Helper()

	category := &models.Category{
		BudgetID: budgetID,
		Name:     fmt.Sprintf("Test Category %d", nextID()),
		Kind:     kind,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestEntry creates an entry of the given kind and amount (in minor
// units) in the budget.
func CreateTestEntry(t *testing.T, db *gorm.DB, budgetID, categoryID, createdBy string, kind models.EntryKind, amountMinor int64) *models.Entry {
	t.Helper()

	entry := &models.Entry{
		BudgetID:     budgetID,
		CategoryID:   categoryID,
		Kind:         kind,
		AmountMinor:  amountMinor,
		CurrencyCode: "USD",
		EntryDate:    time.Now().UTC(),
		CreatedBy:    createdBy,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test entry: %v", err)
	}
	return entry
}
