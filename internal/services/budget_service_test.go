package services

import (
	"testing"

	"splitledger/internal/models"
	"splitledger/internal/testutil"
)

func TestCreateBudget(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewAuthzService(db))
		user := testutil.CreateTestUser(t, db)

		budget, err := svc.CreateBudget(user.ID, "Household", "EUR", models.BudgetTypeStandard, "shared expenses")
		testutil.AssertNoError(t, err)

		if budget.ID == "" {
			t.Fatal("expected non-empty budget ID")
		}
		if budget.CurrencyCode != "EUR" {
			t.Errorf("expected currency EUR, got %s", budget.CurrencyCode)
		}

		// The creator becomes the owner in the same transaction.
		var member models.BudgetMember
		if err := db.Where("budget_id = ? AND user_id = ?", budget.ID, user.ID).First(&member).Error; err != nil {
			t.Fatalf("expected owner membership to exist: %v", err)
		}
		if member.Role != string(models.RoleOwner) {
			t.Errorf("expected owner role, got %s", member.Role)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewAuthzService(db))
		user := testutil.CreateTestUser(t, db)

		budget, err := svc.CreateBudget(user.ID, "Defaults", "", "", "")
		testutil.AssertNoError(t, err)
		if budget.CurrencyCode != "USD" {
			t.Errorf("expected default currency USD, got %s", budget.CurrencyCode)
		}
		if budget.BudgetType != models.BudgetTypeStandard {
			t.Errorf("expected standard type, got %s", budget.BudgetType)
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewAuthzService(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, "", "USD", models.BudgetTypeStandard, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserBudgets(t *testing.T) {
	t.Run("returns_memberships_with_role", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewAuthzService(db))
		owner := testutil.CreateTestUser(t, db)
		viewer := testutil.CreateTestUser(t, db)

		own := testutil.CreateTestBudget(t, db, owner.ID)
		shared := testutil.CreateTestBudget(t, db, viewer.ID)
		testutil.CreateTestMember(t, db, shared.ID, owner.ID, models.RoleViewer)
		testutil.CreateTestBudget(t, db, viewer.ID) // not shared with owner

		budgets, err := svc.GetUserBudgets(owner.ID, "")
		testutil.AssertNoError(t, err)

		if len(budgets) != 2 {
			t.Fatalf("expected 2 budgets, got %d", len(budgets))
		}
		roles := map[string]string{}
		for _, b := range budgets {
			roles[b.ID] = b.UserRole
		}
		if roles[own.ID] != "owner" {
			t.Errorf("expected owner role on own budget, got %s", roles[own.ID])
		}
		if roles[shared.ID] != "viewer" {
			t.Errorf("expected viewer role on shared budget, got %s", roles[shared.ID])
		}
	})

	t.Run("search_filters_by_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewAuthzService(db))
		user := testutil.CreateTestUser(t, db)

		groceries, err := svc.CreateBudget(user.ID, "Groceries", "USD", models.BudgetTypeStandard, "")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateBudget(user.ID, "Vacation", "USD", models.BudgetTypeSaving, "")
		testutil.AssertNoError(t, err)

		budgets, err := svc.GetUserBudgets(user.ID, "Groc")
		testutil.AssertNoError(t, err)
		if len(budgets) != 1 || budgets[0].ID != groceries.ID {
			t.Errorf("expected only the Groceries budget, got %d results", len(budgets))
		}
	})

	t.Run("archived_excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewAuthzService(db))
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		archived := true
		_, err := svc.UpdateBudget(budget.ID, user.ID, BudgetUpdate{Archived: &archived})
		testutil.AssertNoError(t, err)

		budgets, err := svc.GetUserBudgets(user.ID, "")
		testutil.AssertNoError(t, err)
		if len(budgets) != 0 {
			t.Errorf("expected archived budget to be excluded, got %d", len(budgets))
		}
	})
}

func TestGetBudget(t *testing.T) {
	t.Run("viewer_may_read", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewAuthzService(db))
		owner := testutil.CreateTestUser(t, db)
		viewer := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)
		testutil.CreateTestMember(t, db, budget.ID, viewer.ID, models.RoleViewer)

		got, err := svc.GetBudget(budget.ID, viewer.ID)
		testutil.AssertNoError(t, err)
		if got.ID != budget.ID {
			t.Errorf("expected budget %s, got %s", budget.ID, got.ID)
		}
	})

	t.Run("non_member_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewAuthzService(db))
		owner := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)

		_, err := svc.GetBudget(budget.ID, stranger.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestUpdateBudget(t *testing.T) {
	t.Run("owner_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewAuthzService(db))
		owner := testutil.CreateTestUser(t, db)
		manager := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)
		testutil.CreateTestMember(t, db, budget.ID, manager.ID, models.RoleManager)

		name := "Renamed"
		_, err := svc.UpdateBudget(budget.ID, manager.ID, BudgetUpdate{Name: &name})
		testutil.AssertAppError(t, err, "FORBIDDEN")

		updated, err := svc.UpdateBudget(budget.ID, owner.ID, BudgetUpdate{Name: &name})
		testutil.AssertNoError(t, err)
		if updated.Name != "Renamed" {
			t.Errorf("expected name Renamed, got %s", updated.Name)
		}
	})
}

func TestDeleteBudget(t *testing.T) {
	t.Run("soft_deletes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewAuthzService(db))
		owner := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)

		testutil.AssertNoError(t, svc.DeleteBudget(budget.ID, owner.ID))

		_, err := svc.GetBudget(budget.ID, owner.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")

		// Row still present for recovery.
		var count int64
		db.Unscoped().Model(&models.Budget{}).Where("id = ?", budget.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected soft-deleted row to remain, got %d", count)
		}
	})
}

func TestGetBalance(t *testing.T) {
	t.Run("sums_by_kind", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewAuthzService(db))
		owner := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)
		income := testutil.CreateTestCategory(t, db, budget.ID, models.CategoryKindIncome)
		expense := testutil.CreateTestCategory(t, db, budget.ID, models.CategoryKindExpense)

		testutil.CreateTestEntry(t, db, budget.ID, income.ID, owner.ID, models.EntryKindIncome, 10000)
		testutil.CreateTestEntry(t, db, budget.ID, expense.ID, owner.ID, models.EntryKindExpense, 3500)
		testutil.CreateTestEntry(t, db, budget.ID, expense.ID, owner.ID, models.EntryKindExpense, 1500)

		balance, err := svc.GetBalance(budget.ID, owner.ID)
		testutil.AssertNoError(t, err)

		if balance.IncomeMinor != 10000 {
			t.Errorf("expected income 10000, got %d", balance.IncomeMinor)
		}
		if balance.ExpenseMinor != 5000 {
			t.Errorf("expected expense 5000, got %d", balance.ExpenseMinor)
		}
		if balance.NetMinor != 5000 {
			t.Errorf("expected net 5000, got %d", balance.NetMinor)
		}
	})

	t.Run("soft_deleted_entries_excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewAuthzService(db))
		owner := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)
		expense := testutil.CreateTestCategory(t, db, budget.ID, models.CategoryKindExpense)

		entry := testutil.CreateTestEntry(t, db, budget.ID, expense.ID, owner.ID, models.EntryKindExpense, 2000)
		if err := db.Delete(entry).Error; err != nil {
			t.Fatalf("failed to soft delete entry: %v", err)
		}

		balance, err := svc.GetBalance(budget.ID, owner.ID)
		testutil.AssertNoError(t, err)
		if balance.ExpenseMinor != 0 {
			t.Errorf("expected deleted entry to be excluded, got expense %d", balance.ExpenseMinor)
		}
	})
}
