package services

import (
	"testing"

	"splitledger/internal/models"
	"splitledger/internal/testutil"
)

func TestEnsureRole(t *testing.T) {
	// Every (actual, required) pair of the hierarchy. A role passes a floor
	// iff it is at least as privileged.
	cases := []struct {
		actual   models.Role
		required models.Role
		allowed  bool
	}{
		{models.RoleOwner, models.RoleOwner, true},
		{models.RoleOwner, models.RoleManager, true},
		{models.RoleOwner, models.RoleContributor, true},
		{models.RoleOwner, models.RoleViewer, true},
		{models.RoleManager, models.RoleOwner, false},
		{models.RoleManager, models.RoleManager, true},
		{models.RoleManager, models.RoleContributor, true},
		{models.RoleManager, models.RoleViewer, true},
		{models.RoleContributor, models.RoleOwner, false},
		{models.RoleContributor, models.RoleManager, false},
		{models.RoleContributor, models.RoleContributor, true},
		{models.RoleContributor, models.RoleViewer, true},
		{models.RoleViewer, models.RoleOwner, false},
		{models.RoleViewer, models.RoleManager, false},
		{models.RoleViewer, models.RoleContributor, false},
		{models.RoleViewer, models.RoleViewer, true},
	}

	for _, tc := range cases {
		name := string(tc.actual) + "_vs_" + string(tc.required)
		t.Run(name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			svc := NewAuthzService(db)
			owner := testutil.CreateTestUser(t, db)
			budget := testutil.CreateTestBudget(t, db, owner.ID)

			user := owner
			if tc.actual != models.RoleOwner {
				user = testutil.CreateTestUser(t, db)
				testutil.CreateTestMember(t, db, budget.ID, user.ID, tc.actual)
			}

			got, err := svc.EnsureRole(budget.ID, user.ID, tc.required)
			if tc.allowed {
				testutil.AssertNoError(t, err)
				if got != tc.actual {
					t.Errorf("expected returned role %s, got %s", tc.actual, got)
				}
			} else {
				testutil.AssertAppError(t, err, "FORBIDDEN")
			}
		})
	}

	t.Run("non_member_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuthzService(db)
		owner := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)

		_, err := svc.EnsureRole(budget.ID, stranger.ID, models.RoleViewer)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("membership_in_other_budget_does_not_leak", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuthzService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		budgetA := testutil.CreateTestBudget(t, db, owner.ID)
		budgetB := testutil.CreateTestBudget(t, db, other.ID)

		// other owns budgetB but has no role in budgetA
		_, err := svc.EnsureRole(budgetA.ID, other.ID, models.RoleViewer)
		testutil.AssertAppError(t, err, "FORBIDDEN")

		_, err = svc.EnsureRole(budgetB.ID, other.ID, models.RoleOwner)
		testutil.AssertNoError(t, err)
	})

	t.Run("corrupt_role_token_means_no_privilege", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuthzService(db)
		owner := testutil.CreateTestUser(t, db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)

		member := &models.BudgetMember{BudgetID: budget.ID, UserID: user.ID, Role: "superadmin"}
		if err := db.Create(member).Error; err != nil {
			t.Fatalf("failed to seed member: %v", err)
		}

		_, err := svc.EnsureRole(budget.ID, user.ID, models.RoleViewer)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})
}

func TestEnsureOwner(t *testing.T) {
	t.Run("owner_passes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuthzService(db)
		owner := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)

		testutil.AssertNoError(t, svc.EnsureOwner(budget.ID, owner.ID))
	})

	t.Run("manager_is_not_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuthzService(db)
		owner := testutil.CreateTestUser(t, db)
		manager := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)
		testutil.CreateTestMember(t, db, budget.ID, manager.ID, models.RoleManager)

		testutil.AssertAppError(t, svc.EnsureOwner(budget.ID, manager.ID), "FORBIDDEN")
	})

	t.Run("non_member_forbidden", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuthzService(db)
		owner := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID)

		testutil.AssertAppError(t, svc.EnsureOwner(budget.ID, stranger.ID), "FORBIDDEN")
	})
}
