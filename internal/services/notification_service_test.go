package services

import (
	"testing"

	"splitledger/internal/models"
	"splitledger/internal/testutil"
)

func TestNotifications(t *testing.T) {
	t.Run("list_and_unread_count", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		testutil.AssertNoError(t, svc.Create(user.ID, budget.ID, models.NotificationTypeMention, "a", "msg", "", ""))
		testutil.AssertNoError(t, svc.Create(user.ID, budget.ID, models.NotificationTypeTransfer, "b", "msg", "", ""))
		testutil.AssertNoError(t, svc.Create(other.ID, budget.ID, models.NotificationTypeMention, "c", "msg", "", ""))

		notifications, err := svc.ListForUser(user.ID, 0, false)
		testutil.AssertNoError(t, err)
		if len(notifications) != 2 {
			t.Errorf("expected 2 notifications, got %d", len(notifications))
		}

		count, err := svc.UnreadCount(user.ID)
		testutil.AssertNoError(t, err)
		if count != 2 {
			t.Errorf("expected unread count 2, got %d", count)
		}
	})

	t.Run("mark_read_scoped_to_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		testutil.AssertNoError(t, svc.Create(other.ID, budget.ID, models.NotificationTypeMention, "x", "msg", "", ""))

		var notification models.Notification
		if err := db.Where("user_id = ?", other.ID).First(&notification).Error; err != nil {
			t.Fatalf("failed to load notification: %v", err)
		}

		// user cannot mark other's notification as read
		testutil.AssertNoError(t, svc.MarkRead(user.ID, []string{notification.ID}))
		count, err := svc.UnreadCount(other.ID)
		testutil.AssertNoError(t, err)
		if count != 1 {
			t.Errorf("expected other's notification to stay unread, got count %d", count)
		}

		testutil.AssertNoError(t, svc.MarkRead(other.ID, []string{notification.ID}))
		count, err = svc.UnreadCount(other.ID)
		testutil.AssertNoError(t, err)
		if count != 0 {
			t.Errorf("expected unread count 0, got %d", count)
		}

		if err := db.Where("id = ?", notification.ID).First(&notification).Error; err != nil {
			t.Fatalf("failed to reload notification: %v", err)
		}
		if notification.ReadAt == nil {
			t.Error("expected read_at to be set")
		}
	})

	t.Run("mark_all_read", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		for i := 0; i < 3; i++ {
			testutil.AssertNoError(t, svc.Create(user.ID, budget.ID, models.NotificationTypeMention, "t", "msg", "", ""))
		}

		testutil.AssertNoError(t, svc.MarkAllRead(user.ID))
		count, err := svc.UnreadCount(user.ID)
		testutil.AssertNoError(t, err)
		if count != 0 {
			t.Errorf("expected unread count 0, got %d", count)
		}
	})

	t.Run("unread_only_filter", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewNotificationService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID)

		testutil.AssertNoError(t, svc.Create(user.ID, budget.ID, models.NotificationTypeMention, "read", "msg", "", ""))
		testutil.AssertNoError(t, svc.MarkAllRead(user.ID))
		testutil.AssertNoError(t, svc.Create(user.ID, budget.ID, models.NotificationTypeMention, "new", "msg", "", ""))

		unread, err := svc.ListForUser(user.ID, 0, true)
		testutil.AssertNoError(t, err)
		if len(unread) != 1 || unread[0].Title != "new" {
			t.Errorf("expected only the unread notification, got %d", len(unread))
		}
	})
}
