package services

import (
	"time"

	"splitledger/internal/models"
	"splitledger/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetUserIDByEmail(email string) (string, error)
	AttemptLogin(email, password string) (*models.User, error)
	UpdateProfile(userID string, name, avatar, bio, timezone, locale *string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// AuthzServicer is the authorization guard. Every budget-scoped service
// method calls exactly one of these before touching data. Both methods
// perform a single membership lookup against current state; results are
// never cached across calls.
type AuthzServicer interface {
	// EnsureRole succeeds iff the user is a member of the budget with a role
	// at least as privileged as required. Required is a floor: a viewer
	// requirement admits every role, a manager requirement admits only
	// managers and owners. Returns the caller's actual role.
	EnsureRole(budgetID, userID string, required models.Role) (models.Role, error)
	// EnsureOwner succeeds iff the user's role is exactly owner.
	EnsureOwner(budgetID, userID string) error
}

// MemberServicer defines the contract for budget membership management.
type MemberServicer interface {
	ListMembers(budgetID, actingUserID string) ([]models.BudgetMemberWithUser, error)
	InviteMember(budgetID, actingUserID, email, role string) (*models.BudgetMember, error)
	UpdateMemberRole(budgetID, actingUserID, memberUserID, role string) (*models.BudgetMember, error)
	RemoveMember(budgetID, actingUserID, memberUserID string) error
}

// BudgetWithRole is a budget joined with the requesting user's role in it.
type BudgetWithRole struct {
	models.Budget
	UserRole string `json:"user_role"`
}

// BudgetBalance aggregates the non-deleted entries of a budget.
type BudgetBalance struct {
	BudgetID     string `json:"budget_id"`
	IncomeMinor  int64  `json:"income_minor"`
	ExpenseMinor int64  `json:"expense_minor"`
	NetMinor     int64  `json:"net_minor"`
}

// BudgetUpdate holds optional budget fields; nil means "leave unchanged".
type BudgetUpdate struct {
	Name         *string
	Description  *string
	CurrencyCode *string
	BudgetType   *models.BudgetType
	Archived     *bool
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, name, currencyCode string, budgetType models.BudgetType, description string) (*models.Budget, error)
	GetUserBudgets(userID, search string) ([]BudgetWithRole, error)
	GetBudget(budgetID, userID string) (*models.Budget, error)
	UpdateBudget(budgetID, userID string, upd BudgetUpdate) (*models.Budget, error)
	DeleteBudget(budgetID, userID string) error
	GetBalance(budgetID, userID string) (*BudgetBalance, error)
}

// CategoryUpdate holds optional category fields; nil means "leave unchanged".
type CategoryUpdate struct {
	Name     *string
	Kind     *models.CategoryKind
	Color    *string
	Icon     *string
	IsHidden *bool
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	ListCategories(budgetID, userID string, kind *models.CategoryKind) ([]models.Category, error)
	CreateCategory(budgetID, userID, name string, kind models.CategoryKind, color, icon string, hidden bool) (*models.Category, error)
	UpdateCategory(budgetID, userID, categoryID string, upd CategoryUpdate) (*models.Category, error)
	DeleteCategory(budgetID, userID, categoryID string) error
}

// EntryFilter holds optional filter parameters for listing entries.
type EntryFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Kind       *models.EntryKind
	CategoryID *string
	MemberID   *string
	Search     string
	SortBy     string // "date" (default), "amount", "description"
	SortOrder  string // "desc" (default) or "asc"
}

// EntryUpdate holds optional entry fields; nil means "leave unchanged".
type EntryUpdate struct {
	CategoryID   *string
	Kind         *models.EntryKind
	AmountMinor  *int64
	EntryDate    *time.Time
	Description  *string
	Counterparty *string
}

// MonthlySummaryRow aggregates a budget's entries for one calendar month.
type MonthlySummaryRow struct {
	MonthStart   string `json:"month_start"`
	IncomeMinor  int64  `json:"income_minor"`
	ExpenseMinor int64  `json:"expense_minor"`
	NetMinor     int64  `json:"net_minor"`
}

// EntryServicer defines the contract for entry-related business logic.
type EntryServicer interface {
	ListEntries(budgetID, userID string, page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[models.Entry], error)
	CreateEntry(budgetID, userID, categoryID string, kind models.EntryKind, amountMinor int64, currencyCode string, entryDate time.Time, description, counterparty string) (*models.Entry, error)
	GetEntryByID(budgetID, entryID, userID string) (*models.Entry, error)
	UpdateEntry(budgetID, entryID, userID string, upd EntryUpdate) (*models.Entry, error)
	DeleteEntry(budgetID, entryID, userID string) error
	MonthlySummary(budgetID, userID string, from, to time.Time) ([]MonthlySummaryRow, error)
}

// CreateTransferInput carries the parameters of a budget-to-budget transfer.
type CreateTransferInput struct {
	FromBudgetID   string
	ToBudgetID     string
	AmountMinor    int64
	TransferDate   time.Time
	Note           string
	FromCategoryID string
	ToCategoryID   string
}

// TransferResult is the composite response of a successful transfer: the
// transfer record, both entry IDs, and both budget names for client display.
type TransferResult struct {
	Transfer       models.BudgetTransfer `json:"transfer"`
	FromEntryID    string                `json:"from_entry_id"`
	ToEntryID      string                `json:"to_entry_id"`
	FromBudgetName string                `json:"from_budget_name"`
	ToBudgetName   string                `json:"to_budget_name"`
}

// TransferServicer defines the contract for budget-to-budget transfers.
type TransferServicer interface {
	CreateTransfer(userID string, input CreateTransferInput) (*TransferResult, error)
	GetBudgetTransfers(budgetID, userID string) ([]models.BudgetTransfer, error)
}

// CommentServicer defines the contract for entry comments.
type CommentServicer interface {
	ListEntryComments(budgetID, entryID, userID string) ([]models.CommentWithUser, error)
	CreateComment(budgetID, entryID, userID, text string, mentionUserIDs []string) (*models.EntryComment, error)
	UpdateComment(commentID, userID, text string, mentionUserIDs []string) (*models.EntryComment, error)
	DeleteComment(commentID, userID string) error
}

// NotificationServicer defines the contract for in-app notifications.
type NotificationServicer interface {
	Create(userID, budgetID string, notifType models.NotificationType, title, message, linkURL, relatedID string) error
	ListForUser(userID string, limit int, unreadOnly bool) ([]models.Notification, error)
	UnreadCount(userID string) (int64, error)
	MarkRead(userID string, notificationIDs []string) error
	MarkAllRead(userID string) error
}

// CleanupServicer permanently removes soft-deleted entries and read
// notifications past the retention window.
type CleanupServicer interface {
	PurgeSoftDeletedEntries(olderThan time.Time) (int64, error)
	PurgeReadNotifications(olderThan time.Time) (int64, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
