package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"splitledger/internal/config"
	"splitledger/internal/handlers"
	"splitledger/internal/logger"
	"splitledger/internal/middleware"
	"splitledger/internal/models"
	"splitledger/internal/services"
	"splitledger/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:integration%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Budget{},
		&models.BudgetMember{},
		&models.Category{},
		&models.Entry{},
		&models.BudgetTransfer{},
		&models.EntryComment{},
		&models.CommentMention{},
		&models.Notification{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	tokens := middleware.NewTokenManager(&config.Config{
		JWTSecret:        "integration-test-secret",
		JWTExpirationDur: time.Hour,
	})

	// Services
	authzService := services.NewAuthzService(db)
	userService := services.NewUserService(db)
	notificationService := services.NewNotificationService(db)
	auditService := services.NewAuditService(db)
	budgetService := services.NewBudgetService(db, authzService)
	memberService := services.NewMemberService(db, authzService, userService, notificationService)
	categoryService := services.NewCategoryService(db, authzService)
	entryService := services.NewEntryService(db, authzService)
	transferService := services.NewTransferService(db, authzService)
	commentService := services.NewCommentService(db, authzService, notificationService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, tokens)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	memberHandler := handlers.NewMemberHandler(memberService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	entryHandler := handlers.NewEntryHandler(entryService)
	transferHandler := handlers.NewTransferHandler(transferService, auditService)
	commentHandler := handlers.NewCommentHandler(commentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := v1.Group("/")
	protected.Use(tokens.Middleware())

	protected.GET("/profile", authHandler.Me)
	protected.PUT("/profile", authHandler.UpdateProfile)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/:id/balance", budgetHandler.GetBalance)

	budgets.GET("/:id/members", memberHandler.ListMembers)
	budgets.POST("/:id/members", memberHandler.InviteMember)
	budgets.PUT("/:id/members/:userId", memberHandler.UpdateMemberRole)
	budgets.DELETE("/:id/members/:userId", memberHandler.RemoveMember)

	budgets.GET("/:id/categories", categoryHandler.ListCategories)
	budgets.POST("/:id/categories", categoryHandler.CreateCategory)
	budgets.PUT("/:id/categories/:categoryId", categoryHandler.UpdateCategory)
	budgets.DELETE("/:id/categories/:categoryId", categoryHandler.DeleteCategory)

	budgets.GET("/:id/entries", entryHandler.ListEntries)
	budgets.POST("/:id/entries", entryHandler.CreateEntry)
	budgets.GET("/:id/summary/monthly", entryHandler.MonthlySummary)
	budgets.GET("/:id/entries/:entryId", entryHandler.GetEntry)
	budgets.PUT("/:id/entries/:entryId", entryHandler.UpdateEntry)
	budgets.DELETE("/:id/entries/:entryId", entryHandler.DeleteEntry)

	protected.POST("/transfers", transferHandler.CreateTransfer)
	budgets.GET("/:id/transfers", transferHandler.ListBudgetTransfers)

	budgets.GET("/:id/entries/:entryId/comments", commentHandler.ListComments)
	budgets.POST("/:id/entries/:entryId/comments", commentHandler.CreateComment)
	protected.PUT("/comments/:commentId", commentHandler.UpdateComment)
	protected.DELETE("/comments/:commentId", commentHandler.DeleteComment)

	protected.GET("/notifications", notificationHandler.ListNotifications)
	protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	protected.POST("/notifications/mark-read", notificationHandler.MarkRead)
	protected.POST("/notifications/mark-all-read", notificationHandler.MarkAllRead)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"name":"Test User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string), result["refresh_token"].(string)
}

// createBudget creates a budget and returns its ID.
func (app *testApp) createBudget(t *testing.T, token, name, currency string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"currency_code":%q}`, name, currency)
	rec := app.request("POST", "/api/v1/budgets", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["budget"].(map[string]interface{})["id"].(string)
}

// createCategory creates a category in the budget and returns its ID.
func (app *testApp) createCategory(t *testing.T, token, budgetID, name, kind string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"kind":%q}`, name, kind)
	rec := app.request("POST", "/api/v1/budgets/"+budgetID+"/categories", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["category"].(map[string]interface{})["id"].(string)
}

// createEntry records an entry and returns its ID.
func (app *testApp) createEntry(t *testing.T, token, budgetID, categoryID, kind string, amountMinor int64) string {
	t.Helper()
	body := fmt.Sprintf(`{"category_id":%q,"kind":%q,"amount_minor":%d}`, categoryID, kind, amountMinor)
	rec := app.request("POST", "/api/v1/budgets/"+budgetID+"/entries", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create entry failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["entry"].(map[string]interface{})["id"].(string)
}

// inviteMember adds a registered user to the budget with the given role.
func (app *testApp) inviteMember(t *testing.T, token, budgetID, email, role string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"role":%q}`, email, role)
	rec := app.request("POST", "/api/v1/budgets/"+budgetID+"/members", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("invite member failed: %d %s", rec.Code, rec.Body.String())
	}
}
