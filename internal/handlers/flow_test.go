package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"budgie/internal/middleware"
	"budgie/internal/models"
	"budgie/internal/queue"
	"budgie/internal/services"
	"budgie/internal/testutil"
)

// testApp holds the full application stack for end-to-end flows.
type testApp struct {
	DB         *gorm.DB
	Loop       *queue.Loop
	Router     *gin.Engine
	Categories *CategoryHandler
}

// setupApp wires real services over an isolated in-memory SQLite database.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	return setupAppWithDelay(t, 0)
}

// setupAppWithDelay is setupApp with a non-zero selection stamp delay.
func setupAppWithDelay(t *testing.T, selectionDelay time.Duration) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	loop := queue.New(0)
	loop.Start()
	t.Cleanup(func() {
		loop.Stop()
		testutil.TeardownTestDB(t, db)
	})

	auditService := services.NewAuditService(db)
	accountService := services.NewAccountService(db)
	categoryService := services.NewCategoryService(db, loop, selectionDelay)
	ledgerService := services.NewLedgerService(db, accountService)
	viewService := services.NewViewService(db, time.UTC)

	accountHandler := NewAccountHandler(accountService, auditService)
	categoryHandler := NewCategoryHandler(categoryService, auditService)
	logHandler := NewLogHandler(ledgerService, viewService, auditService)
	auditHandler := NewAuditHandler(auditService)

	router := gin.New()
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")
	v1.POST("/account", accountHandler.SetupAccount)
	v1.GET("/account", accountHandler.GetAccount)
	v1.GET("/account/verify", accountHandler.VerifyBalance)

	categories := v1.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.POST("/cleanup", categoryHandler.CleanupCategories)
	categories.PUT("/:id", categoryHandler.RenameCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.POST("/:id/subcategories", categoryHandler.CreateSubcategory)
	categories.POST("/:id/select", categoryHandler.SelectCategory)

	logs := v1.Group("/logs")
	logs.POST("", logHandler.CreateLog)
	logs.GET("", logHandler.ListLogs)
	logs.GET("/days", logHandler.ListDays)
	logs.PUT("/:id", logHandler.UpdateLog)
	logs.DELETE("/:id", logHandler.DeleteLog)

	v1.GET("/audit", auditHandler.ListAuditLogs)

	return &testApp{DB: db, Loop: loop, Router: router, Categories: categoryHandler}
}

func (app *testApp) request(t *testing.T, method, path, body string, want int) map[string]interface{} {
	t.Helper()
	rec := doRequest(app.Router, method, path, body)
	if rec.Code != want {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, path, want, rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}

func (app *testApp) balance(t *testing.T) string {
	t.Helper()
	result := app.request(t, "GET", "/api/v1/account", "", http.StatusOK)
	return result["account"].(map[string]interface{})["balance"].(string)
}

// createCategory adds a titled top-level category and returns its ID.
func (app *testApp) createCategory(t *testing.T, categoryType, title string) string {
	t.Helper()
	result := app.request(t, "POST", "/api/v1/categories", fmt.Sprintf(`{"type":%q}`, categoryType), http.StatusCreated)
	id := result["category"].(map[string]interface{})["id"].(string)
	app.request(t, "PUT", "/api/v1/categories/"+id, fmt.Sprintf(`{"title":%q}`, title), http.StatusOK)
	return id
}

func (app *testApp) createLog(t *testing.T, amount, categoryID, timestamp string) string {
	t.Helper()
	body := fmt.Sprintf(`{"amount":%q,"category_id":%q,"timestamp":%q}`, amount, categoryID, timestamp)
	result := app.request(t, "POST", "/api/v1/logs", body, http.StatusCreated)
	return result["log"].(map[string]interface{})["id"].(string)
}

func TestFlow_ExpenseLifecycle(t *testing.T) {
	app := setupApp(t)
	app.request(t, "POST", "/api/v1/account", `{"name":"Wallet"}`, http.StatusCreated)

	food := app.createCategory(t, "expense", "Food")
	logID := app.createLog(t, "100", food, "2024-03-10T12:00:00Z")
	if got := app.balance(t); got != "-100" {
		t.Fatalf("expected -100 after expense, got %s", got)
	}

	app.request(t, "PUT", "/api/v1/logs/"+logID,
		fmt.Sprintf(`{"amount":"150","category_id":%q,"timestamp":"2024-03-10T12:00:00Z"}`, food), http.StatusOK)
	if got := app.balance(t); got != "-150" {
		t.Fatalf("expected -150 after update, got %s", got)
	}

	app.request(t, "DELETE", "/api/v1/logs/"+logID, "", http.StatusOK)
	if got := app.balance(t); got != "0" {
		t.Fatalf("expected 0 after delete, got %s", got)
	}

	check := app.request(t, "GET", "/api/v1/account/verify", "", http.StatusOK)["balance"].(map[string]interface{})
	if check["consistent"] != true {
		t.Errorf("expected consistent balance, got %v", check)
	}

	audit := app.request(t, "GET", "/api/v1/audit?page_size=100", "", http.StatusOK)
	// setup, create category, rename, create log, update log, delete log
	if audit["total_items"] != float64(6) {
		t.Errorf("expected 6 audit entries, got %v", audit["total_items"])
	}
}

func TestFlow_DayTotals(t *testing.T) {
	app := setupApp(t)
	app.request(t, "POST", "/api/v1/account", `{}`, http.StatusCreated)

	salary := app.createCategory(t, "income", "Salary")
	food := app.createCategory(t, "expense", "Food")
	app.createLog(t, "50", salary, "2024-03-10T09:00:00Z")
	app.createLog(t, "20", food, "2024-03-10T18:00:00Z")
	app.createLog(t, "7.5", food, "2024-02-28T18:00:00Z")

	if got := app.balance(t); got != "22.5" {
		t.Fatalf("expected 22.5, got %s", got)
	}

	result := app.request(t, "GET", "/api/v1/logs/days?month=2024-03", "", http.StatusOK)
	days := result["days"].([]interface{})
	if len(days) != 1 {
		t.Fatalf("expected 1 day in March, got %d", len(days))
	}
	day := days[0].(map[string]interface{})
	if day["date"] != "2024-03-10" || day["total"] != "+30" {
		t.Errorf("expected 2024-03-10 +30, got %v %v", day["date"], day["total"])
	}

	result = app.request(t, "GET", "/api/v1/logs?month=2024-03&search=FOOD", "", http.StatusOK)
	if logs := result["logs"].([]interface{}); len(logs) != 2 {
		t.Errorf("expected search to span months and find 2 food logs, got %d", len(logs))
	}

	result = app.request(t, "GET", "/api/v1/logs?month=2024-03&search=%20", "", http.StatusOK)
	if logs := result["logs"].([]interface{}); len(logs) != 2 {
		t.Errorf("expected blank search to fall back to the month, got %d logs", len(logs))
	}
}

func TestFlow_CategoryManagement(t *testing.T) {
	app := setupApp(t)
	app.request(t, "POST", "/api/v1/account", `{}`, http.StatusCreated)

	foodBev := app.createCategory(t, "expense", "Food Bev")
	result := app.request(t, "POST", "/api/v1/categories/"+foodBev+"/subcategories", "", http.StatusCreated)
	snacks := result["category"].(map[string]interface{})["id"].(string)
	app.request(t, "PUT", "/api/v1/categories/"+snacks, `{"title":"Snacks"}`, http.StatusOK)

	// An abandoned empty category is dropped by cleanup.
	app.request(t, "POST", "/api/v1/categories", `{"type":"expense"}`, http.StatusCreated)

	list := app.request(t, "GET", "/api/v1/categories?type=expense", "", http.StatusOK)["categories"].([]interface{})
	if len(list) != 2 {
		t.Fatalf("expected 2 top-level categories before cleanup, got %d", len(list))
	}

	result = app.request(t, "POST", "/api/v1/categories/cleanup", "", http.StatusOK)
	if result["cleanup"].(map[string]interface{})["deleted_top_level"] != float64(1) {
		t.Errorf("expected one empty category removed, got %v", result["cleanup"])
	}

	app.request(t, "POST", "/api/v1/categories/"+foodBev+"/select", "", http.StatusConflict)
	app.request(t, "POST", "/api/v1/categories/"+snacks+"/select", "", http.StatusOK)
	app.Loop.Flush()

	list = app.request(t, "GET", "/api/v1/categories?type=expense", "", http.StatusOK)["categories"].([]interface{})
	if len(list) != 1 {
		t.Fatalf("expected 1 top-level category after cleanup, got %d", len(list))
	}
	parent := list[0].(map[string]interface{})
	if parent["is_parent"] != true || parent["last_log_date"] == nil {
		t.Errorf("expected stamped parent, got %v", parent)
	}

	app.request(t, "DELETE", "/api/v1/categories/"+foodBev, "", http.StatusConflict)
	app.request(t, "DELETE", "/api/v1/categories/"+snacks, "", http.StatusOK)

	list = app.request(t, "GET", "/api/v1/categories?type=expense", "", http.StatusOK)["categories"].([]interface{})
	if list[0].(map[string]interface{})["is_parent"] != false {
		t.Error("expected parent flag cleared after deleting the last subcategory")
	}
}

func TestFlow_QuickReselectStampsBoth(t *testing.T) {
	app := setupAppWithDelay(t, 100*time.Millisecond)
	app.request(t, "POST", "/api/v1/account", `{}`, http.StatusCreated)

	food := app.createCategory(t, "expense", "Food")
	rent := app.createCategory(t, "expense", "Rent")

	app.request(t, "POST", "/api/v1/categories/"+food+"/select", "", http.StatusOK)
	app.request(t, "POST", "/api/v1/categories/"+rent+"/select", "", http.StatusOK)

	time.Sleep(400 * time.Millisecond)
	app.Loop.Flush()

	for _, id := range []string{food, rent} {
		var category models.Category
		if err := app.DB.First(&category, "id = ?", id).Error; err != nil {
			t.Fatalf("failed to reload category: %v", err)
		}
		if category.LastLogDate == nil {
			t.Errorf("expected category %s to be stamped", id)
		}
	}
}

func TestFlow_CloseDropsPendingStamps(t *testing.T) {
	app := setupAppWithDelay(t, time.Hour)
	app.request(t, "POST", "/api/v1/account", `{}`, http.StatusCreated)

	food := app.createCategory(t, "expense", "Food")
	app.request(t, "POST", "/api/v1/categories/"+food+"/select", "", http.StatusOK)
	app.Categories.Close()
	app.Loop.Flush()

	var category models.Category
	if err := app.DB.First(&category, "id = ?", food).Error; err != nil {
		t.Fatalf("failed to reload category: %v", err)
	}
	if category.LastLogDate != nil {
		t.Error("expected no stamp after Close")
	}
}

func TestFlow_RequestIDHeader(t *testing.T) {
	app := setupApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/account", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before setup, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request ID header")
	}
}
