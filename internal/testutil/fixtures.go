package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"budgie/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestAccount creates the ledger account with a zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, "0")
}

// CreateTestAccountWithBalance creates the ledger account with the given balance.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, balance string) *models.Account {
	t.Helper()

	name := fmt.Sprintf("Test Account %d", nextID())
	account := &models.Account{
		Name:    &name,
		Balance: decimal.RequireFromString(balance),
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a titled, non-custom top-level category.
func CreateTestCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.Category {
	t.Helper()
	return CreateTestCategoryWithTitle(t, db, fmt.Sprintf("Category %d", nextID()), categoryType)
}

// CreateTestCategoryWithTitle creates a non-custom top-level category with the given title.
func CreateTestCategoryWithTitle(t *testing.T, db *gorm.DB, title string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Title: &title,
		Icon:  "tag",
		Type:  categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSubcategory creates a titled subcategory under parent and marks
// the parent as such.
func CreateTestSubcategory(t *testing.T, db *gorm.DB, parent *models.Category, title string) *models.Category {
	t.Helper()

	category := &models.Category{
		Title:    &title,
		Icon:     "tag",
		Type:     parent.Type,
		ParentID: &parent.ID,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test subcategory: %v", err)
	}
	if err := db.Model(parent).Update("is_parent", true).Error; err != nil {
		t.Fatalf("failed to mark parent category: %v", err)
	}
	return category
}

// CreateTestLog inserts a log directly, without touching the account balance.
func CreateTestLog(t *testing.T, db *gorm.DB, categoryID, amount string, timestamp time.Time) *models.Log {
	t.Helper()

	log := &models.Log{
		Timestamp:  timestamp.UTC(),
		Amount:     decimal.RequireFromString(amount),
		Notes:      fmt.Sprintf("log %d", nextID()),
		CategoryID: categoryID,
	}
	if err := db.Create(log).Error; err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	return log
}
