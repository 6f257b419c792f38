package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgie/internal/models"
	"budgie/internal/pagination"
	"budgie/internal/projection"
	"budgie/internal/queue"
)

// BalanceCheck compares the cached account balance with the signed sum of
// all live logs.
type BalanceCheck struct {
	Cached     decimal.Decimal `json:"cached"`
	Computed   decimal.Decimal `json:"computed"`
	Consistent bool            `json:"consistent"`
}

// AccountServicer defines the contract for the single ledger account.
type AccountServicer interface {
	SetupAccount(name *string) (*models.Account, error)
	GetAccount() (*models.Account, error)
	VerifyBalance() (*BalanceCheck, error)
	ApplyBalanceDelta(tx *gorm.DB, delta decimal.Decimal) (*models.Account, error)
}

// CleanupResult reports what a category cleanup pass changed.
type CleanupResult struct {
	DeletedTopLevel      int64 `json:"deleted_top_level"`
	DeletedSubcategories int64 `json:"deleted_subcategories"`
	Promoted             int64 `json:"promoted"`
	ClearedParents       int64 `json:"cleared_parents"`
}

// CategoryServicer defines the contract for the category hierarchy.
type CategoryServicer interface {
	List(categoryType *models.CategoryType) ([]models.Category, error)
	GetCategoryByID(id string) (*models.Category, error)
	AddTopLevel(categoryType models.CategoryType) (*models.Category, error)
	AddSubcategory(parentID string, categoryType models.CategoryType) (*models.Category, error)
	Rename(id, title string) (*models.Category, error)
	Delete(id string) error
	CleanupOnExit() (*CleanupResult, error)
	Select(id string) (*models.Category, *queue.Task, error)
	SeedDefaults() (int, error)
}

// LogInput carries the editable fields of a log. Amount is the raw decimal
// text entered by the user; a zero Timestamp means now.
type LogInput struct {
	Amount             string
	CategoryID         string
	Timestamp          time.Time
	Notes              string
	ExcludedFromReport bool
}

// LedgerServicer defines the contract for log entries and their effect on
// the account balance.
type LedgerServicer interface {
	CreateLog(input LogInput) (*models.Log, error)
	UpdateLog(id string, input LogInput) (*models.Log, error)
	DeleteLog(id string) error
	GetLog(id string) (*models.Log, error)
}

// ViewServicer defines the read-only projections of the ledger.
type ViewServicer interface {
	ListLogs(filter projection.Filter) ([]*models.Log, error)
	Days(filter projection.Filter) ([]projection.DayGroup, error)
	Location() *time.Location
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(action, resourceType, resourceID, ipAddress string, changes map[string]any)
	List(page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
