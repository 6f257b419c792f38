package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "budgie/internal/errors"
	"budgie/internal/models"
)

// ledgerService handles log entries. Every mutation adjusts the account
// balance by the log's signed amount in the same database transaction.
type ledgerService struct {
	db             *gorm.DB
	accountService AccountServicer
	now            func() time.Time

	// mu serializes mutations so concurrent requests never interleave their
	// read-modify-write of the balance.
	mu sync.Mutex
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB, accountService AccountServicer) LedgerServicer {
	return &ledgerService{
		db:             db,
		accountService: accountService,
		now:            time.Now,
	}
}

// parseAmount reads a non-negative decimal amount from user input.
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "+") {
		return decimal.Zero, apperrors.ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInvalidAmount, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, apperrors.ErrInvalidAmount
	}
	return amount, nil
}

// validate checks input and returns the parsed amount and the timestamp to
// store, in UTC.
func (s *ledgerService) validate(input LogInput) (decimal.Decimal, time.Time, error) {
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	if strings.TrimSpace(input.CategoryID) == "" {
		return decimal.Zero, time.Time{}, apperrors.ErrMissingCategory
	}

	now := s.now()
	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = now
	}
	if timestamp.After(now) {
		return decimal.Zero, time.Time{}, apperrors.ErrFutureTimestamp
	}
	return amount, timestamp.UTC(), nil
}

// loggableCategory loads a category a log may point at. Parents only group
// subcategories and cannot carry logs.
func loggableCategory(tx *gorm.DB, id string) (*models.Category, error) {
	category, err := findCategory(tx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if category.IsParent {
		return nil, apperrors.ErrCategoryNotSelectable
	}
	return category, nil
}

// CreateLog records a new log and applies its signed amount to the balance.
func (s *ledgerService) CreateLog(input LogInput) (*models.Log, error) {
	amount, timestamp, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var log *models.Log
	err = s.db.Transaction(func(tx *gorm.DB) error {
		category, err := loggableCategory(tx, input.CategoryID)
		if err != nil {
			return err
		}

		log = &models.Log{
			Timestamp:          timestamp,
			Amount:             amount,
			Notes:              input.Notes,
			ExcludedFromReport: input.ExcludedFromReport,
			CategoryID:         category.ID,
		}
		if err := tx.Create(log).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		log.Category = category

		_, err = s.accountService.ApplyBalanceDelta(tx, models.SignedAmount(amount, category.Type))
		return err
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// GetLog retrieves a log with its category.
func (s *ledgerService) GetLog(id string) (*models.Log, error) {
	return findLog(s.db, id)
}

// UpdateLog replaces a log's fields. The balance is corrected by reversing
// the log's old effect (old amount under the old category's type) and
// applying the new one, so changing the category type moves the balance
// correctly. Nothing is written to the account when the effect is unchanged.
func (s *ledgerService) UpdateLog(id string, input LogInput) (*models.Log, error) {
	amount, timestamp, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var log *models.Log
	err = s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := findLog(tx, id)
		if err != nil {
			return err
		}
		category, err := loggableCategory(tx, input.CategoryID)
		if err != nil {
			return err
		}

		oldEffect := decimal.Zero
		if existing.Category != nil {
			oldEffect = models.SignedAmount(existing.Amount, existing.Category.Type)
		}
		newEffect := models.SignedAmount(amount, category.Type)

		existing.Timestamp = timestamp
		existing.Amount = amount
		existing.Notes = input.Notes
		existing.ExcludedFromReport = input.ExcludedFromReport
		existing.CategoryID = category.ID
		existing.Category = nil
		if err := tx.Omit(clause.Associations).Save(existing).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		existing.Category = category
		log = existing

		_, err = s.accountService.ApplyBalanceDelta(tx, newEffect.Sub(oldEffect))
		return err
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// DeleteLog removes a log and reverses its effect on the balance.
func (s *ledgerService) DeleteLog(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		log, err := findLog(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Delete(log).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		if log.Category == nil {
			return nil
		}

		_, err = s.accountService.ApplyBalanceDelta(tx, models.SignedAmount(log.Amount, log.Category.Type).Neg())
		return err
	})
}

func findLog(db *gorm.DB, id string) (*models.Log, error) {
	var log models.Log
	if err := db.Preload("Category").First(&log, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLogNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return &log, nil
}
