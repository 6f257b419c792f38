package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "budgie/internal/errors"
	"budgie/internal/models"
)

// accountService handles the single ledger account.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// SetupAccount creates the ledger account with a zero balance. Only one
// account may exist.
func (s *accountService) SetupAccount(name *string) (*models.Account, error) {
	account := &models.Account{Name: name, Balance: decimal.Zero}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		if count > 0 {
			return apperrors.ErrAccountExists
		}
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount returns the ledger account.
func (s *accountService) GetAccount() (*models.Account, error) {
	return findAccount(s.db)
}

// VerifyBalance recomputes the balance from the live logs and compares it
// with the cached running total.
func (s *accountService) VerifyBalance() (*BalanceCheck, error) {
	account, err := findAccount(s.db)
	if err != nil {
		return nil, err
	}

	var logs []models.Log
	if err := s.db.Preload("Category").Find(&logs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	computed := decimal.Zero
	for i := range logs {
		if logs[i].Category == nil {
			continue
		}
		computed = computed.Add(models.SignedAmount(logs[i].Amount, logs[i].Category.Type))
	}

	return &BalanceCheck{
		Cached:     account.Balance,
		Computed:   computed,
		Consistent: account.Balance.Equal(computed),
	}, nil
}

// ApplyBalanceDelta adds delta to the account balance using tx, so the change
// commits or rolls back with the caller's log mutation.
func (s *accountService) ApplyBalanceDelta(tx *gorm.DB, delta decimal.Decimal) (*models.Account, error) {
	account, err := findAccount(tx)
	if err != nil {
		return nil, err
	}
	if delta.IsZero() {
		return account, nil
	}

	account.Balance = account.Balance.Add(delta)
	if err := tx.Model(account).Update("balance", account.Balance).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return account, nil
}

func findAccount(db *gorm.DB) (*models.Account, error) {
	var account models.Account
	if err := db.Order("created_at ASC").First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return &account, nil
}
