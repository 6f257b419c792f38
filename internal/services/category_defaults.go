package services

import (
	"gorm.io/gorm"

	apperrors "budgie/internal/errors"
	"budgie/internal/models"
)

type defaultCategory struct {
	title         string
	icon          string
	subcategories []string
}

var defaultExpenseCategories = []defaultCategory{
	{title: "Food and Beverage", icon: "fork.knife", subcategories: []string{
		"Food at Restaurant", "Snacks", "Ordering In", "Alcohol at Bar/Pub/Club", "Alcohol at Home",
	}},
	{title: "Bills and Utilities", icon: "doc.text", subcategories: []string{
		"Phone Bill", "Internet and DTH Bill", "Electricity Bill", "Society Maintenance", "Maid Salary",
		"Cook Salary", "Laundry Bill", "Alcohol at Home", "OTT Subscriptions",
		"Xbox Game Pass Subscription", "Apple Music Subscription",
	}},
	{title: "Transportation", icon: "car", subcategories: []string{
		"Taxi Fares", "Parking Fees", "Fuel", "Car Maintenance",
	}},
	{title: "Shopping", icon: "bag"},
	{title: "Entertainment", icon: "film"},
	{title: "Travel", icon: "airplane"},
	{title: "Health and Fitness", icon: "heart"},
	{title: "Loaned to Somebody", icon: "person.2"},
	{title: "Gifts and Donations", icon: "gift"},
	{title: "Investment", icon: "chart.line.uptrend.xyaxis"},
	{title: "Cash Withdrawal", icon: "banknote"},
	{title: "Birthday Expenses", icon: "birthday.cake"},
}

var defaultIncomeCategories = []defaultCategory{
	{title: "Salary", icon: "briefcase"},
	{title: "Gifts", icon: "gift"},
	{title: "Interest", icon: "percent", subcategories: []string{
		"Stock Dividends", "Capital Gains", "Saving Account Interest",
	}},
	{title: "Awards and Bonuses", icon: "rosette"},
	{title: "Reimbursement", icon: "arrow.uturn.left", subcategories: []string{
		"Corporate Reimbursements", "Personal Reimbursements",
	}},
}

// SeedDefaults installs the built-in categories on an empty store. It does
// nothing once any non-custom category exists and returns how many
// categories it created.
func (s *categoryService) SeedDefaults() (int, error) {
	created := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Where("is_custom = ?", false).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		if count > 0 {
			return nil
		}

		seed := func(defaults []defaultCategory, categoryType models.CategoryType) error {
			for _, d := range defaults {
				title := d.title
				parent := &models.Category{
					Title:    &title,
					Icon:     d.icon,
					Type:     categoryType,
					IsParent: len(d.subcategories) > 0,
				}
				if err := tx.Create(parent).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrPersistence, err)
				}
				created++

				for _, sub := range d.subcategories {
					subTitle := sub
					child := &models.Category{
						Title:    &subTitle,
						Icon:     d.icon,
						Type:     categoryType,
						ParentID: &parent.ID,
					}
					if err := tx.Create(child).Error; err != nil {
						return apperrors.Wrap(apperrors.ErrPersistence, err)
					}
					created++
				}
			}
			return nil
		}

		if err := seed(defaultExpenseCategories, models.CategoryTypeExpense); err != nil {
			return err
		}
		return seed(defaultIncomeCategories, models.CategoryTypeIncome)
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		s.log.Infow("seeded default categories", "count", created)
	}
	return created, nil
}
