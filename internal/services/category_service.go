package services

import (
	"errors"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "budgie/internal/errors"
	"budgie/internal/logger"
	"budgie/internal/models"
	"budgie/internal/queue"
)

const (
	// referencedByLog matches categories used by at least one live log.
	referencedByLog = "EXISTS (SELECT 1 FROM logs WHERE logs.category_id = categories.id AND logs.deleted_at IS NULL)"
	// hasLiveChildren matches categories with at least one live subcategory.
	hasLiveChildren = "EXISTS (SELECT 1 FROM categories c WHERE c.parent_id = categories.id AND c.deleted_at IS NULL)"
)

// categoryService handles the two-level category hierarchy.
type categoryService struct {
	db    *gorm.DB
	loop  *queue.Loop
	delay time.Duration
	log   *zap.SugaredLogger
}

// NewCategoryService creates a new CategoryServicer. Selection stamps are
// posted to loop after delay.
func NewCategoryService(db *gorm.DB, loop *queue.Loop, delay time.Duration) CategoryServicer {
	return &categoryService{
		db:    db,
		loop:  loop,
		delay: delay,
		log:   logger.Named("categories"),
	}
}

// List returns the top-level categories with their subcategories, optionally
// restricted to one type. Custom categories come first, then the most
// recently used, then creation order.
func (s *categoryService) List(categoryType *models.CategoryType) ([]models.Category, error) {
	q := s.db.Where("parent_id IS NULL").
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("id ASC")
	if categoryType != nil {
		q = q.Where("type = ?", *categoryType)
	}

	var categories []models.Category
	if err := q.Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	sortCategories(categories)
	for i := range categories {
		sortCategories(categories[i].Subcategories)
	}
	return categories, nil
}

// sortCategories orders in place: custom first, then by last use (never
// used last). Equal keys keep their id order.
func sortCategories(categories []models.Category) {
	slices.SortStableFunc(categories, func(a, b models.Category) int {
		if a.IsCustom != b.IsCustom {
			if a.IsCustom {
				return -1
			}
			return 1
		}
		switch {
		case a.LastLogDate == nil && b.LastLogDate == nil:
			return 0
		case a.LastLogDate == nil:
			return 1
		case b.LastLogDate == nil:
			return -1
		}
		return b.LastLogDate.Compare(*a.LastLogDate)
	})
}

// GetCategoryByID retrieves a category with its subcategories.
func (s *categoryService) GetCategoryByID(id string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Preload("Subcategories").First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return &category, nil
}

// AddTopLevel creates an empty custom top-level category.
func (s *categoryService) AddTopLevel(categoryType models.CategoryType) (*models.Category, error) {
	if !categoryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}

	category := &models.Category{Type: categoryType, IsCustom: true}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return category, nil
}

// AddSubcategory creates an empty custom subcategory under parentID and marks
// the parent. An empty categoryType inherits the parent's type.
func (s *categoryService) AddSubcategory(parentID string, categoryType models.CategoryType) (*models.Category, error) {
	if categoryType != "" && !categoryType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}

	var category *models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		parent, err := findCategory(tx, parentID)
		if err != nil {
			return err
		}
		if parent.ParentID != nil {
			return apperrors.ErrNestedSubcategory
		}
		if categoryType == "" {
			categoryType = parent.Type
		}
		if categoryType != parent.Type {
			return apperrors.ErrCategoryTypeMismatch
		}

		category = &models.Category{Type: categoryType, IsCustom: true, ParentID: &parent.ID}
		if err := tx.Create(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		if !parent.IsParent {
			if err := tx.Model(parent).Update("is_parent", true).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrPersistence, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Rename sets a category's title. A blank title clears it, leaving the
// category empty.
func (s *categoryService) Rename(id, title string) (*models.Category, error) {
	category, err := findCategory(s.db, id)
	if err != nil {
		return nil, err
	}

	var value *string
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		value = &trimmed
	}
	if err := s.db.Model(category).Update("title", value).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	category.Title = value
	return category, nil
}

// Delete removes a category. Parents and categories used by logs cannot be
// deleted. Removing the last subcategory clears the parent's flag.
func (s *categoryService) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		category, err := findCategory(tx, id)
		if err != nil {
			return err
		}

		var children int64
		if err := tx.Model(&models.Category{}).Where("parent_id = ?", category.ID).Count(&children).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		if category.IsParent || children > 0 {
			return apperrors.ErrCategoryHasChildren
		}

		var used int64
		if err := tx.Model(&models.Log{}).Where("category_id = ?", category.ID).Count(&used).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		if used > 0 {
			return apperrors.ErrCategoryInUse
		}

		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		if category.ParentID == nil {
			return nil
		}

		if err := tx.Model(&models.Category{}).Where("parent_id = ?", *category.ParentID).Count(&children).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		if children == 0 {
			if err := tx.Model(&models.Category{}).Where("id = ?", *category.ParentID).Update("is_parent", false).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrPersistence, err)
			}
		}
		return nil
	})
}

// CleanupOnExit removes the empty custom categories left behind by the
// management screen. Children of a removed parent are promoted to top level
// first and removed with it when they are empty too. Categories still used by
// logs are kept. Running it twice changes nothing the second time.
func (s *categoryService) CleanupOnExit() (*CleanupResult, error) {
	result := &CleanupResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		emptyTopLevel := func() *gorm.DB {
			return tx.Model(&models.Category{}).
				Where("parent_id IS NULL AND is_custom = ? AND title IS NULL", true).
				Where("NOT " + referencedByLog)
		}

		promote := tx.Model(&models.Category{}).
			Where("parent_id IN (?)", emptyTopLevel().Select("id")).
			Update("parent_id", nil)
		if promote.Error != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, promote.Error)
		}
		result.Promoted = promote.RowsAffected

		topLevel := emptyTopLevel().Delete(&models.Category{})
		if topLevel.Error != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, topLevel.Error)
		}
		result.DeletedTopLevel = topLevel.RowsAffected

		subcategories := tx.Where("parent_id IS NOT NULL AND is_custom = ? AND title IS NULL", true).
			Where("NOT " + referencedByLog).
			Delete(&models.Category{})
		if subcategories.Error != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, subcategories.Error)
		}
		result.DeletedSubcategories = subcategories.RowsAffected

		cleared := tx.Model(&models.Category{}).
			Where("is_parent = ?", true).
			Where("NOT "+hasLiveChildren).
			Update("is_parent", false)
		if cleared.Error != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, cleared.Error)
		}
		result.ClearedParents = cleared.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("category cleanup finished",
		"deleted_top_level", result.DeletedTopLevel,
		"deleted_subcategories", result.DeletedSubcategories,
		"promoted", result.Promoted,
		"cleared_parents", result.ClearedParents,
	)
	return result, nil
}

// Select picks a category for the log being edited. The returned task stamps
// the category and its parent as just used once the delay elapses; cancel
// it to drop the stamp.
func (s *categoryService) Select(id string) (*models.Category, *queue.Task, error) {
	category, err := findCategory(s.db, id)
	if err != nil {
		return nil, nil, err
	}
	if category.IsParent {
		return nil, nil, apperrors.ErrCategoryNotSelectable
	}

	ids := []string{category.ID}
	if category.ParentID != nil {
		ids = append(ids, *category.ParentID)
	}
	task := s.loop.After(s.delay, func() {
		s.stampLastLogDate(ids)
	})
	return category, task, nil
}

func (s *categoryService) stampLastLogDate(ids []string) {
	now := time.Now().UTC()
	err := s.db.Model(&models.Category{}).Where("id IN ?", ids).Update("last_log_date", now).Error
	if err != nil {
		s.log.Errorw("failed to stamp category last log date", "error", err, "category_ids", ids)
	}
}

func findCategory(db *gorm.DB, id string) (*models.Category, error) {
	var category models.Category
	if err := db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return &category, nil
}
