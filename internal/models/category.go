package models

import "time"

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category labels logs. Categories nest at most one level: a top-level
// category with at least one subcategory is a parent (IsParent), and a
// category with a ParentID is a subcategory. A nil Title marks an empty
// category that the management cleanup removes.
type Category struct {
	Base
	Title       *string      `json:"title"`
	Icon        string       `json:"icon"`
	Type        CategoryType `gorm:"not null;index" json:"type"`
	IsCustom    bool         `gorm:"not null;default:false" json:"is_custom"`
	IsParent    bool         `gorm:"not null;default:false" json:"is_parent"`
	LastLogDate *time.Time   `json:"last_log_date,omitempty"`
	ParentID    *string      `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	// Relationships
	Parent        *Category  `gorm:"foreignKey:ParentID" json:"-"`
	Subcategories []Category `gorm:"foreignKey:ParentID" json:"subcategories,omitempty"`
}

// IsEmpty reports whether the category has no title.
func (c *Category) IsEmpty() bool {
	return c.Title == nil
}

// IsSubcategory reports whether the category belongs to a parent.
func (c *Category) IsSubcategory() bool {
	return c.ParentID != nil
}

// DisplayTitle returns the title or an empty string.
func (c *Category) DisplayTitle() string {
	if c.Title == nil {
		return ""
	}
	return *c.Title
}
