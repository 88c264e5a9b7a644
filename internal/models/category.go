package models

// CategoryKind represents the kind of entries a category groups
type CategoryKind string

const (
	CategoryKindIncome  CategoryKind = "income"
	CategoryKindExpense CategoryKind = "expense"
)

// Category represents an entry category scoped to a single budget
type Category struct {
	Base
	BudgetID string       `gorm:"type:uuid;not null;index" json:"budget_id"`
	Name     string       `gorm:"not null" json:"name"`
	Kind     CategoryKind `gorm:"not null" json:"kind"`
	IsHidden bool         `gorm:"default:false" json:"is_hidden"`
	Color    string       `json:"color,omitempty"`
	Icon     string       `json:"icon,omitempty"`

	// Relationships
	Entries []Entry `gorm:"foreignKey:CategoryID" json:"entries,omitempty"`
}
