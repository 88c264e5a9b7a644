package models

// BudgetType classifies what a budget is used for
type BudgetType string

const (
	BudgetTypeStandard BudgetType = "standard"
	BudgetTypeSaving   BudgetType = "saving"
	BudgetTypeDebt     BudgetType = "debt"
	BudgetTypeInvest   BudgetType = "invest"
	BudgetTypeSharing  BudgetType = "sharing"
)

// Budget represents a named ledger with a currency and a set of members.
// OwnerID records who created the budget; actual authority is always derived
// from the budget_members rows, never from this column.
type Budget struct {
	Base
	OwnerID      string     `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name         string     `gorm:"not null" json:"name"`
	CurrencyCode string     `gorm:"size:3;not null;default:'USD'" json:"currency_code"`
	BudgetType   BudgetType `gorm:"not null;default:'standard'" json:"budget_type"`
	Description  string     `json:"description,omitempty"`
	Archived     bool       `gorm:"default:false" json:"archived"`

	// Relationships
	Members    []BudgetMember `gorm:"foreignKey:BudgetID" json:"members,omitempty"`
	Categories []Category     `gorm:"foreignKey:BudgetID" json:"categories,omitempty"`
	Entries    []Entry        `gorm:"foreignKey:BudgetID" json:"entries,omitempty"`
}
