package models

import "time"

// EntryKind represents whether an entry is money in or money out
type EntryKind string

const (
	EntryKindIncome  EntryKind = "income"
	EntryKindExpense EntryKind = "expense"
)

// Entry represents a single income or expense record in a budget.
// AmountMinor is in the smallest currency unit and always non-negative;
// the sign is carried by Kind. TransferID links the two entries a budget
// transfer creates.
type Entry struct {
	Base
	BudgetID     string    `gorm:"type:uuid;not null;index" json:"budget_id"`
	CategoryID   string    `gorm:"type:uuid;not null;index" json:"category_id"`
	Kind         EntryKind `gorm:"not null" json:"kind"`
	AmountMinor  int64     `gorm:"type:bigint;not null" json:"amount_minor"`
	CurrencyCode string    `gorm:"size:3;not null" json:"currency_code"`
	EntryDate    time.Time `gorm:"not null" json:"entry_date"`
	Description  string    `json:"description,omitempty"`
	Counterparty string    `json:"counterparty,omitempty"`
	CreatedBy    string    `gorm:"type:uuid;not null" json:"created_by"`
	UpdatedBy    *string   `gorm:"type:uuid" json:"updated_by,omitempty"`
	TransferID   *string   `gorm:"type:uuid;index" json:"transfer_id,omitempty"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
