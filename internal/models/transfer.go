package models

import "time"

// BudgetTransfer is the intent and audit record of moving money between two
// budgets. Every committed transfer is paired with exactly two entries, one
// expense in the source budget and one income in the destination, created in
// the same transaction.
type BudgetTransfer struct {
	Base
	FromBudgetID string    `gorm:"type:uuid;not null;index" json:"from_budget_id"`
	ToBudgetID   string    `gorm:"type:uuid;not null;index" json:"to_budget_id"`
	AmountMinor  int64     `gorm:"type:bigint;not null" json:"amount_minor"`
	CurrencyCode string    `gorm:"size:3;not null" json:"currency_code"`
	TransferDate time.Time `gorm:"not null" json:"transfer_date"`
	Note         string    `json:"note,omitempty"`
	CreatedBy    string    `gorm:"type:uuid;not null" json:"created_by"`
}
