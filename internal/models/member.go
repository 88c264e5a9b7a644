package models

import "time"

// BudgetMember maps a (budget, user) pair to a role. The composite primary
// key guarantees exactly one role per pair; upserts replace the role in place.
// The role column holds one of the four lowercase tokens; use ParseRole before
// acting on it.
type BudgetMember struct {
	BudgetID  string    `gorm:"type:uuid;primaryKey" json:"budget_id"`
	UserID    string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role      string    `gorm:"not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BudgetMemberWithUser is a membership row joined with user display fields
// for the member list endpoint.
type BudgetMemberWithUser struct {
	BudgetID  string `json:"budget_id"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	Avatar    string `json:"avatar,omitempty"`
}
