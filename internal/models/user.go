package models

// User represents the user model in the database
type User struct {
	Base
	Email            string `gorm:"uniqueIndex;not null" json:"email"`
	Password         string `gorm:"not null" json:"-"`
	Name             string `json:"name"`
	Avatar           string `json:"avatar,omitempty"`
	Bio              string `json:"bio,omitempty"`
	Timezone         string `json:"timezone,omitempty"`
	Locale           string `json:"locale,omitempty"`
	IsActive         bool   `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string `gorm:"size:64" json:"-"`

	Memberships []BudgetMember `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
}
