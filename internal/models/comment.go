package models

import "time"

// EntryComment is a comment left by a budget member on an entry
type EntryComment struct {
	Base
	EntryID     string `gorm:"type:uuid;not null;index" json:"entry_id"`
	UserID      string `gorm:"type:uuid;not null" json:"user_id"`
	CommentText string `gorm:"not null" json:"comment_text"`

	// Relationships
	Mentions []CommentMention `gorm:"foreignKey:CommentID" json:"mentions,omitempty"`
}

// CommentMention records an @mention of a budget member inside a comment
type CommentMention struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	CommentID       string    `gorm:"type:uuid;not null;index" json:"comment_id"`
	MentionedUserID string    `gorm:"type:uuid;not null" json:"mentioned_user_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// CommentWithUser is a comment joined with author display fields
type CommentWithUser struct {
	EntryComment
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	Avatar    string `json:"avatar,omitempty"`
}
