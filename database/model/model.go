// Package model defines the persisted entities of copycheck.
package model

import "time"

// Action types recorded with each history entry. The Japanese values are
// kept as stored by the production data set.
const (
	ActionGeneration   = "テキスト生成"
	ActionProofreading = "テキスト校閲"
)

// User is an account row. Rows are created on registration and never
// mutated or deleted.
type User struct {
	Id           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HistoryEntry is one immutable record of a completed generation or
// proofreading action, owned by exactly one user.
type HistoryEntry struct {
	Id         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId     int       `json:"userId" gorm:"index;not null"`
	User       *User     `json:"-" gorm:"foreignKey:UserId"`
	ActionType string    `json:"actionType" gorm:"not null"`
	Content    string    `json:"content"`
	Result     string    `json:"result"`
	FileName   string    `json:"fileName"` // empty when the input was typed, not uploaded
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName keeps the original table name instead of gorm's pluralization.
func (HistoryEntry) TableName() string {
	return "history"
}
