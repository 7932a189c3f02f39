package models

import "time"

// SharedTodo grants a non-owner read access to a todo, and edit access when
// CanEdit is set. At most one row exists per (todo, user); re-sharing
// updates CanEdit in place. A grant never confers delete or re-share rights.
type SharedTodo struct {
	TodoID   uint64    `gorm:"primarykey" json:"todo_id"`
	UserID   uint64    `gorm:"primarykey" json:"user_id"`
	CanEdit  bool      `gorm:"not null;default:false" json:"can_edit"`
	SharedAt time.Time `json:"shared_at"`

	// Relations
	Todo Todo `gorm:"foreignKey:TodoID" json:"todo,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
