package models

import "time"

// Todo is exclusively owned by its creator; OwnerID never changes after
// creation. Deleted is an explicit soft-delete flag rather than a
// gorm.DeletedAt column: the row stays queryable (shares on a deleted todo
// dangle until filtered) and every read path excludes deleted = true.
type Todo struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"type:varchar(100)" json:"category"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	Deleted     bool      `gorm:"not null;default:false" json:"-"`
	OwnerID     uint64    `gorm:"not null" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Owner  User         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Shares []SharedTodo `gorm:"foreignKey:TodoID" json:"shares,omitempty"`
}
