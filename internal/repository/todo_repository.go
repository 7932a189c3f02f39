package repository

import (
	"time"

	"github.com/mtakagi/todo-share-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTodoRepository is a GORM implementation of TodoRepository
type GormTodoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &GormTodoRepository{db: db}
}

// Create creates a new todo
func (r *GormTodoRepository) Create(todo *models.Todo) error {
	return r.db.Create(todo).Error
}

// FindByID finds a todo by ID with optional preloading
func (r *GormTodoRepository) FindByID(id uint64, preload ...string) (*models.Todo, error) {
	var todo models.Todo
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&todo, id).Error; err != nil {
		return nil, err
	}

	return &todo, nil
}

// ListByOwner retrieves a user's own non-deleted todos, newest first
func (r *GormTodoRepository) ListByOwner(ownerID uint64) ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.
		Where("owner_id = ? AND deleted = ?", ownerID, false).
		Order("created_at DESC").
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// ListSharedWith retrieves the share grants held by a user, most recently
// shared first. The todo and its owner are preloaded so callers can
// annotate entries with who shared them.
func (r *GormTodoRepository) ListSharedWith(userID uint64) ([]models.SharedTodo, error) {
	var shares []models.SharedTodo
	err := r.db.
		Where("user_id = ?", userID).
		Order("shared_at DESC").
		Preload("Todo").
		Preload("Todo.Owner").
		Find(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

// ListAll retrieves every non-deleted todo with its owner, newest first
func (r *GormTodoRepository) ListAll() ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.
		Where("deleted = ?", false).
		Order("created_at DESC").
		Preload("Owner").
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// Update updates a todo
func (r *GormTodoRepository) Update(todo *models.Todo) error {
	return r.db.Save(todo).Error
}

// SoftDelete marks a todo deleted without removing the row
func (r *GormTodoRepository) SoftDelete(id uint64) error {
	return r.db.Model(&models.Todo{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"deleted": true, "updated_at": time.Now()}).Error
}

// UpsertShare creates or updates the grant keyed by (todo, user)
func (r *GormTodoRepository) UpsertShare(share *models.SharedTodo) error {
	if share.SharedAt.IsZero() {
		share.SharedAt = time.Now()
	}

	return r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "todo_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"can_edit":  share.CanEdit,
				"shared_at": share.SharedAt,
			}),
		}).
		Create(share).Error
}

// FindShare finds a specific share grant
func (r *GormTodoRepository) FindShare(todoID, userID uint64) (*models.SharedTodo, error) {
	var share models.SharedTodo
	if err := r.db.Where("todo_id = ? AND user_id = ?", todoID, userID).
		First(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

// DeleteShare revokes a grant
func (r *GormTodoRepository) DeleteShare(todoID, userID uint64) error {
	return r.db.Where("todo_id = ? AND user_id = ?", todoID, userID).
		Delete(&models.SharedTodo{}).Error
}

// UserExists reports whether a user row exists for the given ID
func (r *GormTodoRepository) UserExists(userID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

// Count returns the number of non-deleted todos
func (r *GormTodoRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Todo{}).
		Where("deleted = ?", false).
		Count(&count).Error
	return count, err
}

// CountCompleted returns the number of completed non-deleted todos
func (r *GormTodoRepository) CountCompleted() (int64, error) {
	var count int64
	err := r.db.Model(&models.Todo{}).
		Where("deleted = ? AND completed = ?", false, true).
		Count(&count).Error
	return count, err
}

// InTransaction runs fn against a transaction-bound repository
func (r *GormTodoRepository) InTransaction(fn func(TodoRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormTodoRepository{db: tx})
	})
}
