package repository

import (
	"github.com/mtakagi/todo-share-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves all users
func (r *GormUserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListWithTodoCounts retrieves all users with their owned todo counts.
// Deleted todos are excluded from the counts.
func (r *GormUserRepository) ListWithTodoCounts() ([]UserWithTodoCount, error) {
	var rows []UserWithTodoCount
	err := r.db.Model(&models.User{}).
		Select("users.*, (SELECT COUNT(*) FROM todos WHERE todos.owner_id = users.id AND todos.deleted = ?) AS todo_count", false).
		Order("users.created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the total number of users
func (r *GormUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// DeleteWithTodos removes a user together with their data: the grants they
// hold, the grants on the todos they own, the owned todos themselves, and
// finally the user row. The todos are removed outright rather than
// soft-deleted; keeping rows whose owner_id points at a deleted user would
// violate the foreign key, and nothing could ever read them again anyway.
func (r *GormUserRepository) DeleteWithTodos(userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.SharedTodo{}).Error; err != nil {
			return err
		}

		ownedTodoIDs := tx.Model(&models.Todo{}).Select("id").Where("owner_id = ?", userID)
		if err := tx.Where("todo_id IN (?)", ownedTodoIDs).Delete(&models.SharedTodo{}).Error; err != nil {
			return err
		}

		if err := tx.Where("owner_id = ?", userID).Delete(&models.Todo{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, userID).Error
	})
}
