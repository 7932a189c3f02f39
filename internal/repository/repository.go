package repository

import (
	"github.com/mtakagi/todo-share-api/internal/models"
)

// TodoRepository defines the interface for todo data access
type TodoRepository interface {
	// Create creates a new todo
	Create(todo *models.Todo) error

	// FindByID finds a todo by ID with optional preloading.
	// Soft-deleted rows are returned as-is; callers decide visibility.
	FindByID(id uint64, preload ...string) (*models.Todo, error)

	// ListByOwner retrieves a user's own non-deleted todos, newest first
	ListByOwner(ownerID uint64) ([]models.Todo, error)

	// ListSharedWith retrieves the share grants held by a user, most
	// recently shared first, with the todo and its owner preloaded
	ListSharedWith(userID uint64) ([]models.SharedTodo, error)

	// ListAll retrieves every non-deleted todo with its owner, newest first
	ListAll() ([]models.Todo, error)

	// Update updates a todo
	Update(todo *models.Todo) error

	// SoftDelete marks a todo deleted without removing the row.
	// Share grants on the todo are left in place.
	SoftDelete(id uint64) error

	// UpsertShare creates or updates the grant keyed by (todo, user)
	UpsertShare(share *models.SharedTodo) error

	// FindShare finds a specific share grant
	FindShare(todoID, userID uint64) (*models.SharedTodo, error)

	// DeleteShare revokes a grant
	DeleteShare(todoID, userID uint64) error

	// UserExists reports whether a user row exists for the given ID
	UserExists(userID uint64) (bool, error)

	// Count returns the number of non-deleted todos
	Count() (int64, error)

	// CountCompleted returns the number of completed non-deleted todos
	CountCompleted() (int64, error)

	// InTransaction runs fn against a repository bound to a single
	// transaction, so an access check and the mutation it guards commit
	// or roll back together.
	InTransaction(fn func(TodoRepository) error) error
}

// UserWithTodoCount pairs a user with the number of non-deleted todos they own
type UserWithTodoCount struct {
	models.User
	TodoCount int64 `json:"todo_count"`
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List retrieves all users
	List() ([]models.User, error)

	// ListWithTodoCounts retrieves all users with their owned todo counts
	ListWithTodoCounts() ([]UserWithTodoCount, error)

	// Count returns the total number of users
	Count() (int64, error)

	// DeleteWithTodos removes a user, the todos they own, and every grant
	// involving them, within a single transaction
	DeleteWithTodos(userID uint64) error
}
