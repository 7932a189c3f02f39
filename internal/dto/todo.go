package dto

import (
	"time"

	"github.com/mtakagi/todo-share-api/internal/models"
	"github.com/mtakagi/todo-share-api/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TodoDTO represents a todo in API responses
type TodoDTO struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Completed   bool      `json:"completed"`
	OwnerID     uint64    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Owner       *UserDTO  `json:"owner,omitempty"`
}

// SharedTodoDTO represents a todo reachable through a grant, annotated with
// who shared it and whether the grant allows editing
type SharedTodoDTO struct {
	TodoDTO
	SharedBy UserDTO `json:"shared_by"`
	CanEdit  bool    `json:"can_edit"`
}

// ShareGrantDTO represents the stored grant after a share upsert
type ShareGrantDTO struct {
	TodoID   uint64    `json:"todo_id"`
	UserID   uint64    `json:"user_id"`
	CanEdit  bool      `json:"can_edit"`
	SharedAt time.Time `json:"shared_at"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// ToTodoDTO converts a Todo model to TodoDTO
func ToTodoDTO(todo models.Todo) TodoDTO {
	dto := TodoDTO{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Category:    todo.Category,
		Completed:   todo.Completed,
		OwnerID:     todo.OwnerID,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}

	// Include owner if preloaded
	if todo.Owner.ID != 0 {
		owner := ToUserDTO(todo.Owner)
		dto.Owner = &owner
	}

	return dto
}

// ToTodoDTOs converts a slice of todos
func ToTodoDTOs(todos []models.Todo) []TodoDTO {
	dtos := make([]TodoDTO, len(todos))
	for i, todo := range todos {
		dtos[i] = ToTodoDTO(todo)
	}
	return dtos
}

// ToSharedTodoDTO converts an annotated shared todo item
func ToSharedTodoDTO(item services.SharedTodoItem) SharedTodoDTO {
	return SharedTodoDTO{
		TodoDTO:  ToTodoDTO(item.Todo),
		SharedBy: ToUserDTO(item.SharedBy),
		CanEdit:  item.CanEdit,
	}
}

// ToSharedTodoDTOs converts a slice of annotated shared todo items
func ToSharedTodoDTOs(items []services.SharedTodoItem) []SharedTodoDTO {
	dtos := make([]SharedTodoDTO, len(items))
	for i, item := range items {
		dtos[i] = ToSharedTodoDTO(item)
	}
	return dtos
}

// ToShareGrantDTO converts a SharedTodo model to ShareGrantDTO
func ToShareGrantDTO(share models.SharedTodo) ShareGrantDTO {
	return ShareGrantDTO{
		TodoID:   share.TodoID,
		UserID:   share.UserID,
		CanEdit:  share.CanEdit,
		SharedAt: share.SharedAt,
	}
}
