package services

import (
	"errors"
	"fmt"

	"github.com/mtakagi/todo-share-api/internal/models"
	"github.com/mtakagi/todo-share-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAdminSelfDelete = errors.New("administrators cannot delete their own account")
)

// AdminService provides the read-only projections and user management used
// by the admin dashboard. None of it participates in the per-todo access
// control: admin visibility is gated entirely by the role check upstream.
type AdminService struct {
	userRepo repository.UserRepository
	todoRepo repository.TodoRepository
}

// NewAdminService creates a new AdminService
func NewAdminService(userRepo repository.UserRepository, todoRepo repository.TodoRepository) *AdminService {
	return &AdminService{
		userRepo: userRepo,
		todoRepo: todoRepo,
	}
}

// Stats holds the aggregate counters shown on the admin dashboard.
// Todo counts only cover non-deleted rows.
type Stats struct {
	TotalUsers     int64   `json:"total_users"`
	TotalTodos     int64   `json:"total_todos"`
	CompletedTodos int64   `json:"completed_todos"`
	CompletionRate float64 `json:"completion_rate"`
}

// GetStats computes the dashboard counters
func (s *AdminService) GetStats() (*Stats, error) {
	totalUsers, err := s.userRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	totalTodos, err := s.todoRepo.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count todos: %w", err)
	}

	completed, err := s.todoRepo.CountCompleted()
	if err != nil {
		return nil, fmt.Errorf("failed to count completed todos: %w", err)
	}

	stats := &Stats{
		TotalUsers:     totalUsers,
		TotalTodos:     totalTodos,
		CompletedTodos: completed,
	}
	if totalTodos > 0 {
		stats.CompletionRate = float64(completed) / float64(totalTodos)
	}

	return stats, nil
}

// ListUsers returns every user with their owned todo count
func (s *AdminService) ListUsers() ([]repository.UserWithTodoCount, error) {
	users, err := s.userRepo.ListWithTodoCounts()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListTodos returns every non-deleted todo with its owner, newest first
func (s *AdminService) ListTodos() ([]models.Todo, error) {
	todos, err := s.todoRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// DeleteUser removes a user account together with their data. An admin
// cannot remove themselves.
func (s *AdminService) DeleteUser(adminID, targetID uint64) error {
	if targetID == adminID {
		return ErrAdminSelfDelete
	}

	if _, err := s.userRepo.FindByID(targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.DeleteWithTodos(targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
