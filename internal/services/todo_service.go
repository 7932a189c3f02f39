package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mtakagi/todo-share-api/internal/models"
	"github.com/mtakagi/todo-share-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTodoNotFound      = errors.New("todo not found")
	ErrNotTodoOwner      = errors.New("only the todo owner can perform this action")
	ErrEditNotPermitted  = errors.New("user does not have edit access to this todo")
	ErrSelfShare         = errors.New("a todo cannot be shared with its owner")
	ErrShareUserNotFound = errors.New("target user not found")
	ErrShareNotFound     = errors.New("share grant not found")
	ErrTitleRequired     = errors.New("title is required")
	ErrTitleEmpty        = errors.New("title cannot be empty")
)

// TodoService owns the access-control decisions for todos. Every operation
// resolves rights in the same order: existence and the soft-delete flag
// first (a deleted todo is indistinguishable from a missing one), then
// ownership, then the share grant. Ownership is a strict superset of grant
// rights; a grant never authorizes delete or re-share.
type TodoService struct {
	todoRepo repository.TodoRepository
}

// NewTodoService creates a new TodoService
func NewTodoService(todoRepo repository.TodoRepository) *TodoService {
	return &TodoService{
		todoRepo: todoRepo,
	}
}

// CreateTodoInput represents input for creating a todo
type CreateTodoInput struct {
	Title       string
	Description string
	Category    string
	OwnerID     uint64
}

// UpdateTodoInput represents a merge-patch over a todo. Only non-nil fields
// are applied; absent fields keep their stored values.
type UpdateTodoInput struct {
	Title       *string
	Description *string
	Category    *string
	Completed   *bool
}

// SharedTodoItem annotates a todo reachable through a grant with who shared
// it and whether the grant allows editing.
type SharedTodoItem struct {
	Todo     models.Todo
	SharedBy models.User
	CanEdit  bool
}

// ListOwnTodos returns a user's own non-deleted todos, newest first
func (s *TodoService) ListOwnTodos(callerID uint64) ([]models.Todo, error) {
	todos, err := s.todoRepo.ListByOwner(callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// ListSharedTodos returns the non-deleted todos shared with a user, most
// recently shared first. Grants whose todo has since been soft-deleted are
// skipped, not surfaced.
func (s *TodoService) ListSharedTodos(callerID uint64) ([]SharedTodoItem, error) {
	shares, err := s.todoRepo.ListSharedWith(callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared todos: %w", err)
	}

	items := make([]SharedTodoItem, 0, len(shares))
	for _, share := range shares {
		if share.Todo.Deleted {
			continue
		}
		items = append(items, SharedTodoItem{
			Todo:     share.Todo,
			SharedBy: share.Todo.Owner,
			CanEdit:  share.CanEdit,
		})
	}

	return items, nil
}

// CreateTodo creates a new todo owned by the caller
func (s *TodoService) CreateTodo(input CreateTodoInput) (*models.Todo, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	todo := &models.Todo{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		OwnerID:     input.OwnerID,
	}

	if err := s.todoRepo.Create(todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return todo, nil
}

// GetTodo returns a todo if the caller is its owner or holds a grant for
// it. Any other caller gets ErrTodoNotFound: whether the todo exists for
// someone else is deliberately not revealed.
func (s *TodoService) GetTodo(callerID, todoID uint64) (*models.Todo, error) {
	todo, err := s.findVisible(s.todoRepo, todoID)
	if err != nil {
		return nil, err
	}

	if todo.OwnerID == callerID {
		return todo, nil
	}

	if _, err := s.todoRepo.FindShare(todoID, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to check share grant: %w", err)
	}

	return todo, nil
}

// UpdateTodo applies a merge-patch to a todo on behalf of the caller.
// Owners always may edit; grant holders only with can_edit. A grant holder
// without edit rights gets ErrEditNotPermitted, anyone else ErrTodoNotFound.
// The access check and the write commit atomically.
func (s *TodoService) UpdateTodo(callerID, todoID uint64, input UpdateTodoInput) (*models.Todo, error) {
	var updated *models.Todo

	err := s.todoRepo.InTransaction(func(repo repository.TodoRepository) error {
		todo, err := s.findVisible(repo, todoID)
		if err != nil {
			return err
		}

		if todo.OwnerID != callerID {
			share, err := repo.FindShare(todoID, callerID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTodoNotFound
				}
				return fmt.Errorf("failed to check share grant: %w", err)
			}
			if !share.CanEdit {
				return ErrEditNotPermitted
			}
		}

		if input.Title != nil {
			if strings.TrimSpace(*input.Title) == "" {
				return ErrTitleEmpty
			}
			todo.Title = *input.Title
		}
		if input.Description != nil {
			todo.Description = *input.Description
		}
		if input.Category != nil {
			todo.Category = *input.Category
		}
		if input.Completed != nil {
			todo.Completed = *input.Completed
		}

		if err := repo.Update(todo); err != nil {
			return fmt.Errorf("failed to update todo: %w", err)
		}

		updated = todo
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteTodo soft-deletes a todo. Only the owner may delete; a can_edit
// grant is not enough. Grants on the todo are kept and go dangling, every
// read path filters them out through the deleted flag.
func (s *TodoService) DeleteTodo(callerID, todoID uint64) (*models.Todo, error) {
	var deleted *models.Todo

	err := s.todoRepo.InTransaction(func(repo repository.TodoRepository) error {
		todo, err := s.findVisible(repo, todoID)
		if err != nil {
			return err
		}

		if todo.OwnerID != callerID {
			return ErrNotTodoOwner
		}

		if err := repo.SoftDelete(todoID); err != nil {
			return fmt.Errorf("failed to delete todo: %w", err)
		}

		todo.Deleted = true
		deleted = todo
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// ShareTodo grants a user access to a todo, or updates the existing grant.
// Only the owner may share, never with themselves. The upsert is keyed by
// (todo, user) so repeated shares update can_edit instead of duplicating.
func (s *TodoService) ShareTodo(callerID, todoID, targetUserID uint64, canEdit bool) (*models.SharedTodo, error) {
	var share *models.SharedTodo

	err := s.todoRepo.InTransaction(func(repo repository.TodoRepository) error {
		todo, err := s.findVisible(repo, todoID)
		if err != nil {
			return err
		}

		if todo.OwnerID != callerID {
			return ErrNotTodoOwner
		}

		if targetUserID == callerID {
			return ErrSelfShare
		}

		exists, err := repo.UserExists(targetUserID)
		if err != nil {
			return fmt.Errorf("failed to check target user: %w", err)
		}
		if !exists {
			return ErrShareUserNotFound
		}

		share = &models.SharedTodo{
			TodoID:  todoID,
			UserID:  targetUserID,
			CanEdit: canEdit,
		}
		if err := repo.UpsertShare(share); err != nil {
			return fmt.Errorf("failed to share todo: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return share, nil
}

// RevokeShare removes a grant. Only the owner may revoke.
func (s *TodoService) RevokeShare(callerID, todoID, targetUserID uint64) error {
	return s.todoRepo.InTransaction(func(repo repository.TodoRepository) error {
		todo, err := s.findVisible(repo, todoID)
		if err != nil {
			return err
		}

		if todo.OwnerID != callerID {
			return ErrNotTodoOwner
		}

		if _, err := repo.FindShare(todoID, targetUserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShareNotFound
			}
			return fmt.Errorf("failed to find share grant: %w", err)
		}

		if err := repo.DeleteShare(todoID, targetUserID); err != nil {
			return fmt.Errorf("failed to revoke share: %w", err)
		}

		return nil
	})
}

// findVisible loads a todo and folds both "no such row" and "soft-deleted"
// into ErrTodoNotFound. This runs before any ownership or grant check, so
// a deleted-but-still-shared todo never surfaces to any party.
func (s *TodoService) findVisible(repo repository.TodoRepository, todoID uint64) (*models.Todo, error) {
	todo, err := repo.FindByID(todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	if todo.Deleted {
		return nil, ErrTodoNotFound
	}

	return todo, nil
}
