package dto

import (
	"github.com/mtakagi/todo-share-api/internal/repository"
)

// AdminUserDTO represents a user row on the admin users page
type AdminUserDTO struct {
	UserDTO
	Role      string `json:"role"`
	TodoCount int64  `json:"todo_count"`
}

// ToAdminUserDTO converts a user with todo count
func ToAdminUserDTO(row repository.UserWithTodoCount) AdminUserDTO {
	return AdminUserDTO{
		UserDTO:   ToUserDTO(row.User),
		Role:      string(row.Role),
		TodoCount: row.TodoCount,
	}
}

// ToAdminUserDTOs converts a slice of users with todo counts
func ToAdminUserDTOs(rows []repository.UserWithTodoCount) []AdminUserDTO {
	dtos := make([]AdminUserDTO, len(rows))
	for i, row := range rows {
		dtos[i] = ToAdminUserDTO(row)
	}
	return dtos
}
