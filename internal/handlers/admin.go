package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mtakagi/todo-share-api/internal/dto"
	apierrors "github.com/mtakagi/todo-share-api/internal/errors"
	"github.com/mtakagi/todo-share-api/internal/middleware"
	"github.com/mtakagi/todo-share-api/internal/services"
)

// AdminHandler serves the admin dashboard endpoints. Role gating happens in
// the RequireAdmin middleware.
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// GetStats returns the aggregate dashboard counters
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats()
	if err != nil {
		apierrors.InternalError(c, "Failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListUsers returns every user with their owned todo count
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers()
	if err != nil {
		apierrors.InternalError(c, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": dto.ToAdminUserDTOs(users)})
}

// ListTodos returns every non-deleted todo with its owner
func (h *AdminHandler) ListTodos(c *gin.Context) {
	todos, err := h.adminService.ListTodos()
	if err != nil {
		apierrors.InternalError(c, "Failed to list todos")
		return
	}

	c.JSON(http.StatusOK, gin.H{"todos": dto.ToTodoDTOs(todos)})
}

// DeleteUser removes a user account and their data
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	adminID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.adminService.DeleteUser(adminID, targetID); err != nil {
		switch {
		case errors.Is(err, services.ErrAdminSelfDelete):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			apierrors.NotFound(c, err.Error())
		default:
			apierrors.InternalError(c, "Failed to delete user")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
