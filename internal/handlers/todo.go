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

// TodoHandler coordinates the todo HTTP handlers. All authorization
// decisions live in TodoService; handlers only translate between HTTP and
// the service contract.
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler creates a new TodoHandler
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
	}
}

// ListTodos returns the caller's own non-deleted todos, newest first
func (h *TodoHandler) ListTodos(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	todos, err := h.todoService.ListOwnTodos(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch todos")
		return
	}

	c.JSON(http.StatusOK, gin.H{"todos": dto.ToTodoDTOs(todos)})
}

// ListSharedTodos returns the non-deleted todos shared with the caller
func (h *TodoHandler) ListSharedTodos(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	items, err := h.todoService.ListSharedTodos(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch shared todos")
		return
	}

	c.JSON(http.StatusOK, gin.H{"todos": dto.ToSharedTodoDTOs(items)})
}

// CreateTodo creates a new todo owned by the caller
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTodoRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	todo, err := h.todoService.CreateTodo(services.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		OwnerID:     userID,
	})
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTodoDTO(*todo))
}

// GetTodo returns a single todo if the caller may read it
func (h *TodoHandler) GetTodo(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	todoID, ok := parseTodoID(c)
	if !ok {
		return
	}

	todo, err := h.todoService.GetTodo(userID, todoID)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// UpdateTodo applies a merge-patch to a todo. Absent fields are left
// untouched.
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	todoID, ok := parseTodoID(c)
	if !ok {
		return
	}

	type UpdateTodoRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Completed   *bool   `json:"completed"`
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	todo, err := h.todoService.UpdateTodo(userID, todoID, services.UpdateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Completed:   req.Completed,
	})
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// DeleteTodo soft-deletes a todo owned by the caller
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	todoID, ok := parseTodoID(c)
	if !ok {
		return
	}

	todo, err := h.todoService.DeleteTodo(userID, todoID)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// ShareTodo grants another user access to a todo owned by the caller
func (h *TodoHandler) ShareTodo(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	todoID, ok := parseTodoID(c)
	if !ok {
		return
	}

	type ShareTodoRequest struct {
		UserID  uint64 `json:"user_id" binding:"required"`
		CanEdit bool   `json:"can_edit"`
	}

	var req ShareTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "User ID is required")
		return
	}

	share, err := h.todoService.ShareTodo(userID, todoID, req.UserID, req.CanEdit)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Todo shared successfully",
		"share":   dto.ToShareGrantDTO(*share),
	})
}

// RevokeShare removes a grant from a todo owned by the caller
func (h *TodoHandler) RevokeShare(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	todoID, ok := parseTodoID(c)
	if !ok {
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.todoService.RevokeShare(userID, todoID, targetID); err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Share revoked"})
}

func parseTodoID(c *gin.Context) (uint64, bool) {
	todoID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid todo ID")
		return 0, false
	}
	return todoID, true
}

func respondTodoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTodoNotFound):
		apierrors.NotFound(c, "Todo not found")
	case errors.Is(err, services.ErrShareUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrShareNotFound):
		apierrors.NotFound(c, "Share not found")
	case errors.Is(err, services.ErrNotTodoOwner),
		errors.Is(err, services.ErrEditNotPermitted):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrSelfShare),
		errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
