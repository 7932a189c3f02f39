package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mtakagi/todo-share-api/internal/constants"
	"github.com/mtakagi/todo-share-api/internal/models"
	"github.com/mtakagi/todo-share-api/internal/repository"
	"github.com/mtakagi/todo-share-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TodoHandlerTestSuite defines the test suite for TodoHandler
type TodoHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TodoHandler
}

// SetupTest runs before each test
func (suite *TodoHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Todo{},
		&models.SharedTodo{},
	)
	suite.Require().NoError(err)

	todoService := services.NewTodoService(repository.NewTodoRepository(suite.db))
	suite.handler = NewTodoHandler(todoService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TodoHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TodoHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Email:        email,
		Name:         email,
		PasswordHash: "hashedpassword",
		Role:         models.RoleUser,
	}
	suite.db.Create(user)
	return user
}

func (suite *TodoHandlerTestSuite) createTestTodo(title string, ownerID uint64) *models.Todo {
	todo := &models.Todo{
		Title:   title,
		OwnerID: ownerID,
	}
	suite.db.Create(todo)
	return todo
}

func (suite *TodoHandlerTestSuite) shareTodo(todoID, userID uint64, canEdit bool) {
	suite.db.Create(&models.SharedTodo{
		TodoID:  todoID,
		UserID:  userID,
		CanEdit: canEdit,
	})
}

// Helper function to create authenticated context
func (suite *TodoHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func (suite *TodoHandlerTestSuite) setTodoParam(c *gin.Context, todoID uint64) {
	c.Params = append(c.Params, gin.Param{Key: "id", Value: strconv.FormatUint(todoID, 10)})
}

// TestListTodos_Success tests listing own todos
func (suite *TodoHandlerTestSuite) TestListTodos_Success() {
	user := suite.createTestUser("test@example.com")
	todo := suite.createTestTodo("Test Todo", user.ID)

	c, w := suite.createAuthContext("GET", "/api/todos", nil, user.ID)

	suite.handler.ListTodos(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	todos := response["todos"].([]interface{})
	assert.Len(suite.T(), todos, 1)

	firstTodo := todos[0].(map[string]interface{})
	assert.Equal(suite.T(), todo.Title, firstTodo["title"])
}

// TestListTodos_Unauthorized tests listing without authentication
func (suite *TodoHandlerTestSuite) TestListTodos_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/todos", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListTodos(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestListTodos_ExcludesDeleted tests that soft-deleted todos never list
func (suite *TodoHandlerTestSuite) TestListTodos_ExcludesDeleted() {
	user := suite.createTestUser("test@example.com")
	todo := suite.createTestTodo("Gone", user.ID)
	suite.db.Model(todo).Update("deleted", true)

	c, w := suite.createAuthContext("GET", "/api/todos", nil, user.ID)

	suite.handler.ListTodos(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), response["todos"])
}

// TestListSharedTodos_Success tests the shared listing with annotations
func (suite *TodoHandlerTestSuite) TestListSharedTodos_Success() {
	owner := suite.createTestUser("owner@example.com")
	grantee := suite.createTestUser("grantee@example.com")
	todo := suite.createTestTodo("Shared Todo", owner.ID)
	suite.shareTodo(todo.ID, grantee.ID, true)

	c, w := suite.createAuthContext("GET", "/api/todos/shared", nil, grantee.ID)

	suite.handler.ListSharedTodos(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	todos := response["todos"].([]interface{})
	assert.Len(suite.T(), todos, 1)

	shared := todos[0].(map[string]interface{})
	assert.Equal(suite.T(), "Shared Todo", shared["title"])
	assert.Equal(suite.T(), true, shared["can_edit"])
	sharedBy := shared["shared_by"].(map[string]interface{})
	assert.Equal(suite.T(), owner.Email, sharedBy["email"])
}

// TestCreateTodo_Success tests todo creation
func (suite *TodoHandlerTestSuite) TestCreateTodo_Success() {
	user := suite.createTestUser("test@example.com")

	body, _ := json.Marshal(map[string]interface{}{
		"title":       "New Todo",
		"description": "Details",
		"category":    "work",
	})
	c, w := suite.createAuthContext("POST", "/api/todos", body, user.ID)

	suite.handler.CreateTodo(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Todo", response["title"])
	assert.Equal(suite.T(), false, response["completed"])
}

// TestCreateTodo_MissingTitle tests validation of the required title
func (suite *TodoHandlerTestSuite) TestCreateTodo_MissingTitle() {
	user := suite.createTestUser("test@example.com")

	body, _ := json.Marshal(map[string]interface{}{
		"description": "no title",
	})
	c, w := suite.createAuthContext("POST", "/api/todos", body, user.ID)

	suite.handler.CreateTodo(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateTodo_BlankTitle tests that whitespace titles are rejected
func (suite *TodoHandlerTestSuite) TestCreateTodo_BlankTitle() {
	user := suite.createTestUser("test@example.com")

	body, _ := json.Marshal(map[string]interface{}{
		"title": "   ",
	})
	c, w := suite.createAuthContext("POST", "/api/todos", body, user.ID)

	suite.handler.CreateTodo(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestGetTodo_StrangerNotFound tests that inaccessible todos read as 404
func (suite *TodoHandlerTestSuite) TestGetTodo_StrangerNotFound() {
	owner := suite.createTestUser("owner@example.com")
	stranger := suite.createTestUser("stranger@example.com")
	todo := suite.createTestTodo("Private", owner.ID)

	c, w := suite.createAuthContext("GET", "/api/todos/1", nil, stranger.ID)
	suite.setTodoParam(c, todo.ID)

	suite.handler.GetTodo(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestUpdateTodo_ViewOnlyForbidden tests edit rejection for view-only grants
func (suite *TodoHandlerTestSuite) TestUpdateTodo_ViewOnlyForbidden() {
	owner := suite.createTestUser("owner@example.com")
	grantee := suite.createTestUser("grantee@example.com")
	todo := suite.createTestTodo("Guarded", owner.ID)
	suite.shareTodo(todo.ID, grantee.ID, false)

	body, _ := json.Marshal(map[string]interface{}{"completed": true})
	c, w := suite.createAuthContext("PATCH", "/api/todos/1", body, grantee.ID)
	suite.setTodoParam(c, todo.ID)

	suite.handler.UpdateTodo(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestUpdateTodo_MergePatch tests that omitted fields survive a patch
func (suite *TodoHandlerTestSuite) TestUpdateTodo_MergePatch() {
	owner := suite.createTestUser("owner@example.com")
	todo := suite.createTestTodo("Original Title", owner.ID)

	body, _ := json.Marshal(map[string]interface{}{"completed": true})
	c, w := suite.createAuthContext("PATCH", "/api/todos/1", body, owner.ID)
	suite.setTodoParam(c, todo.ID)

	suite.handler.UpdateTodo(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), true, response["completed"])
	assert.Equal(suite.T(), "Original Title", response["title"])
}

// TestUpdateTodo_Deleted tests that patched deleted todos read as 404
func (suite *TodoHandlerTestSuite) TestUpdateTodo_Deleted() {
	owner := suite.createTestUser("owner@example.com")
	todo := suite.createTestTodo("Gone", owner.ID)
	suite.db.Model(todo).Update("deleted", true)

	body, _ := json.Marshal(map[string]interface{}{"completed": true})
	c, w := suite.createAuthContext("PATCH", "/api/todos/1", body, owner.ID)
	suite.setTodoParam(c, todo.ID)

	suite.handler.UpdateTodo(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestDeleteTodo_Success tests owner soft-delete
func (suite *TodoHandlerTestSuite) TestDeleteTodo_Success() {
	owner := suite.createTestUser("owner@example.com")
	todo := suite.createTestTodo("Condemned", owner.ID)

	c, w := suite.createAuthContext("DELETE", "/api/todos/1", nil, owner.ID)
	suite.setTodoParam(c, todo.ID)

	suite.handler.DeleteTodo(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var stored models.Todo
	suite.db.First(&stored, todo.ID)
	assert.True(suite.T(), stored.Deleted)
}

// TestDeleteTodo_NonOwnerForbidden tests that editors cannot delete
func (suite *TodoHandlerTestSuite) TestDeleteTodo_NonOwnerForbidden() {
	owner := suite.createTestUser("owner@example.com")
	editor := suite.createTestUser("editor@example.com")
	todo := suite.createTestTodo("Protected", owner.ID)
	suite.shareTodo(todo.ID, editor.ID, true)

	c, w := suite.createAuthContext("DELETE", "/api/todos/1", nil, editor.ID)
	suite.setTodoParam(c, todo.ID)

	suite.handler.DeleteTodo(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	var stored models.Todo
	suite.db.First(&stored, todo.ID)
	assert.False(suite.T(), stored.Deleted)
}

// TestShareTodo_Success tests the share upsert
func (suite *TodoHandlerTestSuite) TestShareTodo_Success() {
	owner := suite.createTestUser("owner@example.com")
	grantee := suite.createTestUser("grantee@example.com")
	todo := suite.createTestTodo("To share", owner.ID)

	body, _ := json.Marshal(map[string]interface{}{
		"user_id":  grantee.ID,
		"can_edit": true,
	})
	c, w := suite.createAuthContext("POST", "/api/todos/1/share", body, owner.ID)
	suite.setTodoParam(c, todo.ID)

	suite.handler.ShareTodo(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var grants []models.SharedTodo
	suite.db.Where("todo_id = ?", todo.ID).Find(&grants)
	assert.Len(suite.T(), grants, 1)
	assert.True(suite.T(), grants[0].CanEdit)
}

// TestShareTodo_MissingUserID tests validation of the target user field
func (suite *TodoHandlerTestSuite) TestShareTodo_MissingUserID() {
	owner := suite.createTestUser("owner@example.com")
	todo := suite.createTestTodo("To share", owner.ID)

	body, _ := json.Marshal(map[string]interface{}{"can_edit": true})
	c, w := suite.createAuthContext("POST", "/api/todos/1/share", body, owner.ID)
	suite.setTodoParam(c, todo.ID)

	suite.handler.ShareTodo(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestShareTodo_SelfShare tests the self-share rejection
func (suite *TodoHandlerTestSuite) TestShareTodo_SelfShare() {
	owner := suite.createTestUser("owner@example.com")
	todo := suite.createTestTodo("Mine", owner.ID)

	body, _ := json.Marshal(map[string]interface{}{"user_id": owner.ID})
	c, w := suite.createAuthContext("POST", "/api/todos/1/share", body, owner.ID)
	suite.setTodoParam(c, todo.ID)

	suite.handler.ShareTodo(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestShareTodo_TargetMissing tests sharing with a nonexistent user
func (suite *TodoHandlerTestSuite) TestShareTodo_TargetMissing() {
	owner := suite.createTestUser("owner@example.com")
	todo := suite.createTestTodo("Mine", owner.ID)

	body, _ := json.Marshal(map[string]interface{}{"user_id": 9999})
	c, w := suite.createAuthContext("POST", "/api/todos/1/share", body, owner.ID)
	suite.setTodoParam(c, todo.ID)

	suite.handler.ShareTodo(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestShareTodo_NonOwnerForbidden tests that grantees cannot re-share
func (suite *TodoHandlerTestSuite) TestShareTodo_NonOwnerForbidden() {
	owner := suite.createTestUser("owner@example.com")
	editor := suite.createTestUser("editor@example.com")
	third := suite.createTestUser("third@example.com")
	todo := suite.createTestTodo("Mine", owner.ID)
	suite.shareTodo(todo.ID, editor.ID, true)

	body, _ := json.Marshal(map[string]interface{}{"user_id": third.ID})
	c, w := suite.createAuthContext("POST", "/api/todos/1/share", body, editor.ID)
	suite.setTodoParam(c, todo.ID)

	suite.handler.ShareTodo(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestRevokeShare_Success tests grant revocation
func (suite *TodoHandlerTestSuite) TestRevokeShare_Success() {
	owner := suite.createTestUser("owner@example.com")
	grantee := suite.createTestUser("grantee@example.com")
	todo := suite.createTestTodo("Lent out", owner.ID)
	suite.shareTodo(todo.ID, grantee.ID, false)

	c, w := suite.createAuthContext("DELETE", "/api/todos/1/share/2", nil, owner.ID)
	suite.setTodoParam(c, todo.ID)
	c.Params = append(c.Params, gin.Param{Key: "user_id", Value: strconv.FormatUint(grantee.ID, 10)})

	suite.handler.RevokeShare(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.SharedTodo{}).Where("todo_id = ?", todo.ID).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

// TestRevokeShare_NoGrant tests revoking a grant that was never made
func (suite *TodoHandlerTestSuite) TestRevokeShare_NoGrant() {
	owner := suite.createTestUser("owner@example.com")
	stranger := suite.createTestUser("stranger@example.com")
	todo := suite.createTestTodo("Kept private", owner.ID)

	c, w := suite.createAuthContext("DELETE", "/api/todos/1/share/2", nil, owner.ID)
	suite.setTodoParam(c, todo.ID)
	c.Params = append(c.Params, gin.Param{Key: "user_id", Value: strconv.FormatUint(stranger.ID, 10)})

	suite.handler.RevokeShare(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Share not found")
}

func TestTodoHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TodoHandlerTestSuite))
}
