package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/mtakagi/todo-share-api/internal/constants"
	apierrors "github.com/mtakagi/todo-share-api/internal/errors"
	"github.com/mtakagi/todo-share-api/internal/models"
	"github.com/mtakagi/todo-share-api/internal/repository"
	"github.com/mtakagi/todo-share-api/internal/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db      *gorm.DB
	handler *AuthHandler
	router  *gin.Engine
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Todo{}, &models.SharedTodo{})
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo)
	handler := NewAuthHandler(authService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/signup", handler.Signup)
	r.POST("/api/auth/login", handler.Login)
	r.POST("/api/auth/logout", handler.Logout)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:      db,
		handler: handler,
		router:  r,
	}
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := postJSON(t, env.router, "/api/auth/signup", map[string]string{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var created models.User
	require.NoError(t, env.db.Where("email = ?", "new@example.com").First(&created).Error)
	require.Equal(t, models.RoleUser, created.Role)
	require.NotEqual(t, "supersecret", created.PasswordHash)
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := map[string]string{
		"name":     "New User",
		"email":    "dup@example.com",
		"password": "supersecret",
	}

	w := postJSON(t, env.router, "/api/auth/signup", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, env.router, "/api/auth/signup", payload)
	require.Equal(t, http.StatusConflict, w.Code)

	var body apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, apierrors.ErrCodeAlreadyExists, body.Code)
}

func TestAuthHandler_Signup_MissingFields(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := postJSON(t, env.router, "/api/auth/signup", map[string]string{
		"email": "incomplete@example.com",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Signup_ShortPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := postJSON(t, env.router, "/api/auth/signup", map[string]string{
		"name":     "New User",
		"email":    "short@example.com",
		"password": "tiny",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&models.User{
		Name:         "Existing",
		Email:        "login@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}).Error)

	w := postJSON(t, env.router, "/api/auth/login", map[string]string{
		"email":    "login@example.com",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Result().Cookies(), "login should set a session cookie")
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, env.db.Create(&models.User{
		Name:         "Existing",
		Email:        "login@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}).Error)

	w := postJSON(t, env.router, "/api/auth/login", map[string]string{
		"email":    "login@example.com",
		"password": "not-the-password",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, apierrors.ErrCodeInvalidCredentials, body.Code)
}

func TestAuthHandler_Login_UnknownEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := postJSON(t, env.router, "/api/auth/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "whatever-it-is",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
