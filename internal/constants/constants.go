package constants

// Session and context keys
const (
	SessionCookieName  = "todo_session"
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
)

// Validation limits
const (
	MinPasswordLength = 8
)
