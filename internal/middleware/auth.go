package middleware

import (
	"github.com/Sayan-dev731/attendance-api/internal/constants"
	"github.com/Sayan-dev731/attendance-api/internal/database"
	apierrors "github.com/Sayan-dev731/attendance-api/internal/errors"
	"github.com/Sayan-dev731/attendance-api/internal/models"
	"github.com/Sayan-dev731/attendance-api/internal/policy"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// RequireAuth checks the session and resolves the caller. The user row is
// loaded on every request so role and status changes take effect immediately;
// inactive accounts are rejected.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		sessionUserID := session.Get(constants.ContextKeyUserID)

		if sessionUserID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		userID, ok := asUint64(sessionUserID)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var user models.User
		if err := database.GetDB().First(&user, userID).Error; err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if user.Status != models.UserStatusActive {
			apierrors.Forbidden(c, "Account is inactive")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUserRole, user.Role)
		c.Next()
	}
}

// RequireRole allows only callers whose role is in the given set. Must run
// after RequireAuth.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, exists := GetCaller(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		for _, role := range roles {
			if caller.Role == role {
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, "")
		c.Abort()
	}
}

// GetCaller retrieves the authenticated caller from the gin context.
func GetCaller(c *gin.Context) (policy.Caller, bool) {
	userID, exists := GetUserID(c)
	if !exists {
		return policy.Caller{}, false
	}

	roleValue, exists := c.Get(constants.ContextKeyUserRole)
	if !exists {
		return policy.Caller{}, false
	}
	role, ok := roleValue.(models.UserRole)
	if !ok {
		return policy.Caller{}, false
	}

	return policy.Caller{ID: userID, Role: role}, true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return asUint64(userID)
}

func asUint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
