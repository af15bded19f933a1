package middleware

import (
	"net/http"
	"strings"

	"campusbite/app"
	"campusbite/models"
	"campusbite/session"

	"github.com/gin-gonic/gin"
)

// SessionHeader carries the session id returned by login.
const SessionHeader = "X-Session-Id"

const (
	appKey    = "app"
	activeKey = "active"
)

// AppFactory builds an application over a request-scoped local store.
type AppFactory func(kv session.KV) (*app.App, error)

// Session gives every request its own application, seeded with the session
// id from the request header. Requests share nothing but the backend.
func Session(newApp AppFactory) gin.HandlerFunc {
	return func(c *gin.Context) {
		kv := session.NewMemoryKV()
		if token := strings.TrimSpace(c.GetHeader(SessionHeader)); token != "" {
			_ = kv.Set(session.SessionKey, token)
		}
		a, err := newApp(kv)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		c.Set(appKey, a)
		c.Next()
	}
}

// AuthRequired validates the session and injects the caller into context
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(SessionHeader) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session header required (" + SessionHeader + ": <session id>)"})
			c.Abort()
			return
		}
		active, err := App(c).Sessions.EnsureActive(c.Request.Context(), "")
		if err != nil {
			status := http.StatusUnauthorized
			if !session.IsSessionError(err) {
				status = http.StatusBadGateway
			}
			c.JSON(status, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		c.Set(activeKey, active)
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		active := Active(c)
		if active == nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found in context"})
			c.Abort()
			return
		}
		for _, r := range roles {
			if active.Profile.Role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied. Required role(s): " + rolesString(roles),
		})
		c.Abort()
	}
}

func rolesString(roles []models.UserRole) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// App returns the request's application.
func App(c *gin.Context) *app.App {
	return c.MustGet(appKey).(*app.App)
}

// Active returns the caller's session, or nil outside AuthRequired.
func Active(c *gin.Context) *session.Active {
	val, ok := c.Get(activeKey)
	if !ok {
		return nil
	}
	return val.(*session.Active)
}

// GetUserID extracts caller profile ID from context
func GetUserID(c *gin.Context) string {
	return Active(c).UserID
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	return Active(c).Profile.Role
}
