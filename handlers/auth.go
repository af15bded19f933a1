package handlers

import (
	"net/http"

	"campusbite/backend"
	"campusbite/middleware"
	"campusbite/models"
	"campusbite/profile"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Username string          `json:"username" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	Role     models.UserRole `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account and its profile
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be: student, hotel_manager, or delivery"})
		return
	}

	user, err := middleware.App(c).Profiles.Register(c.Request.Context(), profile.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"user":    user,
	})
}

// Login opens a session; later requests send its id in the session header
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active, err := middleware.App(c).Sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header(middleware.SessionHeader, active.Session.ID)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"session_id": active.Session.ID,
		"expires_at": active.Session.ExpiresAt,
		"user":       active.Profile,
	})
}

// Logout deletes the caller's session
func Logout(c *gin.Context) {
	if err := middleware.App(c).Sessions.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile returns the authenticated user's profile
func GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.Active(c).Profile})
}

// UpdateSettings changes username, language, visibility and avatar. It
// takes a multipart form so the avatar can ride along.
func UpdateSettings(c *gin.Context) {
	var upd profile.SettingsUpdate
	if v, ok := c.GetPostForm("username"); ok {
		upd.Username = &v
	}
	if v, ok := c.GetPostForm("language"); ok {
		upd.Language = &v
	}
	if v, ok := c.GetPostForm("is_public"); ok {
		public := v == "true" || v == "1"
		upd.IsPublic = &public
	}
	if fh, err := c.FormFile("avatar"); err == nil {
		data, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		upd.Avatar = &backend.FileInput{Name: fh.Filename, Data: data}
	}

	user, err := middleware.App(c).Profiles.UpdateSettings(c.Request.Context(), middleware.GetUserID(c), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated", "user": user})
}

// ListNotifications returns the caller's notifications, newest first
func ListNotifications(c *gin.Context) {
	list, err := middleware.App(c).Workflow.Notifications(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "notifications": list})
}

// MarkNotificationRead flags one notification as read
func MarkNotificationRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := middleware.App(c).Workflow.MarkNotificationRead(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read", "notification_id": id})
}
