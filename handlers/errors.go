package handlers

import (
	"errors"
	"log"
	"net/http"

	"campusbite/backend"
	"campusbite/catalog"
	"campusbite/retry"
	"campusbite/session"
	"campusbite/workflow"

	"github.com/gin-gonic/gin"
)

// respondError writes err with the status its kind maps to.
func respondError(c *gin.Context, err error) {
	var (
		mixed    *workflow.MixedRestaurantError
		assign   *workflow.AssignmentError
		accept   *workflow.AcceptError
		orderVal *workflow.ValidationError
		foodVal  *catalog.ValidationError
		upload   *backend.UploadError
		limited  *retry.RateLimitError
		be       *backend.Error
	)
	switch {
	case session.IsSessionError(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &foodVal):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "fields": foodVal.Fields})
	case errors.As(err, &orderVal):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "fields": orderVal.Fields})
	case errors.As(err, &mixed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "food_item_id": mixed.FoodItemID})
	case errors.As(err, &assign):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "order_id": assign.OrderID, "reason": assign.Reason})
	case errors.As(err, &accept):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "order_id": accept.OrderID, "reason": accept.Reason})
	case errors.As(err, &upload), errors.Is(err, catalog.ErrRatingRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &limited), backend.IsRateLimited(err):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, backend.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.As(err, &be) && be.Code >= 400 && be.Code < 500:
		c.JSON(be.Code, gin.H{"error": err.Error(), "type": be.Type})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// idParam reads a path id, answering 400 when it is not a valid id.
func idParam(c *gin.Context, name string) (string, bool) {
	id, err := backend.ValidateID(c.Param(name), name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return id, true
}
