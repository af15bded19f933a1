package handlers

import (
	"net/http"
	"strconv"

	"campusbite/middleware"
	"campusbite/statemachine"

	"github.com/gin-gonic/gin"
)

// ListFoods returns one page of food posts, newest first (public)
func ListFoods(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit > 100 {
		limit = 100
	}

	items, err := middleware.App(c).Catalog.ListFoodPosts(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page":  page,
		"count": len(items),
		"foods": items,
	})
}

// GetFood returns a single food item
func GetFood(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := middleware.App(c).Catalog.GetFood(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"food": item})
}

// GetStateMachineInfo returns the full state machine for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": []string{"delivered"},
		"description":     "Campus Food Order Lifecycle State Machine",
	})
}
