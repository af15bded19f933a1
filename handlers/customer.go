package handlers

import (
	"net/http"

	"campusbite/middleware"
	"campusbite/models"
	"campusbite/workflow"

	"github.com/gin-gonic/gin"
)

type PlaceOrderRequest struct {
	Items         []workflow.OrderItem `json:"items" binding:"required,min=1"`
	Total         float64              `json:"total"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
	Phone         string               `json:"phone" binding:"required"`
}

// PlaceOrder creates an order for the signed-in student. Every item must
// come from one restaurant; the total is recomputed from stored prices.
func PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := middleware.App(c).Workflow.CreateOrder(c.Request.Context(), workflow.OrderInput{
		CustomerID:    middleware.GetUserID(c),
		Items:         req.Items,
		Total:         req.Total,
		PaymentMethod: req.PaymentMethod,
		Phone:         req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetMyOrders returns the student's order history
func GetMyOrders(c *gin.Context) {
	orders, err := middleware.App(c).Workflow.CustomerOrders(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

type RateFoodRequest struct {
	Rating *float64 `json:"rating" binding:"required"`
}

// RateFood sets the rating of a food item
func RateFood(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req RateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := middleware.App(c).Catalog.UpdateFoodRating(c.Request.Context(), id, *req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rating updated", "food": item})
}
