package handlers

import (
	"net/http"

	"campusbite/middleware"
	"campusbite/models"

	"github.com/gin-gonic/gin"
)

// GetRestaurantOrders returns the latest orders of the manager's restaurant
func GetRestaurantOrders(c *gin.Context) {
	orders, err := middleware.App(c).Workflow.ManagerOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	status := models.OrderStatus(c.Query("status"))
	summary := map[string]int{}
	filtered := orders[:0]
	for _, o := range orders {
		summary[string(o.Status)]++
		if status == "" || o.Status == status {
			filtered = append(filtered, o)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"count":         len(filtered),
		"orders":        filtered,
	})
}

type AssignDeliveryRequest struct {
	DeliveryPersonID   string `json:"delivery_person_id" binding:"required"`
	DeliveryPersonName string `json:"delivery_person_name" binding:"required"`
}

// AssignDelivery hands a pending order to a delivery person
func AssignDelivery(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req AssignDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	delivery, err := middleware.App(c).Workflow.AssignDelivery(c.Request.Context(), orderID, req.DeliveryPersonID, req.DeliveryPersonName)
	if err != nil && delivery == nil {
		respondError(c, err)
		return
	}
	resp := gin.H{
		"message":  "Order assigned to " + req.DeliveryPersonName,
		"delivery": delivery,
	}
	if err != nil {
		resp["warning"] = "customer notification failed: " + err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
