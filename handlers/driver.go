package handlers

import (
	"net/http"

	"campusbite/middleware"
	"campusbite/models"

	"github.com/gin-gonic/gin"
)

// GetMyDeliveries returns the delivery person's assignments, newest first
func GetMyDeliveries(c *gin.Context) {
	assignments, err := middleware.App(c).Workflow.GetAssignments(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(assignments), "deliveries": assignments})
}

type DeliveryStepRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

// AcceptDelivery marks the order as picked up: assigned → picked_up
func AcceptDelivery(c *gin.Context) {
	deliveryStep(c, "Order picked up", func(c *gin.Context, deliveryID, orderID string) (*models.Order, error) {
		return middleware.App(c).Workflow.AcceptDelivery(c.Request.Context(), deliveryID, orderID)
	})
}

// CompleteDelivery marks the order as delivered: picked_up → delivered
func CompleteDelivery(c *gin.Context) {
	deliveryStep(c, "Order delivered successfully", func(c *gin.Context, deliveryID, orderID string) (*models.Order, error) {
		return middleware.App(c).Workflow.CompleteDelivery(c.Request.Context(), deliveryID, orderID)
	})
}

func deliveryStep(c *gin.Context, message string, step func(c *gin.Context, deliveryID, orderID string) (*models.Order, error)) {
	deliveryID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req DeliveryStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := step(c, deliveryID, req.OrderID)
	if err != nil && order == nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"message": message, "order": order}
	if err != nil {
		resp["warning"] = "notification failed: " + err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
