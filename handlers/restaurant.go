package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"campusbite/backend"
	"campusbite/catalog"
	"campusbite/middleware"
	"campusbite/models"

	"github.com/gin-gonic/gin"
)

// ── Restaurant Management ────────────────────────────────────────────────────

// GetMyRestaurant fetches the manager's restaurant, creating it on first use
func GetMyRestaurant(c *gin.Context) {
	restaurant, err := middleware.App(c).Catalog.GetOrCreateRestaurant(c.Request.Context(), middleware.Active(c).AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

// ── Food Posts ───────────────────────────────────────────────────────────────

// PostFood publishes a food item with its image. The form carries
// foodName, foodDesc, foodPrice, foodCategory, availability and the
// image file.
func PostFood(c *gin.Context) {
	in := catalog.FoodInput{
		Name:        c.PostForm("foodName"),
		Description: c.PostForm("foodDesc"),
		Category:    c.PostForm("foodCategory"),
	}
	if v := c.PostForm("foodPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "foodPrice must be a number", "fields": []string{"foodPrice"}})
			return
		}
		in.Price = price
	}
	if v, ok := c.GetPostForm("availability"); ok {
		in.Available = models.Bool(v == "true" || v == "1")
	}
	if v := c.PostForm("postDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			in.PostDate = t
		}
	}
	if fh, err := c.FormFile("image"); err == nil {
		data, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		in.ImageName = fh.Filename
		in.Image = data
	}

	item, err := middleware.App(c).Catalog.PostFood(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Food item posted", "food": item})
}

// GetMyFoods lists the food items of the manager's restaurant
func GetMyFoods(c *gin.Context) {
	items, err := middleware.App(c).Catalog.ManagerFoodPosts(c.Request.Context(), middleware.Active(c).AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "foods": items})
}

// VerifyFoods repairs the manager's food items and adopts orphaned ones
func VerifyFoods(c *gin.Context) {
	updated, err := middleware.App(c).Catalog.VerifyFoodItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food items verified", "updated": updated})
}

// DeliveryPersonnel lists the delivery people an order can go to
func DeliveryPersonnel(c *gin.Context) {
	people, err := middleware.App(c).Profiles.DeliveryPersonnel(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(people), "delivery_personnel": people})
}

// readUpload reads a form file, refusing anything over the bucket limit.
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > backend.MaxUploadSize {
		return nil, fmt.Errorf("file %s exceeds 5MB limit", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, backend.MaxUploadSize+1))
}
