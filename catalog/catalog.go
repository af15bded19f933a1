// Package catalog keeps restaurants and their food items consistent: one
// restaurant per manager, and food items that always reference it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"reflect"
	"slices"
	"strings"
	"time"

	"campusbite/backend"
	"campusbite/metrics"
	"campusbite/models"
	"campusbite/profile"
	"campusbite/session"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
)

// PlaceholderImage stands in for a missing food image.
const PlaceholderImage = "https://via.placeholder.com/150"

type Catalog struct {
	client   *backend.Client
	sessions *session.Store
	profiles *profile.Resolver
	validate *validator.Validate
	creating singleflight.Group
}

func New(client *backend.Client, sessions *session.Store, profiles *profile.Resolver) *Catalog {
	v := validator.New()
	// Report fields by their form names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("field"); name != "" {
			return name
		}
		return f.Name
	})
	return &Catalog{client: client, sessions: sessions, profiles: profiles, validate: v}
}

// GetOrCreateRestaurant returns the manager's restaurant, creating it on
// first use. Calls for the same manager share one lookup, and the storage
// layer's unique owner index catches creations racing from elsewhere.
func (c *Catalog) GetOrCreateRestaurant(ctx context.Context, managerAccountID string) (*models.Restaurant, error) {
	if _, err := backend.ValidateID(managerAccountID, "manager account ID"); err != nil {
		return nil, err
	}
	v, err, _ := c.creating.Do(managerAccountID, func() (interface{}, error) {
		return c.getOrCreateRestaurant(ctx, managerAccountID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Restaurant), nil
}

func (c *Catalog) getOrCreateRestaurant(ctx context.Context, managerAccountID string) (*models.Restaurant, error) {
	manager, err := c.profiles.GetProfile(ctx, managerAccountID)
	if err != nil {
		return nil, err
	}
	if manager.Role != models.RoleHotelManager {
		return nil, fmt.Errorf("user %s is not a hotel manager", manager.ID)
	}

	existing, err := c.findRestaurant(ctx, manager.ID)
	if err != nil || existing != nil {
		return existing, err
	}

	log.Printf("Creating new restaurant for manager %s", manager.ID)
	restaurant := &models.Restaurant{
		OwnerUserID: manager.ID,
		Name:        fmt.Sprintf("%s's Restaurant", manager.Username),
	}
	err = c.client.Restaurants.Create(ctx, restaurant)
	if backend.IsConflict(err) {
		log.Printf("Restaurant for manager %s created concurrently, re-reading", manager.ID)
		existing, err := c.findRestaurant(ctx, manager.ID)
		if err == nil && existing == nil {
			err = fmt.Errorf("restaurant for manager %s conflicted but cannot be found", manager.ID)
		}
		return existing, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}
	return restaurant, nil
}

// findRestaurant returns the oldest restaurant of owner, or nil.
func (c *Catalog) findRestaurant(ctx context.Context, ownerUserID string) (*models.Restaurant, error) {
	list, err := c.client.Restaurants.FindByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up restaurant: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	if len(list) > 1 {
		log.Printf("WARN manager %s owns %d restaurants, using oldest %s", ownerUserID, len(list), list[0].ID)
	}
	return list[0], nil
}

type FoodInput struct {
	Name        string    `field:"foodName" validate:"required"`
	Description string    `field:"foodDesc" validate:"required"`
	Price       float64   `field:"foodPrice" validate:"gt=0"`
	Category    string    `field:"foodCategory" validate:"required"`
	ImageName   string    `field:"imageURI"`
	Image       []byte    `field:"imageURI" validate:"required,min=1"`
	Available   *bool     `field:"availability"`
	PostDate    time.Time `field:"postDate"`
}

func (c *Catalog) validateFood(in *FoodInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)

	verr := &ValidationError{}
	var fieldErrs validator.ValidationErrors
	if err := c.validate.Struct(in); errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.Fields = append(verr.Fields, fe.Field())
		}
	} else if err != nil {
		return err
	}
	if math.IsInf(in.Price, 0) && !slices.Contains(verr.Fields, "foodPrice") {
		verr.Fields = append(verr.Fields, "foodPrice")
	}
	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

// PostFood validates the input, then uploads the image and creates the
// food item on the manager's restaurant. Nothing remote happens when
// validation fails. A failed create after a successful upload leaves the
// file behind; that is logged, not rolled back.
func (c *Catalog) PostFood(ctx context.Context, in FoodInput) (*models.FoodItem, error) {
	if err := c.validateFood(&in); err != nil {
		return nil, err
	}

	active, err := c.sessions.EnsureRole(ctx, models.RoleHotelManager)
	if err != nil {
		return nil, err
	}
	restaurant, err := c.GetOrCreateRestaurant(ctx, active.AccountID)
	if err != nil {
		return nil, err
	}

	log.Printf("Uploading image for %q", in.Name)
	file, err := c.client.Files.Upload(ctx, backend.FileInput{Name: in.ImageName, Data: in.Image})
	if err != nil {
		return nil, err
	}
	log.Printf("File uploaded, file ID: %s", file.ID)

	postDate := in.PostDate
	if postDate.IsZero() {
		postDate = time.Now()
	}
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	item := &models.FoodItem{
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Category:     in.Category,
		ImageURL:     c.client.Files.ViewURL(file.ID),
		Available:    models.Bool(available),
		Rating:       0,
		RestaurantID: restaurant.ID,
		OwnerUserIDs: []string{active.UserID},
		PostDate:     postDate,
	}
	if err := c.client.Foods.Create(ctx, item); err != nil {
		metrics.OrphanedUploads.Inc()
		log.Printf("WARN food creation failed, uploaded file %s is orphaned: %v", file.ID, err)
		return nil, fmt.Errorf("food creation failed: %w", err)
	}
	log.Printf("Food item %s posted to restaurant %s", item.ID, restaurant.ID)
	return item, nil
}

// ListFoodPosts returns a page of food items, newest first. Malformed
// records are logged and skipped; the rest come back repaired.
func (c *Catalog) ListFoodPosts(ctx context.Context, page, limit int) ([]*models.FoodItem, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	items, err := c.client.Foods.List(ctx, backend.ListOptions{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch food posts: %w", err)
	}

	out := make([]*models.FoodItem, 0, len(items))
	for _, item := range items {
		if reason := malformed(item); reason != "" {
			metrics.SkippedRecords.WithLabelValues("food").Inc()
			log.Printf("WARN skipping food item %q: %s", item.ID, reason)
			continue
		}
		repaired, _ := RepairFoodItem(*item)
		out = append(out, &repaired)
	}
	if skipped := len(items) - len(out); skipped > 0 {
		log.Printf("WARN skipped %d invalid food items", skipped)
	}
	return out, nil
}

func malformed(item *models.FoodItem) string {
	switch {
	case item == nil || item.ID == "":
		return "missing id"
	case item.Name == "":
		return "missing name"
	case math.IsNaN(item.Price) || item.Price < 0:
		return "invalid price"
	case item.ImageURL == "":
		return "missing image"
	}
	if item.RestaurantID != "" {
		if _, err := backend.ValidateID(item.RestaurantID, "restaurant ID for food "+item.ID); err != nil {
			return err.Error()
		}
	}
	return ""
}

func (c *Catalog) GetFood(ctx context.Context, id string) (*models.FoodItem, error) {
	if _, err := backend.ValidateID(id, "food ID"); err != nil {
		return nil, err
	}
	item, err := c.client.Foods.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	repaired, _ := RepairFoodItem(*item)
	return &repaired, nil
}

// ManagerFoodPosts lists the latest items of the manager's restaurant.
func (c *Catalog) ManagerFoodPosts(ctx context.Context, managerAccountID string) ([]*models.FoodItem, error) {
	restaurant, err := c.GetOrCreateRestaurant(ctx, managerAccountID)
	if err != nil {
		return nil, err
	}
	items, err := c.client.Foods.ListByRestaurant(ctx, restaurant.ID, 50)
	if err != nil {
		return nil, err
	}
	out := make([]*models.FoodItem, 0, len(items))
	for _, item := range items {
		repaired, _ := RepairFoodItem(*item)
		out = append(out, &repaired)
	}
	return out, nil
}

// UpdateFoodRating sets a rating between 0 and 5.
func (c *Catalog) UpdateFoodRating(ctx context.Context, id string, rating float64) (*models.FoodItem, error) {
	if math.IsNaN(rating) || rating < 0 || rating > 5 {
		return nil, ErrRatingRange
	}
	if _, err := c.sessions.EnsureActive(ctx, ""); err != nil {
		return nil, err
	}
	if _, err := backend.ValidateID(id, "food ID"); err != nil {
		return nil, err
	}
	log.Printf("Updating food rating of %s to %.1f", id, rating)
	return c.client.Foods.Update(ctx, id, backend.FoodPatch{Rating: &rating})
}

// VerifyFoodItems persists repairs for the signed-in manager's items and
// for items that lost their restaurant, which are adopted by the manager.
// It returns how many items were updated.
func (c *Catalog) VerifyFoodItems(ctx context.Context) (int, error) {
	active, err := c.sessions.EnsureRole(ctx, models.RoleHotelManager)
	if err != nil {
		return 0, err
	}
	restaurant, err := c.GetOrCreateRestaurant(ctx, active.AccountID)
	if err != nil {
		return 0, err
	}
	log.Printf("Verifying food items for manager %s", active.UserID)

	items, err := c.client.Foods.List(ctx, backend.ListOptions{Limit: 100})
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, item := range items {
		if item.RestaurantID != "" && item.RestaurantID != restaurant.ID {
			continue
		}
		repaired, patch := RepairFoodItem(*item)
		if repaired.RestaurantID == "" {
			patch.RestaurantID = &restaurant.ID
		}
		if len(repaired.OwnerUserIDs) == 0 {
			patch.OwnerUserIDs = []string{active.UserID}
		}
		if repaired.Name == "" {
			name := "Unnamed Food"
			patch.Name = &name
		}
		if math.IsNaN(repaired.Price) || repaired.Price < 0 {
			zero := 0.0
			patch.Price = &zero
		}
		if repaired.ImageURL == "" {
			img := PlaceholderImage
			patch.ImageURL = &img
		}
		if patch.Empty() {
			continue
		}
		log.Printf("Repairing food item %s", item.ID)
		if _, err := c.client.Foods.Update(ctx, item.ID, patch); err != nil {
			return updated, fmt.Errorf("failed to repair food item %s: %w", item.ID, err)
		}
		updated++
	}
	log.Printf("Food item verification complete, %d repaired", updated)
	return updated, nil
}
