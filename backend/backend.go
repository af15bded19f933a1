// Package backend declares the hosted backend surface the workflow core is
// built on: identity sessions, one document repository per collection, and
// file storage. Drivers live in subpackages.
package backend

import (
	"context"
	"time"

	"campusbite/models"
)

// CurrentSessionID addresses the session the driver currently holds.
const CurrentSessionID = "current"

// Account is the identity-service record behind a profile.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an authenticated session. UserID is the owning account id.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Current   bool      `json:"current"`
}

type Auth interface {
	CreateAccount(ctx context.Context, email, password, name string) (*Account, error)
	CreateSession(ctx context.Context, email, password string) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	// Resume validates a session id handed out earlier, possibly to another
	// process, and makes it the driver's current session.
	Resume(ctx context.Context, id string) (*Session, error)
	// CurrentSession returns the session the driver retained on its own,
	// outside any explicit cache kept by the caller.
	CurrentSession(ctx context.Context) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	UpdateName(ctx context.Context, name string) error
}

type ListOptions struct {
	Limit  int
	Offset int
}

// UserPatch updates a profile. The email belongs to the account and is not
// patched here.
type UserPatch struct {
	Username  *string
	AvatarURL *string
	Language  *string
	IsPublic  *bool
}

type Users interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	FindByAccount(ctx context.Context, accountID string) ([]*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole, limit int) ([]*models.User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*models.User, error)
}

type Restaurants interface {
	Create(ctx context.Context, restaurant *models.Restaurant) error
	Get(ctx context.Context, id string) (*models.Restaurant, error)
	FindByOwner(ctx context.Context, ownerUserID string) ([]*models.Restaurant, error)
}

type FoodPatch struct {
	Name         *string
	Description  *string
	Category     *string
	ImageURL     *string
	RestaurantID *string
	Price        *float64
	Rating       *float64
	Available    *bool
	OwnerUserIDs []string
	PostDate     *time.Time
}

// Empty reports whether the patch changes nothing.
func (p FoodPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil &&
		p.ImageURL == nil && p.RestaurantID == nil && p.Price == nil &&
		p.Rating == nil && p.Available == nil && p.OwnerUserIDs == nil && p.PostDate == nil
}

type Foods interface {
	Create(ctx context.Context, item *models.FoodItem) error
	Get(ctx context.Context, id string) (*models.FoodItem, error)
	// List returns items newest first.
	List(ctx context.Context, opts ListOptions) ([]*models.FoodItem, error)
	ListByRestaurant(ctx context.Context, restaurantID string, limit int) ([]*models.FoodItem, error)
	Update(ctx context.Context, id string, patch FoodPatch) (*models.FoodItem, error)
}

// Transition describes a conditional status change of an order.
type Transition struct {
	From             models.OrderStatus
	To               models.OrderStatus
	DeliveryPersonID string // set on the order when non-empty
	ChangedBy        string
	Note             string
}

type Orders interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	ListByRestaurant(ctx context.Context, restaurantID string, limit int) ([]*models.Order, error)
	ListByCustomer(ctx context.Context, customerUserID string, limit int) ([]*models.Order, error)
	// Transition moves the order from t.From to t.To. It fails with
	// ErrConflict when the stored status is not t.From.
	Transition(ctx context.Context, id string, t Transition) (*models.Order, error)
}

type Deliveries interface {
	Create(ctx context.Context, delivery *models.Delivery) error
	Get(ctx context.Context, id string) (*models.Delivery, error)
	ListByDeliveryPerson(ctx context.Context, deliveryPersonID string, limit int) ([]*models.Delivery, error)
}

type Notifications interface {
	Create(ctx context.Context, n *models.Notification) error
	Get(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type Files interface {
	Upload(ctx context.Context, in FileInput) (*File, error)
	ViewURL(fileID string) string
	Delete(ctx context.Context, fileID string) error
}

// Client bundles one driver's implementation of every surface.
type Client struct {
	Auth          Auth
	Users         Users
	Restaurants   Restaurants
	Foods         Foods
	Orders        Orders
	Deliveries    Deliveries
	Notifications Notifications
	Files         Files
}
