package appwrite

import (
	"context"
	"log"
	"time"

	"campusbite/backend"
	"campusbite/models"
)

// Document shapes as stored in the Appwrite collections. Attribute names,
// misspellings included, are those of the live project.

type userDoc struct {
	ID        string    `mapstructure:"$id"`
	CreatedAt time.Time `mapstructure:"$createdAt"`
	UpdatedAt time.Time `mapstructure:"$updatedAt"`
	AccountID string    `mapstructure:"accountId"`
	Email     string    `mapstructure:"email"`
	Username  string    `mapstructure:"username"`
	Avatar    string    `mapstructure:"avatar"`
	Role      string    `mapstructure:"role"`
	Language  string    `mapstructure:"language"`
	IsPublic  *bool     `mapstructure:"isPublic"`
}

func (d userDoc) model() *models.User {
	u := &models.User{
		ID:        d.ID,
		AccountID: d.AccountID,
		Email:     d.Email,
		Username:  d.Username,
		AvatarURL: d.Avatar,
		Role:      models.UserRole(d.Role),
		Language:  d.Language,
		IsPublic:  d.IsPublic == nil || *d.IsPublic,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if u.Language == "" {
		u.Language = models.LanguageEnglish
	}
	return u
}

type restaurantDoc struct {
	ID        string    `mapstructure:"$id"`
	CreatedAt time.Time `mapstructure:"$createdAt"`
	UpdatedAt time.Time `mapstructure:"$updatedAt"`
	Users     []string  `mapstructure:"users"`
	Name      string    `mapstructure:"name"`
}

func (d restaurantDoc) model() *models.Restaurant {
	r := &models.Restaurant{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
	if len(d.Users) > 0 {
		r.OwnerUserID = d.Users[0]
	}
	return r
}

type foodDoc struct {
	ID           string    `mapstructure:"$id"`
	CreatedAt    time.Time `mapstructure:"$createdAt"`
	UpdatedAt    time.Time `mapstructure:"$updatedAt"`
	Name         string    `mapstructure:"name"`
	Description  string    `mapstructure:"description"`
	Price        float64   `mapstructure:"price"`
	Category     string    `mapstructure:"catagory"`
	ImageURL     string    `mapstructure:"image_url"`
	PostDate     time.Time `mapstructure:"postDate"`
	Available    *bool     `mapstructure:"Availablity"`
	Rating       float64   `mapstructure:"rating"`
	RestaurantID string    `mapstructure:"Restaurant_id"`
	Users        []string  `mapstructure:"users"`
}

func (d foodDoc) model() *models.FoodItem {
	return &models.FoodItem{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		Price:        d.Price,
		Category:     d.Category,
		ImageURL:     d.ImageURL,
		Available:    d.Available,
		Rating:       d.Rating,
		RestaurantID: d.RestaurantID,
		OwnerUserIDs: d.Users,
		PostDate:     d.PostDate,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type orderDoc struct {
	ID               string    `mapstructure:"$id"`
	CreatedAt        time.Time `mapstructure:"$createdAt"`
	UpdatedAt        time.Time `mapstructure:"$updatedAt"`
	Customer         string    `mapstructure:"users"`
	RestaurantID     string    `mapstructure:"restaurantId"`
	FoodDetails      []string  `mapstructure:"foodDetails"`
	Total            float64   `mapstructure:"total"`
	PaymentMethod    string    `mapstructure:"paymentMethod"`
	Phone            string    `mapstructure:"phone"`
	Status           string    `mapstructure:"status"`
	DeliveryPersonID string    `mapstructure:"deliveryPersonId"`
}

func (d orderDoc) model() *models.Order {
	return &models.Order{
		ID:               d.ID,
		CustomerUserID:   d.Customer,
		RestaurantID:     d.RestaurantID,
		FoodItemIDs:      d.FoodDetails,
		Total:            d.Total,
		PaymentMethod:    models.PaymentMethod(d.PaymentMethod),
		Phone:            d.Phone,
		Status:           models.OrderStatus(d.Status),
		DeliveryPersonID: d.DeliveryPersonID,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

type deliveryDoc struct {
	ID               string    `mapstructure:"$id"`
	CreatedAt        time.Time `mapstructure:"$createdAt"`
	UpdatedAt        time.Time `mapstructure:"$updatedAt"`
	Name             string    `mapstructure:"name"`
	Order            string    `mapstructure:"order"`
	DeliveryPersonID string    `mapstructure:"deliveryPersonId"`
}

func (d deliveryDoc) model() *models.Delivery {
	return &models.Delivery{
		ID:               d.ID,
		OrderID:          d.Order,
		DeliveryPersonID: d.DeliveryPersonID,
		Name:             d.Name,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

type notificationDoc struct {
	ID         string    `mapstructure:"$id"`
	UserID     string    `mapstructure:"userId"`
	Message    string    `mapstructure:"message"`
	OrderID    string    `mapstructure:"orderId"`
	DeliveryID string    `mapstructure:"deliveryId"`
	Read       bool      `mapstructure:"read"`
	CreatedAt  time.Time `mapstructure:"createdAt"`
}

func (d notificationDoc) model() *models.Notification {
	return &models.Notification{
		ID:           d.ID,
		TargetUserID: d.UserID,
		Message:      d.Message,
		OrderID:      d.OrderID,
		DeliveryID:   d.DeliveryID,
		Read:         d.Read,
		CreatedAt:    d.CreatedAt,
	}
}

// ownerPermissions lets anyone read and the signed-in account change a
// document.
func (col collection) ownerPermissions(read string) []string {
	_, accountID := col.c.session()
	if accountID == "" {
		return []string{read}
	}
	return []string{read, updateUser(accountID), deleteUser(accountID)}
}

type Users struct{ col collection }

func (r *Users) Create(ctx context.Context, user *models.User) error {
	var doc userDoc
	err := r.col.create(ctx, map[string]any{
		"accountId": user.AccountID,
		"email":     user.Email,
		"username":  user.Username,
		"avatar":    user.AvatarURL,
		"role":      string(user.Role),
		"language":  user.Language,
		"isPublic":  user.IsPublic,
	}, nil, &doc)
	if err != nil {
		return err
	}
	*user = *doc.model()
	return nil
}

func (r *Users) Get(ctx context.Context, id string) (*models.User, error) {
	var doc userDoc
	if err := r.col.get(ctx, id, &doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (r *Users) FindByAccount(ctx context.Context, accountID string) ([]*models.User, error) {
	var docs []userDoc
	if err := r.col.list(ctx, []query{equal("accountId", accountID), orderAsc("$createdAt")}, &docs); err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *Users) ListByRole(ctx context.Context, role models.UserRole, limit int) ([]*models.User, error) {
	var docs []userDoc
	qs := []query{equal("role", string(role)), limitTo(limitOrDefault(limit, 100))}
	if err := r.col.list(ctx, qs, &docs); err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *Users) Update(ctx context.Context, id string, patch backend.UserPatch) (*models.User, error) {
	data := map[string]any{}
	if patch.Username != nil {
		data["username"] = *patch.Username
	}
	if patch.AvatarURL != nil {
		data["avatar"] = *patch.AvatarURL
	}
	if patch.Language != nil {
		data["language"] = *patch.Language
	}
	if patch.IsPublic != nil {
		data["isPublic"] = *patch.IsPublic
	}
	var doc userDoc
	if err := r.col.update(ctx, id, data, &doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

// Restaurants cannot carry a unique index here; concurrent creations are
// resolved by the caller re-reading the oldest record.
type Restaurants struct{ col collection }

func (r *Restaurants) Create(ctx context.Context, restaurant *models.Restaurant) error {
	var doc restaurantDoc
	err := r.col.create(ctx, map[string]any{
		"users": []string{restaurant.OwnerUserID},
		"name":  restaurant.Name,
	}, r.col.ownerPermissions(readAny()), &doc)
	if err != nil {
		return err
	}
	*restaurant = *doc.model()
	return nil
}

func (r *Restaurants) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	var doc restaurantDoc
	if err := r.col.get(ctx, id, &doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (r *Restaurants) FindByOwner(ctx context.Context, ownerUserID string) ([]*models.Restaurant, error) {
	var docs []restaurantDoc
	if err := r.col.list(ctx, []query{equal("users", ownerUserID), orderAsc("$createdAt")}, &docs); err != nil {
		return nil, err
	}
	out := make([]*models.Restaurant, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

type Foods struct{ col collection }

func (r *Foods) Create(ctx context.Context, item *models.FoodItem) error {
	if item.PostDate.IsZero() {
		item.PostDate = time.Now()
	}
	data := map[string]any{
		"name":          item.Name,
		"description":   item.Description,
		"price":         item.Price,
		"catagory":      item.Category,
		"image_url":     item.ImageURL,
		"postDate":      item.PostDate.UTC().Format(time.RFC3339),
		"Availablity":   item.IsAvailable(),
		"rating":        item.Rating,
		"Restaurant_id": item.RestaurantID,
		"users":         item.OwnerUserIDs,
	}
	var doc foodDoc
	if err := r.col.create(ctx, data, r.col.ownerPermissions(readAny()), &doc); err != nil {
		return err
	}
	*item = *doc.model()
	return nil
}

func (r *Foods) Get(ctx context.Context, id string) (*models.FoodItem, error) {
	var doc foodDoc
	if err := r.col.get(ctx, id, &doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (r *Foods) List(ctx context.Context, opts backend.ListOptions) ([]*models.FoodItem, error) {
	qs := []query{orderDesc("$createdAt")}
	if opts.Limit > 0 {
		qs = append(qs, limitTo(opts.Limit))
	}
	if opts.Offset > 0 {
		qs = append(qs, offsetBy(opts.Offset))
	}
	return r.list(ctx, qs)
}

func (r *Foods) ListByRestaurant(ctx context.Context, restaurantID string, limit int) ([]*models.FoodItem, error) {
	return r.list(ctx, []query{
		equal("Restaurant_id", restaurantID),
		orderDesc("$createdAt"),
		limitTo(limitOrDefault(limit, 100)),
	})
}

func (r *Foods) list(ctx context.Context, qs []query) ([]*models.FoodItem, error) {
	var docs []foodDoc
	if err := r.col.list(ctx, qs, &docs); err != nil {
		return nil, err
	}
	out := make([]*models.FoodItem, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *Foods) Update(ctx context.Context, id string, p backend.FoodPatch) (*models.FoodItem, error) {
	data := map[string]any{}
	if p.Name != nil {
		data["name"] = *p.Name
	}
	if p.Description != nil {
		data["description"] = *p.Description
	}
	if p.Category != nil {
		data["catagory"] = *p.Category
	}
	if p.ImageURL != nil {
		data["image_url"] = *p.ImageURL
	}
	if p.RestaurantID != nil {
		data["Restaurant_id"] = *p.RestaurantID
	}
	if p.Price != nil {
		data["price"] = *p.Price
	}
	if p.Rating != nil {
		data["rating"] = *p.Rating
	}
	if p.Available != nil {
		data["Availablity"] = *p.Available
	}
	if p.OwnerUserIDs != nil {
		data["users"] = p.OwnerUserIDs
	}
	if p.PostDate != nil {
		data["postDate"] = p.PostDate.UTC().Format(time.RFC3339)
	}
	var doc foodDoc
	if err := r.col.update(ctx, id, data, &doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

type Orders struct{ col collection }

func (r *Orders) Create(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC().Format(time.RFC3339)
	data := map[string]any{
		"users":         order.CustomerUserID,
		"restaurant":    []string{order.RestaurantID},
		"restaurantId":  order.RestaurantID,
		"foodDetails":   order.FoodItemIDs,
		"total":         order.Total,
		"paymentMethod": string(order.PaymentMethod),
		"phone":         order.Phone,
		"status":        string(order.Status),
		"createdAt":     now,
		"updatedAt":     now,
	}
	var doc orderDoc
	if err := r.col.create(ctx, data, r.col.ownerPermissions(readUsers()), &doc); err != nil {
		return err
	}
	*order = *doc.model()
	return nil
}

func (r *Orders) Get(ctx context.Context, id string) (*models.Order, error) {
	var doc orderDoc
	if err := r.col.get(ctx, id, &doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (r *Orders) ListByRestaurant(ctx context.Context, restaurantID string, limit int) ([]*models.Order, error) {
	return r.list(ctx, []query{
		equal("restaurantId", restaurantID),
		orderDesc("$createdAt"),
		limitTo(limitOrDefault(limit, 50)),
	})
}

func (r *Orders) ListByCustomer(ctx context.Context, customerUserID string, limit int) ([]*models.Order, error) {
	return r.list(ctx, []query{
		equal("users", customerUserID),
		orderDesc("$createdAt"),
		limitTo(limitOrDefault(limit, 50)),
	})
}

func (r *Orders) list(ctx context.Context, qs []query) ([]*models.Order, error) {
	var docs []orderDoc
	if err := r.col.list(ctx, qs, &docs); err != nil {
		return nil, err
	}
	out := make([]*models.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

// Transition reads, checks and writes. Appwrite has no conditional update,
// so two writers racing between the read and the write can both succeed.
func (r *Orders) Transition(ctx context.Context, id string, t backend.Transition) (*models.Order, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != t.From {
		return nil, backend.Conflict("order %s is %s, not %s", id, current.Status, t.From)
	}
	data := map[string]any{
		"status":    string(t.To),
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if t.DeliveryPersonID != "" {
		data["deliveryPersonId"] = t.DeliveryPersonID
	}
	var doc orderDoc
	if err := r.col.update(ctx, id, data, &doc); err != nil {
		return nil, err
	}
	log.Printf("Order %s moved %s -> %s by %s", id, t.From, t.To, t.ChangedBy)
	return doc.model(), nil
}

type Deliveries struct{ col collection }

func (r *Deliveries) Create(ctx context.Context, delivery *models.Delivery) error {
	data := map[string]any{
		"name":             delivery.Name,
		"order":            delivery.OrderID,
		"deliveryPersonId": delivery.DeliveryPersonID,
	}
	perms := append(r.col.ownerPermissions(readAny()), readUsers())
	var doc deliveryDoc
	if err := r.col.create(ctx, data, perms, &doc); err != nil {
		return err
	}
	*delivery = *doc.model()
	return nil
}

func (r *Deliveries) Get(ctx context.Context, id string) (*models.Delivery, error) {
	var doc deliveryDoc
	if err := r.col.get(ctx, id, &doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (r *Deliveries) ListByDeliveryPerson(ctx context.Context, deliveryPersonID string, limit int) ([]*models.Delivery, error) {
	var docs []deliveryDoc
	qs := []query{
		equal("deliveryPersonId", deliveryPersonID),
		orderDesc("$createdAt"),
		limitTo(limitOrDefault(limit, 50)),
	}
	if err := r.col.list(ctx, qs, &docs); err != nil {
		return nil, err
	}
	out := make([]*models.Delivery, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

type Notifications struct{ col collection }

func (r *Notifications) Create(ctx context.Context, n *models.Notification) error {
	data := map[string]any{
		"userId":     n.TargetUserID,
		"message":    n.Message,
		"orderId":    n.OrderID,
		"deliveryId": n.DeliveryID,
		"read":       n.Read,
		"createdAt":  time.Now().UTC().Format(time.RFC3339),
	}
	perms := []string{readUser(n.TargetUserID), updateUser(n.TargetUserID), deleteUser(n.TargetUserID)}
	var doc notificationDoc
	if err := r.col.create(ctx, data, perms, &doc); err != nil {
		return err
	}
	*n = *doc.model()
	return nil
}

func (r *Notifications) Get(ctx context.Context, id string) (*models.Notification, error) {
	var doc notificationDoc
	if err := r.col.get(ctx, id, &doc); err != nil {
		return nil, err
	}
	return doc.model(), nil
}

func (r *Notifications) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	var docs []notificationDoc
	qs := []query{equal("userId", userID), orderDesc("createdAt"), limitTo(limitOrDefault(limit, 50))}
	if err := r.col.list(ctx, qs, &docs); err != nil {
		return nil, err
	}
	out := make([]*models.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *Notifications) MarkRead(ctx context.Context, id string) error {
	return r.col.update(ctx, id, map[string]any{"read": true}, nil)
}

func limitOrDefault(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}
