// Package workflow runs the order lifecycle: placement, assignment to a
// delivery person, pick-up and delivery, with a notification on every step.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"campusbite/backend"
	"campusbite/metrics"
	"campusbite/models"
	"campusbite/notify"
	"campusbite/session"
	"campusbite/statemachine"

	"github.com/go-playground/validator/v10"
)

// RestaurantResolver finds the restaurant a manager runs.
type RestaurantResolver interface {
	GetOrCreateRestaurant(ctx context.Context, managerAccountID string) (*models.Restaurant, error)
}

type Service struct {
	client      *backend.Client
	sessions    *session.Store
	restaurants RestaurantResolver
	notifier    *notify.Notifier
	validate    *validator.Validate
}

func New(client *backend.Client, sessions *session.Store, restaurants RestaurantResolver, notifier *notify.Notifier) *Service {
	return &Service{
		client:      client,
		sessions:    sessions,
		restaurants: restaurants,
		notifier:    notifier,
		validate:    validator.New(),
	}
}

type OrderItem struct {
	FoodID string  `json:"food_id" validate:"required"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
}

type OrderInput struct {
	CustomerID    string               `json:"customer_id" validate:"required"`
	Items         []OrderItem          `json:"items" validate:"required,min=1,dive"`
	Total         float64              `json:"total" validate:"gte=0"`
	PaymentMethod models.PaymentMethod `json:"payment_method" validate:"required,oneof=telebirr mpesa"`
	Phone         string               `json:"phone" validate:"required,min=9,max=15,numeric"`
}

// CreateOrder places an order for the signed-in customer. Every item must
// come from the same restaurant. The stored total is recomputed from the
// stored item prices; a differing caller total is logged.
func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (*models.Order, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if _, err := s.sessions.EnsureActive(ctx, in.CustomerID); err != nil {
		return nil, err
	}
	log.Printf("Creating order for user %s", in.CustomerID)

	var (
		restaurantID string
		total        float64
		foodIDs      = make([]string, 0, len(in.Items))
	)
	for _, it := range in.Items {
		food, err := s.client.Foods.Get(ctx, it.FoodID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order: food item %s: %w", it.FoodID, err)
		}
		if food.RestaurantID == "" {
			return nil, fmt.Errorf("failed to create order: no restaurant found for food item %s", it.FoodID)
		}
		if _, err := backend.ValidateID(food.RestaurantID, "restaurant ID for food item "+it.FoodID); err != nil {
			return nil, err
		}
		if restaurantID == "" {
			restaurantID = food.RestaurantID
		} else if food.RestaurantID != restaurantID {
			return nil, &MixedRestaurantError{FoodItemID: it.FoodID, Expected: restaurantID, Actual: food.RestaurantID}
		}
		total += food.Price
		foodIDs = append(foodIDs, food.ID)
	}

	total = math.Round(total*100) / 100
	if math.Abs(total-in.Total) > 0.005 {
		log.Printf("WARN order total %.2f from client differs from item prices %.2f, using %.2f", in.Total, total, total)
	}

	order := &models.Order{
		CustomerUserID: in.CustomerID,
		RestaurantID:   restaurantID,
		FoodItemIDs:    foodIDs,
		Total:          total,
		PaymentMethod:  in.PaymentMethod,
		Phone:          in.Phone,
		Status:         statemachine.InitialStatus,
	}
	if err := s.client.Orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	metrics.OrderTransitions.WithLabelValues(string(order.Status)).Inc()
	log.Printf("Order %s created for restaurant %s", order.ID, restaurantID)
	return order, nil
}

// AssignDelivery hands a pending order of the manager's restaurant to a
// delivery person and tells the customer.
func (s *Service) AssignDelivery(ctx context.Context, orderID, deliveryPersonID, deliveryPersonName string) (*models.Delivery, error) {
	if orderID == "" || deliveryPersonID == "" || deliveryPersonName == "" {
		return nil, errors.New("order ID, delivery person ID, and name are required")
	}
	active, err := s.sessions.EnsureRole(ctx, models.RoleHotelManager)
	if err != nil {
		return nil, err
	}
	log.Printf("Assigning order %s to %s (%s)", orderID, deliveryPersonName, deliveryPersonID)

	order, err := s.client.Orders.Get(ctx, orderID)
	if backend.IsNotFound(err) {
		return nil, &AssignmentError{OrderID: orderID, Reason: "order not found", Err: err}
	}
	if err != nil {
		return nil, err
	}

	restaurant, err := s.restaurants.GetOrCreateRestaurant(ctx, active.AccountID)
	if err != nil {
		return nil, err
	}
	if order.RestaurantID != restaurant.ID {
		return nil, &AssignmentError{OrderID: orderID, Reason: "order belongs to another restaurant"}
	}

	courier, err := s.client.Users.Get(ctx, deliveryPersonID)
	if backend.IsNotFound(err) {
		return nil, &AssignmentError{OrderID: orderID, Reason: "delivery person not found", Err: err}
	}
	if err != nil {
		return nil, err
	}
	if courier.Role != models.RoleDelivery {
		return nil, &AssignmentError{OrderID: orderID, Reason: fmt.Sprintf("user %s is not a delivery person", courier.ID)}
	}

	if err := statemachine.CanTransition(order.Status, models.StatusAssigned, models.RoleHotelManager); err != nil {
		return nil, &AssignmentError{OrderID: orderID, Reason: fmt.Sprintf("order is %s, not pending", order.Status), Err: err}
	}
	_, err = s.client.Orders.Transition(ctx, orderID, backend.Transition{
		From:             models.StatusPending,
		To:               models.StatusAssigned,
		DeliveryPersonID: deliveryPersonID,
		ChangedBy:        active.UserID,
		Note:             "Assigned to " + deliveryPersonName,
	})
	if backend.IsConflict(err) {
		return nil, &AssignmentError{OrderID: orderID, Reason: "order is no longer pending", Err: err}
	}
	if err != nil {
		return nil, err
	}
	metrics.OrderTransitions.WithLabelValues(string(models.StatusAssigned)).Inc()

	delivery := &models.Delivery{
		OrderID:          orderID,
		DeliveryPersonID: deliveryPersonID,
		Name:             deliveryPersonName,
	}
	if err := s.client.Deliveries.Create(ctx, delivery); err != nil {
		s.releaseAssignment(ctx, orderID, active.UserID)
		return nil, fmt.Errorf("failed to create delivery record: %w", err)
	}
	log.Printf("Delivery %s created for order %s", delivery.ID, orderID)

	msg := fmt.Sprintf("Your order #%s has been assigned to %s.", models.ShortID(orderID), deliveryPersonName)
	if _, err := s.notifier.Notify(ctx, order.CustomerUserID, msg, orderID, delivery.ID); err != nil {
		return delivery, err
	}
	return delivery, nil
}

// releaseAssignment puts an assigned order back to pending after its
// delivery record could not be written, so a manager can assign it again.
func (s *Service) releaseAssignment(ctx context.Context, orderID, changedBy string) {
	_, err := s.client.Orders.Transition(ctx, orderID, backend.Transition{
		From:      models.StatusAssigned,
		To:        models.StatusPending,
		ChangedBy: changedBy,
		Note:      "Assignment released: delivery record failed",
	})
	if err != nil {
		log.Printf("WARN order %s is assigned without a delivery record: %v", orderID, err)
		return
	}
	log.Printf("WARN order %s released back to pending after delivery record failure", orderID)
}

// AcceptDelivery marks an assigned order as picked up by the signed-in
// delivery person and notifies both parties.
func (s *Service) AcceptDelivery(ctx context.Context, deliveryID, orderID string) (*models.Order, error) {
	active, delivery, order, err := s.deliveryStep(ctx, "accept", deliveryID, orderID, models.StatusPickedUp)
	if err != nil {
		return nil, err
	}
	updated, err := s.client.Orders.Transition(ctx, orderID, backend.Transition{
		From:      models.StatusAssigned,
		To:        models.StatusPickedUp,
		ChangedBy: active.UserID,
		Note:      "Picked up by " + delivery.Name,
	})
	if backend.IsConflict(err) {
		return nil, &AcceptError{Step: "accept", DeliveryID: deliveryID, OrderID: orderID, Reason: "order is no longer assigned", Err: err}
	}
	if err != nil {
		return nil, err
	}
	metrics.OrderTransitions.WithLabelValues(string(models.StatusPickedUp)).Inc()

	short := models.ShortID(orderID)
	if _, err := s.notifier.Notify(ctx, delivery.DeliveryPersonID,
		fmt.Sprintf("You have successfully picked up order #%s.", short), orderID, deliveryID); err != nil {
		return updated, err
	}
	if _, err := s.notifier.Notify(ctx, order.CustomerUserID,
		fmt.Sprintf("Your order #%s has been picked up by %s.", short, delivery.Name), orderID, deliveryID); err != nil {
		return updated, err
	}
	return updated, nil
}

// CompleteDelivery marks a picked-up order as delivered.
func (s *Service) CompleteDelivery(ctx context.Context, deliveryID, orderID string) (*models.Order, error) {
	active, delivery, order, err := s.deliveryStep(ctx, "complete", deliveryID, orderID, models.StatusDelivered)
	if err != nil {
		return nil, err
	}
	updated, err := s.client.Orders.Transition(ctx, orderID, backend.Transition{
		From:      models.StatusPickedUp,
		To:        models.StatusDelivered,
		ChangedBy: active.UserID,
		Note:      "Delivered by " + delivery.Name,
	})
	if backend.IsConflict(err) {
		return nil, &AcceptError{Step: "complete", DeliveryID: deliveryID, OrderID: orderID, Reason: "order is no longer picked up", Err: err}
	}
	if err != nil {
		return nil, err
	}
	metrics.OrderTransitions.WithLabelValues(string(models.StatusDelivered)).Inc()

	msg := fmt.Sprintf("Your order #%s has been delivered by %s.", models.ShortID(orderID), delivery.Name)
	if _, err := s.notifier.Notify(ctx, order.CustomerUserID, msg, orderID, deliveryID); err != nil {
		return updated, err
	}
	return updated, nil
}

// deliveryStep checks that the signed-in delivery person holds the delivery,
// that delivery and order belong together, and that the order can move to
// next.
func (s *Service) deliveryStep(ctx context.Context, step, deliveryID, orderID string, next models.OrderStatus) (*session.Active, *models.Delivery, *models.Order, error) {
	fail := func(reason string, err error) error {
		return &AcceptError{Step: step, DeliveryID: deliveryID, OrderID: orderID, Reason: reason, Err: err}
	}
	if deliveryID == "" || orderID == "" {
		return nil, nil, nil, fail("delivery ID and order ID are required", nil)
	}
	active, err := s.sessions.EnsureRole(ctx, models.RoleDelivery)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Printf("Delivery step %s: delivery %s, order %s", step, deliveryID, orderID)

	delivery, err := s.client.Deliveries.Get(ctx, deliveryID)
	if backend.IsNotFound(err) {
		return nil, nil, nil, fail("delivery not found", err)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	if delivery.OrderID != orderID {
		return nil, nil, nil, fail(fmt.Sprintf("delivery belongs to order %q", delivery.OrderID), nil)
	}
	if delivery.DeliveryPersonID != active.UserID {
		return nil, nil, nil, fail("delivery is assigned to another delivery person", nil)
	}

	order, err := s.client.Orders.Get(ctx, orderID)
	if backend.IsNotFound(err) {
		return nil, nil, nil, fail("order not found", err)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	if order.DeliveryPersonID != delivery.DeliveryPersonID {
		return nil, nil, nil, fail("order has been reassigned", nil)
	}
	if err := statemachine.CanTransition(order.Status, next, models.RoleDelivery); err != nil {
		return nil, nil, nil, fail(fmt.Sprintf("order is %s", order.Status), err)
	}
	return active, delivery, order, nil
}

// Assignment is a delivery record with its resolved order.
type Assignment struct {
	Delivery *models.Delivery `json:"delivery"`
	Order    *models.Order    `json:"order"`
	// Current is false when the order was reassigned since.
	Current bool `json:"current"`
}

// GetAssignments lists a delivery person's assignments, newest first.
// Records whose order cannot be resolved are logged and skipped; a failed
// listing is returned as an error.
func (s *Service) GetAssignments(ctx context.Context, deliveryPersonID string) ([]Assignment, error) {
	if _, err := backend.ValidateID(deliveryPersonID, "delivery person ID"); err != nil {
		return nil, err
	}
	deliveries, err := s.client.Deliveries.ListByDeliveryPerson(ctx, deliveryPersonID, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch delivery assignments: %w", err)
	}

	out := make([]Assignment, 0, len(deliveries))
	for _, d := range deliveries {
		if d.OrderID == "" {
			s.skip(d, "missing order reference")
			continue
		}
		order, err := s.client.Orders.Get(ctx, d.OrderID)
		if backend.IsNotFound(err) {
			s.skip(d, "order "+d.OrderID+" not found")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch order %s: %w", d.OrderID, err)
		}
		if !order.Status.AtLeast(models.StatusAssigned) {
			s.skip(d, "order "+d.OrderID+" is still "+string(order.Status))
			continue
		}
		out = append(out, Assignment{
			Delivery: d,
			Order:    order,
			Current:  order.DeliveryPersonID == deliveryPersonID,
		})
	}
	log.Printf("Fetched %d delivery assignments for %s", len(out), deliveryPersonID)
	return out, nil
}

func (s *Service) skip(d *models.Delivery, reason string) {
	metrics.SkippedRecords.WithLabelValues("delivery").Inc()
	log.Printf("WARN skipping delivery %s: %s", d.ID, reason)
}

// ManagerOrders lists the latest orders of the signed-in manager's
// restaurant.
func (s *Service) ManagerOrders(ctx context.Context) ([]*models.Order, error) {
	active, err := s.sessions.EnsureRole(ctx, models.RoleHotelManager)
	if err != nil {
		return nil, err
	}
	restaurant, err := s.restaurants.GetOrCreateRestaurant(ctx, active.AccountID)
	if err != nil {
		return nil, err
	}
	return s.client.Orders.ListByRestaurant(ctx, restaurant.ID, 50)
}

func (s *Service) CustomerOrders(ctx context.Context, customerID string) ([]*models.Order, error) {
	if _, err := s.sessions.EnsureActive(ctx, customerID); err != nil {
		return nil, err
	}
	return s.client.Orders.ListByCustomer(ctx, customerID, 50)
}

// Notifications lists a user's notifications; only that user may read them.
func (s *Service) Notifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	if _, err := s.sessions.EnsureActive(ctx, userID); err != nil {
		return nil, err
	}
	list, err := s.notifier.List(ctx, userID, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return list, nil
}

// MarkNotificationRead flags one of the caller's own notifications as read.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	active, err := s.sessions.EnsureActive(ctx, "")
	if err != nil {
		return err
	}
	note, err := s.notifier.Get(ctx, id)
	if err != nil {
		return err
	}
	if note.TargetUserID != active.UserID {
		return &session.Error{Reason: "notification belongs to another user"}
	}
	return s.notifier.MarkRead(ctx, id)
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, fe.Field())
	}
	return verr
}
