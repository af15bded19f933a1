package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"campusbite/app"
	"campusbite/backend"
	"campusbite/backend/gormstore"
	"campusbite/internal/apptest"
	"campusbite/models"
	"campusbite/session"
	"campusbite/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *gormstore.Store
	manager  *app.App
	student  *app.App
	courier  *app.App
	mgrUser  *models.User
	stuUser  *models.User
	courUser *models.User
	foods    []*models.FoodItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: apptest.NewStore(t)}
	f.manager, f.mgrUser = apptest.SignedIn(t, f.store, "abebe", models.RoleHotelManager)
	f.student, f.stuUser = apptest.SignedIn(t, f.store, "hana", models.RoleStudent)
	f.courier, f.courUser = apptest.SignedIn(t, f.store, "dawit", models.RoleDelivery)
	f.foods = []*models.FoodItem{
		apptest.PostFood(t, f.manager, "Shiro", 80),
		apptest.PostFood(t, f.manager, "Tibs", 150.5),
	}
	return f
}

func (f *fixture) order(t *testing.T) *models.Order {
	t.Helper()
	order, err := f.student.Workflow.CreateOrder(context.Background(), workflow.OrderInput{
		CustomerID:    f.stuUser.ID,
		Items:         []workflow.OrderItem{{FoodID: f.foods[0].ID}, {FoodID: f.foods[1].ID}},
		Total:         230.5,
		PaymentMethod: models.PaymentTelebirr,
		Phone:         "0911223344",
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) assign(t *testing.T, order *models.Order) *models.Delivery {
	t.Helper()
	delivery, err := f.manager.Workflow.AssignDelivery(context.Background(), order.ID, f.courUser.ID, "Dawit")
	require.NoError(t, err)
	return delivery
}

func messages(t *testing.T, a *app.App, userID string) []string {
	t.Helper()
	list, err := a.Workflow.Notifications(context.Background(), userID)
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.Message)
	}
	return out
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, f.foods[0].RestaurantID, order.RestaurantID)
	assert.Equal(t, []string{f.foods[0].ID, f.foods[1].ID}, order.FoodItemIDs)
	assert.InDelta(t, 230.5, order.Total, 0.001)

	mine, err := f.student.Workflow.CustomerOrders(context.Background(), f.stuUser.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, order.ID, mine[0].ID)

	incoming, err := f.manager.Workflow.ManagerOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, order.ID, incoming[0].ID)
}

func TestCreateOrderRecomputesTotal(t *testing.T) {
	f := newFixture(t)
	order, err := f.student.Workflow.CreateOrder(context.Background(), workflow.OrderInput{
		CustomerID:    f.stuUser.ID,
		Items:         []workflow.OrderItem{{FoodID: f.foods[0].ID, Price: 1}},
		Total:         1,
		PaymentMethod: models.PaymentMpesa,
		Phone:         "0911223344",
	})
	require.NoError(t, err)
	assert.Equal(t, 80.0, order.Total)
}

func TestCreateOrderRejectsMixedRestaurants(t *testing.T) {
	f := newFixture(t)
	other, _ := apptest.SignedIn(t, f.store, "selam", models.RoleHotelManager)
	foreign := apptest.PostFood(t, other, "Pizza", 300)

	_, err := f.student.Workflow.CreateOrder(context.Background(), workflow.OrderInput{
		CustomerID:    f.stuUser.ID,
		Items:         []workflow.OrderItem{{FoodID: f.foods[0].ID}, {FoodID: foreign.ID}},
		Total:         380,
		PaymentMethod: models.PaymentTelebirr,
		Phone:         "0911223344",
	})
	var mixed *workflow.MixedRestaurantError
	require.ErrorAs(t, err, &mixed)
	assert.Equal(t, foreign.ID, mixed.FoodItemID)
	assert.Equal(t, f.foods[0].RestaurantID, mixed.Expected)

	orders, err := f.student.Client.Orders.ListByCustomer(context.Background(), f.stuUser.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderForAnotherUser(t *testing.T) {
	f := newFixture(t)
	_, other := apptest.SignedIn(t, f.store, "meron", models.RoleStudent)

	_, err := f.student.Workflow.CreateOrder(context.Background(), workflow.OrderInput{
		CustomerID:    other.ID,
		Items:         []workflow.OrderItem{{FoodID: f.foods[0].ID}},
		Total:         80,
		PaymentMethod: models.PaymentTelebirr,
		Phone:         "0911223344",
	})
	assert.True(t, session.IsSessionError(err))

	orders, err := f.student.Client.Orders.ListByCustomer(context.Background(), other.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.student.Workflow.CreateOrder(context.Background(), workflow.OrderInput{
		CustomerID:    f.stuUser.ID,
		PaymentMethod: "cash",
		Phone:         "12ab",
	})
	var verr *workflow.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Subset(t, verr.Fields, []string{"Items", "PaymentMethod", "Phone"})
}

func TestAssignDelivery(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)

	delivery := f.assign(t, order)
	assert.Equal(t, order.ID, delivery.OrderID)
	assert.Equal(t, f.courUser.ID, delivery.DeliveryPersonID)

	stored, err := f.manager.Client.Orders.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, stored.Status)
	assert.Equal(t, f.courUser.ID, stored.DeliveryPersonID)
	require.Len(t, stored.StatusHistory, 2)
	assert.Equal(t, f.mgrUser.ID, stored.StatusHistory[1].ChangedBy)

	assert.Contains(t, messages(t, f.student, f.stuUser.ID),
		"Your order #"+models.ShortID(order.ID)+" has been assigned to Dawit.")
}

func TestAssignDeliveryTwiceFails(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)
	f.assign(t, order)

	_, err := f.manager.Workflow.AssignDelivery(context.Background(), order.ID, f.courUser.ID, "Dawit")
	var aerr *workflow.AssignmentError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, order.ID, aerr.OrderID)

	list, err := f.courier.Client.Deliveries.ListByDeliveryPerson(context.Background(), f.courUser.ID, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAssignDeliveryConcurrent(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		won      int
		rejected int
	)
	for i := 0; i < 3; i++ {
		device := apptest.NewApp(t, f.store)
		apptest.Login(t, device, "abebe")
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := device.Workflow.AssignDelivery(context.Background(), order.ID, f.courUser.ID, "Dawit")
			mu.Lock()
			defer mu.Unlock()
			var aerr *workflow.AssignmentError
			switch {
			case err == nil:
				won++
			case assert.ErrorAs(t, err, &aerr):
				rejected++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, won)
	assert.Equal(t, 2, rejected)
}

func TestAssignDeliveryChecks(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)
	ctx := context.Background()
	var aerr *workflow.AssignmentError

	_, err := f.manager.Workflow.AssignDelivery(ctx, "no-such-order", f.courUser.ID, "Dawit")
	assert.ErrorAs(t, err, &aerr)

	_, err = f.manager.Workflow.AssignDelivery(ctx, order.ID, f.stuUser.ID, "Hana")
	assert.ErrorAs(t, err, &aerr)

	_, err = f.manager.Workflow.AssignDelivery(ctx, order.ID, "", "Dawit")
	assert.Error(t, err)

	// Only the restaurant's manager may assign its orders.
	other, _ := apptest.SignedIn(t, f.store, "selam", models.RoleHotelManager)
	_, err = other.Workflow.AssignDelivery(ctx, order.ID, f.courUser.ID, "Dawit")
	assert.ErrorAs(t, err, &aerr)

	_, err = f.student.Workflow.AssignDelivery(ctx, order.ID, f.courUser.ID, "Dawit")
	assert.True(t, session.IsSessionError(err))
}

// failingDeliveries fails every create.
type failingDeliveries struct {
	backend.Deliveries
}

func (failingDeliveries) Create(context.Context, *models.Delivery) error {
	return errors.New("database unavailable")
}

func TestAssignDeliveryReleasesOrderWhenRecordFails(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)
	ctx := context.Background()
	deliveries := f.manager.Client.Deliveries
	f.manager.Client.Deliveries = failingDeliveries{Deliveries: deliveries}

	_, err := f.manager.Workflow.AssignDelivery(ctx, order.ID, f.courUser.ID, "Dawit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create delivery record")

	stored, err := f.manager.Client.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Empty(t, messages(t, f.student, f.stuUser.ID))

	f.manager.Client.Deliveries = deliveries
	delivery := f.assign(t, order)
	assert.Equal(t, order.ID, delivery.OrderID)
}

func TestAcceptAndCompleteDelivery(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)
	delivery := f.assign(t, order)
	ctx := context.Background()
	short := models.ShortID(order.ID)

	picked, err := f.courier.Workflow.AcceptDelivery(ctx, delivery.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPickedUp, picked.Status)
	assert.Contains(t, messages(t, f.courier, f.courUser.ID), "You have successfully picked up order #"+short+".")
	assert.Contains(t, messages(t, f.student, f.stuUser.ID), "Your order #"+short+" has been picked up by Dawit.")

	_, err = f.courier.Workflow.AcceptDelivery(ctx, delivery.ID, order.ID)
	var acc *workflow.AcceptError
	assert.ErrorAs(t, err, &acc)

	done, err := f.courier.Workflow.CompleteDelivery(ctx, delivery.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, done.Status)
	assert.Len(t, done.StatusHistory, 4)
	assert.Contains(t, messages(t, f.student, f.stuUser.ID), "Your order #"+short+" has been delivered by Dawit.")

	_, err = f.courier.Workflow.CompleteDelivery(ctx, delivery.ID, order.ID)
	assert.ErrorAs(t, err, &acc)
}

func TestAcceptDeliveryRejectsInconsistentPairs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.order(t)
	assigned := f.order(t)
	delivery := f.assign(t, assigned)
	var acc *workflow.AcceptError

	// Delivery and order do not belong together.
	_, err := f.courier.Workflow.AcceptDelivery(ctx, delivery.ID, pending.ID)
	assert.ErrorAs(t, err, &acc)

	_, err = f.courier.Workflow.AcceptDelivery(ctx, "no-such-delivery", assigned.ID)
	assert.ErrorAs(t, err, &acc)

	// A pending order with a stray delivery record cannot be picked up.
	stray := &models.Delivery{OrderID: pending.ID, DeliveryPersonID: f.courUser.ID, Name: "Dawit"}
	require.NoError(t, f.courier.Client.Deliveries.Create(ctx, stray))
	_, err = f.courier.Workflow.AcceptDelivery(ctx, stray.ID, pending.ID)
	assert.ErrorAs(t, err, &acc)

	// Another delivery person cannot accept it.
	other, _ := apptest.SignedIn(t, f.store, "yonas", models.RoleDelivery)
	_, err = other.Workflow.AcceptDelivery(ctx, delivery.ID, assigned.ID)
	assert.ErrorAs(t, err, &acc)

	stored, err := f.manager.Client.Orders.Get(ctx, assigned.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, stored.Status)
}

func TestGetAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.order(t)
	delivery := f.assign(t, order)

	dangling := &models.Delivery{OrderID: "deleted-order", DeliveryPersonID: f.courUser.ID, Name: "Dawit"}
	require.NoError(t, f.courier.Client.Deliveries.Create(ctx, dangling))

	list, err := f.courier.Workflow.GetAssignments(ctx, f.courUser.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, delivery.ID, list[0].Delivery.ID)
	assert.Equal(t, order.ID, list[0].Order.ID)
	assert.True(t, list[0].Current)

	// The order moved on to someone else.
	require.NoError(t, f.store.DB.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("delivery_person_id", "someone-else").Error)
	list, err = f.courier.Workflow.GetAssignments(ctx, f.courUser.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Current)

	_, err = f.courier.Workflow.AcceptDelivery(ctx, delivery.ID, order.ID)
	var acc *workflow.AcceptError
	assert.ErrorAs(t, err, &acc)

	_, err = f.courier.Workflow.GetAssignments(ctx, "")
	assert.Error(t, err)
}

func TestNotificationsArePrivate(t *testing.T) {
	f := newFixture(t)
	order := f.order(t)
	f.assign(t, order)
	ctx := context.Background()

	list, err := f.student.Workflow.Notifications(ctx, f.stuUser.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)

	// Another signed-in user cannot mark it read, and keeps their session.
	err = f.manager.Workflow.MarkNotificationRead(ctx, list[0].ID)
	assert.True(t, session.IsSessionError(err))
	_, err = f.manager.Sessions.EnsureActive(ctx, f.mgrUser.ID)
	require.NoError(t, err)
	list, err = f.student.Workflow.Notifications(ctx, f.stuUser.ID)
	require.NoError(t, err)
	assert.False(t, list[0].Read)

	err = f.student.Workflow.MarkNotificationRead(ctx, "missing")
	assert.True(t, backend.IsNotFound(err))

	_, err = f.courier.Workflow.Notifications(ctx, f.stuUser.ID)
	assert.True(t, session.IsSessionError(err))

	require.NoError(t, f.student.Workflow.MarkNotificationRead(ctx, list[0].ID))
	list, err = f.student.Workflow.Notifications(ctx, f.stuUser.ID)
	require.NoError(t, err)
	assert.True(t, list[0].Read)
}
