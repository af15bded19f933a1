// Package notify fans notifications out: every notification is stored as a
// document for its target user and published as an event.
package notify

import (
	"context"
	"fmt"
	"log"

	"campusbite/backend"
	"campusbite/metrics"
	"campusbite/models"
)

type Notifier struct {
	repo backend.Notifications
	pub  Publisher
}

// New returns a Notifier; a nil publisher publishes nothing.
func New(repo backend.Notifications, pub Publisher) *Notifier {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Notifier{repo: repo, pub: pub}
}

// Notify stores the notification. A storage failure is returned; a publish
// failure is only logged and counted, the document already being the
// record of truth.
func (n *Notifier) Notify(ctx context.Context, targetUserID, message, orderID, deliveryID string) (*models.Notification, error) {
	if _, err := backend.ValidateID(targetUserID, "notification target user ID"); err != nil {
		return nil, err
	}
	note := &models.Notification{
		TargetUserID: targetUserID,
		Message:      message,
		OrderID:      orderID,
		DeliveryID:   deliveryID,
	}
	if err := n.repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	log.Printf("Notification %s created for user %s", note.ID, targetUserID)

	err := n.pub.Publish(ctx, Event{
		NotificationID: note.ID,
		TargetUserID:   note.TargetUserID,
		Message:        note.Message,
		OrderID:        note.OrderID,
		DeliveryID:     note.DeliveryID,
		CreatedAt:      note.CreatedAt,
	})
	if err != nil {
		metrics.NotificationsPublished.WithLabelValues("error").Inc()
		log.Printf("WARN failed to publish notification %s: %v", note.ID, err)
	} else {
		metrics.NotificationsPublished.WithLabelValues("ok").Inc()
	}
	return note, nil
}

func (n *Notifier) List(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	return n.repo.ListByUser(ctx, userID, limit)
}

func (n *Notifier) Get(ctx context.Context, id string) (*models.Notification, error) {
	if _, err := backend.ValidateID(id, "notification ID"); err != nil {
		return nil, err
	}
	return n.repo.Get(ctx, id)
}

func (n *Notifier) MarkRead(ctx context.Context, id string) error {
	if _, err := backend.ValidateID(id, "notification ID"); err != nil {
		return err
	}
	return n.repo.MarkRead(ctx, id)
}

func (n *Notifier) Close() error {
	return n.pub.Close()
}
