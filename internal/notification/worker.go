package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"equipment-reservation-backend/internal/booking"
	"equipment-reservation-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the subset of the store the workers need.
type SubscriptionStore interface {
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// WorkerPool delivers reservation events to administrator push subscriptions.
type WorkerPool struct {
	size    int
	jobs    chan booking.Event
	subs    SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size, queueSize int, subs SubscriptionStore, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan booking.Event, queueSize),
		subs:    subs,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case ev := <-wp.jobs:
			wp.handle(ctx, ev)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an event without blocking. Events are dropped when the queue is full.
func (wp *WorkerPool) Dispatch(ev booking.Event) {
	select {
	case wp.jobs <- ev:
	default:
		log.Printf("Warning: notification queue full, dropping %s event for reservation %s", ev.Type, ev.Reservation.ID)
	}
}

// Message renders the push text for an event. Events administrators trigger themselves yield "".
func Message(ev booking.Event) string {
	r := ev.Reservation
	detail := fmt.Sprintf("[%s] %s %s (%s)", r.EquipmentTask, booking.FormatDate(r.Date), r.Time, r.Applicant)
	switch ev.Type {
	case booking.EventSubmitted:
		return "New reservation request: " + detail
	case booking.EventDeleted:
		if r.Status != booking.StatusApproved {
			return "Reservation request cancelled: " + detail
		}
	}
	return ""
}

func (wp *WorkerPool) handle(ctx context.Context, ev booking.Event) {
	message := Message(ev)
	if message == "" {
		return
	}

	subscriptions, err := wp.subs.ListSubscriptions(ctx)
	if err != nil {
		log.Printf("Error fetching subscriptions for reservation %s: %v", ev.Reservation.ID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for %s reservation %s", len(subscriptions), ev.Type, ev.Reservation.ID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.subs.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}

var _ booking.Notifier = (*WorkerPool)(nil)
