package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"hotel-reservation-backend/internal/events"
	"hotel-reservation-backend/internal/model"
	"hotel-reservation-backend/internal/store"
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

// PushPublisher notifies front-desk browsers subscribed to the event's room type.
type PushPublisher struct {
	subs    store.SubscriptionStore
	options *webpush.Options
	sender  NotificationSender
}

func NewPushPublisher(subs store.SubscriptionStore, options *webpush.Options) *PushPublisher {
	return &PushPublisher{
		subs:    subs,
		options: options,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

func (p *PushPublisher) Publish(ctx context.Context, e events.Event) error {
	subscriptions, err := p.subs.SubscriptionsForRoomType(ctx, e.RoomType)
	if err != nil {
		return fmt.Errorf("failed to fetch subscriptions for %s: %w", e.RoomType, err)
	}
	if len(subscriptions) == 0 {
		return nil
	}

	log.Printf("Sending %d notifications for %s", len(subscriptions), e.Type)
	payload := []byte(e.Message())
	for _, sub := range subscriptions {
		p.sendNotification(ctx, sub, payload)
	}
	return nil
}

func (p *PushPublisher) Close() error { return nil }

// sendNotification sends a single web push notification.
func (p *PushPublisher) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := p.sender.Send(payload, wpSub, p.options)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := p.subs.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
