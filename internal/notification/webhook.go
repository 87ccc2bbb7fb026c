package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	EventClaimStatusChanged   = "claim.status_changed"
	EventClaimSurveyed        = "claim.surveyed"
	EventRenewalStatusChanged = "renewal.status_changed"
)

const deliveryTimeout = 5 * time.Second

type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data"`
}

func NewEvent(eventType string, data map[string]any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
}

// Notifier publishes lifecycle events. Notify never blocks the caller on
// delivery and never reports delivery failures back to it.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Noop is used when no webhook is configured.
type Noop struct{}

func (Noop) Notify(context.Context, Event) {}

type WebhookNotifier struct {
	url    string
	client *resty.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	client := resty.New().
		SetTimeout(deliveryTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "claims-crm-webhook/1")
	return &WebhookNotifier{url: url, client: client}
}

// New picks the webhook notifier when url is set and Noop otherwise.
func New(url string) Notifier {
	if url == "" {
		return Noop{}
	}
	return NewWebhookNotifier(url)
}

func (n *WebhookNotifier) Notify(ctx context.Context, ev Event) {
	// the request context ends with the response, so delivery gets its own
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
		defer cancel()
		if err := n.Send(sendCtx, ev); err != nil {
			log.Printf("[WARNING] webhook %s delivery failed: %v", ev.Type, err)
		}
	}()
}

// Send posts the event synchronously.
func (n *WebhookNotifier) Send(ctx context.Context, ev Event) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(ev).
		Post(n.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook responded %d", resp.StatusCode())
	}
	return nil
}
