package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aerolux/concierge-admin/internal/core/ports"
)

const (
	DefaultNotificationStream = "notifications:vendors"
	notificationStreamMaxLen  = 10000
)

// NotificationStream hands vendor notifications to the external mailer by
// appending them to a Redis stream.
type NotificationStream struct {
	client *redis.Client
	stream string
}

func NewNotificationStream(client *redis.Client, stream string) *NotificationStream {
	if stream == "" {
		stream = DefaultNotificationStream
	}
	return &NotificationStream{client: client, stream: stream}
}

// Send implements ports.NotificationSender.
func (s *NotificationStream) Send(ctx context.Context, n ports.Notification) error {
	created := n.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	values := map[string]interface{}{
		"kind":          n.Kind,
		"vendor_id":     n.VendorID,
		"email":         n.Email,
		"business_name": n.BusinessName,
		"created_at":    created.Format(time.RFC3339Nano),
	}
	if n.Password != "" {
		values["password"] = n.Password
	}
	if n.Reason != "" {
		values["reason"] = n.Reason
	}

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: notificationStreamMaxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("publish notification to %s: %w", s.stream, err)
	}
	return nil
}
