// Package notify is the escalation channel port. The engine treats
// delivery as fire-and-forget: an escalation must never fail because a
// notification could not be written.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Zynapses/radiant-graph/internal/driver"
)

type Notification struct {
	GroupID  string
	Type     string
	Title    string
	Message  string
	Metadata map[string]interface{}
	Priority string
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// StoreNotifier persists notifications as tenant-scoped records in the
// graph store, where the review UI picks them up.
type StoreNotifier struct {
	Driver        driver.GraphDriver
	UUIDGenerator func() string
	Now           func() time.Time
}

func NewStoreNotifier(d driver.GraphDriver) *StoreNotifier {
	return &StoreNotifier{
		Driver:        d,
		UUIDGenerator: func() string { return uuid.New().String() },
		Now:           time.Now,
	}
}

func (s *StoreNotifier) Notify(ctx context.Context, n Notification) error {
	metadata := "{}"
	if n.Metadata != nil {
		data, err := json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("failed to serialize notification metadata: %w", err)
		}
		metadata = string(data)
	}

	_, err := s.Driver.ExecuteQuery(ctx, driver.SaveNotificationQuery, map[string]interface{}{
		"uuid":       s.UUIDGenerator(),
		"group_id":   n.GroupID,
		"type":       n.Type,
		"title":      n.Title,
		"message":    n.Message,
		"metadata":   metadata,
		"priority":   n.Priority,
		"created_at": s.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	return nil
}
