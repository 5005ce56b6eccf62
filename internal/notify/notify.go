// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package notify publishes owner-facing lifecycle events (approved,
// rejected, published) to a Valkey channel for the notification delivery
// service to pick up. Publishing is fire-and-forget: a failure is logged
// and never fails the transition that produced the event.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel is the Valkey pub/sub channel lifecycle events are published to.
const Channel = "schemapress:events"

// Event kinds emitted by the lifecycle engine.
const (
	EventApproved  = "approved"
	EventRejected  = "rejected"
	EventPublished = "published"
)

// Event is the wire shape of one owner notification.
type Event struct {
	ID        string         `json:"id"`
	RecordID  int64          `json:"record_id"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload,omitempty"`
	EmittedAt time.Time      `json:"emitted_at"`
}

// Notifier publishes lifecycle events for the owner of a record.
type Notifier struct {
	client *redis.Client
}

// New creates a Notifier backed by the given Valkey client.
func New(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

// Notify publishes one event. Each event carries a fresh uuid so the
// delivery service can deduplicate retries on its side.
func (n *Notifier) Notify(ctx context.Context, recordID int64, kind string, payload map[string]any) {
	ev := Event{
		ID:        uuid.NewString(),
		RecordID:  recordID,
		Kind:      kind,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("notify marshal failed", "record_id", recordID, "kind", kind, "error", err)
		return
	}

	if err := n.client.Publish(ctx, Channel, body).Err(); err != nil {
		slog.Warn("notify publish failed", "record_id", recordID, "kind", kind, "error", err)
		return
	}
	slog.Debug("notification published", "record_id", recordID, "kind", kind, "event_id", ev.ID)
}
