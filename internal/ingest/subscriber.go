// Package ingest consumes GPS fixes published on the message bus.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jengzang/fleet-timeline-backend/internal/models"
)

// QueueGroup spreads messages across instances of this service
const QueueGroup = "fleet-timeline"

// FixIngester stores a vehicle's fixes
type FixIngester interface {
	Ingest(ctx context.Context, vehicleID string, fixes []models.GpsFix) (*models.IngestResult, error)
}

// Message is the payload published by the gateway. It carries either a
// batch in Fixes or a single fix inline.
type Message struct {
	VehicleID string          `json:"vehicle_id"`
	Fixes     []models.GpsFix `json:"fixes,omitempty"`
	models.GpsFix
}

// Subscriber turns bus messages into stored fixes
type Subscriber struct {
	ingester FixIngester
	timeout  time.Duration
}

// NewSubscriber creates a subscriber
func NewSubscriber(ingester FixIngester) *Subscriber {
	return &Subscriber{ingester: ingester, timeout: 10 * time.Second}
}

// Handle decodes and stores one message
func (s *Subscriber) Handle(ctx context.Context, data []byte) (*models.IngestResult, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode fix message: %w", err)
	}

	fixes := msg.Fixes
	if len(fixes) == 0 {
		if msg.GpsFix.Timestamp.IsZero() {
			return nil, errors.New("message carries no fixes")
		}
		fixes = []models.GpsFix{msg.GpsFix}
	}

	return s.ingester.Ingest(ctx, msg.VehicleID, fixes)
}

// Subscribe starts consuming subject on nc
func (s *Subscriber) Subscribe(nc *nats.Conn, subject string) (*nats.Subscription, error) {
	sub, err := nc.QueueSubscribe(subject, QueueGroup, func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		res, err := s.Handle(ctx, msg.Data)
		if err != nil {
			log.Printf("[Ingest] Dropping message on %s: %v", msg.Subject, err)
			return
		}
		if res.Stored < res.Received {
			log.Printf("[Ingest] Stored %d of %d fixes from %s", res.Stored, res.Received, msg.Subject)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	log.Printf("[Ingest] Subscribed to %s (queue %s)", subject, QueueGroup)
	return sub, nil
}
