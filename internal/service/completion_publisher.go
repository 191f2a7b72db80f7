// Package service publishes domain events of the scheduling engine to
// RabbitMQ.  Failures are logged and never reach the request that caused
// the event.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/asset-maintenance/internal/queue"
	"github.com/iliyamo/asset-maintenance/internal/schedule"
)

// CompletionPublisher is the schedule.Notifier used in production.
type CompletionPublisher struct {
	URL     string
	Timeout time.Duration
}

// NewCompletionPublisher returns a publisher for the broker at url.
func NewCompletionPublisher(url string) *CompletionPublisher {
	return &CompletionPublisher{URL: url, Timeout: 5 * time.Second}
}

// ScheduleCompleted publishes in the background.  The request context is
// not used because the request usually finishes first.
func (p *CompletionPublisher) ScheduleCompleted(_ context.Context, c schedule.Completion) {
	ev := NewScheduleCompletedEvent(c)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
		defer cancel()
		_ = PublishScheduleCompleted(ctx, p.URL, ev)
	}()
}

// NewScheduleCompletedEvent builds the broker payload of a completion.
func NewScheduleCompletedEvent(c schedule.Completion) queue.ScheduleCompletedEvent {
	ev := queue.ScheduleCompletedEvent{
		EventID:     uuid.NewString(),
		UserID:      c.UserID,
		RecordID:    c.RecordID,
		CompletedOn: c.CompletedOn.String(),
	}
	if s := c.Completed; s != nil {
		ev.ScheduleID = s.ID
		ev.AssetID = s.AssetID
		ev.AssetName = s.AssetName
		ev.MaintenanceTypeID = s.MaintenanceTypeID
		ev.ScheduledDate = s.ScheduledDate.String()
		ev.FrequencyType = string(s.FrequencyType)
		ev.FrequencyValue = s.FrequencyValue
	}
	if n := c.Next; n != nil {
		ev.NextScheduleID = n.ID
		ev.NextDate = n.ScheduledDate.String()
	}
	return ev
}

// PublishScheduleCompleted sends ev as a persistent JSON message to the
// durable completion queue.  Errors are logged and returned.
func PublishScheduleCompleted(ctx context.Context, url string, ev queue.ScheduleCompletedEvent) error {
	log := logrus.WithFields(logrus.Fields{"event_id": ev.EventID, "schedule_id": ev.ScheduleID})

	conn, err := amqp.Dial(url)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.ScheduleCompletedQueue, true, false, false, false, nil); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).Error("rabbitmq: marshal event failed")
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", queue.ScheduleCompletedQueue, false, false, pub); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	log.Debug("schedule completion published")
	return nil
}
