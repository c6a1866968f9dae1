package kafka

import (
	"context"
	"fmt"
	"time"

	"mealplan-service/internal/config"
	"mealplan-service/internal/domain/service"
	"mealplan-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const achievementSyncEventType = "achievement_sync_requested"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AchievementPublisher publishes achievement-sync requests to Kafka for the
// achievement evaluator to consume
type AchievementPublisher struct {
	writer messageWriter
	log    *logger.Logger
}

var _ service.AchievementTrigger = (*AchievementPublisher)(nil)

// NewAchievementPublisher creates a new Kafka achievement publisher
func NewAchievementPublisher(cfg *config.KafkaConfig, log *logger.Logger) *AchievementPublisher {
	log = log.With("component", "achievement_publisher", "topic", cfg.Topic)

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    10,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error("failed to deliver achievement sync events", "count", len(messages), "error", err)
			}
		},
	}

	return &AchievementPublisher{
		writer: writer,
		log:    log,
	}
}

// TriggerAchievementSync publishes the event keyed by user so one user's events stay ordered
func (p *AchievementPublisher) TriggerAchievementSync(ctx context.Context, event *service.AchievementSyncEvent) error {
	message, err := EncodeAchievementEvent(event, uuid.NewString(), time.Now().UTC())
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish achievement sync event: %w", err)
	}

	p.log.Debug("published achievement sync event", "user_id", event.UserID, "date", event.Date)
	return nil
}

// Close flushes pending messages and closes the writer
func (p *AchievementPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// EncodeAchievementEvent builds the Kafka message for an event. The value is a
// protobuf-encoded google.protobuf.Struct.
func EncodeAchievementEvent(event *service.AchievementSyncEvent, eventID string, occurredAt time.Time) (kafka.Message, error) {
	fields := map[string]interface{}{
		"event_id":    eventID,
		"event_type":  achievementSyncEventType,
		"occurred_at": occurredAt.Format(time.RFC3339Nano),
		"user_id":     event.UserID.String(),
		"date":        event.Date,
		"write_ok":    event.Progress != nil,
	}

	if event.Progress != nil {
		fields["progress"] = map[string]interface{}{
			"breakfast": event.Progress.Breakfast,
			"lunch":     event.Progress.Lunch,
			"dinner":    event.Progress.Dinner,
			"snack":     event.Progress.Snack,
			"shopping":  event.Progress.Shopping,
		}
	}

	if event.Streaks != nil {
		fields["streaks"] = map[string]interface{}{
			"current": event.Streaks.Current,
			"longest": event.Streaks.Longest,
		}
	}

	payload, err := structpb.NewStruct(fields)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to build event payload: %w", err)
	}

	data, err := proto.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.UserID.String()),
		Value: data,
		Time:  occurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(achievementSyncEventType)},
		},
	}, nil
}
