package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-addons/internal/logger"
)

// ExperienceEvent is the shape of upstream marketplace experience messages
// this service cares about.
type ExperienceEvent struct {
	EventType    string `json:"event_type"`
	ExperienceID string `json:"experience_id"`
}

type Consumer struct {
	reader *kafka.Reader
	logger *logger.Logger
}

// NewConsumer creates a Kafka consumer for the experience events topic.
func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, logger: log}
}

// Start consumes experience events and invokes onDeleted whenever an
// experience is removed upstream, so its bundle can be cleared.
func (c *Consumer) Start(ctx context.Context, onDeleted func(ctx context.Context, experienceID string) error) {
	c.logger.LogKafka("CONSUME", c.reader.Config().Topic, "experience event consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("KAFKA", fmt.Sprintf("error reading message: %v", err))
			continue
		}

		var event ExperienceEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Warn("KAFKA", fmt.Sprintf("failed to unmarshal experience event: %v", err))
			continue
		}

		if event.EventType != "experience_deleted" || event.ExperienceID == "" {
			continue
		}

		c.logger.LogKafka("CONSUME", c.reader.Config().Topic, fmt.Sprintf("experience %s deleted upstream", event.ExperienceID))
		if err := onDeleted(ctx, event.ExperienceID); err != nil {
			c.logger.Error("KAFKA", fmt.Sprintf("failed to clear bundle for %s: %v", event.ExperienceID, err))
		}
	}
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
