package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"ms-addons/internal/models"
)

// Event is the envelope every catalog/bundle message is published in.
type Event struct {
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
}

// Producer streams catalog and bundle change events. Addon events and bundle
// events go to separate topics so downstream consumers can subscribe to one.
type Producer struct {
	AddonWriter  *kafka.Writer
	BundleWriter *kafka.Writer
}

func NewProducer(brokers []string, addonTopic, bundleTopic string) *Producer {
	return &Producer{
		AddonWriter: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   addonTopic,
		}),
		BundleWriter: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   bundleTopic,
		}),
	}
}

func publish(writer *kafka.Writer, eventType, key string, data interface{}) error {
	msgBytes, err := json.Marshal(Event{EventType: eventType, Data: data})
	if err != nil {
		return err
	}
	return writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

// PublishAddonCreated streams the catalog creation event to Kafka
func (p *Producer) PublishAddonCreated(a models.Addon) error {
	return publish(p.AddonWriter, "addon_created", a.ID, models.NewAddonResponse(&a))
}

// PublishAddonUpdated streams the catalog update event to Kafka
func (p *Producer) PublishAddonUpdated(a models.Addon) error {
	return publish(p.AddonWriter, "addon_updated", a.ID, models.NewAddonResponse(&a))
}

// PublishAddonDeleted streams the catalog deletion event to Kafka
func (p *Producer) PublishAddonDeleted(id string) error {
	return publish(p.AddonWriter, "addon_deleted", id, map[string]string{"id": id})
}

// PublishBundleReplaced streams the full new bundle for an experience
func (p *Producer) PublishBundleReplaced(b models.AddonBundle) error {
	return publish(p.BundleWriter, "bundle_replaced", b.ExperienceID, b)
}

// PublishBundleCleared signals that an experience no longer has add-ons
func (p *Producer) PublishBundleCleared(experienceID string) error {
	return publish(p.BundleWriter, "bundle_cleared", experienceID, map[string]string{"experienceId": experienceID})
}

func (p *Producer) Close() error {
	if err := p.AddonWriter.Close(); err != nil {
		return err
	}
	return p.BundleWriter.Close()
}
