package kafka

import "ms-addons/internal/models"

// Noop satisfies the publisher interfaces when Kafka is disabled (local
// development, tests).
type Noop struct{}

func (Noop) PublishAddonCreated(models.Addon) error         { return nil }
func (Noop) PublishAddonUpdated(models.Addon) error         { return nil }
func (Noop) PublishAddonDeleted(string) error               { return nil }
func (Noop) PublishBundleReplaced(models.AddonBundle) error { return nil }
func (Noop) PublishBundleCleared(string) error              { return nil }
