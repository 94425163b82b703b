package services

import (
	"encoding/json"
	"log"

	"msgservice/pkg/rabbitmq"
)

// Routing keys of the domain events published after successful mutations.
const (
	EventUserRegistered    = "user.registered"
	EventUserAvatarUpdated = "user.avatar_updated"
	EventMessageSent       = "message.sent"
	EventMessageDeleted    = "message.deleted"
)

// EventPublisher publishes domain events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// publishEvent is best-effort: the mutation has already been committed, so
// failures are logged and dropped.
func publishEvent(publisher EventPublisher, routingKey string, payload map[string]interface{}) {
	if publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := publisher.Publish(rabbitmq.ExchangeName, routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
