package messaging

import (
	"context"

	"github.com/crosslink-crm/crosslink/internal/domain"
)

// Publisher defines the interface for publishing events to message queue
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishSyncEvent publishes one audit event to the message broker
	PublishSyncEvent(ctx context.Context, event *domain.AuditEvent) error
	// Close closes the connection
	Close()
}
