package messaging

import (
	"context"

	"github.com/feral-file/ff-ledger-indexer/internal/domain"
)

// Publisher defines the interface for announcing committed blocks to a message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishBlockCommitted announces that a block's ledger changes are durable
	PublishBlockCommitted(ctx context.Context, event *domain.BlockCommitted) error
	// Close closes the connection
	Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event, used when no broker is configured
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishBlockCommitted(context.Context, *domain.BlockCommitted) error {
	return nil
}

func (noopPublisher) Close() {}
