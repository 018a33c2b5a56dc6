package service

import (
	"context"
	"log/slog"

	"nftStatApp/internal/app/dto"
	"nftStatApp/internal/infrastructure/queue"
	"nftStatApp/internal/lib/logger/sl"
)

// ListingProducerUseCase handles publishing marketplace listing events to Kafka
type ListingProducerUseCase struct {
	Producer queue.ListingProducer
	log      *slog.Logger
}

// NewListingProducerUseCase creates a new use case for publishing listing events
func NewListingProducerUseCase(log *slog.Logger, producer queue.ListingProducer) *ListingProducerUseCase {
	return &ListingProducerUseCase{
		Producer: producer,
		log:      log.With(slog.String("component", "listing_producer")),
	}
}

// Execute publishes a batch of listing events to Kafka
func (uc *ListingProducerUseCase) Execute(ctx context.Context, events []*dto.ListingEventDTO) error {
	if len(events) == 0 {
		return nil
	}
	if err := uc.Producer.PublishEventBatch(ctx, events); err != nil {
		if ctx.Err() == nil {
			uc.log.Error("failed to publish listing events", slog.Int("events", len(events)), sl.Err(err))
		}
		return err
	}
	return nil
}
