package app

import (
	"context"
	"errors"
	"log/slog"

	"nftStatApp/internal/domain/useCases"
	"nftStatApp/internal/infrastructure/queue"
	"nftStatApp/internal/lib/logger/sl"

	"github.com/go-playground/validator/v10"
)

// KafkaEventProcessor consumes listing events from Kafka into the analytics store
type KafkaEventProcessor struct {
	Consumer   queue.ListingConsumer
	Store      useCases.EventApplier
	DedupCache *DedupCache
	validate   *validator.Validate
	log        *slog.Logger
}

func NewKafkaEventProcessor(log *slog.Logger, consumer queue.ListingConsumer, store useCases.EventApplier, dedup *DedupCache) *KafkaEventProcessor {
	if dedup == nil {
		dedup = NewDedupCache()
	}
	return &KafkaEventProcessor{
		Consumer:   consumer,
		Store:      store,
		DedupCache: dedup,
		validate:   validator.New(),
		log:        log.With(slog.String("component", "kafka_event_processor")),
	}
}

// Run starts the Kafka event processor
func (p *KafkaEventProcessor) Run(ctx context.Context) error {
	eventCh, err := p.Consumer.Subscribe(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-eventCh:
			if !ok {
				return ctx.Err()
			}
			if event == nil {
				continue
			}

			if err := processEvent(ctx, p.Store, p.DedupCache, p.validate, event); err != nil {
				if errors.Is(err, ErrContextCancelled) {
					return ctx.Err()
				}
				p.log.Warn("error processing event", slog.String("event_id", event.ID), sl.Err(err))
			}

			// Invalid and failed events are committed too; a poison message must not stall the partition
			if err := p.Consumer.Commit(ctx, event); err != nil && ctx.Err() == nil {
				p.log.Error("failed to commit event", slog.String("event_id", event.ID), sl.Err(err))
			}
		}
	}
}
