package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"nftStatApp/internal/app/dto"
	"nftStatApp/internal/domain/model"
	"nftStatApp/internal/domain/useCases"
	"nftStatApp/internal/lib/logger/sl"

	"github.com/go-playground/validator/v10"
)

// ErrContextCancelled is returned when the context is cancelled during processing
var ErrContextCancelled = errors.New("context cancelled during processing")

// EventProcessor drains listing events from a channel into the analytics store.
// Observers registered on the store take care of broadcasting.
type EventProcessor struct {
	EventCh    chan *dto.ListingEventDTO
	Store      useCases.EventApplier
	DedupCache *DedupCache
	validate   *validator.Validate
	log        *slog.Logger
}

func NewEventProcessor(log *slog.Logger, eventCh chan *dto.ListingEventDTO, store useCases.EventApplier, dedup *DedupCache) *EventProcessor {
	if dedup == nil {
		dedup = NewDedupCache()
	}
	return &EventProcessor{
		EventCh:    eventCh,
		Store:      store,
		DedupCache: dedup,
		validate:   validator.New(),
		log:        log.With(slog.String("component", "event_processor")),
	}
}

func (p *EventProcessor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-p.EventCh:
			if !ok {
				p.log.Info("event channel closed, stopping event processor")
				return nil
			}
			if err := processEvent(ctx, p.Store, p.DedupCache, p.validate, event); err != nil {
				if errors.Is(err, ErrContextCancelled) {
					p.log.Info("context cancelled, stopping event processor")
					return ctx.Err()
				}
				// Other errors are just logged but processing continues
				p.log.Warn("error processing event", sl.Err(err))
			}
		}
	}
}

// processEvent de-duplicates, validates and applies a single event.
// Events that fail to apply are forgotten by the dedup cache so a redelivery can retry them.
func processEvent(ctx context.Context, store useCases.EventApplier, dedup *DedupCache, v *validator.Validate, event *dto.ListingEventDTO) error {
	if ctx.Err() != nil {
		return ErrContextCancelled
	}
	if event == nil {
		return nil
	}

	if err := event.Validate(v); err != nil {
		return err
	}

	if !dedup.MarkSeen(event.ID) {
		return nil
	}

	if _, err := applyEvent(ctx, store, event); err != nil {
		dedup.Forget(event.ID)
		return err
	}
	return nil
}

// applyEvent dispatches the event to the store operation matching its kind.
func applyEvent(ctx context.Context, store useCases.EventApplier, event *dto.ListingEventDTO) (model.TransactionRecord, error) {
	listing := event.Listing.ToModel()

	var (
		record model.TransactionRecord
		err    error
	)
	switch event.Kind {
	case dto.EventListingCreated:
		record, err = store.ApplyListingCreated(ctx, listing)
	case dto.EventListingUpdated:
		record, err = store.ApplyListingUpdated(ctx, listing)
	case dto.EventListingSold:
		record, err = store.ApplyListingSold(ctx, listing)
	case dto.EventListingCancelled:
		record, err = store.ApplyListingCancelled(ctx, listing)
	default:
		return model.TransactionRecord{}, fmt.Errorf("%w %s: unknown kind %q", dto.ErrInvalidEvent, event.ID, event.Kind)
	}
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("event %s: %w", event.ID, err)
	}
	return record, nil
}
