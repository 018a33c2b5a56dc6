package service_test

import (
	"context"
	"errors"
	"testing"

	"nftStatApp/internal/app/dto"
	"nftStatApp/internal/domain/service"
	"nftStatApp/internal/lib/logger/handlers/slogdiscard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProducer struct {
	batches [][]*dto.ListingEventDTO
	err     error
}

func (p *stubProducer) PublishEvent(ctx context.Context, event *dto.ListingEventDTO) error {
	return p.PublishEventBatch(ctx, []*dto.ListingEventDTO{event})
}

func (p *stubProducer) PublishEventBatch(_ context.Context, events []*dto.ListingEventDTO) error {
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, events)
	return nil
}

func (p *stubProducer) Close() error { return nil }

func TestListingProducerUseCase(t *testing.T) {
	ctx := context.Background()
	producer := &stubProducer{}
	uc := service.NewListingProducerUseCase(slogdiscard.NewDiscardLogger(), producer)

	require.NoError(t, uc.Execute(ctx, nil))
	assert.Empty(t, producer.batches)

	events := []*dto.ListingEventDTO{{ID: "a"}, {ID: "b"}}
	require.NoError(t, uc.Execute(ctx, events))
	require.Len(t, producer.batches, 1)
	assert.Len(t, producer.batches[0], 2)

	producer.err = errors.New("broker unavailable")
	assert.ErrorIs(t, uc.Execute(ctx, events), producer.err)
}
