package utils_test

import (
	"testing"

	"nftStatApp/internal/app/dto"
	"nftStatApp/pkg/money"
	"nftStatApp/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingGenerator_ProducesValidLifecycles(t *testing.T) {
	gen := utils.NewListingGenerator(42)
	events := gen.GenerateEvents(500)
	require.Len(t, events, 500)

	v := validator.New()
	state := make(map[string]dto.EventKind)
	ids := make(map[string]struct{})

	for _, e := range events {
		require.NoError(t, e.Validate(v))

		_, dup := ids[e.ID]
		require.False(t, dup, "duplicate event id %s", e.ID)
		ids[e.ID] = struct{}{}

		_, err := money.Parse(e.Listing.Price)
		require.NoError(t, err)

		prev, seen := state[e.Listing.AssetID]
		switch e.Kind {
		case dto.EventListingCreated:
			assert.False(t, seen, "asset %s created twice", e.Listing.AssetID)
			assert.Empty(t, e.Listing.Buyer)
		default:
			require.True(t, seen, "asset %s used before creation", e.Listing.AssetID)
			assert.NotEqual(t, dto.EventListingSold, prev)
			assert.NotEqual(t, dto.EventListingCancelled, prev)
		}
		if e.Kind == dto.EventListingSold {
			assert.NotEqual(t, e.Listing.Seller, e.Listing.Buyer)
		}
		state[e.Listing.AssetID] = e.Kind
	}

	kinds := make(map[dto.EventKind]int)
	for _, k := range state {
		kinds[k]++
	}
	assert.Positive(t, kinds[dto.EventListingSold])
}

func TestListingGenerator_Deterministic(t *testing.T) {
	a := utils.NewListingGenerator(7).GenerateEvents(50)
	b := utils.NewListingGenerator(7).GenerateEvents(50)

	for i := range a {
		assert.Equal(t, a[i].Kind, b[i].Kind)
		assert.Equal(t, a[i].Listing.Price, b[i].Listing.Price)
		assert.Equal(t, a[i].Listing.AssetID, b[i].Listing.AssetID)
	}
}
