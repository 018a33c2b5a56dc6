package dto_test

import (
	"testing"
	"time"

	"nftStatApp/internal/app/dto"
	"nftStatApp/internal/domain/model"
	"nftStatApp/pkg/money"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() *dto.ListingEventDTO {
	return &dto.ListingEventDTO{
		ID:   "evt-1",
		Kind: dto.EventListingSold,
		Listing: dto.ListingDTO{
			AssetID:    "42",
			Seller:     "0xseller",
			Buyer:      "0xbuyer",
			Price:      "1500000000000000000",
			AssetName:  "Aria",
			AssetLevel: 3,
			AssetStats: map[string]int{"strength": 7},
			Rarity:     "Rare",
		},
		EmittedAt: time.Unix(1700000000, 0),
	}
}

func TestListingEventDTO_Validate(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name    string
		mutate  func(e *dto.ListingEventDTO)
		wantErr bool
	}{
		{"valid", func(e *dto.ListingEventDTO) {}, false},
		{"missing id", func(e *dto.ListingEventDTO) { e.ID = "" }, true},
		{"unknown kind", func(e *dto.ListingEventDTO) { e.Kind = "listing_burned" }, true},
		{"missing asset", func(e *dto.ListingEventDTO) { e.Listing.AssetID = "" }, true},
		{"non numeric price", func(e *dto.ListingEventDTO) { e.Listing.Price = "lots" }, true},
		{"negative level", func(e *dto.ListingEventDTO) { e.Listing.AssetLevel = -1 }, true},
		{"sold without buyer", func(e *dto.ListingEventDTO) { e.Listing.Buyer = "" }, true},
		{"listing without buyer", func(e *dto.ListingEventDTO) {
			e.Kind = dto.EventListingCreated
			e.Listing.Buyer = ""
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(e)
			err := e.Validate(v)
			if tt.wantErr {
				assert.ErrorIs(t, err, dto.ErrInvalidEvent)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListingDTO_ModelConversion(t *testing.T) {
	e := validEvent()
	listing := e.Listing.ToModel()

	assert.Equal(t, "42", listing.AssetID)
	assert.Equal(t, "1500000000000000000", listing.Price)
	assert.Equal(t, "Rare", listing.Rarity)

	e.Listing.AssetStats["strength"] = 1
	assert.Equal(t, 7, listing.AssetStats["strength"])

	back := dto.NewListingEvent("evt-2", dto.EventListingUpdated, listing, time.Unix(1, 0))
	assert.Equal(t, dto.EventListingUpdated, back.Kind)
	assert.Equal(t, "0xbuyer", back.Listing.Buyer)
	assert.Equal(t, 7, back.Listing.AssetStats["strength"])
}

func TestFromTransaction(t *testing.T) {
	tx := model.TransactionRecord{
		ID:         "tx-1",
		AssetID:    "42",
		Price:      money.MustParse("1500000000000000000"),
		Kind:       model.KindSale,
		Timestamp:  time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC).Unix(),
		AssetLevel: 3,
		Stats:      model.StatSnapshot{Values: map[string]int{"strength": 7}, Rarity: "Epic"},
	}

	got := dto.FromTransaction(tx)
	assert.Equal(t, "sale", got.Kind)
	assert.Equal(t, "1500000000000000000", got.Price.Wei)
	assert.Equal(t, "1.5", got.Price.Ether)
	assert.Equal(t, "2024-05-17T12:00:00Z", got.Time)
	assert.Equal(t, "Epic", got.Rarity)
}

func TestRarityBreakdownsAreOrderedByTier(t *testing.T) {
	counts := map[model.RarityTier]int{
		model.RarityMythic: 1,
		model.RarityCommon: 4,
		model.RarityRare:   2,
	}
	rows := dto.FromSalesByRarity(counts)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Common", "Rare", "Mythic"}, []string{rows[0].Tier, rows[1].Tier, rows[2].Tier})
	assert.Equal(t, 4, rows[0].Sales)

	averages := dto.FromAveragePriceByRarity(map[model.RarityTier]money.Wei{
		model.RarityEpic: money.MustParse("20"),
	})
	require.Len(t, averages, 1)
	require.NotNil(t, averages[0].AveragePrice)
	assert.Equal(t, "20", averages[0].AveragePrice.Wei)
}
