package dto

import (
	"errors"
	"fmt"
	"time"

	"nftStatApp/internal/domain/model"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidEvent is returned when an inbound event fails validation.
var ErrInvalidEvent = errors.New("invalid listing event")

// EventKind names the marketplace event carried by a ListingEventDTO.
type EventKind string

const (
	EventListingCreated   EventKind = "listing_created"
	EventListingUpdated   EventKind = "listing_updated"
	EventListingSold      EventKind = "listing_sold"
	EventListingCancelled EventKind = "listing_cancelled"
)

// ListingDTO represents the listing snapshot as emitted by the marketplace wrapper.
// Price is the wei amount as a decimal string.
type ListingDTO struct {
	AssetID    string         `json:"asset_id" validate:"required"`
	Seller     string         `json:"seller" validate:"required"`
	Buyer      string         `json:"buyer,omitempty"`
	Price      string         `json:"price" validate:"required,numeric"`
	AssetName  string         `json:"asset_name"`
	AssetLevel int            `json:"asset_level" validate:"gte=0"`
	AssetStats map[string]int `json:"asset_stats,omitempty"`
	Rarity     string         `json:"rarity,omitempty"`
}

// ListingEventDTO represents a data transfer object for marketplace events
type ListingEventDTO struct {
	ID        string     `json:"id" validate:"required"`
	Kind      EventKind  `json:"kind" validate:"required,oneof=listing_created listing_updated listing_sold listing_cancelled"`
	Listing   ListingDTO `json:"listing" validate:"required"`
	EmittedAt time.Time  `json:"emitted_at"`
}

// Validate checks the event against its struct tags. Sold events must name a buyer.
func (e *ListingEventDTO) Validate(v *validator.Validate) error {
	if err := v.Struct(e); err != nil {
		return fmt.Errorf("%w %s: %v", ErrInvalidEvent, e.ID, err)
	}
	if e.Kind == EventListingSold && e.Listing.Buyer == "" {
		return fmt.Errorf("%w %s: sold event without buyer", ErrInvalidEvent, e.ID)
	}
	return nil
}

// ToModel converts a ListingDTO to a domain model
func (dto *ListingDTO) ToModel() *model.Listing {
	stats := make(map[string]int, len(dto.AssetStats))
	for k, v := range dto.AssetStats {
		stats[k] = v
	}
	return &model.Listing{
		AssetID:    dto.AssetID,
		Seller:     dto.Seller,
		Buyer:      dto.Buyer,
		Price:      dto.Price,
		AssetName:  dto.AssetName,
		AssetLevel: dto.AssetLevel,
		AssetStats: stats,
		Rarity:     dto.Rarity,
	}
}

// FromModel creates a ListingDTO from a domain model
func FromModel(listing *model.Listing) ListingDTO {
	stats := make(map[string]int, len(listing.AssetStats))
	for k, v := range listing.AssetStats {
		stats[k] = v
	}
	return ListingDTO{
		AssetID:    listing.AssetID,
		Seller:     listing.Seller,
		Buyer:      listing.Buyer,
		Price:      listing.Price,
		AssetName:  listing.AssetName,
		AssetLevel: listing.AssetLevel,
		AssetStats: stats,
		Rarity:     listing.Rarity,
	}
}

// NewListingEvent wraps a listing in an event envelope.
func NewListingEvent(id string, kind EventKind, listing *model.Listing, emittedAt time.Time) *ListingEventDTO {
	return &ListingEventDTO{
		ID:        id,
		Kind:      kind,
		Listing:   FromModel(listing),
		EmittedAt: emittedAt,
	}
}
