package useCases

import (
	"context"
	"net/http"

	"nftStatApp/internal/domain/model"
	"nftStatApp/pkg/money"
)

// EventApplier defines the write side of the analytics store used by event processors.
type EventApplier interface {
	ApplyListingCreated(ctx context.Context, listing *model.Listing) (model.TransactionRecord, error)
	ApplyListingUpdated(ctx context.Context, listing *model.Listing) (model.TransactionRecord, error)
	ApplyListingSold(ctx context.Context, listing *model.Listing) (model.TransactionRecord, error)
	ApplyListingCancelled(ctx context.Context, listing *model.Listing) (model.TransactionRecord, error)
}

// AnalyticsQuerier defines the read side of the analytics store used by the query API.
type AnalyticsQuerier interface {
	AllTransactions() []model.TransactionRecord
	TransactionsByKind(kind model.TransactionKind) []model.TransactionRecord
	TransactionsByAsset(assetID string) []model.TransactionRecord
	TransactionsByUser(address string, asSeller, asBuyer bool) []model.TransactionRecord
	PriceHistory(assetID string) (model.AssetPriceHistory, bool)
	GlobalStats() model.GlobalMarketStats
	TopSellingAssets(count int) []model.AssetPriceHistory
	MostValuableAssets(count int) []model.AssetPriceHistory
	SalesByRarity() map[model.RarityTier]int
	AveragePriceByRarity() map[model.RarityTier]money.Wei
}

// AnalyticsService defines the full analytics store surface.
type AnalyticsService interface {
	EventApplier
	AnalyticsQuerier
}

// ArchiveReader defines read access to the long-term transaction archive.
type ArchiveReader interface {
	GetTransactionsSince(ctx context.Context, since int64) ([]*model.TransactionRecord, error)
}

// Broadcaster defines an interface for pushing updates to WebSocket/API layers.
type Broadcaster interface {
	BroadcastTransactions(transactions []model.TransactionRecord)
	BroadcastGlobalStats(stats model.GlobalMarketStats)
	BroadcastPriceHistory(assetID string, history model.AssetPriceHistory)
	Handler() http.HandlerFunc
}
