package service

import (
	"sort"
	"strings"

	"nftStatApp/internal/domain/model"
	"nftStatApp/pkg/money"
)

// AllTransactions returns the live log in insertion order.
func (s *AnalyticsStore) AllTransactions() []model.TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTransactions(s.transactions)
}

// TransactionsByKind returns the records of one kind in insertion order.
func (s *AnalyticsStore) TransactionsByKind(kind model.TransactionKind) []model.TransactionRecord {
	return s.filter(func(tx model.TransactionRecord) bool { return tx.Kind == kind })
}

// TransactionsByAsset returns every record for an asset in insertion order.
func (s *AnalyticsStore) TransactionsByAsset(assetID string) []model.TransactionRecord {
	return s.filter(func(tx model.TransactionRecord) bool { return tx.AssetID == assetID })
}

// TransactionsByUser returns records where address is the seller (asSeller)
// or the buyer (asBuyer). Addresses compare case-insensitively.
func (s *AnalyticsStore) TransactionsByUser(address string, asSeller, asBuyer bool) []model.TransactionRecord {
	if !asSeller && !asBuyer {
		return make([]model.TransactionRecord, 0)
	}
	return s.filter(func(tx model.TransactionRecord) bool {
		if asSeller && strings.EqualFold(tx.Seller, address) {
			return true
		}
		return asBuyer && tx.Buyer != "" && strings.EqualFold(tx.Buyer, address)
	})
}

func (s *AnalyticsStore) filter(keep func(model.TransactionRecord) bool) []model.TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TransactionRecord, 0)
	for _, tx := range s.transactions {
		if keep(tx) {
			out = append(out, tx.Clone())
		}
	}
	return out
}

// PriceHistory returns a copy of the asset's history, or false if the asset
// was never listed or sold.
func (s *AnalyticsStore) PriceHistory(assetID string) (model.AssetPriceHistory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.histories[assetID]
	if !ok {
		return model.AssetPriceHistory{}, false
	}
	return h.Clone(), true
}

// GlobalStats returns a copy of the current market statistics.
func (s *AnalyticsStore) GlobalStats() model.GlobalMarketStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats.Clone()
}

// TopSellingAssets returns up to count histories ordered by TotalSales
// descending, ties broken by asset id.
func (s *AnalyticsStore) TopSellingAssets(count int) []model.AssetPriceHistory {
	return s.ranked(count, func(a, b *model.AssetPriceHistory) int {
		return b.TotalSales - a.TotalSales
	})
}

// MostValuableAssets returns up to count histories ordered by HighestPrice
// descending, ties broken by asset id.
func (s *AnalyticsStore) MostValuableAssets(count int) []model.AssetPriceHistory {
	return s.ranked(count, func(a, b *model.AssetPriceHistory) int {
		return b.HighestPrice.Cmp(a.HighestPrice)
	})
}

// ranked sorts all histories by cmp, then asset id, and copies the first count.
func (s *AnalyticsStore) ranked(count int, cmp func(a, b *model.AssetPriceHistory) int) []model.AssetPriceHistory {
	if count <= 0 {
		return make([]model.AssetPriceHistory, 0)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*model.AssetPriceHistory, 0, len(s.histories))
	for _, h := range s.histories {
		all = append(all, h)
	}
	sort.Slice(all, func(i, j int) bool {
		if c := cmp(all[i], all[j]); c != 0 {
			return c < 0
		}
		return all[i].AssetID < all[j].AssetID
	})

	if count > len(all) {
		count = len(all)
	}
	out := make([]model.AssetPriceHistory, count)
	for i := 0; i < count; i++ {
		out[i] = all[i].Clone()
	}
	return out
}

// SalesByRarity counts sales in the live log per rarity tier. Sales without a
// recognised tier tag are not counted.
func (s *AnalyticsStore) SalesByRarity() map[model.RarityTier]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[model.RarityTier]int)
	for _, tx := range s.transactions {
		if tx.Kind != model.KindSale {
			continue
		}
		if tier, ok := tx.Stats.RarityTier(); ok {
			out[tier]++
		}
	}
	return out
}

// AveragePriceByRarity returns the truncated average sale price per tier.
// Tiers without sales are omitted.
func (s *AnalyticsStore) AveragePriceByRarity() map[model.RarityTier]money.Wei {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[model.RarityTier]money.Wei)
	counts := make(map[model.RarityTier]uint64)
	for _, tx := range s.transactions {
		if tx.Kind != model.KindSale {
			continue
		}
		tier, ok := tx.Stats.RarityTier()
		if !ok {
			continue
		}
		totals[tier] = totals[tier].Add(tx.Price)
		counts[tier]++
	}

	out := make(map[model.RarityTier]money.Wei, len(totals))
	for tier, total := range totals {
		out[tier] = total.DivCount(counts[tier])
	}
	return out
}
