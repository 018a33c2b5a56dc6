package dto

import (
	"sort"
	"time"

	"nftStatApp/internal/domain/model"
	"nftStatApp/pkg/money"
)

// AmountDTO carries an exact wei amount next to its ether rendering for display.
type AmountDTO struct {
	Wei   string `json:"wei"`
	Ether string `json:"ether"`
}

func NewAmount(w money.Wei) AmountDTO {
	return AmountDTO{Wei: w.String(), Ether: w.Ether().String()}
}

// TransactionDTO represents a data transfer object for transaction records
type TransactionDTO struct {
	ID         string         `json:"id"`
	AssetID    string         `json:"asset_id"`
	AssetName  string         `json:"asset_name"`
	Seller     string         `json:"seller"`
	Buyer      string         `json:"buyer,omitempty"`
	Price      AmountDTO      `json:"price"`
	Kind       string         `json:"kind"`
	Timestamp  int64          `json:"timestamp"`
	Time       string         `json:"time"`
	AssetLevel int            `json:"asset_level"`
	Stats      map[string]int `json:"stats"`
	Rarity     string         `json:"rarity,omitempty"`
}

func FromTransaction(tx model.TransactionRecord) TransactionDTO {
	return TransactionDTO{
		ID:         tx.ID,
		AssetID:    tx.AssetID,
		AssetName:  tx.AssetName,
		Seller:     tx.Seller,
		Buyer:      tx.Buyer,
		Price:      NewAmount(tx.Price),
		Kind:       tx.Kind.String(),
		Timestamp:  tx.Timestamp,
		Time:       time.Unix(tx.Timestamp, 0).UTC().Format(time.RFC3339),
		AssetLevel: tx.AssetLevel,
		Stats:      tx.Stats.Values,
		Rarity:     tx.Stats.Rarity,
	}
}

func FromTransactions(txs []model.TransactionRecord) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = FromTransaction(tx)
	}
	return dtos
}

// FromArchived converts archive rows, skipping nil entries.
func FromArchived(txs []*model.TransactionRecord) []TransactionDTO {
	dtos := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		if tx != nil {
			dtos = append(dtos, FromTransaction(*tx))
		}
	}
	return dtos
}

type PricePointDTO struct {
	Price     AmountDTO `json:"price"`
	Timestamp int64     `json:"timestamp"`
}

// PriceHistoryDTO represents a data transfer object for per-asset price history
type PriceHistoryDTO struct {
	AssetID      string           `json:"asset_id"`
	AssetName    string           `json:"asset_name"`
	PricePoints  []PricePointDTO  `json:"price_points"`
	SaleRecords  []TransactionDTO `json:"sale_records"`
	HighestPrice AmountDTO        `json:"highest_price"`
	LowestPrice  AmountDTO        `json:"lowest_price"`
	AveragePrice AmountDTO        `json:"average_price"`
	TotalSales   int              `json:"total_sales"`
}

func FromPriceHistory(h model.AssetPriceHistory) PriceHistoryDTO {
	points := make([]PricePointDTO, len(h.PricePoints))
	for i, p := range h.PricePoints {
		points[i] = PricePointDTO{Price: NewAmount(p.Price), Timestamp: p.Timestamp}
	}
	return PriceHistoryDTO{
		AssetID:      h.AssetID,
		AssetName:    h.AssetName,
		PricePoints:  points,
		SaleRecords:  FromTransactions(h.SaleRecords),
		HighestPrice: NewAmount(h.HighestPrice),
		LowestPrice:  NewAmount(h.LowestPrice),
		AveragePrice: NewAmount(h.AveragePrice),
		TotalSales:   h.TotalSales,
	}
}

func FromPriceHistories(hs []model.AssetPriceHistory) []PriceHistoryDTO {
	dtos := make([]PriceHistoryDTO, len(hs))
	for i, h := range hs {
		dtos[i] = FromPriceHistory(h)
	}
	return dtos
}

// GlobalStatsDTO represents a data transfer object for global market statistics
type GlobalStatsDTO struct {
	TotalTransactions int            `json:"total_transactions"`
	TotalSales        int            `json:"total_sales"`
	TotalVolume       AmountDTO      `json:"total_volume"`
	AverageSalePrice  AmountDTO      `json:"average_sale_price"`
	SalesByDay        map[string]int `json:"sales_by_day"`
	SalesByLevel      map[int]int    `json:"sales_by_level"`
}

func FromGlobalStats(s model.GlobalMarketStats) GlobalStatsDTO {
	return GlobalStatsDTO{
		TotalTransactions: s.TotalTransactions,
		TotalSales:        s.TotalSales,
		TotalVolume:       NewAmount(s.TotalVolume),
		AverageSalePrice:  NewAmount(s.AverageSalePrice),
		SalesByDay:        s.SalesByDay,
		SalesByLevel:      s.SalesByLevel,
	}
}

// RaritySalesDTO is one tier's row in the rarity breakdowns, ordered by tier.
type RaritySalesDTO struct {
	Tier         string     `json:"tier"`
	Sales        int        `json:"sales,omitempty"`
	AveragePrice *AmountDTO `json:"average_price,omitempty"`
}

func FromSalesByRarity(counts map[model.RarityTier]int) []RaritySalesDTO {
	out := make([]RaritySalesDTO, 0, len(counts))
	for _, tier := range sortedTiers(counts) {
		out = append(out, RaritySalesDTO{Tier: tier.String(), Sales: counts[tier]})
	}
	return out
}

func FromAveragePriceByRarity(averages map[model.RarityTier]money.Wei) []RaritySalesDTO {
	out := make([]RaritySalesDTO, 0, len(averages))
	for _, tier := range sortedTiers(averages) {
		amount := NewAmount(averages[tier])
		out = append(out, RaritySalesDTO{Tier: tier.String(), AveragePrice: &amount})
	}
	return out
}

func sortedTiers[V any](m map[model.RarityTier]V) []model.RarityTier {
	tiers := make([]model.RarityTier, 0, len(m))
	for tier := range m {
		tiers = append(tiers, tier)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })
	return tiers
}
