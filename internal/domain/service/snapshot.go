package service

import (
	"fmt"

	"nftStatApp/internal/domain/model"
	"nftStatApp/internal/domain/repository"

	json "github.com/goccy/go-json"
)

// snapshot is the serialized form of the store, one blob per key.
type snapshot map[string][]byte

// encodeSnapshot serializes the three analytics structures.
// Must be called with the state lock held.
func encodeSnapshot(
	transactions []model.TransactionRecord,
	histories map[string]*model.AssetPriceHistory,
	stats *model.GlobalMarketStats,
) (snapshot, error) {
	txData, err := json.Marshal(transactions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transactions: %w", err)
	}
	historyData, err := json.Marshal(histories)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal price history: %w", err)
	}
	statsData, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal global stats: %w", err)
	}

	return snapshot{
		repository.KeyTransactions: txData,
		repository.KeyPriceHistory: historyData,
		repository.KeyGlobalStats:  statsData,
	}, nil
}

func decodeTransactions(data []byte) ([]model.TransactionRecord, error) {
	var transactions []model.TransactionRecord
	if err := json.Unmarshal(data, &transactions); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedState, repository.KeyTransactions, err)
	}
	if transactions == nil {
		transactions = make([]model.TransactionRecord, 0)
	}
	for i := range transactions {
		if transactions[i].Stats.Values == nil {
			transactions[i].Stats.Values = make(map[string]int)
		}
	}
	return transactions, nil
}

func decodeHistories(data []byte) (map[string]*model.AssetPriceHistory, error) {
	var histories map[string]*model.AssetPriceHistory
	if err := json.Unmarshal(data, &histories); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedState, repository.KeyPriceHistory, err)
	}
	if histories == nil {
		histories = make(map[string]*model.AssetPriceHistory)
	}
	for assetID, h := range histories {
		if h == nil {
			return nil, fmt.Errorf("%w: %s: null history for asset %s", ErrMalformedState, repository.KeyPriceHistory, assetID)
		}
		if h.PricePoints == nil {
			h.PricePoints = make([]model.PricePoint, 0)
		}
		if h.SaleRecords == nil {
			h.SaleRecords = make([]model.TransactionRecord, 0)
		}
	}
	return histories, nil
}

func decodeGlobalStats(data []byte) (*model.GlobalMarketStats, error) {
	stats := model.NewGlobalMarketStats()
	if err := json.Unmarshal(data, stats); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedState, repository.KeyGlobalStats, err)
	}
	if stats.SalesByDay == nil {
		stats.SalesByDay = make(map[string]int)
	}
	if stats.SalesByLevel == nil {
		stats.SalesByLevel = make(map[int]int)
	}
	return stats, nil
}
