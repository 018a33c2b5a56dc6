package model

import (
	"time"

	"nftStatApp/pkg/money"
)

// DayLayout is the calendar-day key format used by SalesByDay.
const DayLayout = "2006-01-02"

// GlobalMarketStats aggregates the whole transaction log.
// It is always rebuilt from scratch, never adjusted incrementally.
type GlobalMarketStats struct {
	TotalTransactions int            `json:"total_transactions"`
	TotalSales        int            `json:"total_sales"`
	TotalVolume       money.Wei      `json:"total_volume"`
	AverageSalePrice  money.Wei      `json:"average_sale_price"`
	SalesByDay        map[string]int `json:"sales_by_day"`
	SalesByLevel      map[int]int    `json:"sales_by_level"`
}

// NewGlobalMarketStats returns empty statistics.
func NewGlobalMarketStats() *GlobalMarketStats {
	return &GlobalMarketStats{
		SalesByDay:   make(map[string]int),
		SalesByLevel: make(map[int]int),
	}
}

// Rebuild recomputes every counter from the given transactions.
// Only sales contribute to volume, averages and the day/level breakdowns.
func (s *GlobalMarketStats) Rebuild(transactions []TransactionRecord) {
	s.TotalTransactions = len(transactions)
	s.TotalSales = 0
	s.SalesByDay = make(map[string]int)
	s.SalesByLevel = make(map[int]int)

	volume := money.Zero()
	for _, tx := range transactions {
		if tx.Kind != KindSale {
			continue
		}
		s.TotalSales++
		volume = volume.Add(tx.Price)

		day := time.Unix(tx.Timestamp, 0).UTC().Format(DayLayout)
		s.SalesByDay[day]++
		s.SalesByLevel[tx.AssetLevel]++
	}

	s.TotalVolume = volume
	s.AverageSalePrice = money.Zero()
	if s.TotalSales > 0 {
		s.AverageSalePrice = volume.DivCount(uint64(s.TotalSales))
	}
}

// Clone returns a deep copy of the statistics.
func (s *GlobalMarketStats) Clone() GlobalMarketStats {
	out := *s
	out.SalesByDay = make(map[string]int, len(s.SalesByDay))
	for k, v := range s.SalesByDay {
		out.SalesByDay[k] = v
	}
	out.SalesByLevel = make(map[int]int, len(s.SalesByLevel))
	for k, v := range s.SalesByLevel {
		out.SalesByLevel[k] = v
	}
	return out
}
