package model

import "nftStatApp/pkg/money"

// AssetPriceHistory holds the price observations and sales of a single asset.
// AssetName is captured when the history is created and is not refreshed on renames.
type AssetPriceHistory struct {
	AssetID      string              `json:"asset_id"`
	AssetName    string              `json:"asset_name"`
	PricePoints  []PricePoint        `json:"price_points"`
	SaleRecords  []TransactionRecord `json:"sale_records"`
	HighestPrice money.Wei           `json:"highest_price"`
	LowestPrice  money.Wei           `json:"lowest_price"`
	AveragePrice money.Wei           `json:"average_price"`
	TotalSales   int                 `json:"total_sales"`
}

// NewAssetPriceHistory creates an empty history for an asset.
func NewAssetPriceHistory(assetID, assetName string) *AssetPriceHistory {
	return &AssetPriceHistory{
		AssetID:     assetID,
		AssetName:   assetName,
		PricePoints: make([]PricePoint, 0),
		SaleRecords: make([]TransactionRecord, 0),
	}
}

// AddPricePoint appends a listing or price update observation.
// Sale statistics are unaffected.
func (h *AssetPriceHistory) AddPricePoint(p PricePoint) {
	h.PricePoints = append(h.PricePoints, p)
}

// AddSale appends a sale record and recomputes the derived sale statistics.
func (h *AssetPriceHistory) AddSale(record TransactionRecord) {
	h.SaleRecords = append(h.SaleRecords, record.Clone())
	h.Recompute()
}

// Recompute derives highest, lowest and average sale price from SaleRecords.
// Without sales the derived fields are left untouched.
func (h *AssetPriceHistory) Recompute() {
	if len(h.SaleRecords) == 0 {
		return
	}

	highest := money.Zero()
	lowest := h.SaleRecords[0].Price
	total := money.Zero()

	for _, sale := range h.SaleRecords {
		if sale.Price.Cmp(highest) > 0 {
			highest = sale.Price
		}
		if sale.Price.Cmp(lowest) < 0 {
			lowest = sale.Price
		}
		total = total.Add(sale.Price)
	}

	h.HighestPrice = highest
	h.LowestPrice = lowest
	h.AveragePrice = total.DivCount(uint64(len(h.SaleRecords)))
	h.TotalSales = len(h.SaleRecords)
}

// Clone returns a deep copy of the history.
func (h *AssetPriceHistory) Clone() AssetPriceHistory {
	out := *h
	out.PricePoints = append(make([]PricePoint, 0, len(h.PricePoints)), h.PricePoints...)
	out.SaleRecords = make([]TransactionRecord, len(h.SaleRecords))
	for i, r := range h.SaleRecords {
		out.SaleRecords[i] = r.Clone()
	}
	return out
}
