package model

import (
	"fmt"

	"nftStatApp/pkg/money"
)

// TransactionKind identifies the marketplace event a record was created from.
type TransactionKind int

const (
	KindListing TransactionKind = iota
	KindPriceUpdate
	KindSale
	KindCancellation
)

var kindNames = map[TransactionKind]string{
	KindListing:      "listing",
	KindPriceUpdate:  "price_update",
	KindSale:         "sale",
	KindCancellation: "cancellation",
}

func (k TransactionKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseTransactionKind maps a kind name back to its value.
func ParseTransactionKind(s string) (TransactionKind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction kind %q", s)
}

func (k TransactionKind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown transaction kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *TransactionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseTransactionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// StatSnapshot is the asset's stats as they were when the event happened.
// Rarity holds the tier tag when the asset carries one.
type StatSnapshot struct {
	Values map[string]int `json:"values"`
	Rarity string         `json:"rarity,omitempty"`
}

// RarityTier resolves the snapshot's rarity tag.
func (s StatSnapshot) RarityTier() (RarityTier, bool) {
	if s.Rarity == "" {
		return 0, false
	}
	return ParseRarityTier(s.Rarity)
}

func (s StatSnapshot) clone() StatSnapshot {
	values := make(map[string]int, len(s.Values))
	for k, v := range s.Values {
		values[k] = v
	}
	return StatSnapshot{Values: values, Rarity: s.Rarity}
}

// TransactionRecord is one immutable marketplace event for one asset.
type TransactionRecord struct {
	ID         string          `json:"id"`
	AssetID    string          `json:"asset_id"`
	AssetName  string          `json:"asset_name"`
	Seller     string          `json:"seller"`
	Buyer      string          `json:"buyer"`
	Price      money.Wei       `json:"price"`
	Kind       TransactionKind `json:"kind"`
	Timestamp  int64           `json:"timestamp"`
	AssetLevel int             `json:"asset_level"`
	Stats      StatSnapshot    `json:"stats"`
}

// Clone returns a copy that shares no maps with the receiver.
func (t TransactionRecord) Clone() TransactionRecord {
	t.Stats = t.Stats.clone()
	return t
}

// PricePoint is a price observation from a listing or price update.
type PricePoint struct {
	AssetID   string    `json:"asset_id"`
	Price     money.Wei `json:"price"`
	Timestamp int64     `json:"timestamp"`
}
