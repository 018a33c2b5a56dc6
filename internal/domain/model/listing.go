package model

// Listing is the marketplace listing snapshot carried by every inbound event.
// Price is the raw decimal wei string as reported by the marketplace contract.
type Listing struct {
	AssetID    string
	Seller     string
	Buyer      string
	Price      string
	AssetName  string
	AssetLevel int
	AssetStats map[string]int
	Rarity     string
}

// Snapshot copies the listing's stats into an immutable StatSnapshot.
func (l Listing) Snapshot() StatSnapshot {
	values := make(map[string]int, len(l.AssetStats))
	for k, v := range l.AssetStats {
		values[k] = v
	}
	return StatSnapshot{Values: values, Rarity: l.Rarity}
}
