package storage_test

import (
	"context"
	"testing"
	"time"

	"nftStatApp/internal/domain/model"
	"nftStatApp/internal/infrastructure/storage"
	"nftStatApp/pkg/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClickHouseArchive(t *testing.T) {
	t.Skip("Skipping ClickHouse test - requires live ClickHouse instance")

	ctx := context.Background()
	archive, err := storage.NewClickHouseArchive(ctx, storage.ClickHouseConfig{
		Addr:    "localhost:9000",
		Timeout: 10,
	})
	require.NoError(t, err)
	defer archive.Close()

	tx := &model.TransactionRecord{
		ID:         "test-tx-1",
		AssetID:    "42",
		AssetName:  "Aria",
		Seller:     "0xseller",
		Buyer:      "0xbuyer",
		Price:      money.MustParse("123456789012345678901234567890"),
		Kind:       model.KindSale,
		Timestamp:  time.Now().Unix(),
		AssetLevel: 3,
		Stats:      model.StatSnapshot{Values: map[string]int{"strength": 5}, Rarity: "Epic"},
	}
	require.NoError(t, archive.SaveTransaction(ctx, tx))

	// AsyncInsert without wait; give the server a moment to flush.
	time.Sleep(2 * time.Second)

	txs, err := archive.GetTransactionsSince(ctx, time.Now().Add(-time.Hour).Unix())
	require.NoError(t, err)

	var found *model.TransactionRecord
	for _, got := range txs {
		if got.ID == tx.ID {
			found = got
			break
		}
	}
	require.NotNil(t, found, "saved transaction not found in archive")
	assert.Equal(t, tx.Price.String(), found.Price.String())
	assert.Equal(t, model.KindSale, found.Kind)
	assert.Equal(t, "Epic", found.Stats.Rarity)
}
