package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nftStatApp/internal/app/dto"
	"nftStatApp/internal/domain/model"
	"nftStatApp/internal/domain/service"
	"nftStatApp/internal/domain/useCases"
	handlers "nftStatApp/internal/handlers/http"
	"nftStatApp/internal/lib/logger/handlers/slogdiscard"
	"nftStatApp/pkg/money"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubArchive struct {
	since int64
	txs   []*model.TransactionRecord
	err   error
}

func (a *stubArchive) GetTransactionsSince(_ context.Context, since int64) ([]*model.TransactionRecord, error) {
	a.since = since
	return a.txs, a.err
}

func seededStore(t *testing.T) *service.AnalyticsStore {
	t.Helper()
	ctx := context.Background()
	store := service.NewAnalyticsStore(slogdiscard.NewDiscardLogger(), service.StoreConfig{}, nil, nil)

	apply := func(fn func(context.Context, *model.Listing) (model.TransactionRecord, error), l model.Listing) {
		_, err := fn(ctx, &l)
		require.NoError(t, err)
	}
	aria := model.Listing{AssetID: "42", AssetName: "Aria", Seller: "0xAlice", Buyer: "0xBob", Price: "1000000000000000000", AssetLevel: 3, Rarity: "Rare"}
	apply(store.ApplyListingCreated, aria)
	aria.Price = "1500000000000000000"
	apply(store.ApplyListingSold, aria)
	apply(store.ApplyListingCreated, model.Listing{AssetID: "7", AssetName: "Brom", Seller: "0xCarol", Price: "5"})
	apply(store.ApplyListingCancelled, model.Listing{AssetID: "7", AssetName: "Brom", Seller: "0xCarol", Price: "5"})
	return store
}

func newServer(t *testing.T, archive *stubArchive, checks map[string]handlers.HealthCheck) http.Handler {
	t.Helper()
	var reader useCases.ArchiveReader
	if archive != nil {
		reader = archive
	}
	srv := handlers.NewServer(slogdiscard.NewDiscardLogger(), ":0", seededStore(t), nil, reader, checks)
	return srv.Handler()
}

func get(t *testing.T, h http.Handler, target string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestServer_Stats(t *testing.T) {
	h := newServer(t, nil, nil)

	var stats dto.GlobalStatsDTO
	require.Equal(t, http.StatusOK, get(t, h, "/stats", &stats))
	assert.Equal(t, 4, stats.TotalTransactions)
	assert.Equal(t, 1, stats.TotalSales)
	assert.Equal(t, "1500000000000000000", stats.TotalVolume.Wei)
	assert.Equal(t, "1.5", stats.TotalVolume.Ether)
}

func TestServer_Transactions(t *testing.T) {
	h := newServer(t, nil, nil)

	tests := []struct {
		target string
		want   int
	}{
		{"/transactions", 4},
		{"/transactions?kind=listing", 2},
		{"/transactions?kind=sale", 1},
		{"/transactions?asset=7", 2},
		{"/transactions?asset=7&kind=cancellation", 1},
		{"/transactions?user=0xalice", 2},
		{"/transactions?user=0xbob&buyer=true", 1},
		{"/transactions?user=0xbob&seller=true", 0},
		{"/transactions?user=0xalice&kind=sale", 1},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var txs []dto.TransactionDTO
			require.Equal(t, http.StatusOK, get(t, h, tt.target, &txs))
			assert.Len(t, txs, tt.want)
		})
	}

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/transactions?kind=refund", nil))
}

func TestServer_History(t *testing.T) {
	h := newServer(t, nil, nil)

	var history dto.PriceHistoryDTO
	require.Equal(t, http.StatusOK, get(t, h, "/history/42", &history))
	assert.Equal(t, "Aria", history.AssetName)
	assert.Len(t, history.PricePoints, 1)
	assert.Equal(t, 1, history.TotalSales)
	assert.Equal(t, "1500000000000000000", history.HighestPrice.Wei)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/history/999", nil))
}

func TestServer_Rankings(t *testing.T) {
	h := newServer(t, nil, nil)

	var top []dto.PriceHistoryDTO
	require.Equal(t, http.StatusOK, get(t, h, "/rankings/top-selling?count=1", &top))
	require.Len(t, top, 1)
	assert.Equal(t, "42", top[0].AssetID)

	var valuable []dto.PriceHistoryDTO
	require.Equal(t, http.StatusOK, get(t, h, "/rankings/most-valuable", &valuable))
	require.Len(t, valuable, 2)
	assert.Equal(t, "42", valuable[0].AssetID)
	assert.Equal(t, "7", valuable[1].AssetID)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/rankings/top-selling?count=-1", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/rankings/most-valuable?count=many", nil))
}

func TestServer_Rarity(t *testing.T) {
	h := newServer(t, nil, nil)

	var sales []dto.RaritySalesDTO
	require.Equal(t, http.StatusOK, get(t, h, "/rarity/sales", &sales))
	require.Len(t, sales, 1)
	assert.Equal(t, "Rare", sales[0].Tier)
	assert.Equal(t, 1, sales[0].Sales)

	var averages []dto.RaritySalesDTO
	require.Equal(t, http.StatusOK, get(t, h, "/rarity/average-price", &averages))
	require.Len(t, averages, 1)
	require.NotNil(t, averages[0].AveragePrice)
	assert.Equal(t, "1500000000000000000", averages[0].AveragePrice.Wei)
}

func TestServer_Archive(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, get(t, newServer(t, nil, nil), "/archive", nil))

	archive := &stubArchive{txs: []*model.TransactionRecord{
		{ID: "old-1", AssetID: "1", Price: money.MustParse("10"), Kind: model.KindSale, Timestamp: 100},
		nil,
	}}
	h := newServer(t, archive, nil)

	var txs []dto.TransactionDTO
	require.Equal(t, http.StatusOK, get(t, h, "/archive?since=50", &txs))
	assert.Equal(t, int64(50), archive.since)
	require.Len(t, txs, 1)
	assert.Equal(t, "old-1", txs[0].ID)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/archive?since=yesterday", nil))

	archive.err = errors.New("clickhouse down")
	assert.Equal(t, http.StatusInternalServerError, get(t, h, "/archive?since=50", nil))
}

func TestServer_Health(t *testing.T) {
	var body map[string]string
	h := newServer(t, nil, map[string]handlers.HealthCheck{
		"blob_store": func(context.Context) error { return nil },
	})
	require.Equal(t, http.StatusOK, get(t, h, "/health", &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["blob_store"])

	h = newServer(t, nil, map[string]handlers.HealthCheck{
		"blob_store": func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			require.True(t, ok)
			return errors.New("connection refused")
		},
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
