// Package service provides implementations of domain services that implement core business logic
// This package depends only on domain models and repository interfaces (not implementations)
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"nftStatApp/internal/domain/model"
	"nftStatApp/internal/domain/repository"
	"nftStatApp/internal/lib/logger/sl"
	"nftStatApp/pkg/money"

	"github.com/google/uuid"
)

// DefaultMaxTransactions is the log capacity used when none is configured.
const DefaultMaxTransactions = 1000

// StoreConfig holds the tunables of an AnalyticsStore.
type StoreConfig struct {
	MaxTransactions    int
	PersistenceEnabled bool

	// Clock and NewID default to time.Now and uuid.NewString.
	Clock func() time.Time
	NewID func() string
}

// AnalyticsStore owns the bounded transaction log, the per-asset price histories
// and the global market statistics.
//
// Event applications are serialized by writeMu for their whole duration
// (mutate, copy out, persist, notify). mu guards the state itself so queries only
// wait for the in-memory mutation and the copy-out.
type AnalyticsStore struct {
	writeMu sync.Mutex

	mu           sync.RWMutex
	transactions []model.TransactionRecord
	histories    map[string]*model.AssetPriceHistory
	stats        *model.GlobalMarketStats

	obsMu     sync.Mutex
	observers []subscription
	nextSubID uint64

	blobs   repository.BlobStore         // Checkpoint storage (optional)
	archive repository.TransactionArchive // Append-only archive (optional)

	maxTransactions    int
	persistenceEnabled bool
	now                func() time.Time
	newID              func() string
	log                *slog.Logger
}

// NewAnalyticsStore creates an empty store. Call Load to restore persisted state.
//
// Parameters:
//   - log: structured logger for persistence and observer failures
//   - cfg: capacity, persistence switch and optional clock/id overrides
//   - blobs: checkpoint storage; nil keeps the store memory-only
//   - archive: append-only transaction archive (can be nil)
func NewAnalyticsStore(log *slog.Logger, cfg StoreConfig, blobs repository.BlobStore, archive repository.TransactionArchive) *AnalyticsStore {
	if cfg.MaxTransactions <= 0 {
		cfg.MaxTransactions = DefaultMaxTransactions
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if log == nil {
		log = slog.Default()
	}

	return &AnalyticsStore{
		transactions:       make([]model.TransactionRecord, 0),
		histories:          make(map[string]*model.AssetPriceHistory),
		stats:              model.NewGlobalMarketStats(),
		blobs:              blobs,
		archive:            archive,
		maxTransactions:    cfg.MaxTransactions,
		persistenceEnabled: cfg.PersistenceEnabled && blobs != nil,
		now:                cfg.Clock,
		newID:              cfg.NewID,
		log:                log.With(slog.String("component", "analytics_store")),
	}
}

// ApplyListingCreated records a new listing and its first price point.
func (s *AnalyticsStore) ApplyListingCreated(ctx context.Context, listing *model.Listing) (model.TransactionRecord, error) {
	return s.apply(ctx, model.KindListing, listing)
}

// ApplyListingUpdated records a price change and appends a price point.
func (s *AnalyticsStore) ApplyListingUpdated(ctx context.Context, listing *model.Listing) (model.TransactionRecord, error) {
	return s.apply(ctx, model.KindPriceUpdate, listing)
}

// ApplyListingSold records a sale and recomputes the asset's sale statistics.
func (s *AnalyticsStore) ApplyListingSold(ctx context.Context, listing *model.Listing) (model.TransactionRecord, error) {
	return s.apply(ctx, model.KindSale, listing)
}

// ApplyListingCancelled records a cancellation. Price history is untouched.
func (s *AnalyticsStore) ApplyListingCancelled(ctx context.Context, listing *model.Listing) (model.TransactionRecord, error) {
	return s.apply(ctx, model.KindCancellation, listing)
}

func (s *AnalyticsStore) apply(ctx context.Context, kind model.TransactionKind, listing *model.Listing) (model.TransactionRecord, error) {
	if listing == nil {
		return model.TransactionRecord{}, fmt.Errorf("apply %s: %w", kind, ErrNilListing)
	}

	price, err := money.Parse(listing.Price)
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("apply %s for asset %s: %w", kind, listing.AssetID, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	record := model.TransactionRecord{
		ID:         s.newID(),
		AssetID:    listing.AssetID,
		AssetName:  listing.AssetName,
		Seller:     listing.Seller,
		Price:      price,
		Kind:       kind,
		Timestamp:  s.now().Unix(),
		AssetLevel: listing.AssetLevel,
		Stats:      listing.Snapshot(),
	}
	if kind == model.KindSale {
		record.Buyer = listing.Buyer
	}

	s.mu.Lock()
	s.transactions = append(s.transactions, record)
	if len(s.transactions) > s.maxTransactions {
		s.transactions = trimToNewest(s.transactions, s.maxTransactions)
	}

	var touched *model.AssetPriceHistory
	switch kind {
	case model.KindListing, model.KindPriceUpdate:
		touched = s.historyFor(record)
		touched.AddPricePoint(model.PricePoint{AssetID: record.AssetID, Price: price, Timestamp: record.Timestamp})
	case model.KindSale:
		touched = s.historyFor(record)
		touched.AddSale(record)
	}

	s.stats.Rebuild(s.transactions)

	var blobs snapshot
	if s.persistenceEnabled {
		blobs, err = encodeSnapshot(s.transactions, s.histories, s.stats)
		if err != nil {
			s.log.Error("failed to encode snapshot", sl.Err(err))
		}
	}

	n := notification{}
	if s.hasObservers() {
		n.transactions = cloneTransactions(s.transactions)
		stats := s.stats.Clone()
		n.stats = &stats
		if touched != nil {
			history := touched.Clone()
			n.history = &history
		}
	}
	s.mu.Unlock()

	if blobs != nil {
		_ = s.persist(ctx, blobs)
	}
	s.archiveRecord(ctx, record)
	s.notify(n)

	return record.Clone(), nil
}

// historyFor returns the asset's history, creating it with the record's
// asset name on first observation. Must be called with mu held.
func (s *AnalyticsStore) historyFor(record model.TransactionRecord) *model.AssetPriceHistory {
	h, ok := s.histories[record.AssetID]
	if !ok {
		h = model.NewAssetPriceHistory(record.AssetID, record.AssetName)
		s.histories[record.AssetID] = h
	}
	return h
}

func (s *AnalyticsStore) hasObservers() bool {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	return len(s.observers) > 0
}

// persist writes each blob independently. Failures are logged and returned
// joined; the in-memory state is never rolled back.
func (s *AnalyticsStore) persist(ctx context.Context, blobs snapshot) error {
	var errs []error
	for _, key := range []string{repository.KeyTransactions, repository.KeyPriceHistory, repository.KeyGlobalStats} {
		if err := s.blobs.Save(ctx, key, blobs[key]); err != nil {
			err = fmt.Errorf("%w: save %s: %v", ErrPersistence, key, err)
			s.log.Error("failed to persist blob", slog.String("key", key), sl.Err(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *AnalyticsStore) archiveRecord(ctx context.Context, record model.TransactionRecord) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveTransaction(ctx, &record); err != nil {
		s.log.Warn("failed to archive transaction", slog.String("id", record.ID), sl.Err(err))
	}
}

// Load restores the three blobs independently. A missing blob yields its
// default; an unreadable or corrupt blob resets only itself. The returned error
// joins the per-blob failures and the store remains usable either way.
func (s *AnalyticsStore) Load(ctx context.Context) error {
	if !s.persistenceEnabled {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var errs []error

	transactions := make([]model.TransactionRecord, 0)
	if data, ok, err := s.loadBlob(ctx, repository.KeyTransactions); err != nil {
		errs = append(errs, err)
	} else if ok {
		if decoded, err := decodeTransactions(data); err != nil {
			errs = append(errs, err)
		} else {
			transactions = decoded
		}
	}

	histories := make(map[string]*model.AssetPriceHistory)
	if data, ok, err := s.loadBlob(ctx, repository.KeyPriceHistory); err != nil {
		errs = append(errs, err)
	} else if ok {
		if decoded, err := decodeHistories(data); err != nil {
			errs = append(errs, err)
		} else {
			histories = decoded
		}
	}

	stats := model.NewGlobalMarketStats()
	if data, ok, err := s.loadBlob(ctx, repository.KeyGlobalStats); err != nil {
		errs = append(errs, err)
	} else if ok {
		if decoded, err := decodeGlobalStats(data); err != nil {
			errs = append(errs, err)
		} else {
			stats = decoded
		}
	}

	// A smaller capacity than the one the log was saved with.
	if len(transactions) > s.maxTransactions {
		transactions = trimToNewest(transactions, s.maxTransactions)
		stats.Rebuild(transactions)
	}

	for _, err := range errs {
		s.log.Warn("persisted blob reset to default", sl.Err(err))
	}

	s.mu.Lock()
	s.transactions = transactions
	s.histories = histories
	s.stats = stats
	n := notification{}
	if s.hasObservers() {
		n.transactions = cloneTransactions(s.transactions)
		st := s.stats.Clone()
		n.stats = &st
	}
	s.mu.Unlock()

	s.log.Info("analytics state loaded",
		slog.Int("transactions", len(transactions)),
		slog.Int("assets", len(histories)),
		slog.Int("failed_blobs", len(errs)),
	)

	s.notify(n)

	return errors.Join(errs...)
}

func (s *AnalyticsStore) loadBlob(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.blobs.Load(ctx, key)
	if errors.Is(err, repository.ErrBlobNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: load %s: %v", ErrPersistence, key, err)
	}
	return data, true, nil
}

// trimToNewest keeps the limit records with the newest timestamps. Among equal
// timestamps the later insertion survives. Survivors keep insertion order.
func trimToNewest(transactions []model.TransactionRecord, limit int) []model.TransactionRecord {
	if len(transactions) <= limit {
		return transactions
	}

	order := make([]int, len(transactions))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ta, tb := transactions[order[a]].Timestamp, transactions[order[b]].Timestamp
		if ta != tb {
			return ta > tb
		}
		return order[a] > order[b]
	})

	keep := order[:limit]
	sort.Ints(keep)

	out := make([]model.TransactionRecord, 0, limit)
	for _, i := range keep {
		out = append(out, transactions[i])
	}
	return out
}

func cloneTransactions(transactions []model.TransactionRecord) []model.TransactionRecord {
	out := make([]model.TransactionRecord, len(transactions))
	for i, tx := range transactions {
		out[i] = tx.Clone()
	}
	return out
}
