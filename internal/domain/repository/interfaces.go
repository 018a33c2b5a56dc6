// Package repository defines all the repository interfaces used by domain services
// Following the dependency inversion principle, domain logic depends on these interfaces,
// and infrastructure implementations provide concrete implementations
package repository

import (
	"context"
	"errors"

	"nftStatApp/internal/domain/model"
)

// Keys of the three analytics blobs.
const (
	KeyTransactions = "transactions"
	KeyPriceHistory = "price_history"
	KeyGlobalStats  = "global_stats"
)

// ErrBlobNotFound is returned by Load when a key has never been saved.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore defines the interface for the analytics checkpoint storage
// Each key holds one serialized structure; saves are all-or-nothing per key
// and independent across keys
type BlobStore interface {
	// Save replaces the blob stored under key
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the blob stored under key, or ErrBlobNotFound
	Load(ctx context.Context, key string) ([]byte, error)
}

// TransactionArchive defines the interface for append-only transaction storage
// This is used for keeping every transaction beyond the bounded in-memory log
// for historical analysis and audit purposes
type TransactionArchive interface {
	// SaveTransaction appends a transaction record to durable storage
	SaveTransaction(ctx context.Context, tx *model.TransactionRecord) error

	// GetTransactionsSince retrieves archived transactions since the given unix timestamp
	GetTransactionsSince(ctx context.Context, since int64) ([]*model.TransactionRecord, error)
}
