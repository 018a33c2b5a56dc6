package storage

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"nftStatApp/internal/domain/model"
	"nftStatApp/internal/domain/repository"
	"nftStatApp/pkg/money"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	json "github.com/goccy/go-json"
)

// ClickHouseArchive implements the TransactionArchive interface using ClickHouse.
// It keeps every transaction record, including those trimmed from the bounded
// in-memory log, for historical analysis.
type ClickHouseArchive struct {
	conn driver.Conn
}

type ClickHouseConfig struct {
	Addr     string
	Username string
	Password string
	Timeout  int // seconds
}

func NewClickHouseArchive(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseArchive, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: time.Duration(cfg.Timeout) * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := createTablesIfNotExist(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &ClickHouseArchive{conn: conn}, nil
}

// Ensure ClickHouseArchive implements the TransactionArchive interface
var _ repository.TransactionArchive = (*ClickHouseArchive)(nil)

func createTablesIfNotExist(ctx context.Context, conn driver.Conn) error {
	return conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS marketplace_transactions (
			id String,
			asset_id String,
			asset_name String,
			seller String,
			buyer String,
			price UInt256,
			kind LowCardinality(String),
			timestamp DateTime,
			asset_level Int32,
			stats String,
			archived_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree()
		ORDER BY (asset_id, timestamp, id)
	`)
}

// SaveTransaction appends a transaction record to ClickHouse
func (r *ClickHouseArchive) SaveTransaction(ctx context.Context, tx *model.TransactionRecord) error {
	stats, err := json.Marshal(tx.Stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats of %s: %w", tx.ID, err)
	}

	query := `
		INSERT INTO marketplace_transactions (
			id, asset_id, asset_name, seller, buyer, price, kind, timestamp, asset_level, stats
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`

	return r.conn.AsyncInsert(ctx, query, false,
		tx.ID,
		tx.AssetID,
		tx.AssetName,
		tx.Seller,
		tx.Buyer,
		tx.Price.BigInt(),
		tx.Kind.String(),
		time.Unix(tx.Timestamp, 0).UTC(),
		int32(tx.AssetLevel),
		string(stats),
	)
}

// GetTransactionsSince retrieves all archived transactions at or after the given unix timestamp
func (r *ClickHouseArchive) GetTransactionsSince(ctx context.Context, since int64) ([]*model.TransactionRecord, error) {
	query := `
		SELECT id, asset_id, asset_name, seller, buyer, price, kind, timestamp, asset_level, stats
		FROM marketplace_transactions FINAL
		WHERE timestamp >= fromUnixTimestamp(?)
		ORDER BY timestamp, id
	`

	rows, err := r.conn.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*model.TransactionRecord, 0)
	for rows.Next() {
		var (
			tx    model.TransactionRecord
			price big.Int
			kind  string
			ts    time.Time
			level int32
			stats string
		)
		if err := rows.Scan(&tx.ID, &tx.AssetID, &tx.AssetName, &tx.Seller, &tx.Buyer,
			&price, &kind, &ts, &level, &stats); err != nil {
			return nil, err
		}

		if tx.Price, err = money.Parse(price.String()); err != nil {
			return nil, fmt.Errorf("archived transaction %s: %w", tx.ID, err)
		}
		if tx.Kind, err = model.ParseTransactionKind(kind); err != nil {
			return nil, fmt.Errorf("archived transaction %s: %w", tx.ID, err)
		}
		if err := json.Unmarshal([]byte(stats), &tx.Stats); err != nil {
			return nil, fmt.Errorf("archived transaction %s: failed to unmarshal stats: %w", tx.ID, err)
		}
		tx.Timestamp = ts.Unix()
		tx.AssetLevel = int(level)

		results = append(results, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func (r *ClickHouseArchive) Close() error {
	return r.conn.Close()
}
