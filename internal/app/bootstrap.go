package app

import (
	"context"
	"fmt"
	"log/slog"

	"nftStatApp/config"
	"nftStatApp/internal/app/dto"
	"nftStatApp/internal/domain/repository"
	"nftStatApp/internal/domain/service"
	ws "nftStatApp/internal/handlers/websocket"
	"nftStatApp/internal/infrastructure/cache"
	"nftStatApp/internal/infrastructure/queue"
	"nftStatApp/internal/infrastructure/storage"
	"nftStatApp/internal/lib/logger/sl"

	"github.com/robfig/cron/v3"
)

// Processor defines the common interface for both standard and Kafka event processors
type Processor interface {
	Run(ctx context.Context) error
}

// blobBackend is a BlobStore that can be health-checked and closed.
type blobBackend interface {
	repository.BlobStore
	Ping(ctx context.Context) error
	Close() error
}

// AppContext holds all app dependencies
type AppContext struct {
	Config         *config.Config
	Store          *service.AnalyticsStore
	Broadcaster    *ws.WebSocketBroadcaster
	EventProcessor Processor
	EventCh        chan *dto.ListingEventDTO // direct channel; nil when Kafka is the source
	KafkaConsumer  *queue.KafkaConsumer
	KafkaProducer  *queue.KafkaProducer
	Publisher      *service.ListingProducerUseCase
	Archive        *storage.ClickHouseArchive
	HealthChecks   map[string]func(ctx context.Context) error

	blobs     blobBackend
	dedupCron *cron.Cron
	log       *slog.Logger
}

// NewApp initializes the app context with all dependencies and restores persisted state
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*AppContext, error) {
	app := &AppContext{
		Config:       cfg,
		HealthChecks: make(map[string]func(ctx context.Context) error),
		log:          log,
	}

	// Checkpoint storage for the analytics blobs
	if cfg.PersistenceEnabled {
		blobs, err := newBlobBackend(ctx, log, cfg)
		if err != nil {
			return nil, err
		}
		app.blobs = blobs
		app.HealthChecks["blob_store"] = blobs.Ping
	} else {
		log.Info("persistence disabled, analytics state is memory-only")
	}

	// Optional long-term archive (ClickHouse)
	var archive repository.TransactionArchive
	if cfg.ArchiveEnabled {
		chArchive, err := storage.NewClickHouseArchive(ctx, storage.ClickHouseConfig{
			Addr:     cfg.ClickhouseAddr,
			Username: cfg.ClickhouseUsername,
			Password: cfg.ClickhousePassword,
			Timeout:  cfg.ClickhouseTimeout,
		})
		if err != nil {
			log.Warn("failed to connect to ClickHouse, continuing without archive", sl.Err(err))
		} else {
			app.Archive = chArchive
			archive = chArchive
			log.Info("ClickHouse transaction archive initialized")
		}
	}

	var blobStore repository.BlobStore
	if app.blobs != nil {
		blobStore = app.blobs
	}
	app.Store = service.NewAnalyticsStore(log, service.StoreConfig{
		MaxTransactions:    cfg.MaxTransactionsToStore,
		PersistenceEnabled: cfg.PersistenceEnabled,
	}, blobStore, archive)

	app.Broadcaster = ws.NewWebSocketBroadcaster(log)
	app.Store.Subscribe(app.Broadcaster)

	if err := app.Store.Load(ctx); err != nil {
		log.Warn("analytics state partially restored", sl.Err(err))
	}

	dedup := NewDedupCache()
	dedupCron, err := ScheduleReset(log, dedup, cfg.DedupResetSchedule)
	if err != nil {
		return nil, err
	}
	app.dedupCron = dedupCron

	if cfg.KafkaEnabled {
		kafkaConfig := queue.KafkaConfig{
			Brokers:       cfg.KafkaBrokers,
			Topic:         cfg.KafkaTopic,
			ConsumerGroup: cfg.KafkaConsumerGroup,
			BatchSize:     cfg.KafkaBatchSize,
			BatchTimeout:  cfg.KafkaBatchTimeout,
		}
		app.KafkaConsumer = queue.NewKafkaConsumer(log, kafkaConfig)
		app.EventProcessor = NewKafkaEventProcessor(log, app.KafkaConsumer, app.Store, dedup)

		app.KafkaProducer = queue.NewKafkaProducer(kafkaConfig)
		app.Publisher = service.NewListingProducerUseCase(log, app.KafkaProducer)
		log.Info("using Kafka for event consumption", slog.String("topic", cfg.KafkaTopic))
	} else {
		app.setupDirectChannel(dedup)
	}

	return app, nil
}

// setupDirectChannel creates a direct channel for listing events
func (a *AppContext) setupDirectChannel(dedup *DedupCache) {
	a.EventCh = make(chan *dto.ListingEventDTO, a.Config.EventBufferSize)
	a.EventProcessor = NewEventProcessor(a.log, a.EventCh, a.Store, dedup)
	a.log.Info("direct channel setup completed", slog.Int("buffer", a.Config.EventBufferSize))
}

func newBlobBackend(ctx context.Context, log *slog.Logger, cfg *config.Config) (blobBackend, error) {
	switch cfg.BlobBackend {
	case config.BackendRedis:
		store := cache.NewRedisBlobStore(cache.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
		if err := store.Ping(ctx); err != nil {
			log.Warn("redis unreachable at start-up, saves will be retried on every event", sl.Err(err))
		} else {
			log.Info("redis blob store initialized", slog.String("addr", cfg.RedisAddr))
		}
		return store, nil
	case config.BackendSQLite:
		return storage.NewSQLiteBlobStore(log, cfg.SQLitePath)
	case config.BackendMemory:
		log.Info("in-memory blob store initialized")
		return cache.NewMemoryBlobStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

// Submit hands an event to the direct channel, blocking until there is room or ctx ends.
func (a *AppContext) Submit(ctx context.Context, event *dto.ListingEventDTO) error {
	if a.EventCh == nil {
		return fmt.Errorf("direct channel disabled, publish to Kafka instead")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case a.EventCh <- event:
		return nil
	}
}

// Cleanup performs graceful shutdown of all components
func (a *AppContext) Cleanup(ctx context.Context) {
	if a.dedupCron != nil {
		<-a.dedupCron.Stop().Done()
	}

	if a.KafkaConsumer != nil {
		a.log.Info("closing Kafka consumer")
		if err := a.KafkaConsumer.Close(); err != nil {
			a.log.Error("error closing Kafka consumer", sl.Err(err))
		}
	}

	if a.KafkaProducer != nil {
		a.log.Info("closing Kafka producer")
		if err := a.KafkaProducer.Close(); err != nil {
			a.log.Error("error closing Kafka producer", sl.Err(err))
		}
	}

	if a.Archive != nil {
		if err := a.Archive.Close(); err != nil {
			a.log.Error("error closing ClickHouse archive", sl.Err(err))
		}
	}

	if a.blobs != nil {
		if err := a.blobs.Close(); err != nil {
			a.log.Error("error closing blob store", sl.Err(err))
		}
	}

	a.log.Info("all resources cleaned up")
}
