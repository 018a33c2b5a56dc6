package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nftStatApp/internal/app/dto"
	"nftStatApp/internal/lib/logger/sl"

	json "github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

// KafkaConfig holds Kafka connection configuration
type KafkaConfig struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
	BatchSize     int
	BatchTimeout  int // milliseconds
}

// ListingProducer defines interface for producing marketplace listing events
type ListingProducer interface {
	PublishEvent(ctx context.Context, event *dto.ListingEventDTO) error
	PublishEventBatch(ctx context.Context, events []*dto.ListingEventDTO) error
	Close() error
}

// ListingConsumer defines interface for consuming marketplace listing events
type ListingConsumer interface {
	Subscribe(ctx context.Context) (<-chan *dto.ListingEventDTO, error)
	Commit(ctx context.Context, event *dto.ListingEventDTO) error
	Close() error
}

var (
	_ ListingProducer = (*KafkaProducer)(nil)
	_ ListingConsumer = (*KafkaConsumer)(nil)
)

// KafkaProducer implements ListingProducer using Kafka
type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer creates a new Kafka producer
func NewKafkaProducer(config KafkaConfig) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{}, // Asset id keys keep one asset's events on one partition
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: time.Duration(config.BatchTimeout) * time.Millisecond,
	}

	return &KafkaProducer{writer: writer}
}

func encodeMessage(event *dto.ListingEventDTO) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}
	return kafka.Message{
		Key:   []byte(event.Listing.AssetID),
		Value: data,
		Time:  time.Now(),
	}, nil
}

// PublishEvent sends a listing event to Kafka
func (p *KafkaProducer) PublishEvent(ctx context.Context, event *dto.ListingEventDTO) error {
	msg, err := encodeMessage(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// PublishEventBatch sends a batch of listing events to Kafka
func (p *KafkaProducer) PublishEventBatch(ctx context.Context, events []*dto.ListingEventDTO) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msg, err := encodeMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

// Close closes the producer
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// KafkaConsumer implements ListingConsumer using Kafka
type KafkaConsumer struct {
	reader        *kafka.Reader
	topic         string
	pendingMsgs   map[string]kafka.Message // Map of event ID to Kafka message
	pendingMsgsMu sync.Mutex
	batchSize     int           // Number of messages to accumulate before batch commit
	batchTimeout  time.Duration // Max time to wait before committing a batch
	log           *slog.Logger
}

// NewKafkaConsumer creates a new Kafka consumer
func NewKafkaConsumer(log *slog.Logger, config KafkaConfig) *KafkaConsumer {
	// Disable auto-commit to allow explicit commits
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.ConsumerGroup,
		MinBytes:       10e3,              // 10KB
		MaxBytes:       10e6,              // 10MB
		CommitInterval: 0,                 // Disable auto commit - we'll handle this manually
		StartOffset:    kafka.FirstOffset, // Start from oldest message if no offset is stored
	})

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}
	batchTimeout := time.Duration(config.BatchTimeout) * time.Millisecond
	if batchTimeout <= 0 {
		batchTimeout = time.Second
	}

	return &KafkaConsumer{
		reader:       reader,
		topic:        config.Topic,
		pendingMsgs:  make(map[string]kafka.Message),
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
		log:          log.With(slog.String("component", "kafka_consumer"), slog.String("topic", config.Topic)),
	}
}

// Subscribe returns a channel of listing events from Kafka
func (c *KafkaConsumer) Subscribe(ctx context.Context) (<-chan *dto.ListingEventDTO, error) {
	eventCh := make(chan *dto.ListingEventDTO, 1000) // Buffer to handle bursts

	go c.startBatchCommitter(ctx)

	go func() {
		defer close(eventCh)

		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					c.log.Error("error fetching message", sl.Err(err))
				}
				return
			}

			var event dto.ListingEventDTO
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				c.log.Warn("dropping undecodable message",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
					sl.Err(err),
				)
				// Commit bad messages to avoid getting stuck
				_ = c.reader.CommitMessages(ctx, msg)
				continue
			}

			// Make sure we have an ID for tracking
			if event.ID == "" {
				event.ID = fmt.Sprintf("%s-%d-%d", c.topic, msg.Partition, msg.Offset)
			}

			c.pendingMsgsMu.Lock()
			c.pendingMsgs[event.ID] = msg
			pendingCount := len(c.pendingMsgs)
			c.pendingMsgsMu.Unlock()

			if pendingCount > c.batchSize*10 {
				c.log.Warn("large number of uncommitted messages",
					slog.Int("pending", pendingCount),
					slog.Int("batch_size", c.batchSize),
				)
			}

			select {
			case <-ctx.Done():
				return
			case eventCh <- &event:
			}
		}
	}()

	return eventCh, nil
}

// startBatchCommitter periodically commits messages in batches
func (c *KafkaConsumer) startBatchCommitter(ctx context.Context) {
	ticker := time.NewTicker(c.batchTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// The original context is cancelled; flush with a fresh one
			c.commitAllPending(context.Background())
			return
		case <-ticker.C:
			c.commitAllPending(ctx)
		}
	}
}

func (c *KafkaConsumer) commitAllPending(ctx context.Context) {
	c.pendingMsgsMu.Lock()
	defer c.pendingMsgsMu.Unlock()

	if len(c.pendingMsgs) == 0 {
		return
	}

	msgs := make([]kafka.Message, 0, len(c.pendingMsgs))
	for _, msg := range c.pendingMsgs {
		msgs = append(msgs, msg)
	}

	if err := c.reader.CommitMessages(ctx, msgs...); err != nil {
		c.log.Error("error committing batch", slog.Int("messages", len(msgs)), sl.Err(err))
		return
	}

	c.log.Debug("committed batch", slog.Int("messages", len(msgs)))
	c.pendingMsgs = make(map[string]kafka.Message)
}

// Commit acknowledges that an event has been processed
func (c *KafkaConsumer) Commit(ctx context.Context, event *dto.ListingEventDTO) error {
	if event == nil || event.ID == "" {
		return fmt.Errorf("cannot commit nil event or event with empty ID")
	}

	c.pendingMsgsMu.Lock()
	msg, exists := c.pendingMsgs[event.ID]
	if !exists {
		c.pendingMsgsMu.Unlock()
		return fmt.Errorf("message for event %s not found in pending messages", event.ID)
	}

	if len(c.pendingMsgs) >= c.batchSize {
		c.pendingMsgsMu.Unlock()
		c.commitAllPending(ctx)
		return nil
	}

	delete(c.pendingMsgs, event.ID)
	c.pendingMsgsMu.Unlock()

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to commit message for event %s: %w", event.ID, err)
	}
	return nil
}

// Close closes the consumer
func (c *KafkaConsumer) Close() error {
	c.commitAllPending(context.Background())
	return c.reader.Close()
}
