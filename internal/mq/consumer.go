package mq

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message represents a Kafka message delivered to consumers.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
	Time    time.Time
}

// Handler processes messages from a consumer.
type Handler func(context.Context, Message) error

// ErrDiscard marks a handler failure as permanent: the message is committed
// and skipped instead of halting consumption. Any other handler error halts
// Run with the offset uncommitted, so the message is redelivered once
// consumption resumes.
var ErrDiscard = errors.New("mq: discard message")

// Discard wraps err so that Run treats the failure as permanent.
func Discard(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrDiscard, err)
}

// reader is the part of kafka.Reader the consumer uses; narrowed so tests
// can drive Run without a broker.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer wraps a Kafka reader and invokes a handler for each message.
// Offsets are committed only after the handler succeeds or explicitly
// discards. Group commits advance the partition watermark, so a failed
// message must halt consumption before any later offset is committed;
// handlers flag unrecoverable messages with Discard and must be idempotent
// against redelivery of the rest.
type Consumer struct {
	reader  reader
	handler Handler
}

// NewConsumer constructs a Kafka consumer and prepares it for message processing.
func NewConsumer(cfg ConsumerConfig, handler Handler) (*Consumer, error) {
	normalized := cfg.normalize()
	if err := normalized.Validate(); err != nil {
		return nil, err
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:  normalized.Brokers,
		Topic:    normalized.Topic,
		GroupID:  normalized.GroupID,
		MinBytes: normalized.MinBytes,
		MaxBytes: normalized.MaxBytes,
	}
	if normalized.ClientID != "" {
		readerCfg.Dialer = &kafka.Dialer{ClientID: normalized.ClientID}
	}

	log.Printf("mq: initialized consumer topic=%s group=%s", normalized.Topic, normalized.GroupID)
	return &Consumer{
		reader:  kafka.NewReader(readerCfg),
		handler: handler,
	}, nil
}

// Run consumes messages until the context is cancelled, the reader fails, or
// a handler reports a transient failure.
func (c *Consumer) Run(ctx context.Context) error {
	if c == nil || c.reader == nil {
		return nil
	}

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			return err
		}

		if err := c.dispatch(ctx, msg); err != nil {
			if !errors.Is(err, ErrDiscard) {
				// Transient failure: stop with the offset uncommitted so
				// the message is redelivered, instead of letting a later
				// commit advance the watermark past it.
				return err
			}
			log.Printf("mq: discarding message at topic %s offset %d: %v", msg.Topic, msg.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			return err
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg kafka.Message) error {
	if c.handler == nil {
		return nil
	}

	payload := Message{
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: make(map[string]string, len(msg.Headers)),
		Time:    msg.Time,
	}
	for _, header := range msg.Headers {
		payload.Headers[header.Key] = string(header.Value)
	}
	return c.handler(ctx, payload)
}

// Close shuts down the reader.
func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
