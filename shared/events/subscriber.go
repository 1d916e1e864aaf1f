package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Handler func(ctx context.Context, event Event) error

type Subscriber struct {
	client        *redis.Client
	group         string
	consumer      string
	stream        string
	startID       string
	handler       Handler
	onError       func(error)
	batchSize     int64
	blockDuration time.Duration
}

type SubscriberConfig struct {
	Group    string
	Consumer string
	Stream   string
	// StartID is where a newly created group begins reading: "0" replays the
	// whole stream, "$" only sees events appended after creation.
	StartID string
	Handler Handler
	// OnError, when set, receives every message processing failure.
	OnError       func(error)
	BatchSize     int64
	BlockDuration time.Duration
}

func NewSubscriber(client *redis.Client, config SubscriberConfig) *Subscriber {
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.BlockDuration == 0 {
		config.BlockDuration = 5 * time.Second
	}
	if config.StartID == "" {
		config.StartID = "0"
	}

	return &Subscriber{
		client:        client,
		group:         config.Group,
		consumer:      config.Consumer,
		stream:        config.Stream,
		startID:       config.StartID,
		handler:       config.Handler,
		onError:       config.OnError,
		batchSize:     config.BatchSize,
		blockDuration: config.BlockDuration,
	}
}

// Start creates the consumer group if needed and dispatches messages to the
// handler until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	if err := s.EnsureGroup(ctx); err != nil {
		return err
	}

	log.Printf("Subscriber started: stream=%s, group=%s, consumer=%s", s.stream, s.group, s.consumer)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Subscriber stopping: %s", s.stream)
			return ctx.Err()
		default:
			if _, err := s.Poll(ctx); err != nil && ctx.Err() == nil {
				log.Printf("Error reading messages: %v", err)
				time.Sleep(time.Second)
			}
		}
	}
}

// EnsureGroup creates the consumer group, tolerating one that already exists.
// Start calls it; callers driving Poll directly call it first.
func (s *Subscriber) EnsureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, s.startID).Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Poll reads one batch, runs the handler for each message and acknowledges
// the ones that succeeded. It returns the number of messages acknowledged.
func (s *Subscriber) Poll(ctx context.Context) (int, error) {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()

	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read from stream: %w", err)
	}

	acked := 0
	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := s.processMessage(ctx, message); err != nil {
				// Left in the pending entries list for inspection or claiming.
				log.Printf("Failed to process message %s: %v", message.ID, err)
				if s.onError != nil {
					s.onError(fmt.Errorf("failed to process message %s from %s: %w", message.ID, s.stream, err))
				}
				continue
			}

			if err := s.client.XAck(ctx, s.stream, s.group, message.ID).Err(); err != nil {
				log.Printf("Failed to ACK message %s: %v", message.ID, err)
				continue
			}
			acked++
		}
	}

	return acked, nil
}

func (s *Subscriber) processMessage(ctx context.Context, message redis.XMessage) error {
	eventData, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("invalid message format")
	}

	var event Event
	if err := json.Unmarshal([]byte(eventData), &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return s.handler(ctx, event)
}
