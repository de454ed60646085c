package bus

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Stream names shared by all console instances.
const (
	sessionStream = "sessions"
	caseStream    = "cases"
)

// RedisBus provides Redis Streams-based messaging between console instances.
type RedisBus struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

// StreamMessage represents a message in a Redis Stream.
type StreamMessage struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
}

// StreamHandler is a function that processes stream messages.
type StreamHandler func(ctx context.Context, message StreamMessage) error

// NewRedisBus creates a new Redis bus instance.
func NewRedisBus(redisURL string, logger *zap.SugaredLogger) (*RedisBus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &RedisBus{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection.
func (rb *RedisBus) Close() error {
	return rb.client.Close()
}

// PublishSession publishes a sign-in/sign-out to the sessions stream.
func (rb *RedisBus) PublishSession(ctx context.Context, msg SessionMessage) error {
	result := rb.client.XAdd(ctx, &redis.XAddArgs{
		Stream: sessionStream,
		Values: map[string]interface{}{
			"username":  msg.Username,
			"action":    msg.Action,
			"timestamp": msg.Timestamp,
		},
	})
	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish session message: %w", err)
	}

	rb.logger.Debugw("published session message", "username", msg.Username, "action", msg.Action)
	return nil
}

// PublishCase publishes a case mutation to the cases stream.
func (rb *RedisBus) PublishCase(ctx context.Context, msg CaseMessage) error {
	result := rb.client.XAdd(ctx, &redis.XAddArgs{
		Stream: caseStream,
		Values: map[string]interface{}{
			"case_id":   msg.CaseID,
			"action":    msg.Action,
			"status":    msg.Status,
			"timestamp": msg.Timestamp,
		},
	})
	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to publish case message: %w", err)
	}

	rb.logger.Debugw("published case message", "case_id", msg.CaseID, "action", msg.Action)
	return nil
}

// CreateConsumerGroup creates a consumer group for a stream if it doesn't exist.
func (rb *RedisBus) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	result := rb.client.XGroupCreateMkStream(ctx, stream, group, "0")
	if err := result.Err(); err != nil {
		// Ignore error if the group already exists
		if err.Error() != "BUSYGROUP Consumer Group name already exists" {
			return fmt.Errorf("failed to create consumer group %s for stream %s: %w", group, stream, err)
		}
	}
	return nil
}

// ReadStream reads messages from a stream using consumer groups.
func (rb *RedisBus) ReadStream(ctx context.Context, stream, group, consumer string, handler StreamHandler) error {
	if err := rb.CreateConsumerGroup(ctx, stream, group); err != nil {
		return err
	}

	rb.logger.Debugw("starting stream reader", "stream", stream, "group", group, "consumer", consumer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			result := rb.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    group,
				Consumer: consumer,
				Streams:  []string{stream, ">"},
				Count:    10,
				Block:    1 * time.Second,
			})

			if err := result.Err(); err != nil {
				if err == redis.Nil {
					continue
				}
				rb.logger.Warnw("error reading stream", "stream", stream, "error", err)
				time.Sleep(5 * time.Second)
				continue
			}

			for _, str := range result.Val() {
				for _, message := range str.Messages {
					streamMsg := StreamMessage{
						ID:     message.ID,
						Fields: make(map[string]string),
					}
					for key, value := range message.Values {
						if strValue, ok := value.(string); ok {
							streamMsg.Fields[key] = strValue
						}
					}

					if err := handler(ctx, streamMsg); err != nil {
						rb.logger.Warnw("error processing message", "id", message.ID, "error", err)
						continue
					}

					if err := rb.client.XAck(ctx, str.Stream, group, message.ID).Err(); err != nil {
						rb.logger.Warnw("error acknowledging message", "id", message.ID, "error", err)
					}
				}
			}
		}
	}
}

// ReadSessionStream delivers session messages to handler until ctx ends.
func (rb *RedisBus) ReadSessionStream(ctx context.Context, group, consumer string, handler func(ctx context.Context, msg SessionMessage) error) error {
	streamHandler := func(ctx context.Context, message StreamMessage) error {
		msg := SessionMessage{
			Username: message.Fields["username"],
			Action:   message.Fields["action"],
		}
		if ts := message.Fields["timestamp"]; ts != "" {
			if parsed, err := parseTimestamp(ts); err == nil {
				msg.Timestamp = parsed
			}
		}
		return handler(ctx, msg)
	}
	return rb.ReadStream(ctx, sessionStream, group, consumer, streamHandler)
}

// ReadCaseStream delivers case messages to handler until ctx ends.
func (rb *RedisBus) ReadCaseStream(ctx context.Context, group, consumer string, handler func(ctx context.Context, msg CaseMessage) error) error {
	streamHandler := func(ctx context.Context, message StreamMessage) error {
		msg := CaseMessage{
			CaseID: message.Fields["case_id"],
			Action: message.Fields["action"],
			Status: message.Fields["status"],
		}
		if ts := message.Fields["timestamp"]; ts != "" {
			if parsed, err := parseTimestamp(ts); err == nil {
				msg.Timestamp = parsed
			}
		}
		return handler(ctx, msg)
	}
	return rb.ReadStream(ctx, caseStream, group, consumer, streamHandler)
}

// HealthCheck pings Redis.
func (rb *RedisBus) HealthCheck(ctx context.Context) error {
	if err := rb.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

func parseTimestamp(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
