package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"welearn/internal/cache"
	"welearn/internal/util"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisMirror stores identity fields in a Redis hash and announces every
// write on a pub/sub channel so other sessions of the same profile can
// reconcile.
type RedisMirror struct {
	client  *redis.Client
	key     string
	channel string
	origin  string
	log     *zap.Logger
}

type changeEvent struct {
	Origin  string            `json:"origin"`
	Fields  map[string]string `json:"fields,omitempty"`
	Cleared bool              `json:"cleared,omitempty"`
}

// NewRedisMirror creates a mirror for profile.
func NewRedisMirror(client *redis.Client, profile string, log *zap.Logger) *RedisMirror {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisMirror{
		client:  client,
		key:     cache.IdentityKey(profile),
		channel: cache.IdentityChannel(profile),
		origin:  util.NewULID(),
		log:     log,
	}
}

func (m *RedisMirror) Load(ctx context.Context) (map[string]string, error) {
	fields, err := m.client.HGetAll(ctx, m.key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	if fields == nil {
		fields = map[string]string{}
	}
	return fields, nil
}

func (m *RedisMirror) Write(ctx context.Context, fields map[string]string) error {
	payload, err := json.Marshal(changeEvent{Origin: m.origin, Fields: fields})
	if err != nil {
		return err
	}
	_, err = m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, m.key, fields)
		pipe.Publish(ctx, m.channel, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write identity: %w", err)
	}
	return nil
}

func (m *RedisMirror) Clear(ctx context.Context) error {
	payload, err := json.Marshal(changeEvent{Origin: m.origin, Cleared: true})
	if err != nil {
		return err
	}
	_, err = m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, m.key)
		pipe.Publish(ctx, m.channel, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear identity: %w", err)
	}
	return nil
}

// Watch subscribes to the profile channel. The subscription is confirmed
// before Watch returns.
func (m *RedisMirror) Watch(ctx context.Context) (<-chan Change, error) {
	sub := m.client.Subscribe(ctx, m.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", m.channel, err)
	}

	out := make(chan Change, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev changeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					m.log.Warn("Ignoring malformed identity event", zap.Error(err))
					continue
				}
				if ev.Origin == m.origin {
					continue
				}
				for _, ch := range ev.changes() {
					select {
					case out <- ch:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out, nil
}

func (ev changeEvent) changes() []Change {
	if ev.Cleared {
		return []Change{{Cleared: true}}
	}
	changes := make([]Change, 0, len(ev.Fields))
	for k, v := range ev.Fields {
		changes = append(changes, Change{Key: k, Value: v})
	}
	return changes
}
