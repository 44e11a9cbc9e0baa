// Package redisstate carries engine state transitions over Redis pub/sub so an
// engine running in another process can drive the bridge.
package redisstate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"verifybridge/internal/bridge/models"
	dErrors "verifybridge/pkg/domain-errors"
)

const DefaultChannel = "verifybridge:engine:state"

// Publisher writes engine states to a channel.
type Publisher struct {
	client  redis.UniversalClient
	channel string
}

func NewPublisher(client redis.UniversalClient, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{client: client, channel: channel}
}

func (p *Publisher) Publish(ctx context.Context, state models.EngineState) error {
	payload, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "publish engine state")
	}
	return nil
}

// Stream subscribes to engine states published on a channel.
type Stream struct {
	client  redis.UniversalClient
	channel string
	buffer  int
	logger  *slog.Logger
}

type Option func(*Stream)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Stream) {
		s.logger = logger
	}
}

func WithBuffer(n int) Option {
	return func(s *Stream) {
		if n > 0 {
			s.buffer = n
		}
	}
}

func NewStream(client redis.UniversalClient, channel string, opts ...Option) *Stream {
	if channel == "" {
		channel = DefaultChannel
	}
	s := &Stream{client: client, channel: channel, buffer: 16}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe returns once the Redis subscription is confirmed, so no state
// published afterwards is missed. It fails with CodeUnavailable when Redis
// cannot confirm the subscription.
func (s *Stream) Subscribe(ctx context.Context) (<-chan models.EngineState, func(), error) {
	pubsub := s.client.Subscribe(ctx, s.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		s.warn(ctx, "engine state subscription failed", "error", err)
		return nil, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "engine state stream unavailable")
	}

	out := make(chan models.EngineState, s.buffer)

	done := make(chan struct{})
	var once sync.Once
	release := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	stop := context.AfterFunc(ctx, release)

	msgs := pubsub.Channel()
	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				state, err := decodeState(msg.Payload)
				if err != nil {
					s.warn(ctx, "dropping malformed engine state", "error", err)
					continue
				}
				select {
				case out <- state:
				case <-done:
					return
				}
			}
		}
	}()

	return out, func() {
		stop()
		release()
	}, nil
}

func (s *Stream) warn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, append(args, "channel", s.channel)...)
	}
}
