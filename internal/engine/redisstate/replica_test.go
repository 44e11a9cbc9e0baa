package redisstate_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"verifybridge/internal/bridge/models"
	"verifybridge/internal/bridge/ports"
	"verifybridge/internal/bridge/ports/mocks"
	"verifybridge/internal/bridge/session"
	"verifybridge/internal/bridge/surface"
	"verifybridge/internal/engine/redisstate"
	"verifybridge/pkg/requestcontext"
)

type kiosk struct{}

func (kiosk) ID() string       { return "kiosk-1" }
func (kiosk) Platform() string { return "Chrome on Android" }

// Two replicas share one Redis channel. A Ready published by the other
// replica must not make this replica present before its own engine is ready.
func TestSharedChannelIsolatesReplicas(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	const channel = "verifybridge:engine:states"
	local := redisstate.NewPublisher(client, channel)
	otherReplica := redisstate.NewPublisher(client, channel)

	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	presenter := mocks.NewMockPresenter(ctrl)
	surfaces := surface.NewRegistry()
	surfaces.Attach(kiosk{})

	var ownReady atomic.Bool
	engine.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ models.StartCommand) error {
			go func() {
				time.Sleep(30 * time.Millisecond)
				_ = otherReplica.Publish(context.Background(), models.Ready().ForAttempt("attempt-on-other-replica"))
			}()
			time.Sleep(200 * time.Millisecond)
			ownReady.Store(true)
			return local.Publish(ctx, models.Ready().ForAttempt(requestcontext.AttemptID(ctx)))
		})
	presenter.EXPECT().Present(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ ports.Surface, onOutcome func(models.VerificationOutcome)) error {
			assert.True(t, ownReady.Load(), "presented before this replica's engine was ready")
			go onOutcome(models.Completed(models.SessionData{SessionID: "s-42", Status: models.StatusApproved}))
			return nil
		}).Times(1)

	c, err := session.New(engine, redisstate.NewStream(client, channel), presenter, surfaces,
		session.WithAttemptID("attempt-local"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	res, err := c.Run(ctx, models.NewTokenCommand("tok", nil))
	require.NoError(t, err)
	assert.Equal(t, models.BridgeResult{Type: "completed", SessionID: "s-42", Status: "Approved"}, res)
}
