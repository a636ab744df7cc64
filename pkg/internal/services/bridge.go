package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pairline/pairline/pkg/internal/cache"
	"github.com/pairline/pairline/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

const streamChannel = "pairline:streams"

// StreamBridge relays room deltas between instances over the cache pub/sub
// channel. Announcements carry only the room key; each instance re-reads its
// own store, so the bus never becomes a second source of truth. While the
// bus is down every local subscription is flagged stale until resubscribed.
type StreamBridge struct {
	origin   string
	messages *MessageService
	calls    *CallService
}

func NewStreamBridge(messages *MessageService, calls *CallService) *StreamBridge {
	bridge := &StreamBridge{
		origin:   uuid.NewString(),
		messages: messages,
		calls:    calls,
	}
	messages.UseRemote(bridge.Announce)
	calls.UseRemote(bridge.Announce)
	return bridge
}

func (b *StreamBridge) Announce(action, roomId string) {
	raw, _ := jsoniter.Marshal(models.StreamEnvelope{
		Action: action,
		RoomID: roomId,
		Origin: b.origin,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cache.C.Publish(ctx, streamChannel, raw).Err(); err != nil {
		log.Warn().Err(err).Str("room", roomId).Msg("Unable to announce stream delta...")
	}
}

// Run consumes the bus until the context is cancelled, resubscribing with
// backoff whenever the connection drops.
func (b *StreamBridge) Run(ctx context.Context) {
	for {
		if err := b.consume(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("Stream bridge subscription lost, retrying...")
			b.messages.NotifyFault(err.Error())
			b.calls.NotifyFault(err.Error())
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(3 * time.Second):
		}
	}
}

func (b *StreamBridge) consume(ctx context.Context) error {
	pubsub := cache.C.Subscribe(ctx, streamChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	b.messages.NotifyRecovered()
	b.calls.NotifyRecovered()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("pub/sub channel closed")
			}

			envelope, err := models.DecodeStreamEnvelope([]byte(msg.Payload))
			if err != nil {
				log.Warn().Err(err).Msg("Dropping malformed stream announcement...")
				continue
			}
			if envelope.Origin == b.origin {
				continue
			}

			switch envelope.Action {
			case models.StreamMessageNew:
				b.messages.Refresh(ctx, envelope.RoomID)
			case models.StreamCallUpdate:
				b.calls.Refresh(ctx, envelope.RoomID)
			}
		}
	}
}
