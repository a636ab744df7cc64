package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pairline/pairline/pkg/internal/database"
	"github.com/pairline/pairline/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// MessageLog is the remote append-only log collaborator. Append assigns the
// message id and timestamp; List returns the whole room ordered by
// created_at ascending, unstamped entries last.
type MessageLog interface {
	Append(ctx context.Context, message models.Message) (models.Message, error)
	List(ctx context.Context, roomId string) ([]models.Message, error)
}

// GormMessageLog keeps the log in the relational store.
type GormMessageLog struct{}

func (GormMessageLog) Append(ctx context.Context, message models.Message) (models.Message, error) {
	message.ID = uuid.NewString()
	message.CreatedAt = lo.ToPtr(time.Now().UTC())
	if err := database.C.WithContext(ctx).Create(&message).Error; err != nil {
		return message, err
	}
	return message, nil
}

func (GormMessageLog) List(ctx context.Context, roomId string) ([]models.Message, error) {
	var messages []models.Message
	if err := database.C.WithContext(ctx).
		Where("room_id = ?", roomId).
		Order("created_at ASC NULLS LAST").
		Order("seq ASC").
		Find(&messages).Error; err != nil {
		return messages, err
	}
	return messages, nil
}

// MessageService presents an ordered, live-updating view of a room's
// messages. Subscribers get a full snapshot first and a fresh snapshot on
// every change; senders get durability before return and visibility with the
// next delta.
type MessageService struct {
	log    MessageLog
	broker *Broker[[]models.Message]
	remote RemotePublisher
}

// RemotePublisher announces a room delta to the other instances; nil when
// running standalone.
type RemotePublisher func(action, roomId string)

func NewMessageService(messageLog MessageLog) *MessageService {
	return &MessageService{
		log:    messageLog,
		broker: NewBroker[[]models.Message](),
	}
}

func (s *MessageService) UseRemote(remote RemotePublisher) {
	s.remote = remote
}

func (s *MessageService) Send(ctx context.Context, roomId, senderId, text string) (models.Message, error) {
	var message models.Message
	if len(roomId) == 0 {
		return message, ErrNotInRoom
	}
	if len(senderId) == 0 {
		return message, ErrInvalidIdentity
	}
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return message, ErrEmptyMessage
	}

	message, err := s.log.Append(ctx, models.Message{
		RoomID:   roomId,
		SenderID: senderId,
		Text:     text,
	})
	if err != nil {
		return message, err
	}

	s.Refresh(ctx, roomId)
	if s.remote != nil {
		s.remote(models.StreamMessageNew, roomId)
	}
	return message, nil
}

// List returns the room's current ordered snapshot.
func (s *MessageService) List(ctx context.Context, roomId string) ([]models.Message, error) {
	if len(roomId) == 0 {
		return nil, ErrNotInRoom
	}
	return s.log.List(ctx, roomId)
}

// Subscribe opens a standing watch on the room's log. The first snapshot is
// delivered immediately; the caller owns the handle and must Close it.
func (s *MessageService) Subscribe(ctx context.Context, roomId string) (*Subscription[[]models.Message], error) {
	if len(roomId) == 0 {
		return nil, ErrNotInRoom
	}

	sub := s.broker.Subscribe(roomId)
	snapshot, err := s.log.List(ctx, roomId)
	if err != nil {
		sub.Close()
		return nil, err
	}
	sub.C <- snapshot
	return sub, nil
}

// Refresh re-reads the room and pushes the snapshot to local subscribers.
// Used after a local append and when another instance announces a change.
func (s *MessageService) Refresh(ctx context.Context, roomId string) {
	snapshot, err := s.log.List(ctx, roomId)
	if err != nil {
		log.Warn().Err(err).Str("room", roomId).Msg("Unable to refresh message snapshot...")
		s.broker.Notify(StreamNotice{Kind: NoticeSubscriptionFault, Detail: err.Error()})
		return
	}
	s.broker.Publish(roomId, snapshot)
}

func (s *MessageService) NotifyFault(detail string) {
	s.broker.Notify(StreamNotice{Kind: NoticeSubscriptionFault, Detail: detail})
}

func (s *MessageService) NotifyRecovered() {
	s.broker.Notify(StreamNotice{Kind: NoticeResubscribed})
}
