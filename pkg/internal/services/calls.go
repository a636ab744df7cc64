package services

import (
	"context"
	"time"

	"github.com/pairline/pairline/pkg/internal/database"
	"github.com/pairline/pairline/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// CallRecordStore is the remote record collaborator: one whole-record slot
// per room, overwritten on every transition, last write wins.
type CallRecordStore interface {
	Put(ctx context.Context, record models.CallRecord) error
	Get(ctx context.Context, roomId string) (models.CallRecord, bool, error)
}

// GormCallRecordStore keeps the signaling record in the relational store.
type GormCallRecordStore struct{}

func (GormCallRecordStore) Put(ctx context.Context, record models.CallRecord) error {
	return database.C.WithContext(ctx).Save(&record).Error
}

func (GormCallRecordStore) Get(ctx context.Context, roomId string) (models.CallRecord, bool, error) {
	var record models.CallRecord
	tx := database.C.WithContext(ctx).Where("room_id = ?", roomId).Limit(1).Find(&record)
	if tx.Error != nil {
		return record, false, tx.Error
	}
	return record, tx.RowsAffected > 0, nil
}

// RoomManager provisions the audio channel at the transport provider when a
// call opens and tears it down when the call ends. Optional; provisioning
// failures are advisory and never block the signaling transition.
type RoomManager interface {
	CreateRoom(ctx context.Context, roomId string) error
	DeleteRoom(ctx context.Context, roomId string) error
}

// CallService drives the per-room signaling state machine:
// Idle -> Calling -> Accepted -> Ended -> Idle. Ended is transient; the next
// call overwrites the same record. Observers may see transitions coalesced
// (Calling straight to Ended), so every state must be reachable from any
// previously observed one.
type CallService struct {
	store  CallRecordStore
	rtc    RoomManager
	broker *Broker[models.CallRecord]
	remote RemotePublisher
}

func NewCallService(store CallRecordStore, rtc RoomManager) *CallService {
	return &CallService{
		store:  store,
		rtc:    rtc,
		broker: NewBroker[models.CallRecord](),
	}
}

func (s *CallService) UseRemote(remote RemotePublisher) {
	s.remote = remote
}

func (s *CallService) GetOngoingCall(ctx context.Context, roomId string) (models.CallRecord, error) {
	record, ok, err := s.store.Get(ctx, roomId)
	if err != nil {
		return record, err
	}
	if !ok || !record.Ongoing() {
		return record, ErrNotRinging
	}
	return record, nil
}

// StartCall opens a call offer. Only allowed while the room's record is free
// (missing, idle or ended). When both sides start at once the store is
// last-write-wins with no transaction, so the race is broken
// deterministically: the participant with the lower id keeps the record and
// the higher one gets ErrAlreadyInCall.
func (s *CallService) StartCall(ctx context.Context, roomId, callerId, receiverId string) (models.CallRecord, error) {
	var record models.CallRecord
	if len(roomId) == 0 {
		return record, ErrNotInRoom
	}
	if len(callerId) == 0 || len(receiverId) == 0 {
		return record, ErrInvalidIdentity
	}

	current, ok, err := s.store.Get(ctx, roomId)
	if err != nil {
		return record, err
	}
	if ok && current.Ongoing() {
		crossing := current.Status == models.CallStatusCalling && current.CallerID == receiverId
		if !crossing || callerId > current.CallerID {
			return current, ErrAlreadyInCall
		}
	}

	record = models.CallRecord{
		RoomID:     roomId,
		Status:     models.CallStatusCalling,
		CallerID:   callerId,
		ReceiverID: receiverId,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Put(ctx, record); err != nil {
		return record, err
	}

	if s.rtc != nil {
		if err := s.rtc.CreateRoom(ctx, roomId); err != nil {
			log.Warn().Err(err).Str("room", roomId).Msg("Unable to provision room at transport side...")
		}
	}

	s.publish(record)
	return record, nil
}

// AcceptCall transitions Calling to Accepted. Only the designated receiver
// may accept, and only while the offer is still ringing; accepting an idle
// or ended record fails without side effects.
func (s *CallService) AcceptCall(ctx context.Context, roomId, actorId string) (models.CallRecord, error) {
	record, ok, err := s.store.Get(ctx, roomId)
	if err != nil {
		return record, err
	}
	if !ok || record.Status != models.CallStatusCalling {
		return record, ErrNotRinging
	}
	if record.ReceiverID != actorId {
		return record, ErrNotReceiver
	}

	record.Status = models.CallStatusAccepted
	if err := s.store.Put(ctx, record); err != nil {
		return record, err
	}

	s.publish(record)
	return record, nil
}

// EndCall transitions Calling or Accepted to Ended, by either participant.
// Ending a call that is already over is a no-op, so local hangup, remote
// hangup and transport-detected peer loss all converge safely.
func (s *CallService) EndCall(ctx context.Context, roomId, actorId string) (models.CallRecord, error) {
	record, ok, err := s.store.Get(ctx, roomId)
	if err != nil {
		return record, err
	}
	if !ok || !record.Ongoing() {
		return record, nil
	}
	if record.CallerID != actorId && record.ReceiverID != actorId {
		return record, ErrNotParticipant
	}

	record.Status = models.CallStatusEnded
	if err := s.store.Put(ctx, record); err != nil {
		return record, err
	}

	if s.rtc != nil {
		if err := s.rtc.DeleteRoom(ctx, roomId); err != nil {
			log.Warn().Err(err).Str("room", roomId).Msg("Unable to delete room at transport side...")
		}
	}

	s.publish(record)
	return record, nil
}

// Subscribe opens a standing watch on the room's signaling record. The
// current state is delivered immediately; deltas are last-write-wins
// snapshots, intermediate states may be skipped.
func (s *CallService) Subscribe(ctx context.Context, roomId string) (*Subscription[models.CallRecord], error) {
	if len(roomId) == 0 {
		return nil, ErrNotInRoom
	}

	sub := s.broker.Subscribe(roomId)
	record, ok, err := s.store.Get(ctx, roomId)
	if err != nil {
		sub.Close()
		return nil, err
	}
	if !ok {
		record = models.CallRecord{RoomID: roomId, Status: models.CallStatusIdle}
	}
	sub.C <- record
	return sub, nil
}

// Refresh re-reads the record and pushes it to local subscribers; used when
// another instance announces a transition.
func (s *CallService) Refresh(ctx context.Context, roomId string) {
	record, ok, err := s.store.Get(ctx, roomId)
	if err != nil {
		log.Warn().Err(err).Str("room", roomId).Msg("Unable to refresh call record...")
		s.broker.Notify(StreamNotice{Kind: NoticeSubscriptionFault, Detail: err.Error()})
		return
	}
	if !ok {
		return
	}
	s.broker.Publish(roomId, record)
}

func (s *CallService) publish(record models.CallRecord) {
	s.broker.Publish(record.RoomID, record)
	if s.remote != nil {
		s.remote(models.StreamCallUpdate, record.RoomID)
	}
}

func (s *CallService) NotifyFault(detail string) {
	s.broker.Notify(StreamNotice{Kind: NoticeSubscriptionFault, Detail: detail})
}

func (s *CallService) NotifyRecovered() {
	s.broker.Notify(StreamNotice{Kind: NoticeResubscribed})
}
