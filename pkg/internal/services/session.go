package services

import (
	"context"
	"sync"

	"github.com/pairline/pairline/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

// SessionContext carries the two participant identities of a chat screen.
// It is handed in explicitly at construction; the session never looks up an
// ambient current-user.
type SessionContext struct {
	SelfID string
	PeerID string
}

// TokenSource mints the transport join token for a participant.
type TokenSource func(identity, roomId string) (string, error)

// ChatSessionView is the local, non-authoritative projection one participant
// holds of the room: the confirmed message snapshot, the latest observed
// call state and transient advisory signals. It is rebuilt from deltas and
// never written back directly.
type ChatSessionView struct {
	RoomID       string            `json:"room_id"`
	Messages     []models.Message  `json:"messages"`
	CallStatus   models.CallStatus `json:"call_status"`
	IncomingCall bool              `json:"incoming_call"`
	InCall       bool              `json:"in_call"`
	Degraded     bool              `json:"degraded"`
	LastError    string            `json:"last_error,omitempty"`
}

// ChatSession composes the room identity, the message stream and the call
// signaling of one two-party conversation. Message deltas, signaling deltas
// and transport callbacks all arrive concurrently; the session serializes
// them through a single loop so the view never shows a partial update.
type ChatSession struct {
	sc        SessionContext
	roomId    string
	messages  *MessageService
	calls     *CallService
	transport Transport
	tokens    TokenSource

	mu       sync.Mutex
	view     ChatSessionView
	onUpdate func(ChatSessionView)

	msgSub  *Subscription[[]models.Message]
	callSub *Subscription[models.CallRecord]
	joined  bool

	opened    bool
	done      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
}

// NewChatSession derives the room identity once for the session's lifetime.
// Failing the derivation aborts construction; no subscription is opened.
func NewChatSession(sc SessionContext, messages *MessageService, calls *CallService, transport Transport, tokens TokenSource) (*ChatSession, error) {
	roomId, err := DeriveRoomID(sc.SelfID, sc.PeerID)
	if err != nil {
		return nil, err
	}

	return &ChatSession{
		sc:        sc,
		roomId:    roomId,
		messages:  messages,
		calls:     calls,
		transport: transport,
		tokens:    tokens,
		view:      ChatSessionView{RoomID: roomId, CallStatus: models.CallStatusIdle},
		done:      make(chan struct{}),
		loopDone:  make(chan struct{}),
	}, nil
}

func (s *ChatSession) RoomID() string {
	return s.roomId
}

// OnUpdate registers the delta handler. Must be set before Open; it is
// invoked from the session loop, one call at a time.
func (s *ChatSession) OnUpdate(handler func(ChatSessionView)) {
	s.onUpdate = handler
}

// Open subscribes to both streams and starts the session loop.
func (s *ChatSession) Open(ctx context.Context) error {
	msgSub, err := s.messages.Subscribe(ctx, s.roomId)
	if err != nil {
		return err
	}
	callSub, err := s.calls.Subscribe(ctx, s.roomId)
	if err != nil {
		msgSub.Close()
		return err
	}

	s.msgSub = msgSub
	s.callSub = callSub
	s.opened = true
	go s.run()
	return nil
}

func (s *ChatSession) run() {
	defer close(s.loopDone)

	var transportEvents <-chan TransportEvent
	if s.transport != nil {
		transportEvents = s.transport.Events()
	}

	for {
		select {
		case <-s.done:
			return
		case snapshot := <-s.msgSub.C:
			s.applyMessages(snapshot)
		case record := <-s.callSub.C:
			s.applyRecord(record)
		case notice := <-s.msgSub.Notices:
			s.applyNotice(notice)
		case notice := <-s.callSub.Notices:
			s.applyNotice(notice)
		case event := <-transportEvents:
			s.applyTransportEvent(event)
		}
	}
}

func (s *ChatSession) applyMessages(snapshot []models.Message) {
	s.mu.Lock()
	s.view.Messages = snapshot
	s.mu.Unlock()
	s.notifyUpdate()
}

func (s *ChatSession) applyRecord(record models.CallRecord) {
	s.mu.Lock()
	s.view.CallStatus = record.Status
	s.view.IncomingCall = record.Status == models.CallStatusCalling &&
		record.ReceiverID == s.sc.SelfID

	var join, leave bool
	switch {
	case record.Status == models.CallStatusAccepted && !s.joined:
		s.joined = true
		join = true
	case !record.Ongoing() && s.joined:
		s.joined = false
		leave = true
	}
	s.mu.Unlock()

	// Handoff point: Accepted means every participant requests the transport
	// on its own, Ended means everyone leaves even if the other side hung up.
	if join && s.transport != nil {
		if token, err := s.tokens(s.sc.SelfID, s.roomId); err != nil {
			s.reportError(err.Error())
		} else if err := s.transport.JoinChannel(token, s.roomId, s.sc.SelfID); err != nil {
			s.reportError(err.Error())
		}
	}
	if leave && s.transport != nil {
		if err := s.transport.LeaveChannel(); err != nil {
			s.reportError(err.Error())
		}
	}
	s.notifyUpdate()
}

func (s *ChatSession) applyNotice(notice StreamNotice) {
	s.mu.Lock()
	switch notice.Kind {
	case NoticeSubscriptionFault:
		s.view.Degraded = true
	case NoticeResubscribed:
		s.view.Degraded = false
	}
	s.mu.Unlock()
	s.notifyUpdate()
}

func (s *ChatSession) applyTransportEvent(event TransportEvent) {
	switch event.Kind {
	case TransportJoined:
		s.mu.Lock()
		s.view.InCall = true
		s.mu.Unlock()
	case TransportLeft:
		s.mu.Lock()
		s.view.InCall = false
		s.mu.Unlock()
	case TransportPeerOffline:
		// The adapter noticed the peer dropping before signaling did; both
		// paths converge on Ended.
		if _, err := s.calls.EndCall(context.Background(), s.roomId, s.sc.SelfID); err != nil {
			log.Warn().Err(err).Str("room", s.roomId).Msg("Unable to end call after peer went offline...")
		}
	case TransportError:
		s.reportError(event.Detail)
	}
	s.notifyUpdate()
}

func (s *ChatSession) reportError(detail string) {
	s.mu.Lock()
	s.view.LastError = detail
	s.mu.Unlock()
}

func (s *ChatSession) notifyUpdate() {
	if s.onUpdate == nil {
		return
	}
	s.onUpdate(s.View())
}

// View returns a copy of the current projection.
func (s *ChatSession) View() ChatSessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.view
	view.Messages = append([]models.Message(nil), s.view.Messages...)
	return view
}

func (s *ChatSession) Send(ctx context.Context, text string) (models.Message, error) {
	return s.messages.Send(ctx, s.roomId, s.sc.SelfID, text)
}

func (s *ChatSession) StartCall(ctx context.Context) (models.CallRecord, error) {
	return s.calls.StartCall(ctx, s.roomId, s.sc.SelfID, s.sc.PeerID)
}

func (s *ChatSession) AcceptCall(ctx context.Context) (models.CallRecord, error) {
	return s.calls.AcceptCall(ctx, s.roomId, s.sc.SelfID)
}

func (s *ChatSession) EndCall(ctx context.Context) (models.CallRecord, error) {
	return s.calls.EndCall(ctx, s.roomId, s.sc.SelfID)
}

// Close tears the session down: an active call is ended first so a closing
// screen never leaves a dangling call, then both subscriptions and the
// transport handle are released exactly once. Safe to call repeatedly.
func (s *ChatSession) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		status := s.view.CallStatus
		s.mu.Unlock()
		if status == models.CallStatusCalling || status == models.CallStatusAccepted {
			if _, err := s.calls.EndCall(context.Background(), s.roomId, s.sc.SelfID); err != nil {
				log.Warn().Err(err).Str("room", s.roomId).Msg("Unable to end call on session close...")
			}
		}

		close(s.done)
		if s.opened {
			<-s.loopDone
			s.msgSub.Close()
			s.callSub.Close()
		}

		if s.transport != nil {
			_ = s.transport.LeaveChannel()
			s.transport.Release()
		}
	})
}
