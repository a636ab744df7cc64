package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pairline/pairline/pkg/internal/models"
	"github.com/samber/lo"
)

type memoryMessageLog struct {
	mu       sync.Mutex
	seq      uint64
	messages map[string][]models.Message
}

func newMemoryMessageLog() *memoryMessageLog {
	return &memoryMessageLog{messages: make(map[string][]models.Message)}
}

func (l *memoryMessageLog) Append(_ context.Context, message models.Message) (models.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	message.ID = uuid.NewString()
	message.Seq = l.seq
	message.CreatedAt = lo.ToPtr(time.Now().UTC())
	l.messages[message.RoomID] = append(l.messages[message.RoomID], message)
	return message, nil
}

// appendUnstamped mimics an optimistic entry the store has not ordered yet.
func (l *memoryMessageLog) appendUnstamped(message models.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	message.ID = uuid.NewString()
	message.Seq = l.seq
	l.messages[message.RoomID] = append(l.messages[message.RoomID], message)
}

func (l *memoryMessageLog) List(_ context.Context, roomId string) ([]models.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := append([]models.Message(nil), l.messages[roomId]...)
	models.SortMessages(snapshot)
	return snapshot, nil
}

type memoryCallStore struct {
	mu      sync.Mutex
	records map[string]models.CallRecord
}

func newMemoryCallStore() *memoryCallStore {
	return &memoryCallStore{records: make(map[string]models.CallRecord)}
}

func (s *memoryCallStore) Put(_ context.Context, record models.CallRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.UpdatedAt = time.Now().UTC()
	s.records[record.RoomID] = record
	return nil
}

func (s *memoryCallStore) Get(_ context.Context, roomId string) (models.CallRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[roomId]
	return record, ok, nil
}

type fakeTransport struct {
	mu       sync.Mutex
	events   chan TransportEvent
	joins    int
	leaves   int
	releases int
	lastRoom string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{events: make(chan TransportEvent, 8)}
}

func (t *fakeTransport) Initialize(string) error { return nil }

func (t *fakeTransport) JoinChannel(_, roomId, _ string) error {
	t.mu.Lock()
	t.joins++
	t.lastRoom = roomId
	t.mu.Unlock()
	t.events <- TransportEvent{Kind: TransportJoined, Detail: roomId}
	return nil
}

func (t *fakeTransport) LeaveChannel() error {
	t.mu.Lock()
	t.leaves++
	t.mu.Unlock()
	select {
	case t.events <- TransportEvent{Kind: TransportLeft}:
	default:
	}
	return nil
}

func (t *fakeTransport) Release() {
	t.mu.Lock()
	t.releases++
	t.mu.Unlock()
}

func (t *fakeTransport) Events() <-chan TransportEvent { return t.events }

func (t *fakeTransport) joinCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.joins
}

func (t *fakeTransport) leaveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.leaves
}

func staticTokens(identity, roomId string) (string, error) {
	return "tk-" + identity + "-" + roomId, nil
}
