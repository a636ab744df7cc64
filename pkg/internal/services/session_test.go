package services

import (
	"context"
	"testing"
	"time"

	"github.com/pairline/pairline/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

type sessionFixture struct {
	messages *MessageService
	calls    *CallService
	store    *memoryCallStore
}

func newSessionFixture() *sessionFixture {
	store := newMemoryCallStore()
	return &sessionFixture{
		messages: NewMessageService(newMemoryMessageLog()),
		calls:    NewCallService(store, nil),
		store:    store,
	}
}

func (f *sessionFixture) open(t *testing.T, selfId, peerId string) (*ChatSession, *fakeTransport) {
	t.Helper()
	transport := newFakeTransport()
	session, err := NewChatSession(SessionContext{SelfID: selfId, PeerID: peerId},
		f.messages, f.calls, transport, staticTokens)
	require.NoError(t, err)
	require.NoError(t, session.Open(context.Background()))
	t.Cleanup(session.Close)
	return session, transport
}

func TestNewChatSessionInvalidIdentity(t *testing.T) {
	f := newSessionFixture()

	_, err := NewChatSession(SessionContext{SelfID: "", PeerID: "u2"},
		f.messages, f.calls, nil, staticTokens)
	assert.ErrorIs(t, err, ErrInvalidIdentity)

	_, err = NewChatSession(SessionContext{SelfID: "u1", PeerID: ""},
		f.messages, f.calls, nil, staticTokens)
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestChatSessionScenario(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	one, trOne := f.open(t, "u1", "u2")
	two, trTwo := f.open(t, "u2", "u1")
	assert.Equal(t, "u1_u2", one.RoomID())
	assert.Equal(t, one.RoomID(), two.RoomID())

	// Text leg: a send becomes visible to both sides via deltas.
	_, err := one.Send(ctx, "hi")
	require.NoError(t, err)
	for _, session := range []*ChatSession{one, two} {
		require.Eventually(t, func() bool {
			messages := session.View().Messages
			return len(messages) == 1 && messages[0].Text == "hi" && messages[0].SenderID == "u1"
		}, waitFor, tick)
	}

	// Call leg: only the receiver hears it ringing.
	_, err = one.StartCall(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return two.View().IncomingCall }, waitFor, tick)
	assert.False(t, one.View().IncomingCall, "the caller never sees its own offer as incoming")

	// Accept hands both sides to the transport independently.
	_, err = two.AcceptCall(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return trOne.joinCount() == 1 && trTwo.joinCount() == 1
	}, waitFor, tick)
	require.Eventually(t, func() bool {
		return one.View().InCall && two.View().InCall
	}, waitFor, tick)
	assert.Equal(t, "u1_u2", trOne.lastRoom)

	// Either side may hang up; the peer leaves on observing Ended.
	_, err = two.EndCall(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return trOne.leaveCount() >= 1 && trTwo.leaveCount() >= 1
	}, waitFor, tick)
	require.Eventually(t, func() bool {
		return one.View().CallStatus == models.CallStatusEnded
	}, waitFor, tick)

	// The record slot is reused for the next attempt.
	record, err := one.StartCall(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.CallStatusCalling, record.Status)
	assert.Equal(t, "u2", record.ReceiverID)
	require.Eventually(t, func() bool { return two.View().IncomingCall }, waitFor, tick)
}

func TestChatSessionCloseEndsActiveCall(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	session, transport := f.open(t, "u1", "u2")

	_, err := session.StartCall(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return session.View().CallStatus == models.CallStatusCalling
	}, waitFor, tick)

	session.Close()
	require.NotPanics(t, session.Close, "close must be idempotent")

	record, ok, err := f.store.Get(ctx, "u1_u2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.CallStatusEnded, record.Status, "a closing screen must not leave a dangling call")
	assert.Equal(t, 1, transport.releases)
}

func TestChatSessionPeerOfflineConvergesOnEnded(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	one, trOne := f.open(t, "u1", "u2")
	two, _ := f.open(t, "u2", "u1")

	_, err := one.StartCall(ctx)
	require.NoError(t, err)
	_, err = two.AcceptCall(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return trOne.joinCount() == 1 }, waitFor, tick)

	// The adapter notices the peer dropping; same outcome as a local hangup.
	trOne.events <- TransportEvent{Kind: TransportPeerOffline, Detail: "u2"}
	require.Eventually(t, func() bool {
		record, ok, err := f.store.Get(ctx, "u1_u2")
		return err == nil && ok && record.Status == models.CallStatusEnded
	}, waitFor, tick)
}

func TestChatSessionTransportErrorIsAdvisory(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	session, transport := f.open(t, "u1", "u2")

	_, err := session.StartCall(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return session.View().CallStatus == models.CallStatusCalling
	}, waitFor, tick)

	transport.events <- TransportEvent{Kind: TransportError, Detail: "engine fault"}
	require.Eventually(t, func() bool {
		return session.View().LastError == "engine fault"
	}, waitFor, tick)
	assert.Equal(t, models.CallStatusCalling, session.View().CallStatus,
		"a transport fault must not touch the signaling state")
}

func TestChatSessionDegradedOnSubscriptionFault(t *testing.T) {
	f := newSessionFixture()

	session, _ := f.open(t, "u1", "u2")

	f.messages.NotifyFault("watch connection lost")
	require.Eventually(t, func() bool { return session.View().Degraded }, waitFor, tick)
	assert.NotEqual(t, models.CallStatusEnded, session.View().CallStatus,
		"a stale stream is not the same condition as the call having ended")

	f.messages.NotifyRecovered()
	require.Eventually(t, func() bool { return !session.View().Degraded }, waitFor, tick)
}
