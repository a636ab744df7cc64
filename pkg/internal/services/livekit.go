package services

import (
	"context"
	"sync"
	"time"

	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go"
	"github.com/spf13/viper"
)

var Lk *lksdk.RoomServiceClient

func SetupLiveKit() {
	host := "https://" + viper.GetString("calling.endpoint")

	Lk = lksdk.NewRoomServiceClient(
		host,
		viper.GetString("calling.api_key"),
		viper.GetString("calling.api_secret"),
	)
}

// EncodeCallToken mints the join token a participant presents to the audio
// provider for a room.
func EncodeCallToken(identity, roomId string) (string, error) {
	grant := &auth.VideoGrant{
		Room:     roomId,
		RoomJoin: true,
	}

	duration := time.Second * time.Duration(viper.GetInt("calling.token_duration"))
	tk := auth.NewAccessToken(viper.GetString("calling.api_key"), viper.GetString("calling.api_secret"))
	tk.AddGrant(grant).
		SetIdentity(identity).
		SetValidFor(duration)

	return tk.ToJWT()
}

// LiveKitRoomManager provisions audio channels through the room service API.
type LiveKitRoomManager struct{}

func (LiveKitRoomManager) CreateRoom(ctx context.Context, roomId string) error {
	_, err := Lk.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:            roomId,
		EmptyTimeout:    viper.GetUint32("calling.empty_timeout_duration"),
		MaxParticipants: 2,
	})
	return err
}

func (LiveKitRoomManager) DeleteRoom(ctx context.Context, roomId string) error {
	_, err := Lk.DeleteRoom(ctx, &livekit.DeleteRoomRequest{
		Room: roomId,
	})
	return err
}

// LiveKitTransport joins the audio channel as a participant and surfaces the
// provider's membership callbacks as transport events.
type LiveKitTransport struct {
	events chan TransportEvent

	mu   sync.Mutex
	host string
	room *lksdk.Room
}

func NewLiveKitTransport() *LiveKitTransport {
	return &LiveKitTransport{
		events: make(chan TransportEvent, 8),
	}
}

func (t *LiveKitTransport) Initialize(appId string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(appId) == 0 {
		appId = viper.GetString("calling.endpoint")
	}
	t.host = "wss://" + appId
	return nil
}

func (t *LiveKitTransport) JoinChannel(token, roomId, localUid string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.room != nil {
		return nil
	}

	room, err := lksdk.ConnectToRoomWithToken(t.host, token, &lksdk.RoomCallback{
		OnDisconnected: func() {
			t.emit(TransportEvent{Kind: TransportLeft})
		},
		OnParticipantDisconnected: func(rp *lksdk.RemoteParticipant) {
			t.emit(TransportEvent{Kind: TransportPeerOffline, Detail: rp.Identity()})
		},
	})
	if err != nil {
		t.emit(TransportEvent{Kind: TransportError, Detail: err.Error()})
		return err
	}

	t.room = room
	t.emit(TransportEvent{Kind: TransportJoined, Detail: roomId})
	return nil
}

func (t *LiveKitTransport) LeaveChannel() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.room == nil {
		return nil
	}
	t.room.Disconnect()
	t.room = nil
	return nil
}

func (t *LiveKitTransport) Release() {
	_ = t.LeaveChannel()
}

func (t *LiveKitTransport) Events() <-chan TransportEvent {
	return t.events
}

func (t *LiveKitTransport) emit(event TransportEvent) {
	select {
	case t.events <- event:
	default:
	}
}
