package services

type TransportEventKind uint8

const (
	TransportJoined = TransportEventKind(iota)
	TransportPeerOffline
	TransportLeft
	TransportError
)

// TransportEvent is an adapter-originated signal. Errors are advisory: they
// never change the signaling record, the user may retry or hang up manually.
type TransportEvent struct {
	Kind   TransportEventKind `json:"kind"`
	Detail string             `json:"detail"`
}

// Transport is the capability boundary to the external real-time audio
// provider. The signaling layer only decides when to join and leave; how the
// provider moves audio is its own business, and any conforming provider is
// substitutable. A handle is exclusively owned by one session and must be
// released exactly once per join.
type Transport interface {
	Initialize(appId string) error
	JoinChannel(token, roomId, localUid string) error
	LeaveChannel() error
	Release()
	Events() <-chan TransportEvent
}
