package models

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

const (
	StreamMessageNew = "messages.new"
	StreamCallUpdate = "calls.update"
)

// ErrDecode marks payloads from a remote collaborator that are missing
// required fields; they are dropped at the boundary instead of flowing
// untyped into the core.
var ErrDecode = errors.New("malformed stream payload")

// StreamEnvelope is the cross-instance delta announcement relayed over the
// cache pub/sub channel. It carries no payload, only which room changed;
// receivers re-read the store for the actual snapshot.
type StreamEnvelope struct {
	Action string `json:"action"`
	RoomID string `json:"room_id"`
	Origin string `json:"origin"`
}

func DecodeStreamEnvelope(raw []byte) (StreamEnvelope, error) {
	var envelope StreamEnvelope
	if err := jsoniter.Unmarshal(raw, &envelope); err != nil {
		return envelope, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(envelope.Action) == 0 || len(envelope.RoomID) == 0 {
		return envelope, fmt.Errorf("%w: missing action or room id", ErrDecode)
	}
	return envelope, nil
}

// StreamPackage is one frame pushed to a connected client over the stream
// gateway websocket.
type StreamPackage struct {
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}
