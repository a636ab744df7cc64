package services

import "errors"

var (
	// ErrInvalidIdentity is fatal to opening a session: one of the two
	// participant ids is missing, so no room key can be derived.
	ErrInvalidIdentity = errors.New("invalid participant identity")

	// ErrEmptyMessage rejects a send whose text trims to nothing.
	ErrEmptyMessage = errors.New("empty message was not allowed")

	// ErrNotInRoom rejects operations issued without a room key.
	ErrNotInRoom = errors.New("room key is required")

	// ErrAlreadyInCall rejects starting a call while the room's signaling
	// record is still occupied.
	ErrAlreadyInCall = errors.New("this room already has an ongoing call")

	// ErrNotRinging rejects accepting when no call is being offered.
	ErrNotRinging = errors.New("no ringing call to accept")

	// ErrNotReceiver rejects accepting by anyone but the called party.
	ErrNotReceiver = errors.New("only the designated receiver can accept the call")

	// ErrNotParticipant rejects call actions from accounts outside the room pair.
	ErrNotParticipant = errors.New("account is not a participant of this call")
)
