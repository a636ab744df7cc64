package models

import "time"

type CallStatus = string

const (
	CallStatusIdle     = CallStatus("idle")
	CallStatusCalling  = CallStatus("calling")
	CallStatusAccepted = CallStatus("accepted")
	CallStatusEnded    = CallStatus("ended")
)

// CallRecord is the single shared signaling record of a room. There is at
// most one row per room; transitions overwrite the whole record rather than
// appending history. Both participants observe the same record, so it is the
// source of truth for who is calling whom.
type CallRecord struct {
	RoomID     string     `json:"room_id" gorm:"primaryKey"`
	Status     CallStatus `json:"status"`
	CallerID   string     `json:"caller_id"`
	ReceiverID string     `json:"receiver_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Ongoing reports whether the record currently occupies the room's call slot.
func (v CallRecord) Ongoing() bool {
	return v.Status == CallStatusCalling || v.Status == CallStatusAccepted
}
