package models

import (
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Message is one entry of a room's append-only log. Once the store has
// assigned CreatedAt the message never changes; a nil CreatedAt means the
// message has not been ordered yet and sorts after everything else.
type Message struct {
	ID       string            `json:"id" gorm:"primaryKey"`
	RoomID   string            `json:"room_id" gorm:"index"`
	SenderID string            `json:"sender_id"`
	Text     string            `json:"text"`
	Metadata datatypes.JSONMap `json:"metadata,omitempty"`

	Seq       uint64         `json:"-" gorm:"autoIncrement;uniqueIndex"`
	CreatedAt *time.Time     `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// SortMessages orders a snapshot by created_at ascending with unstamped
// messages last, stable by append order among equals.
func SortMessages(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		a, b := messages[i].CreatedAt, messages[j].CreatedAt
		switch {
		case a == nil && b == nil:
			return messages[i].Seq < messages[j].Seq
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return messages[i].Seq < messages[j].Seq
		default:
			return a.Before(*b)
		}
	})
}
