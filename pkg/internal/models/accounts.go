package models

import "time"

// Account is the local projection of the identity collaborator's user record.
// Accounts are created elsewhere; this service only reads them.
type Account struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}
