package model

import "time"

// Message is a single renter<->owner message attached to a desk.  A
// conversation is the set of messages between two users about one desk.
type Message struct {
	ID          uint64    `json:"id"`           // messages.id
	DeskID      uint64    `json:"desk_id"`      // messages.desk_id
	SenderID    uint64    `json:"sender_id"`    // messages.sender_id
	RecipientID uint64    `json:"recipient_id"` // messages.recipient_id
	Body        string    `json:"body"`         // messages.body
	CreatedAt   time.Time `json:"created_at"`   // messages.created_at
}
