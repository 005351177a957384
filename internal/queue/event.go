// Package queue defines message payloads exchanged over the message
// broker and the publisher/consumer plumbing around them.
package queue

// BookingConfirmedEvent is published when a booking reaches CONFIRMED.
// It carries enough for downstream consumers to log, notify or feed
// analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64   `json:"booking_id"`
	DeskID           uint64   `json:"desk_id"`
	RenterID         uint64   `json:"renter_id"`
	Dates            []string `json:"dates"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	PlatformFeeCents uint32   `json:"platform_fee_cents"`
	OwnerAmountCents uint32   `json:"owner_amount_cents"`
	Currency         string   `json:"currency"`
	ConfirmedAt      string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a confirmed booking is
// cancelled and its days are released.
type BookingCancelledEvent struct {
	BookingID   uint64   `json:"booking_id"`
	DeskID      uint64   `json:"desk_id"`
	RenterID    uint64   `json:"renter_id"`
	Dates       []string `json:"dates"`
	Currency    string   `json:"currency"`
	CancelledAt string   `json:"cancelled_at"`
}
