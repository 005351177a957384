package model

import "time"

// Availability day states.  A (desk, date) pair has at most one row.
// A missing row means the owner never opened that date for booking,
// which is NOT the same as available.
const (
	AvailabilityAvailable = "AVAILABLE"
	AvailabilityBlocked   = "BLOCKED"
)

// Reasons recorded on BLOCKED rows.  BOOKED rows are created and
// removed by the booking lifecycle; OWNER rows only by the owner.
const (
	BlockReasonBooked = "BOOKED"
	BlockReasonOwner  = "OWNER"
)

// AvailabilityDay mirrors one desk_availability row.
type AvailabilityDay struct {
	DeskID uint64    `json:"desk_id"`          // desk_availability.desk_id
	Date   time.Time `json:"date"`             // desk_availability.date (UTC midnight)
	Status string    `json:"status"`           // AVAILABLE or BLOCKED
	Reason *string   `json:"reason,omitempty"` // BOOKED or OWNER when blocked
}
