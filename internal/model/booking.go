package model

import "time"

// Booking statuses.  The lifecycle moves strictly forward:
// PENDING -> CONFIRMED -> CANCELLED.  A PENDING booking that never
// receives a payment confirmation simply stays PENDING.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
)

// Booking mirrors the bookings table.  The requested calendar days live
// in booking_dates; StartDate/EndDate are their min/max and are kept
// denormalized for listing queries.  Money is split at creation time:
// TotalAmountCents = price per day x number of days, the platform fee is
// a fixed percentage of the total and OwnerAmountCents is the remainder.
type Booking struct {
	ID               uint64    // bookings.id
	DeskID           uint64    // bookings.desk_id
	RenterID         uint64    // bookings.renter_id
	Status           string    // bookings.status
	StartDate        time.Time // bookings.start_date
	EndDate          time.Time // bookings.end_date
	TotalAmountCents uint32    // bookings.total_amount_cents
	PlatformFeeCents uint32    // bookings.platform_fee_cents
	OwnerAmountCents uint32    // bookings.owner_amount_cents
	Currency         string    // bookings.currency
	PaymentRef       *string   // bookings.payment_ref (processor order id, nullable)
	CreatedAt        time.Time // bookings.created_at
	UpdatedAt        time.Time // bookings.updated_at
}
