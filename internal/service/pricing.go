package service

import (
	"errors"
	"math"
)

// PlatformFeePercent is the marketplace's cut of every booking.  The
// fee is rounded half up to the nearest cent; the owner receives the
// exact remainder.
const PlatformFeePercent = 15

// ErrQuoteTooLarge is returned when price x days overflows the cents
// columns.  Such a request can only be a bad price or a bad date list.
var ErrQuoteTooLarge = errors.New("booking total exceeds the maximum amount")

// Quote is the money breakdown attached to a booking at creation time.
// All amounts are cents.  FeeCents + OwnerCents always equals TotalCents.
type Quote struct {
	TotalCents uint32
	FeeCents   uint32
	OwnerCents uint32
}

// ComputeQuote prices a booking: per-day price times number of days,
// with the platform fee rounded half up to the nearest cent and the
// owner receiving the exact remainder.  The product is computed in
// uint64 so an oversized price fails with ErrQuoteTooLarge instead of
// wrapping around.
func ComputeQuote(pricePerDayCents uint32, days int) (Quote, error) {
	total := uint64(pricePerDayCents) * uint64(days)
	if total > math.MaxUint32 {
		return Quote{}, ErrQuoteTooLarge
	}
	fee := uint64(math.Round(float64(total) * PlatformFeePercent / 100.0))
	return Quote{
		TotalCents: uint32(total),
		FeeCents:   uint32(fee),
		OwnerCents: uint32(total - fee),
	}, nil
}
