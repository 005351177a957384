package model

import "time"

// Desk is a rentable listing published by an owner.  Pricing is a flat
// per-day amount in cents; availability is tracked per calendar day in
// the desk_availability table, not here.
type Desk struct {
	ID               uint64    `json:"id"`                  // desks.id
	OwnerID          uint64    `json:"owner_id"`            // desks.owner_id
	Title            string    `json:"title"`               // desks.title
	Description      string    `json:"description"`         // desks.description
	City             string    `json:"city"`                // desks.city
	Address          string    `json:"address"`             // desks.address
	PricePerDayCents uint32    `json:"price_per_day_cents"` // desks.price_per_day_cents
	Currency         string    `json:"currency"`            // desks.currency (ISO 4217)
	IsActive         bool      `json:"is_active"`           // desks.is_active
	CreatedAt        time.Time `json:"created_at"`          // desks.created_at
	UpdatedAt        time.Time `json:"updated_at"`          // desks.updated_at
}
