package model

import "time"

// Favorite marks a desk saved by a renter.  (user_id, desk_id) is unique.
type Favorite struct {
	UserID    uint64    // favorites.user_id
	DeskID    uint64    // favorites.desk_id
	CreatedAt time.Time // favorites.created_at
}
