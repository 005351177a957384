package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/desk-rental-marketplace/internal/model"
)

// FavoriteRepo manages the favorites join table between users and desks.
type FavoriteRepo struct {
	db *sql.DB
}

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// Add saves a desk to the user's favorites.  INSERT IGNORE keeps the
// call idempotent against the unique (user_id, desk_id) key.  Returns
// true when a new favorite was created.
func (r *FavoriteRepo) Add(ctx context.Context, userID, deskID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO favorites (user_id, desk_id) VALUES (?, ?)",
		userID, deskID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Remove deletes a favorite.  Returns true when a row was removed.
func (r *FavoriteRepo) Remove(ctx context.Context, userID, deskID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM favorites WHERE user_id = ? AND desk_id = ?",
		userID, deskID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListDesks returns the user's favorited desks, most recently saved
// first.  Deactivated desks stay listed so the user can see they are
// gone.
func (r *FavoriteRepo) ListDesks(ctx context.Context, userID uint64) ([]model.Desk, error) {
	q := `SELECT d.id, d.owner_id, d.title, d.description, d.city, d.address,
	             d.price_per_day_cents, d.currency, d.is_active, d.created_at, d.updated_at
	      FROM favorites f JOIN desks d ON d.id = f.desk_id
	      WHERE f.user_id = ?
	      ORDER BY f.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	desks := make([]model.Desk, 0)
	for rows.Next() {
		d, err := scanDesk(rows.Scan)
		if err != nil {
			return nil, err
		}
		desks = append(desks, d)
	}
	return desks, rows.Err()
}
