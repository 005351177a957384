package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/desk-rental-marketplace/internal/model"
)

// DeskRepo encapsulates database operations for desk listings.
type DeskRepo struct {
	db *sql.DB
}

// NewDeskRepo constructs a DeskRepo given a DB handle.
func NewDeskRepo(db *sql.DB) *DeskRepo { return &DeskRepo{db: db} }

const deskColumns = `id, owner_id, title, description, city, address,
	price_per_day_cents, currency, is_active, created_at, updated_at`

func scanDesk(scan func(dest ...interface{}) error) (model.Desk, error) {
	var d model.Desk
	err := scan(
		&d.ID, &d.OwnerID, &d.Title, &d.Description, &d.City, &d.Address,
		&d.PricePerDayCents, &d.Currency, &d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// Create inserts a desk and populates its generated ID.  The owner id
// must come from the authenticated request; there is no fallback owner.
func (r *DeskRepo) Create(ctx context.Context, d *model.Desk) error {
	const q = `INSERT INTO desks (owner_id, title, description, city, address,
	           price_per_day_cents, currency, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		d.OwnerID, d.Title, d.Description, d.City, d.Address,
		d.PricePerDayCents, d.Currency, d.IsActive,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

// GetByID fetches a desk regardless of its active flag.  Returns
// ErrDeskNotFound when the id does not exist.
func (r *DeskRepo) GetByID(ctx context.Context, id uint64) (*model.Desk, error) {
	q := `SELECT ` + deskColumns + ` FROM desks WHERE id = ?`
	d, err := scanDesk(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeskNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Update rewrites the mutable listing fields.  Ownership is enforced in
// the WHERE clause; updating someone else's desk affects zero rows and
// is reported as ErrForbidden when the desk exists.
func (r *DeskRepo) Update(ctx context.Context, d *model.Desk) error {
	const q = `UPDATE desks SET title = ?, description = ?, city = ?, address = ?,
	           price_per_day_cents = ?, currency = ?, is_active = ?
	           WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		d.Title, d.Description, d.City, d.Address,
		d.PricePerDayCents, d.Currency, d.IsActive,
		d.ID, d.OwnerID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, d.ID); err != nil {
			return err
		}
		return ErrForbidden
	}
	return nil
}

// Deactivate hides a desk from browsing and new bookings.  Existing
// bookings are unaffected.
func (r *DeskRepo) Deactivate(ctx context.Context, deskID, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE desks SET is_active = FALSE WHERE id = ? AND owner_id = ?`,
		deskID, ownerID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		desk, err := r.GetByID(ctx, deskID)
		if err != nil {
			return err
		}
		if desk.OwnerID != ownerID {
			return ErrForbidden
		}
		// Already inactive; treat as a no-op.
	}
	return nil
}

// ListActive returns active desks for browsing, optionally filtered by
// city, newest first.
func (r *DeskRepo) ListActive(ctx context.Context, city string, limit, offset int) ([]model.Desk, error) {
	q := `SELECT ` + deskColumns + ` FROM desks WHERE is_active = TRUE`
	args := []interface{}{}
	if city != "" {
		q += ` AND city = ?`
		args = append(args, city)
	}
	q += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	return r.list(ctx, q, args...)
}

// ListByOwner returns all desks published by an owner, active or not.
func (r *DeskRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Desk, error) {
	q := `SELECT ` + deskColumns + ` FROM desks WHERE owner_id = ? ORDER BY created_at DESC`
	return r.list(ctx, q, ownerID)
}

func (r *DeskRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Desk, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
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
