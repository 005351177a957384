package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/desk-rental-marketplace/internal/model"
	"github.com/iliyamo/desk-rental-marketplace/internal/utils"
)

// BookingRepo provides CRUD operations for bookings and their dates.
// A booking groups one or more calendar days on a single desk for a
// renter; the days live in the booking_dates table.  Status changes go
// through UpdateStatusTx, which is a guarded compare-and-swap so that
// concurrent transitions on the same booking cannot both apply.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for callers that open transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a booking and its date rows within an existing
// transaction, populating the generated ID and timestamps on the
// passed model.  The caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking, dates []time.Time) error {
	const q = `INSERT INTO bookings
	           (desk_id, renter_id, status, start_date, end_date,
	            total_amount_cents, platform_fee_cents, owner_amount_cents, currency)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.DeskID, b.RenterID, b.Status,
		b.StartDate.Format(utils.DateLayout), b.EndDate.Format(utils.DateLayout),
		b.TotalAmountCents, b.PlatformFeeCents, b.OwnerAmountCents, b.Currency,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	if len(dates) > 0 {
		ins := `INSERT INTO booking_dates (booking_id, date) VALUES `
		args := make([]interface{}, 0, len(dates)*2)
		for i, d := range dates {
			if i > 0 {
				ins += ","
			}
			ins += "(?, ?)"
			args = append(args, b.ID, d.Format(utils.DateLayout))
		}
		if _, err := tx.ExecContext(ctx, ins, args...); err != nil {
			return err
		}
	}

	// Read the row back to pick up DB-generated timestamps.
	const sel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func scanBooking(row *sql.Row, b *model.Booking) error {
	var paymentRef sql.NullString
	err := row.Scan(
		&b.ID, &b.DeskID, &b.RenterID, &b.Status, &b.StartDate, &b.EndDate,
		&b.TotalAmountCents, &b.PlatformFeeCents, &b.OwnerAmountCents,
		&b.Currency, &paymentRef, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if paymentRef.Valid {
		ref := paymentRef.String
		b.PaymentRef = &ref
	}
	b.StartDate = b.StartDate.UTC()
	b.EndDate = b.EndDate.UTC()
	return nil
}

const bookingColumns = `id, desk_id, renter_id, status, start_date, end_date,
	total_amount_cents, platform_fee_cents, owner_amount_cents,
	currency, payment_ref, created_at, updated_at`

// GetForUpdateTx loads a booking and its dates with a row lock inside
// the caller's transaction.  The lock is what serializes concurrent
// Confirm/Cancel attempts on the same booking: the second transaction
// blocks here until the first commits, then sees the updated status.
// Returns ErrBookingNotFound when the id does not exist.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, []time.Time, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	var b model.Booking
	if err := scanBooking(tx.QueryRowContext(ctx, q, id), &b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrBookingNotFound
		}
		return nil, nil, err
	}
	dates, err := r.datesTx(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	return &b, dates, nil
}

func (r *BookingRepo) datesTx(ctx context.Context, tx *sql.Tx, bookingID uint64) ([]time.Time, error) {
	rows, err := tx.QueryContext(ctx, `SELECT date FROM booking_dates WHERE booking_id = ? ORDER BY date`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d.UTC())
	}
	return dates, rows.Err()
}

// UpdateStatusTx applies a guarded status transition: the UPDATE only
// matches while the row still holds the expected `from` status.  When
// zero rows match, someone else won the race (or the caller's
// precondition was wrong) and ErrStaleStatus is returned so the whole
// transaction can roll back.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrStaleStatus
	}
	return nil
}

// SetPaymentRef records the payment processor's order id on a booking
// so the webhook can correlate a captured payment back to it.
func (r *BookingRepo) SetPaymentRef(ctx context.Context, id uint64, ref string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE bookings SET payment_ref = ? WHERE id = ?`, ref, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// GetIDByPaymentRef resolves a processor order id to a booking id.
func (r *BookingRepo) GetIDByPaymentRef(ctx context.Context, ref string) (uint64, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM bookings WHERE payment_ref = ? LIMIT 1`, ref).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrBookingNotFound
	}
	return id, err
}

// BookingDetail is a booking joined with its desk for display, plus the
// booked days rendered as YYYY-MM-DD strings.
type BookingDetail struct {
	ID               uint64   `json:"id"`
	DeskID           uint64   `json:"desk_id"`
	DeskTitle        string   `json:"desk_title"`
	DeskCity         string   `json:"desk_city"`
	RenterID         uint64   `json:"renter_id"`
	Status           string   `json:"status"`
	Dates            []string `json:"dates"`
	StartDate        string   `json:"start_date"`
	EndDate          string   `json:"end_date"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	PlatformFeeCents uint32   `json:"platform_fee_cents"`
	OwnerAmountCents uint32   `json:"owner_amount_cents"`
	Currency         string   `json:"currency"`
	PaymentRef       *string  `json:"payment_ref,omitempty"`
	CreatedAt        string   `json:"created_at"`
}

const detailColumns = `b.id, b.desk_id, d.title, d.city, b.renter_id, b.status,
	b.start_date, b.end_date, b.total_amount_cents, b.platform_fee_cents,
	b.owner_amount_cents, b.currency, b.payment_ref, b.created_at`

func scanDetail(scan func(dest ...interface{}) error) (BookingDetail, error) {
	var det BookingDetail
	var start, end time.Time
	var payRef sql.NullString
	var createdAt time.Time
	err := scan(
		&det.ID, &det.DeskID, &det.DeskTitle, &det.DeskCity, &det.RenterID, &det.Status,
		&start, &end, &det.TotalAmountCents, &det.PlatformFeeCents,
		&det.OwnerAmountCents, &det.Currency, &payRef, &createdAt,
	)
	if err != nil {
		return det, err
	}
	det.StartDate = start.UTC().Format(utils.DateLayout)
	det.EndDate = end.UTC().Format(utils.DateLayout)
	det.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	if payRef.Valid {
		ref := payRef.String
		det.PaymentRef = &ref
	}
	det.Dates = []string{}
	return det, nil
}

// GetByIDForRenter returns a single booking for the given renter.
// Ownership is enforced in the query: a booking belonging to someone
// else looks the same as a missing one (ErrBookingNotFound).
func (r *BookingRepo) GetByIDForRenter(ctx context.Context, bookingID, renterID uint64) (*BookingDetail, error) {
	q := `SELECT ` + detailColumns + `
	      FROM bookings b JOIN desks d ON d.id = b.desk_id
	      WHERE b.id = ? AND b.renter_id = ?`
	det, err := scanDetail(r.db.QueryRowContext(ctx, q, bookingID, renterID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if err := r.populateDates(ctx, []*BookingDetail{&det}); err != nil {
		return nil, err
	}
	return &det, nil
}

// ListByRenter returns the renter's bookings, newest first.
func (r *BookingRepo) ListByRenter(ctx context.Context, renterID uint64) ([]BookingDetail, error) {
	q := `SELECT ` + detailColumns + `
	      FROM bookings b JOIN desks d ON d.id = b.desk_id
	      WHERE b.renter_id = ?
	      ORDER BY b.created_at DESC`
	return r.listDetails(ctx, q, renterID)
}

// ListByDeskForOwner returns all bookings on a desk when requested by
// its owner.  Returns ErrDeskNotFound for unknown desks and
// ErrForbidden when the desk belongs to another owner.
func (r *BookingRepo) ListByDeskForOwner(ctx context.Context, deskID, ownerID uint64) ([]BookingDetail, error) {
	var actualOwner uint64
	err := r.db.QueryRowContext(ctx, `SELECT owner_id FROM desks WHERE id = ?`, deskID).Scan(&actualOwner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeskNotFound
		}
		return nil, err
	}
	if actualOwner != ownerID {
		return nil, ErrForbidden
	}
	q := `SELECT ` + detailColumns + `
	      FROM bookings b JOIN desks d ON d.id = b.desk_id
	      WHERE b.desk_id = ?
	      ORDER BY b.created_at DESC`
	return r.listDetails(ctx, q, deskID)
}

func (r *BookingRepo) listDetails(ctx context.Context, q string, arg interface{}) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		det, err := scanDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		details = append(details, det)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	refs := make([]*BookingDetail, len(details))
	for i := range details {
		refs[i] = &details[i]
	}
	if err := r.populateDates(ctx, refs); err != nil {
		return nil, err
	}
	return details, nil
}

// populateDates fills the Dates field for all passed details in one
// query, following the usual fetch-parents-then-children pattern.
func (r *BookingRepo) populateDates(ctx context.Context, details []*BookingDetail) error {
	if len(details) == 0 {
		return nil
	}
	index := make(map[uint64]*BookingDetail, len(details))
	ids := make([]interface{}, 0, len(details))
	ph := make([]string, 0, len(details))
	for _, d := range details {
		index[d.ID] = d
		ids = append(ids, d.ID)
		ph = append(ph, "?")
	}
	q := `SELECT booking_id, date FROM booking_dates
	      WHERE booking_id IN (` + strings.Join(ph, ",") + `)
	      ORDER BY booking_id, date`
	rows, err := r.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var d time.Time
		if err := rows.Scan(&id, &d); err != nil {
			return err
		}
		if det, ok := index[id]; ok {
			det.Dates = append(det.Dates, d.UTC().Format(utils.DateLayout))
		}
	}
	return rows.Err()
}
