package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/desk-rental-marketplace/internal/model"
	"github.com/iliyamo/desk-rental-marketplace/internal/utils"
)

// AvailabilityRepo provides access to the desk_availability table: one
// row per (desk, calendar day), either AVAILABLE or BLOCKED with a
// reason.  A UNIQUE key on (desk_id, date) enforces at most one row per
// pair.  The absence of a row means the owner never opened the date;
// it is treated the same as blocked by every read path.
type AvailabilityRepo struct {
	db *sql.DB
}

// NewAvailabilityRepo returns a repo bound to the given database.
func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// that span this repo and the booking repo.
func (r *AvailabilityRepo) DB() *sql.DB { return r.db }

// datePlaceholders renders "?,?,..." and the matching args for a date
// IN clause.  Dates are passed as YYYY-MM-DD strings so MySQL compares
// them against the DATE column without timezone surprises.
func datePlaceholders(dates []time.Time) (string, []interface{}) {
	ph := make([]string, len(dates))
	args := make([]interface{}, len(dates))
	for i, d := range dates {
		ph[i] = "?"
		args[i] = d.Format(utils.DateLayout)
	}
	return strings.Join(ph, ","), args
}

// AvailableDatesTx returns the subset of the requested dates that are
// currently AVAILABLE for the desk, within the caller's transaction.
// With forUpdate set, the matching rows are locked until commit so a
// concurrent confirmation over the same days serializes behind this
// one instead of double-blocking.
func (r *AvailabilityRepo) AvailableDatesTx(ctx context.Context, tx *sql.Tx, deskID uint64, dates []time.Time, forUpdate bool) ([]time.Time, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	ph, args := datePlaceholders(dates)
	q := `SELECT date FROM desk_availability
	      WHERE desk_id = ? AND status = 'AVAILABLE' AND date IN (` + ph + `)`
	if forUpdate {
		q += " FOR UPDATE"
	}
	rows, err := tx.QueryContext(ctx, q, append([]interface{}{deskID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var avail []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		avail = append(avail, d.UTC())
	}
	return avail, rows.Err()
}

// BlockTx flips AVAILABLE rows to BLOCKED with the given reason inside
// the caller's transaction.  Rows that are already blocked do not match
// the WHERE clause, so re-blocking is a no-op rather than an error and
// can never produce a duplicate row.  All dates of one booking are
// covered by a single statement; the surrounding transaction makes the
// flip atomic with the booking status change.
func (r *AvailabilityRepo) BlockTx(ctx context.Context, tx *sql.Tx, deskID uint64, dates []time.Time, reason string) error {
	if len(dates) == 0 {
		return nil
	}
	ph, args := datePlaceholders(dates)
	q := `UPDATE desk_availability SET status = 'BLOCKED', reason = ?
	      WHERE desk_id = ? AND status = 'AVAILABLE' AND date IN (` + ph + `)`
	_, err := tx.ExecContext(ctx, q, append([]interface{}{reason, deskID}, args...)...)
	return err
}

// UnblockTx reverses booking blocks for the given dates, recreating the
// AVAILABLE state.  Only rows with reason BOOKED are touched; manual
// owner blocks survive a booking cancellation.
func (r *AvailabilityRepo) UnblockTx(ctx context.Context, tx *sql.Tx, deskID uint64, dates []time.Time) error {
	if len(dates) == 0 {
		return nil
	}
	ph, args := datePlaceholders(dates)
	q := `UPDATE desk_availability SET status = 'AVAILABLE', reason = NULL
	      WHERE desk_id = ? AND status = 'BLOCKED' AND reason = 'BOOKED' AND date IN (` + ph + `)`
	_, err := tx.ExecContext(ctx, q, append([]interface{}{deskID}, args...)...)
	return err
}

// OpenDates inserts AVAILABLE rows for dates the owner opens for rent.
// INSERT IGNORE makes the call idempotent: days that already have a row
// (available or blocked) are left untouched.  Returns how many new days
// were opened.
func (r *AvailabilityRepo) OpenDates(ctx context.Context, deskID uint64, dates []time.Time) (int64, error) {
	if len(dates) == 0 {
		return 0, nil
	}
	q := `INSERT IGNORE INTO desk_availability (desk_id, date, status) VALUES `
	args := make([]interface{}, 0, len(dates)*2)
	for i, d := range dates {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, 'AVAILABLE')"
		args = append(args, deskID, d.Format(utils.DateLayout))
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CloseDates removes AVAILABLE rows so the days can no longer be
// booked.  Days blocked by a confirmed booking or an owner block are
// left alone; cancelling a booking is the only way to release a BOOKED
// day.  Returns how many days were closed.
func (r *AvailabilityRepo) CloseDates(ctx context.Context, deskID uint64, dates []time.Time) (int64, error) {
	if len(dates) == 0 {
		return 0, nil
	}
	ph, args := datePlaceholders(dates)
	q := `DELETE FROM desk_availability
	      WHERE desk_id = ? AND status = 'AVAILABLE' AND date IN (` + ph + `)`
	res, err := r.db.ExecContext(ctx, q, append([]interface{}{deskID}, args...)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// BlockOwner flips AVAILABLE rows to an owner-initiated block (for
// example the owner uses the desk themselves that week).  Days already
// taken by a booking are skipped.  Returns how many days were blocked.
func (r *AvailabilityRepo) BlockOwner(ctx context.Context, deskID uint64, dates []time.Time) (int64, error) {
	if len(dates) == 0 {
		return 0, nil
	}
	ph, args := datePlaceholders(dates)
	q := `UPDATE desk_availability SET status = 'BLOCKED', reason = 'OWNER'
	      WHERE desk_id = ? AND status = 'AVAILABLE' AND date IN (` + ph + `)`
	res, err := r.db.ExecContext(ctx, q, append([]interface{}{deskID}, args...)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UnblockOwner lifts owner blocks, restoring the days to AVAILABLE.
// Booking blocks are not touched by this path.
func (r *AvailabilityRepo) UnblockOwner(ctx context.Context, deskID uint64, dates []time.Time) (int64, error) {
	if len(dates) == 0 {
		return 0, nil
	}
	ph, args := datePlaceholders(dates)
	q := `UPDATE desk_availability SET status = 'AVAILABLE', reason = NULL
	      WHERE desk_id = ? AND status = 'BLOCKED' AND reason = 'OWNER' AND date IN (` + ph + `)`
	res, err := r.db.ExecContext(ctx, q, append([]interface{}{deskID}, args...)...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByDesk returns the desk's calendar between from and to inclusive,
// ordered by date.  Days without a row are simply absent from the
// result.
func (r *AvailabilityRepo) ListByDesk(ctx context.Context, deskID uint64, from, to time.Time) ([]model.AvailabilityDay, error) {
	const q = `SELECT desk_id, date, status, reason FROM desk_availability
	           WHERE desk_id = ? AND date BETWEEN ? AND ?
	           ORDER BY date`
	rows, err := r.db.QueryContext(ctx, q, deskID, from.Format(utils.DateLayout), to.Format(utils.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	days := make([]model.AvailabilityDay, 0)
	for rows.Next() {
		var day model.AvailabilityDay
		var reason sql.NullString
		if err := rows.Scan(&day.DeskID, &day.Date, &day.Status, &reason); err != nil {
			return nil, err
		}
		day.Date = day.Date.UTC()
		if reason.Valid {
			rs := reason.String
			day.Reason = &rs
		}
		days = append(days, day)
	}
	return days, rows.Err()
}
