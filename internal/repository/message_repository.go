package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/desk-rental-marketplace/internal/model"
)

// MessageRepo stores renter<->owner messages.  A conversation is keyed
// by (desk_id, the two participants); threads are reconstructed by
// querying both directions.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create inserts a message and populates its ID and timestamp.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (desk_id, sender_id, recipient_id, body) VALUES (?, ?, ?, ?)",
		m.DeskID, m.SenderID, m.RecipientID, m.Body)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM messages WHERE id = ?", m.ID).Scan(&m.CreatedAt)
}

// Thread returns the conversation between two users about a desk,
// oldest first.
func (r *MessageRepo) Thread(ctx context.Context, deskID, userA, userB uint64) ([]model.Message, error) {
	const q = `SELECT id, desk_id, sender_id, recipient_id, body, created_at
	           FROM messages
	           WHERE desk_id = ?
	             AND ((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?))
	           ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, deskID, userA, userB, userB, userA)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// Inbox returns the most recent messages the user sent or received,
// newest first, capped at limit.
func (r *MessageRepo) Inbox(ctx context.Context, userID uint64, limit int) ([]model.Message, error) {
	const q = `SELECT id, desk_id, sender_id, recipient_id, body, created_at
	           FROM messages
	           WHERE sender_id = ? OR recipient_id = ?
	           ORDER BY created_at DESC, id DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, userID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func collectMessages(rows *sql.Rows) ([]model.Message, error) {
	msgs := make([]model.Message, 0)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.DeskID, &m.SenderID, &m.RecipientID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
