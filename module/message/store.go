package message

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const defaultHistoryLimit = 100

// Store persists messages in postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "open pgx pool")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// InsertMessage stores one message and returns the row with the
// database-assigned id and created_at.
func (s *Store) InsertMessage(ctx context.Context, senderID string, receiverID *string, body string, attachmentURL, attachmentKind *string) (*Message, error) {
	m := &Message{
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Body:           body,
		AttachmentURL:  attachmentURL,
		AttachmentKind: attachmentKind,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (sender_id, receiver_id, body, attachment_url, attachment_kind)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		senderID, receiverID, body, attachmentURL, attachmentKind,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "insert message")
	}
	return m, nil
}

// FetchHistory returns the newest `limit` messages between two users,
// both directions, in chronological order.
func (s *Store) FetchHistory(ctx context.Context, userA, userB string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, sender_id, receiver_id, body, attachment_url, attachment_kind, created_at
		 FROM messages
		 WHERE (sender_id = $1 AND receiver_id = $2)
		    OR (sender_id = $2 AND receiver_id = $1)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3`,
		userA, userB, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.AttachmentURL, &m.AttachmentKind, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan history row")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "history rows")
	}

	// newest-first query, oldest-first result
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
