package message

import (
	"context"

	"github.com/pkg/errors"
)

const createMessagesTable = `
CREATE TABLE IF NOT EXISTS messages (
	id              BIGSERIAL PRIMARY KEY,
	sender_id       TEXT        NOT NULL,
	receiver_id     TEXT        NULL,
	body            TEXT        NOT NULL,
	attachment_url  TEXT        NULL,
	attachment_kind TEXT        NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_messages_pair
	ON messages (sender_id, receiver_id, created_at);
`

// EnsureSchema bootstraps the messages table. Demo deployments only;
// managed environments run migrations out of band.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createMessagesTable); err != nil {
		return errors.Wrap(err, "ensure messages schema")
	}
	return nil
}
