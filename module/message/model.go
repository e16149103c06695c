package message

import "time"

// Message is the durable chat row. ReceiverID nil means a broadcast
// (room) message. ID and CreatedAt are assigned by the store.
type Message struct {
	ID             int64     `json:"id"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     *string   `json:"receiver_id,omitempty"`
	Body           string    `json:"body"`
	AttachmentURL  *string   `json:"attachment_url,omitempty"`
	AttachmentKind *string   `json:"attachment_kind,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
