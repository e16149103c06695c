package chat

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"LoginChat/module/message"
	"LoginChat/tools/errs"
)

// Wire format: one JSON frame per websocket text message.
type FrameType string

const (
	FrameConnAck FrameType = "conn_ack" // server -> client, carries the issued conn id
	FramePing    FrameType = "ping"     // client -> server keepalive, echoed back
	FrameJoin    FrameType = "join"     // client -> server identity bind
	FrameJoinAck FrameType = "join_ack" // server -> client
	FrameSend    FrameType = "send"     // client -> server message submit
	FrameReceive FrameType = "receive"  // server -> client persisted message
	FrameOnline  FrameType = "online"   // server -> client presence snapshot
	FrameError   FrameType = "error"    // server -> client recoverable failure
)

type Frame struct {
	Type    FrameType `json:"type"`
	TraceID string    `json:"trace_id,omitempty"`
	Payload any       `json:"payload,omitempty"`
}

// ParseFrameJSON decodes an inbound frame and guarantees a trace id.
func ParseFrameJSON(raw []byte) (*Frame, error) {
	frame := &Frame{}
	if err := json.Unmarshal(raw, frame); err != nil {
		return nil, errors.Wrap(err, "unmarshal frame")
	}
	if frame.Type == "" {
		return nil, errors.New("frame missing type")
	}
	if frame.TraceID == "" {
		frame.TraceID = uuid.NewString()
	}
	return frame, nil
}

func MarshalFrame(t FrameType, traceID string, payload any) ([]byte, error) {
	return json.Marshal(&Frame{Type: t, TraceID: traceID, Payload: payload})
}

// ---- payloads ----

type JoinPayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Token       string `json:"token,omitempty"`
}

type SendPayload struct {
	SenderID       string  `json:"sender_id"`
	ReceiverID     *string `json:"receiver_id,omitempty"`
	Body           string  `json:"body"`
	AttachmentURL  *string `json:"attachment_url,omitempty"`
	AttachmentKind *string `json:"attachment_kind,omitempty"`
}

type PresenceUser struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type OnlinePayload struct {
	Users []PresenceUser `json:"users"`
	Count int            `json:"count"`
}

type ConnAckPayload struct {
	ConnID string `json:"conn_id"`
	NodeID string `json:"node_id"`
}

type JoinAckPayload struct {
	UserID string `json:"user_id"`
	ConnID string `json:"conn_id"`
}

// ---- server-built frames ----

func BuildConnAck(connID, nodeID string) ([]byte, error) {
	return MarshalFrame(FrameConnAck, uuid.NewString(), &ConnAckPayload{ConnID: connID, NodeID: nodeID})
}

func BuildJoinAck(traceID, userID, connID string) ([]byte, error) {
	return MarshalFrame(FrameJoinAck, traceID, &JoinAckPayload{UserID: userID, ConnID: connID})
}

func BuildReceive(traceID string, m *message.Message) ([]byte, error) {
	return MarshalFrame(FrameReceive, traceID, m)
}

func BuildOnline(users []PresenceUser) ([]byte, error) {
	return MarshalFrame(FrameOnline, uuid.NewString(), &OnlinePayload{Users: users, Count: len(users)})
}

func BuildError(traceID string, ce *errs.CodeError) []byte {
	data, err := MarshalFrame(FrameError, traceID, ce)
	if err != nil {
		// CodeError always marshals; keep the signature convenient
		return []byte(`{"type":"error"}`)
	}
	return data
}
