package chat

import (
	"context"
	"unicode/utf8"

	"LoginChat/logger"
	"LoginChat/module/message"
	"LoginChat/tools/decode"
	"LoginChat/tools/errs"
)

// MessageStore is the persistence collaborator. *message.Store
// implements it; tests substitute a fake.
type MessageStore interface {
	InsertMessage(ctx context.Context, senderID string, receiverID *string, body string, attachmentURL, attachmentKind *string) (*message.Message, error)
}

// Router handles one inbound send frame: persist first, then fan out.
// A message may be durably stored with no live recipient; the reverse
// never happens.
type Router struct {
	reg    Registry
	conns  *ConnManager
	fanout *Fanout
	store  MessageStore
}

func NewRouter(reg Registry, conns *ConnManager, fanout *Fanout, store MessageStore) *Router {
	return &Router{reg: reg, conns: conns, fanout: fanout, store: store}
}

func (r *Router) Type() FrameType { return FrameSend }

func (r *Router) Handle(_ *Context, f *Frame, c *Client) error {
	p, err := decode.Decode[SendPayload](f.Payload)
	if err != nil {
		logger.Warnf("[router] bad send payload conn=%s: %v", c.ConnID, err)
		c.TrySend(BuildError(f.TraceID, errs.ErrArgs.WithDetail("bad send payload")))
		return nil
	}
	return r.HandleSend(context.Background(), c, p, f.TraceID)
}

// HandleSend validates, persists and fans out one message. All failure
// modes are per-message: they drop or abort this send and never tear
// down the connection.
func (r *Router) HandleSend(ctx context.Context, c *Client, p *SendPayload, traceID string) error {
	if !c.Bound() {
		logger.Warnf("[router] send before join conn=%s", c.ConnID)
		c.TrySend(BuildError(traceID, errs.ErrArgs.WithDetail("join first")))
		return nil
	}
	// The sender field is never trusted over the bound identity.
	if p.SenderID == "" {
		p.SenderID = c.UserID
	} else if p.SenderID != c.UserID {
		logger.Warnf("[router] sender spoof conn=%s bound=%s claimed=%s", c.ConnID, c.UserID, p.SenderID)
		c.TrySend(BuildError(traceID, errs.ErrIdentityMismatch))
		return nil
	}
	if p.Body == "" && p.AttachmentURL == nil {
		logger.Warnf("[router] empty send user=%s conn=%s", c.UserID, c.ConnID)
		c.TrySend(BuildError(traceID, errs.ErrArgs.WithDetail("empty message")))
		return nil
	}

	// Persist before any fanout. No partial fanout of an unpersisted
	// message, and no automatic retry: the client resends if it never
	// sees its echo.
	m, err := r.store.InsertMessage(ctx, p.SenderID, p.ReceiverID, p.Body, p.AttachmentURL, p.AttachmentKind)
	if err != nil {
		logger.Error("[router] persist failed, fanout aborted")
		logger.Errorf("[router] sender=%s receiver=%s body=%q err=%v",
			p.SenderID, strOrDash(p.ReceiverID), truncate(p.Body, 64), err)
		c.TrySend(BuildError(traceID, errs.ErrPersistence))
		return nil
	}

	data, err := BuildReceive(traceID, m)
	if err != nil {
		logger.Errorf("[router] marshal receive failed id=%d: %v", m.ID, err)
		return nil
	}

	if p.ReceiverID == nil {
		// Broadcast: every live connection, the sender's included.
		r.fanout.Broadcast(r.conns.ListAll(), data)
		return nil
	}

	// Directed: receiver's registered connection if online, plus the
	// sender echo. Deduped by conn id so a self-send emits once.
	targets := []*Client{c}
	if e, ok := r.reg.Lookup(*p.ReceiverID); ok {
		if rc, live := r.conns.Get(e.ConnID); live && rc.ConnID != c.ConnID {
			targets = append(targets, rc)
		}
	}
	r.fanout.Broadcast(targets, data)
	return nil
}

// truncate shortens a log sample, cutting on a rune boundary so a
// multi-byte character is never split.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

func strOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
