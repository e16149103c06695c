package chat

import (
	"context"

	"LoginChat/logger"
)

// PresenceMirror receives best-effort copies of presence transitions.
// *storage.Mirror implements it; nil disables mirroring.
type PresenceMirror interface {
	Online(ctx context.Context, user, nodeID string) error
	Offline(ctx context.Context, user string) error
}

// Tracker pushes the online snapshot to every live connection whenever
// Registry membership changes. Fire-and-forget: a client that misses an
// announcement catches up on the next one after it reconnects.
type Tracker struct {
	reg    Registry
	conns  *ConnManager
	fanout *Fanout
	mirror PresenceMirror
	nodeID string
}

func NewTracker(reg Registry, conns *ConnManager, fanout *Fanout, mirror PresenceMirror, nodeID string) *Tracker {
	return &Tracker{reg: reg, conns: conns, fanout: fanout, mirror: mirror, nodeID: nodeID}
}

// Announce broadcasts the current snapshot to all connections,
// including ones that have not joined yet.
func (t *Tracker) Announce() {
	entries := t.reg.ListAll()
	users := make([]PresenceUser, 0, len(entries))
	for _, e := range entries {
		users = append(users, PresenceUser{UserID: e.UserID, DisplayName: e.DisplayName})
	}
	data, err := BuildOnline(users)
	if err != nil {
		logger.Errorf("[presence] marshal snapshot failed: %v", err)
		return
	}
	t.fanout.Broadcast(t.conns.ListAll(), data)
}

// UserOnline mirrors the transition and announces unless this was a
// reconnect, which does not change membership.
func (t *Tracker) UserOnline(userID string, reconnect bool) {
	if t.mirror != nil {
		if err := t.mirror.Online(context.Background(), userID, t.nodeID); err != nil {
			logger.Warnf("[presence] mirror online failed user=%s: %v", userID, err)
		}
	}
	if !reconnect {
		t.Announce()
	}
}

func (t *Tracker) UserOffline(userID string) {
	if t.mirror != nil {
		if err := t.mirror.Offline(context.Background(), userID); err != nil {
			logger.Warnf("[presence] mirror offline failed user=%s: %v", userID, err)
		}
	}
	t.Announce()
}
