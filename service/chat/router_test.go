package chat

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"LoginChat/module/message"
	"LoginChat/tools/decode"
)

type routerFixture struct {
	reg    Registry
	cm     *ConnManager
	store  *fakeStore
	router *Router
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	reg := NewMemoryRegistry()
	cm := NewConnManager()
	fanout := NewFanout(1, 64)
	t.Cleanup(fanout.Close)
	store := &fakeStore{}
	return &routerFixture{
		reg:    reg,
		cm:     cm,
		store:  store,
		router: NewRouter(reg, cm, fanout, store),
	}
}

// connect binds and registers a user on a fresh connection.
func (fx *routerFixture) connect(userID, connID, name string) *Client {
	c := newTestClient(connID)
	c.UserID = userID
	c.DisplayName = name
	fx.cm.Add(c)
	fx.reg.Register(userID, connID, name)
	return c
}

func (fx *routerFixture) send(c *Client, p *SendPayload) error {
	return fx.router.HandleSend(context.Background(), c, p, "trace-1")
}

func decodeReceive(t *testing.T, f *Frame) *message.Message {
	t.Helper()
	m, err := decode.Decode[message.Message](f.Payload)
	if err != nil {
		t.Fatalf("decode receive payload: %v", err)
	}
	return m
}

func TestBroadcastReachesEveryone(t *testing.T) {
	fx := newRouterFixture(t)
	a := fx.connect("u1", "s1", "Ann")
	b := fx.connect("u2", "s2", "Bob")
	c := fx.connect("u3", "s3", "Cid")

	if err := fx.send(a, &SendPayload{Body: "hello room"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	for _, cl := range []*Client{a, b, c} {
		f := recvFrameOfType(t, cl, FrameReceive)
		m := decodeReceive(t, f)
		if m.Body != "hello room" || m.SenderID != "u1" || m.ReceiverID != nil {
			t.Errorf("conn %s got %+v", cl.ConnID, m)
		}
		expectNoFrameOfType(t, cl, FrameReceive)
	}
}

func TestDirectedDelivery(t *testing.T) {
	fx := newRouterFixture(t)
	a := fx.connect("u1", "s1", "Ann")
	b := fx.connect("u2", "s2", "Bob")
	// u3 is offline: no connection, no registry entry.

	if err := fx.send(a, &SendPayload{ReceiverID: strptr("u2"), Body: "hi bob"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	bm := decodeReceive(t, recvFrameOfType(t, b, FrameReceive))
	if bm.Body != "hi bob" || bm.ReceiverID == nil || *bm.ReceiverID != "u2" {
		t.Errorf("receiver got %+v", bm)
	}
	// sender always gets the echo
	am := decodeReceive(t, recvFrameOfType(t, a, FrameReceive))
	if am.ID != bm.ID {
		t.Errorf("echo id %d != delivered id %d", am.ID, bm.ID)
	}
	expectNoFrameOfType(t, b, FrameReceive)
}

func TestOfflineReceiverStillPersists(t *testing.T) {
	fx := newRouterFixture(t)
	a := fx.connect("u1", "s1", "Ann")

	if err := fx.send(a, &SendPayload{ReceiverID: strptr("u9"), Body: "anyone there"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	m := decodeReceive(t, recvFrameOfType(t, a, FrameReceive))
	if m.ID == 0 {
		t.Error("persisted message has no id")
	}
	if fx.store.count() != 1 {
		t.Errorf("store inserts = %d, want 1", fx.store.count())
	}
}

func TestSelfSendEmitsOnce(t *testing.T) {
	fx := newRouterFixture(t)
	a := fx.connect("u1", "s1", "Ann")

	if err := fx.send(a, &SendPayload{ReceiverID: strptr("u1"), Body: "note to self"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	recvFrameOfType(t, a, FrameReceive)
	expectNoFrameOfType(t, a, FrameReceive)
}

func TestPersistFailureAbortsFanout(t *testing.T) {
	fx := newRouterFixture(t)
	a := fx.connect("u1", "s1", "Ann")
	b := fx.connect("u2", "s2", "Bob")
	fx.store.fail = true

	if err := fx.send(a, &SendPayload{ReceiverID: strptr("u2"), Body: "lost"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	// failure surfaces to the sender, nothing is fanned out
	recvFrameOfType(t, a, FrameError)
	expectNoFrameOfType(t, a, FrameReceive)
	expectNoFrameOfType(t, b, FrameReceive)
}

func TestSenderSpoofRejected(t *testing.T) {
	fx := newRouterFixture(t)
	a := fx.connect("u1", "s1", "Ann")
	b := fx.connect("u2", "s2", "Bob")

	err := fx.send(a, &SendPayload{SenderID: "u2", ReceiverID: strptr("u2"), Body: "as bob"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	recvFrameOfType(t, a, FrameError)
	expectNoFrameOfType(t, b, FrameReceive)
	if fx.store.count() != 0 {
		t.Errorf("spoofed message persisted, inserts = %d", fx.store.count())
	}
}

func TestSendBeforeJoinDropped(t *testing.T) {
	fx := newRouterFixture(t)
	c := newTestClient("s1")
	fx.cm.Add(c)

	if err := fx.send(c, &SendPayload{Body: "hello"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	recvFrameOfType(t, c, FrameError)
	if fx.store.count() != 0 {
		t.Error("unbound send persisted")
	}
}

func TestEmptySendDropped(t *testing.T) {
	fx := newRouterFixture(t)
	a := fx.connect("u1", "s1", "Ann")

	if err := fx.send(a, &SendPayload{}); err != nil {
		t.Fatalf("send: %v", err)
	}
	recvFrameOfType(t, a, FrameError)
	if fx.store.count() != 0 {
		t.Error("empty send persisted")
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	// 2-byte runes, so an odd cut lands mid-rune unless adjusted
	multi := strings.Repeat("é", 40)
	got := truncate(multi, 63)
	if !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid utf8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long string not marked truncated: %q", got)
	}
	if short := truncate("hello", 64); short != "hello" {
		t.Errorf("short string altered: %q", short)
	}
}
