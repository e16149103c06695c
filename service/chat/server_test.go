package chat

import (
	"testing"

	"LoginChat/tools/decode"
)

// End-to-end over the dispatcher: two users join, presence shows both,
// a directed send lands on both ends and is durably stored.
func TestJoinSendScenario(t *testing.T) {
	store := &fakeStore{}
	srv := NewServer(Options{
		NodeID:             "node_test",
		Store:              store,
		AllowAnonymousJoin: true,
	})
	t.Cleanup(srv.Close)

	a := newTestClient("s1")
	b := newTestClient("s2")
	srv.ConnMgr().Add(a)
	srv.ConnMgr().Add(b)
	ctx := &Context{S: srv}

	join := func(c *Client, user, name string) {
		t.Helper()
		f := &Frame{Type: FrameJoin, TraceID: "j-" + user, Payload: map[string]any{
			"user_id":      user,
			"display_name": name,
		}}
		if err := srv.Disp().Dispatch(ctx, f, c); err != nil {
			t.Fatalf("join dispatch: %v", err)
		}
	}

	join(a, "1", "Ann")
	join(b, "2", "Bob")

	recvFrameOfType(t, a, FrameJoinAck)
	recvFrameOfType(t, b, FrameJoinAck)

	// second join's announcement must show both users online
	var snapshot *OnlinePayload
	for i := 0; i < 2; i++ {
		f := recvFrameOfType(t, b, FrameOnline)
		p, err := decode.Decode[OnlinePayload](f.Payload)
		if err != nil {
			t.Fatalf("decode online: %v", err)
		}
		snapshot = p
		if p.Count == 2 {
			break
		}
	}
	if snapshot.Count != 2 {
		t.Fatalf("online count = %d, want 2", snapshot.Count)
	}

	sendFrame := &Frame{Type: FrameSend, TraceID: "m1", Payload: map[string]any{
		"receiver_id": "2",
		"body":        "hi",
	}}
	if err := srv.Disp().Dispatch(ctx, sendFrame, a); err != nil {
		t.Fatalf("send dispatch: %v", err)
	}

	for _, c := range []*Client{a, b} {
		f := recvFrameOfType(t, c, FrameReceive)
		m := decodeReceive(t, f)
		if m.Body != "hi" || m.SenderID != "1" {
			t.Errorf("conn %s got %+v", c.ConnID, m)
		}
		if m.ID == 0 {
			t.Errorf("conn %s got message without id", c.ConnID)
		}
	}
	if store.count() != 1 {
		t.Errorf("store inserts = %d, want 1", store.count())
	}
}

func TestDispatcherUnknownType(t *testing.T) {
	srv := NewServer(Options{Store: &fakeStore{}, AllowAnonymousJoin: true})
	t.Cleanup(srv.Close)

	if h := srv.Disp().GetHandler(FrameType("nope")); h != nil {
		t.Error("handler returned for unknown frame type")
	}
	err := srv.Disp().Dispatch(&Context{S: srv}, &Frame{Type: "nope"}, newTestClient("c1"))
	if err == nil {
		t.Error("dispatch of unknown type did not error")
	}
}
