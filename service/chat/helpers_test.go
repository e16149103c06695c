package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"LoginChat/module/message"
)

const frameWait = 500 * time.Millisecond

func newTestClient(connID string) *Client {
	return NewClient(connID, nil, 16)
}

// recvFrameOfType reads frames from the client's send queue until one of
// the wanted type arrives, failing the test on timeout.
func recvFrameOfType(t *testing.T, c *Client, want FrameType) *Frame {
	t.Helper()
	deadline := time.After(frameWait)
	for {
		select {
		case data := <-c.Send:
			f, err := ParseFrameJSON(data)
			if err != nil {
				t.Fatalf("bad frame on conn %s: %v", c.ConnID, err)
			}
			if f.Type == want {
				return f
			}
		case <-deadline:
			t.Fatalf("no %s frame on conn %s", want, c.ConnID)
			return nil
		}
	}
}

// expectNoFrameOfType drains the queue for a short window and fails if a
// frame of the given type shows up.
func expectNoFrameOfType(t *testing.T, c *Client, reject FrameType) {
	t.Helper()
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case data := <-c.Send:
			f, err := ParseFrameJSON(data)
			if err != nil {
				t.Fatalf("bad frame on conn %s: %v", c.ConnID, err)
			}
			if f.Type == reject {
				t.Fatalf("unexpected %s frame on conn %s: %+v", reject, c.ConnID, f.Payload)
			}
		case <-deadline:
			return
		}
	}
}

type fakeStore struct {
	mu       sync.Mutex
	fail     bool
	nextID   int64
	inserted []*message.Message
}

func (s *fakeStore) InsertMessage(_ context.Context, senderID string, receiverID *string, body string, attachmentURL, attachmentKind *string) (*message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("store unavailable")
	}
	s.nextID++
	m := &message.Message{
		ID:             s.nextID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Body:           body,
		AttachmentURL:  attachmentURL,
		AttachmentKind: attachmentKind,
		CreatedAt:      time.Now(),
	}
	s.inserted = append(s.inserted, m)
	return m, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserted)
}

type fakeMirror struct {
	mu      sync.Mutex
	online  []string
	offline []string
}

func (m *fakeMirror) Online(_ context.Context, user, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = append(m.online, user)
	return nil
}

func (m *fakeMirror) Offline(_ context.Context, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = append(m.offline, user)
	return nil
}

func strptr(s string) *string { return &s }
