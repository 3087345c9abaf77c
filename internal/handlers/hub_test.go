package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"chat-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeConn records every emitted event in memory.
type fakeConn struct {
	mu     sync.Mutex
	events []models.OutEvent
	closed bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, v.(models.OutEvent))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) named(event string) []models.OutEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.OutEvent
	for _, e := range c.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// fakeStore is an in-memory persistence gateway with monotonically
// increasing ids.
type fakeStore struct {
	mu       sync.Mutex
	nextMsg  int64
	nextGrp  int64
	messages []*models.Message
	groups   []models.Group
	users    map[string]*models.User
	failing  bool
}

var errStorage = errors.New("storage down")

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*models.User)}
}

func (f *fakeStore) SaveMessage(_ context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errStorage
	}
	f.nextMsg++
	msg.ID = f.nextMsg
	stored := *msg
	f.messages = append(f.messages, &stored)
	return nil
}

func (f *fakeStore) History(_ context.Context, roomID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errStorage
	}
	var out []models.Message
	for _, m := range f.messages {
		if m.RoomID == roomID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkDelivered(_ context.Context, username string) ([]models.DeliveryBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errStorage
	}
	type key struct{ room, author string }
	var order []key
	grouped := make(map[key][]models.StatusUpdate)
	for _, m := range f.messages {
		if m.Status != models.StatusSent || m.Author == username {
			continue
		}
		if _, ok := models.PrivateRoomPeer(m.RoomID, username); !ok {
			continue
		}
		m.Status = models.StatusDelivered
		k := key{m.RoomID, m.Author}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], models.StatusUpdate{ID: m.ID, Status: models.StatusDelivered})
	}
	var batches []models.DeliveryBatch
	for _, k := range order {
		batches = append(batches, models.DeliveryBatch{RoomID: k.room, Author: k.author, Updates: grouped[k]})
	}
	return batches, nil
}

func (f *fakeStore) MarkRead(_ context.Context, roomID, author string) ([]models.StatusUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errStorage
	}
	var updates []models.StatusUpdate
	for _, m := range f.messages {
		if m.RoomID == roomID && m.Author == author && m.Status != models.StatusRead {
			m.Status = models.StatusRead
			updates = append(updates, models.StatusUpdate{ID: m.ID, Status: models.StatusRead})
		}
	}
	return updates, nil
}

func (f *fakeStore) RecentPartners(_ context.Context, username string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errStorage
	}
	seen := make(map[string]bool)
	var partners []string
	for i := len(f.messages) - 1; i >= 0; i-- {
		if peer, ok := models.PrivateRoomPeer(f.messages[i].RoomID, username); ok && !seen[peer] {
			seen[peer] = true
			partners = append(partners, peer)
		}
	}
	return partners, nil
}

func (f *fakeStore) CreateGroup(_ context.Context, name string, members []string) (*models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errStorage
	}
	f.nextGrp++
	g := models.Group{ID: f.nextGrp, Name: name, Members: members}
	f.groups = append(f.groups, g)
	return &g, nil
}

func (f *fakeStore) GroupsForUser(_ context.Context, username string) ([]models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errStorage
	}
	var out []models.Group
	for _, g := range f.groups {
		for _, m := range g.Members {
			if m == username {
				out = append(out, g)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) EnsureUser(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errStorage
	}
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	u := &models.User{Username: username}
	f.users[username] = u
	return u, nil
}

func (f *fakeStore) UsersByNames(_ context.Context, usernames []string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errStorage
	}
	var out []models.User
	for _, name := range usernames {
		if u, ok := f.users[name]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeStore) fail() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = true
}

func newTestHub() (*Hub, *fakeStore) {
	store := newFakeStore()
	return NewHub(store, store, store), store
}

func frame(t *testing.T, event string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	enc, err := json.Marshal(models.Envelope{Event: event, Data: raw})
	require.NoError(t, err)
	return enc
}

// connect opens a fake session and registers it via join_app.
func connect(t *testing.T, h *Hub, username string) (*Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	s := NewSession(uuid.New().String(), username, conn)
	h.Dispatch(context.Background(), s, frame(t, models.EventJoinApp, username))
	return s, conn
}
