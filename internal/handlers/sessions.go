package handlers

import (
	"sort"
	"sync"
	"time"

	"chat-server/internal/models"
	"chat-server/internal/utils"
)

// Conn is the slice of the websocket connection the coordination layer needs.
// Tests substitute an in-memory implementation.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Session is one authenticated client connection. The write lock serializes
// emits; the underlying websocket does not tolerate concurrent writes.
type Session struct {
	ID          string
	Username    string
	ConnectedAt time.Time

	conn Conn
	mu   sync.Mutex
}

func NewSession(id, username string, conn Conn) *Session {
	return &Session{ID: id, Username: username, ConnectedAt: time.Now(), conn: conn}
}

func (s *Session) Send(event string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(models.OutEvent{Event: event, Data: data}); err != nil {
		utils.LogError(err, "Send "+event)
	}
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.Close()
}

// SessionRegistry maps each username to its single active connection. It is
// the ground truth for reachability. Constructed once at startup and injected
// into everything that needs presence.
type SessionRegistry struct {
	mu     sync.RWMutex
	byConn map[string]*Session
	byUser map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		byConn: make(map[string]*Session),
		byUser: make(map[string]*Session),
	}
}

// Register makes the session the active one for its username. If another
// connection already held that identity, it is returned so the caller can
// notify and close it: last connection wins.
func (r *SessionRegistry) Register(s *Session) (displaced *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byUser[s.Username]; ok && prev.ID != s.ID {
		displaced = prev
		delete(r.byConn, prev.ID)
	}
	r.byConn[s.ID] = s
	r.byUser[s.Username] = s
	return displaced
}

// Lookup returns the active session for a username, if any.
func (r *SessionRegistry) Lookup(username string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byUser[username]
	return s, ok
}

// Get returns the session with the given connection id, if any.
func (r *SessionRegistry) Get(connID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byConn[connID]
	return s, ok
}

// Unregister removes the session if it is still the current mapping for its
// username. A connection that was already replaced must not evict the newer
// one. Reports whether the registry changed.
func (r *SessionRegistry) Unregister(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byConn[s.ID]; !ok {
		return false
	}
	delete(r.byConn, s.ID)
	if current, ok := r.byUser[s.Username]; ok && current.ID == s.ID {
		delete(r.byUser, s.Username)
	}
	return true
}

// OnlineUsernames returns the sorted set of currently reachable usernames.
func (r *SessionRegistry) OnlineUsernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	online := make([]string, 0, len(r.byUser))
	for username := range r.byUser {
		online = append(online, username)
	}
	sort.Strings(online)
	return online
}

// BroadcastAll sends an event to every registered session.
func (r *SessionRegistry) BroadcastAll(event string, data any) {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.byConn))
	for _, s := range r.byConn {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		s.Send(event, data)
	}
}

// BroadcastPresence pushes the current online set to every session. Called
// after every register and effective unregister.
func (r *SessionRegistry) BroadcastPresence() {
	r.BroadcastAll(models.EventOnlineUsersUpdated, r.OnlineUsernames())
}
