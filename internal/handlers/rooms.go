package handlers

import "sync"

// RoomManager tracks which sessions receive a room's broadcasts. Only group
// rooms are materialized here; private messages are routed directly through
// the session registry.
type RoomManager struct {
	mu sync.RWMutex
	// roomID -> connID -> session
	rooms map[string]map[string]*Session
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[string]map[string]*Session)}
}

func (m *RoomManager) Join(roomID string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[roomID]; !ok {
		m.rooms[roomID] = make(map[string]*Session)
	}
	m.rooms[roomID][s.ID] = s
}

func (m *RoomManager) Leave(roomID, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conns, ok := m.rooms[roomID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(m.rooms, roomID)
		}
	}
}

// LeaveAll removes the connection from every room it is subscribed to.
func (m *RoomManager) LeaveAll(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for roomID, conns := range m.rooms {
		if _, ok := conns[connID]; ok {
			delete(conns, connID)
			if len(conns) == 0 {
				delete(m.rooms, roomID)
			}
		}
	}
}

// Broadcast sends an event to every session subscribed to the room, except
// the one identified by excludeConnID (empty means send to everyone).
func (m *RoomManager) Broadcast(roomID, excludeConnID, event string, data any) {
	m.mu.RLock()
	var sessions []*Session
	if conns, ok := m.rooms[roomID]; ok {
		sessions = make([]*Session, 0, len(conns))
		for id, s := range conns {
			if id == excludeConnID {
				continue
			}
			sessions = append(sessions, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		s.Send(event, data)
	}
}
