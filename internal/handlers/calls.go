package handlers

import (
	"chat-server/internal/models"
	"sync"
)

// CallRegistry pairs the two connections of an in-flight call so a disconnect
// can notify just the counterpart instead of every session. Nothing here is
// persisted; the pairing lives and dies with the connections.
type CallRegistry struct {
	mu    sync.Mutex
	peers map[string]string // connID -> counterpart connID
}

func NewCallRegistry() *CallRegistry {
	return &CallRegistry{peers: make(map[string]string)}
}

// Link pairs two connections, dropping any pairing either side still held so
// a superseded call cannot leave a dangling entry behind.
func (c *CallRegistry) Link(a, b string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unlinkLocked(a)
	c.unlinkLocked(b)
	c.peers[a] = b
	c.peers[b] = a
}

// Unlink removes the pairing for connID and returns the counterpart, if any.
func (c *CallRegistry) Unlink(connID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unlinkLocked(connID)
}

func (c *CallRegistry) unlinkLocked(connID string) (string, bool) {
	peer, ok := c.peers[connID]
	if !ok {
		return "", false
	}
	delete(c.peers, connID)
	if c.peers[peer] == connID {
		delete(c.peers, peer)
	}
	return peer, true
}

// handleCallUser forwards an incoming-call notification to the target, if
// reachable. The payload is opaque; nothing inspects the signaling data. An
// unreachable target drops the call silently.
func (h *Hub) handleCallUser(s *Session, req models.CallUserRequest) {
	target, ok := h.Sessions.Lookup(req.UserToCall)
	if !ok {
		return
	}

	h.Calls.Link(s.ID, target.ID)
	target.Send(models.EventCallUser, models.IncomingCallPayload{
		Signal: req.SignalData,
		From:   s.ID,
		Name:   s.Username,
	})
}

// handleAnswerCall forwards the answer payload straight to the original
// caller's connection, identified by the connection id carried in the offer.
func (h *Hub) handleAnswerCall(s *Session, req models.AnswerCallRequest) {
	caller, ok := h.Sessions.Get(req.To)
	if !ok {
		return
	}

	h.Calls.Link(s.ID, caller.ID)
	caller.Send(models.EventCallAccepted, req.Signal)
}

func (h *Hub) handleEndCall(s *Session, req models.EndCallRequest) {
	h.Calls.Unlink(s.ID)
	if target, ok := h.Sessions.Lookup(req.To); ok {
		h.Calls.Unlink(target.ID)
		target.Send(models.EventCallEnded, nil)
	}
}

// endCallOnDisconnect notifies only the counterpart of the disconnecting
// connection's active call, if there is one.
func (h *Hub) endCallOnDisconnect(connID string) {
	peerID, ok := h.Calls.Unlink(connID)
	if !ok {
		return
	}
	if peer, ok := h.Sessions.Get(peerID); ok {
		peer.Send(models.EventCallEnded, nil)
	}
}
