package handlers

import "chat-server/internal/models"

// relayTyping forwards an ephemeral typing signal to the other participants
// of the room, tagged with the sender. The server keeps no typing state and
// no timers; stopping is the sending client's contract.
func (h *Hub) relayTyping(s *Session, roomID, event string) {
	payload := models.TypingPayload{RoomID: roomID, Username: s.Username}

	if models.IsGroupRoom(roomID) {
		h.Rooms.Broadcast(roomID, s.ID, event, payload)
		return
	}

	peer, ok := models.PrivateRoomPeer(roomID, s.Username)
	if !ok {
		return
	}
	if target, ok := h.Sessions.Lookup(peer); ok {
		target.Send(event, payload)
	}
}
