package handlers

import (
	"context"

	"chat-server/internal/models"
)

// handleSendMessage resolves the canonical room, computes the initial
// delivery status, persists the message, and fans the completed record out
// to sender and recipient(s).
func (h *Hub) handleSendMessage(ctx context.Context, s *Session, req models.SendMessageRequest) {
	if req.Recipient == "" && req.GroupID == 0 {
		h.sendError(s, models.EventSendMessage, "recipient or groupId required")
		return
	}

	msg := &models.Message{
		Author:  s.Username,
		Content: req.Content,
		Type:    req.Type,
		Time:    req.Time,
	}

	var recipient *Session
	if req.Recipient != "" {
		msg.RoomID = models.PrivateRoomID(s.Username, req.Recipient)
		// Reachability at send time decides sent vs delivered.
		if peer, ok := h.Sessions.Lookup(req.Recipient); ok {
			recipient = peer
			msg.Status = models.StatusDelivered
		} else {
			msg.Status = models.StatusSent
		}
	} else {
		// Group messages carry no per-member delivery tracking.
		msg.RoomID = models.GroupRoomID(req.GroupID)
		msg.Status = models.StatusSent
	}

	if err := h.messages.SaveMessage(ctx, msg); err != nil {
		h.persistenceError(s, models.EventSendMessage, err)
		return
	}

	if req.Recipient != "" {
		s.Send(models.EventReceiveMessage, msg)
		if recipient != nil {
			recipient.Send(models.EventReceiveMessage, msg)
		}
	} else {
		// The sender is subscribed to the group room, so no exclusion.
		h.Rooms.Broadcast(msg.RoomID, "", models.EventReceiveMessage, msg)
	}
}

func (h *Hub) handleGetHistory(ctx context.Context, s *Session, roomID string) {
	messages, err := h.messages.History(ctx, roomID)
	if err != nil {
		h.persistenceError(s, models.EventGetHistory, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	s.Send(models.EventChatHistory, models.ChatHistoryPayload{RoomID: roomID, Messages: messages})
}

// handleMarkAsRead advances the other party's messages in the room to read
// and notifies both the author and the reader with one batch. Group rooms
// have no read tracking, so anything that is not a private room of the
// reader is ignored.
func (h *Hub) handleMarkAsRead(ctx context.Context, s *Session, req models.MarkAsReadRequest) {
	author, ok := models.PrivateRoomPeer(req.RoomID, s.Username)
	if !ok {
		return
	}

	updates, err := h.messages.MarkRead(ctx, req.RoomID, author)
	if err != nil {
		h.persistenceError(s, models.EventMarkAsRead, err)
		return
	}
	if len(updates) == 0 {
		return
	}

	payload := models.StatusUpdatePayload{RoomID: req.RoomID, UpdatedMessages: updates}
	if authorSess, ok := h.Sessions.Lookup(author); ok {
		authorSess.Send(models.EventMessagesStatus, payload)
	}
	s.Send(models.EventMessagesStatus, payload)
}
