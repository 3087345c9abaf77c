package handlers

import (
	"context"

	"chat-server/internal/models"
)

// handleJoinApp registers the connection's identity: the session becomes the
// active one for its username, the user row is created lazily, group rooms
// are (re)subscribed, and messages that were waiting for this user are
// advanced to delivered.
func (h *Hub) handleJoinApp(ctx context.Context, s *Session, username string) {
	if username != s.Username {
		h.sendError(s, models.EventJoinApp, "username does not match authenticated identity")
		return
	}

	if displaced := h.Sessions.Register(s); displaced != nil {
		displaced.Send(models.EventSessionReplaced, nil)
		h.Rooms.LeaveAll(displaced.ID)
		displaced.Close()
	}
	h.Sessions.BroadcastPresence()

	user, err := h.users.EnsureUser(ctx, username)
	if err != nil {
		h.persistenceError(s, models.EventJoinApp, err)
		return
	}
	s.Send(models.EventUserDetails, user)

	groups, err := h.groups.GroupsForUser(ctx, username)
	if err != nil {
		h.persistenceError(s, models.EventJoinApp, err)
		return
	}
	for _, g := range groups {
		h.Rooms.Join(models.GroupRoomID(g.ID), s)
	}
	s.Send(models.EventUserGroups, groups)

	h.deliverPending(ctx, s, username)
}

// deliverPending advances this user's undelivered private messages and sends
// each original author one status batch per room.
func (h *Hub) deliverPending(ctx context.Context, s *Session, username string) {
	batches, err := h.messages.MarkDelivered(ctx, username)
	if err != nil {
		h.persistenceError(s, models.EventJoinApp, err)
		return
	}
	for _, batch := range batches {
		author, ok := h.Sessions.Lookup(batch.Author)
		if !ok {
			continue
		}
		author.Send(models.EventMessagesStatus, models.StatusUpdatePayload{
			RoomID:          batch.RoomID,
			UpdatedMessages: batch.Updates,
		})
	}
}

func (h *Hub) handleGetUsersDetails(ctx context.Context, s *Session, usernames []string) {
	users, err := h.users.UsersByNames(ctx, usernames)
	if err != nil {
		h.persistenceError(s, models.EventGetUsersDetails, err)
		return
	}
	s.Send(models.EventUsersDetailsUpdated, users)
}

func (h *Hub) handleGetRecentChats(ctx context.Context, s *Session) {
	partners, err := h.messages.RecentPartners(ctx, s.Username)
	if err != nil {
		h.persistenceError(s, models.EventGetRecentChats, err)
		return
	}
	if partners == nil {
		partners = []string{}
	}
	s.Send(models.EventRecentChatsList, partners)
}

// HandleDisconnect tears down everything scoped to the connection: its active
// call (counterpart only), room subscriptions, and registry entry. A stale,
// already-replaced connection changes nothing and broadcasts nothing.
func (h *Hub) HandleDisconnect(s *Session) {
	h.endCallOnDisconnect(s.ID)
	h.Rooms.LeaveAll(s.ID)
	if h.Sessions.Unregister(s) {
		h.Sessions.BroadcastPresence()
	}
}
