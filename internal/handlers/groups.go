package handlers

import (
	"context"

	"chat-server/internal/models"

	"github.com/samber/lo"
)

// handleCreateGroup persists a group with the canonical member set (creator
// included, duplicates removed), subscribes every reachable member to the new
// room, and notifies each of them once. Offline members pick the group up
// from storage on their next registration.
func (h *Hub) handleCreateGroup(ctx context.Context, s *Session, req models.CreateGroupRequest) {
	members := lo.Uniq(append([]string{s.Username}, req.Members...))

	group, err := h.groups.CreateGroup(ctx, req.GroupName, members)
	if err != nil {
		h.persistenceError(s, models.EventCreateGroup, err)
		return
	}

	roomID := models.GroupRoomID(group.ID)
	for _, member := range members {
		sess, ok := h.Sessions.Lookup(member)
		if !ok {
			continue
		}
		h.Rooms.Join(roomID, sess)
		sess.Send(models.EventNewGroupCreated, group)
	}
}
