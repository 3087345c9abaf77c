package handlers

import (
	"context"
	"testing"

	"chat-server/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCreateGroupCanonicalizesMembers(t *testing.T) {
	req := require.New(t)
	h, store := newTestHub()

	alice, _ := connect(t, h, "alice")
	_, bobConn := connect(t, h, "bob")
	_, carolConn := connect(t, h, "carol")

	// Creator listed redundantly, plus a duplicate member.
	h.Dispatch(context.Background(), alice, frame(t, models.EventCreateGroup, models.CreateGroupRequest{
		GroupName: "trio",
		Members:   []string{"bob", "carol", "alice", "bob"},
	}))

	req.Len(store.groups, 1)
	req.Equal([]string{"alice", "bob", "carol"}, store.groups[0].Members)

	for _, conn := range []*fakeConn{bobConn, carolConn} {
		created := conn.named(models.EventNewGroupCreated)
		req.Len(created, 1)
		group := created[0].Data.(*models.Group)
		req.Equal("trio", group.Name)
		req.Equal([]string{"alice", "bob", "carol"}, group.Members)
	}
}

func TestOfflineMemberReceivesGroupOnNextJoin(t *testing.T) {
	req := require.New(t)
	h, _ := newTestHub()

	alice, _ := connect(t, h, "alice")
	h.Dispatch(context.Background(), alice, frame(t, models.EventCreateGroup, models.CreateGroupRequest{
		GroupName: "later",
		Members:   []string{"bob"},
	}))

	// Bob was offline at creation time; he gets the group from storage now.
	_, bobConn := connect(t, h, "bob")

	groupLists := bobConn.named(models.EventUserGroups)
	req.Len(groupLists, 1)
	groups := groupLists[0].Data.([]models.Group)
	req.Len(groups, 1)
	req.Equal("later", groups[0].Name)

	// And his subscription is live: a group message reaches him.
	h.Dispatch(context.Background(), alice, frame(t, models.EventSendMessage, models.SendMessageRequest{
		GroupID: groups[0].ID,
		Content: "welcome",
		Time:    "11:00",
		Type:    models.TypeText,
	}))
	req.Len(bobConn.named(models.EventReceiveMessage), 1)
}
