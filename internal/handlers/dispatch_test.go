package handlers

import (
	"context"
	"testing"

	"chat-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestJoinAppRejectsMismatchedIdentity(t *testing.T) {
	req := require.New(t)
	h, _ := newTestHub()

	conn := &fakeConn{}
	s := NewSession(uuid.New().String(), "alice", conn)
	h.Dispatch(context.Background(), s, frame(t, models.EventJoinApp, "mallory"))

	errs := conn.named(models.EventError)
	req.Len(errs, 1)
	_, ok := h.Sessions.Lookup("mallory")
	req.False(ok)
	_, ok = h.Sessions.Lookup("alice")
	req.False(ok)
}

func TestMalformedFrameIsRejected(t *testing.T) {
	req := require.New(t)
	h, _ := newTestHub()

	alice, aliceConn := connect(t, h, "alice")
	h.Dispatch(context.Background(), alice, []byte("not json"))

	errs := aliceConn.named(models.EventError)
	req.Len(errs, 1)
	req.Equal("dispatch", errs[0].Data.(models.ErrorPayload).Op)
}

func TestMissingRequiredFieldIsRejected(t *testing.T) {
	req := require.New(t)
	h, _ := newTestHub()

	alice, aliceConn := connect(t, h, "alice")
	h.Dispatch(context.Background(), alice, frame(t, models.EventMarkAsRead, map[string]string{}))

	errs := aliceConn.named(models.EventError)
	req.Len(errs, 1)
	req.Equal(models.EventMarkAsRead, errs[0].Data.(models.ErrorPayload).Op)
}

func TestUnknownEventIsRejected(t *testing.T) {
	req := require.New(t)
	h, _ := newTestHub()

	alice, aliceConn := connect(t, h, "alice")
	h.Dispatch(context.Background(), alice, frame(t, "frobnicate", map[string]string{}))

	errs := aliceConn.named(models.EventError)
	req.Len(errs, 1)
	req.Equal("frobnicate", errs[0].Data.(models.ErrorPayload).Op)
}

func TestGetUsersDetails(t *testing.T) {
	req := require.New(t)
	h, _ := newTestHub()

	alice, aliceConn := connect(t, h, "alice")
	connect(t, h, "bob")

	h.Dispatch(context.Background(), alice, frame(t, models.EventGetUsersDetails, []string{"bob", "ghost"}))

	details := aliceConn.named(models.EventUsersDetailsUpdated)
	req.Len(details, 1)
	users := details[0].Data.([]models.User)
	req.Len(users, 1)
	req.Equal("bob", users[0].Username)
}

func TestJoinAppSendsOwnDetails(t *testing.T) {
	req := require.New(t)
	h, _ := newTestHub()

	_, aliceConn := connect(t, h, "alice")

	details := aliceConn.named(models.EventUserDetails)
	req.Len(details, 1)
	req.Equal("alice", details[0].Data.(*models.User).Username)
}
