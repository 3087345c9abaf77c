package handlers

import (
	"context"
	"encoding/json"
	"log"

	"chat-server/internal/models"
	"chat-server/internal/utils"

	"github.com/go-playground/validator/v10"
)

// MessageStore is the slice of the persistence gateway the router needs.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	History(ctx context.Context, roomID string) ([]models.Message, error)
	MarkDelivered(ctx context.Context, username string) ([]models.DeliveryBatch, error)
	MarkRead(ctx context.Context, roomID, author string) ([]models.StatusUpdate, error)
	RecentPartners(ctx context.Context, username string) ([]string, error)
}

type GroupStore interface {
	CreateGroup(ctx context.Context, name string, members []string) (*models.Group, error)
	GroupsForUser(ctx context.Context, username string) ([]models.Group, error)
}

type UserStore interface {
	EnsureUser(ctx context.Context, username string) (*models.User, error)
	UsersByNames(ctx context.Context, usernames []string) ([]models.User, error)
}

// Hub owns the in-process coordination state and routes every inbound event.
// One Hub is constructed at startup and shared by all connections.
type Hub struct {
	Sessions *SessionRegistry
	Rooms    *RoomManager
	Calls    *CallRegistry

	messages MessageStore
	groups   GroupStore
	users    UserStore
	validate *validator.Validate
}

func NewHub(messages MessageStore, groups GroupStore, users UserStore) *Hub {
	return &Hub{
		Sessions: NewSessionRegistry(),
		Rooms:    NewRoomManager(),
		Calls:    NewCallRegistry(),
		messages: messages,
		groups:   groups,
		users:    users,
		validate: validator.New(),
	}
}

// Dispatch decodes one inbound frame and routes it to its handler. Payloads
// are decoded and validated here, once, at the boundary; handlers receive
// typed requests.
func (h *Hub) Dispatch(ctx context.Context, s *Session, raw []byte) {
	var env models.Envelope
	if err := utils.SafeJSONParse(raw, &env); err != nil {
		utils.LogError(err, "Dispatch parse")
		h.sendError(s, "dispatch", "malformed frame")
		return
	}

	switch env.Event {
	case models.EventJoinApp:
		username, ok := h.decodeString(s, env)
		if ok {
			h.handleJoinApp(ctx, s, username)
		}
	case models.EventGetUsersDetails:
		var usernames []string
		if err := json.Unmarshal(env.Data, &usernames); err != nil || len(usernames) == 0 {
			h.sendError(s, env.Event, "usernames required")
			return
		}
		h.handleGetUsersDetails(ctx, s, usernames)
	case models.EventGetRecentChats:
		// Payload carries a username but the authenticated identity wins.
		h.handleGetRecentChats(ctx, s)
	case models.EventGetHistory:
		roomID, ok := h.decodeString(s, env)
		if ok {
			h.handleGetHistory(ctx, s, roomID)
		}
	case models.EventSendMessage:
		var req models.SendMessageRequest
		if h.decodePayload(s, env, &req) {
			h.handleSendMessage(ctx, s, req)
		}
	case models.EventMarkAsRead:
		var req models.MarkAsReadRequest
		if h.decodePayload(s, env, &req) {
			h.handleMarkAsRead(ctx, s, req)
		}
	case models.EventTyping:
		var req models.TypingRequest
		if h.decodePayload(s, env, &req) {
			h.relayTyping(s, req.RoomID, models.EventUserTyping)
		}
	case models.EventStopTyping:
		var req models.TypingRequest
		if h.decodePayload(s, env, &req) {
			h.relayTyping(s, req.RoomID, models.EventUserStopTyping)
		}
	case models.EventCreateGroup:
		var req models.CreateGroupRequest
		if h.decodePayload(s, env, &req) {
			h.handleCreateGroup(ctx, s, req)
		}
	case models.EventCallUser:
		var req models.CallUserRequest
		if h.decodePayload(s, env, &req) {
			h.handleCallUser(s, req)
		}
	case models.EventAnswerCall:
		var req models.AnswerCallRequest
		if h.decodePayload(s, env, &req) {
			h.handleAnswerCall(s, req)
		}
	case models.EventEndCall:
		var req models.EndCallRequest
		if h.decodePayload(s, env, &req) {
			h.handleEndCall(s, req)
		}
	default:
		log.Printf("Unknown event: %s", env.Event)
		h.sendError(s, env.Event, "unknown event")
	}
}

// decodePayload unmarshals and validates an object payload, rejecting the
// request explicitly when required fields are absent.
func (h *Hub) decodePayload(s *Session, env models.Envelope, req any) bool {
	if err := json.Unmarshal(env.Data, req); err != nil {
		h.sendError(s, env.Event, "malformed payload")
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		h.sendError(s, env.Event, "invalid payload: "+err.Error())
		return false
	}
	return true
}

// decodeString handles the events whose payload is a bare JSON string.
func (h *Hub) decodeString(s *Session, env models.Envelope) (string, bool) {
	var value string
	if err := json.Unmarshal(env.Data, &value); err != nil || value == "" {
		h.sendError(s, env.Event, "string payload required")
		return "", false
	}
	return value, true
}

func (h *Hub) sendError(s *Session, op, reason string) {
	s.Send(models.EventError, models.ErrorPayload{Op: op, Reason: reason})
}

// persistenceError logs a failed gateway call and tells the requesting
// connection, so the client can distinguish pending from lost.
func (h *Hub) persistenceError(s *Session, op string, err error) {
	utils.LogError(err, op)
	h.sendError(s, op, "storage operation failed")
}
