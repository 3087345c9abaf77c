package models

import "encoding/json"

// Client -> server event names.
const (
	EventJoinApp         = "join_app"
	EventGetUsersDetails = "get_users_details"
	EventGetRecentChats  = "get_recent_chats"
	EventGetHistory      = "get_history"
	EventSendMessage     = "send_message"
	EventMarkAsRead      = "mark_as_read"
	EventTyping          = "typing"
	EventStopTyping      = "stop_typing"
	EventCreateGroup     = "create_group"
	EventCallUser        = "callUser"
	EventAnswerCall      = "answerCall"
	EventEndCall         = "endCall"
)

// Server -> client event names.
const (
	EventMe                  = "me"
	EventUserDetails         = "user_details"
	EventUsersDetailsUpdated = "users_details_updated"
	EventAvatarUpdated       = "avatar_updated"
	EventOnlineUsersUpdated  = "online_users_updated"
	EventRecentChatsList     = "recent_chats_list"
	EventUserGroups          = "user_groups"
	EventNewGroupCreated     = "new_group_created"
	EventReceiveMessage      = "receive_message"
	EventChatHistory         = "chat_history"
	EventMessagesStatus      = "messages_status_updated"
	EventUserTyping          = "user_typing"
	EventUserStopTyping      = "user_stop_typing"
	EventCallAccepted        = "callAccepted"
	EventCallEnded           = "callEnded"
	EventSessionReplaced     = "session_replaced"
	EventError               = "error"
)

// Envelope is the wire frame for inbound events. Data is decoded per event
// kind once the kind is known.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OutEvent is the wire frame for outbound events.
type OutEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type SendMessageRequest struct {
	Recipient string `json:"recipient,omitempty"`
	GroupID   int64  `json:"groupId,omitempty"`
	Content   string `json:"content" validate:"required"`
	Time      string `json:"time"`
	Type      string `json:"type" validate:"required,oneof=text image"`
}

type MarkAsReadRequest struct {
	RoomID string `json:"roomId" validate:"required"`
}

type TypingRequest struct {
	RoomID string `json:"roomId" validate:"required"`
}

type CreateGroupRequest struct {
	GroupName string   `json:"groupName" validate:"required"`
	Members   []string `json:"members" validate:"required,min=1,dive,required"`
}

type CallUserRequest struct {
	UserToCall string          `json:"userToCall" validate:"required"`
	SignalData json.RawMessage `json:"signalData"`
	From       string          `json:"from"`
	Name       string          `json:"name"`
}

type AnswerCallRequest struct {
	Signal json.RawMessage `json:"signal"`
	To     string          `json:"to" validate:"required"`
}

type EndCallRequest struct {
	To string `json:"to" validate:"required"`
}

type ChatHistoryPayload struct {
	RoomID   string    `json:"roomId"`
	Messages []Message `json:"messages"`
}

type StatusUpdatePayload struct {
	RoomID          string         `json:"roomId"`
	UpdatedMessages []StatusUpdate `json:"updatedMessages"`
}

type TypingPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type IncomingCallPayload struct {
	Signal json.RawMessage `json:"signal"`
	From   string          `json:"from"`
	Name   string          `json:"name"`
}

type AvatarUpdatedPayload struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

// ErrorPayload is sent to the requesting connection when an operation is
// rejected or a storage read/write fails.
type ErrorPayload struct {
	Op     string `json:"op"`
	Reason string `json:"reason"`
}
