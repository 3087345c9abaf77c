package models

// Message delivery statuses. A message only ever advances
// sent -> delivered -> read; read is terminal.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// Message content types.
const (
	TypeText  = "text"
	TypeImage = "image"
)

type Message struct {
	ID      int64  `json:"id"`
	RoomID  string `json:"roomId"`
	Author  string `json:"author"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Time    string `json:"time"`
	Status  string `json:"status"`
}

// StatusUpdate is one entry of a messages_status_updated batch.
type StatusUpdate struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// DeliveryBatch groups the status updates produced when a user comes online,
// keyed by the room and original author to notify.
type DeliveryBatch struct {
	RoomID  string
	Author  string
	Updates []StatusUpdate
}
