package services

import (
	"context"
	"sort"

	"chat-server/internal/db"
	"chat-server/internal/models"
)

type ChatService struct{}

func NewChatService() *ChatService {
	return &ChatService{}
}

// SaveMessage persists a message and fills in its gateway-assigned id.
func (s *ChatService) SaveMessage(ctx context.Context, msg *models.Message) error {
	query := `INSERT INTO messages (room_id, author, content, type, time, status) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return db.Pool.QueryRow(ctx, query, msg.RoomID, msg.Author, msg.Content, msg.Type, msg.Time, msg.Status).Scan(&msg.ID)
}

// History returns the full message history of a room, ordered by id ascending.
func (s *ChatService) History(ctx context.Context, roomID string) ([]models.Message, error) {
	query := `SELECT id, room_id, author, content, type, time, status FROM messages WHERE room_id = $1 ORDER BY id ASC`
	rows, err := db.Pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Author, &m.Content, &m.Type, &m.Time, &m.Status); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkDelivered advances every pending private message addressed to username
// from sent to delivered and returns the updates grouped by room and author,
// so each original author can be notified with a single batch per room.
// A single statement does the transition: the status predicate on the UPDATE
// means a row a concurrent mark_as_read or registration already advanced is
// left alone, and the returned set is exactly what changed here.
func (s *ChatService) MarkDelivered(ctx context.Context, username string) ([]models.DeliveryBatch, error) {
	head, tail := models.PrivateRoomPatterns(username)

	query := `UPDATE messages SET status = $1 WHERE status = $2 AND author <> $3 AND (room_id LIKE $4 OR room_id LIKE $5) RETURNING id, room_id, author`
	rows, err := db.Pool.Query(ctx, query, models.StatusDelivered, models.StatusSent, username, head, tail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type roomAuthor struct{ room, author string }
	var order []roomAuthor
	grouped := make(map[roomAuthor][]models.StatusUpdate)
	for rows.Next() {
		var id int64
		var key roomAuthor
		if err := rows.Scan(&id, &key.room, &key.author); err != nil {
			return nil, err
		}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], models.StatusUpdate{ID: id, Status: models.StatusDelivered})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, nil
	}

	batches := make([]models.DeliveryBatch, 0, len(order))
	for _, key := range order {
		updates := grouped[key]
		// RETURNING order is unspecified.
		sort.Slice(updates, func(i, j int) bool { return updates[i].ID < updates[j].ID })
		batches = append(batches, models.DeliveryBatch{RoomID: key.room, Author: key.author, Updates: updates})
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].Updates[0].ID < batches[j].Updates[0].ID })
	return batches, nil
}

// MarkRead advances every message in the room authored by author that is not
// yet read, and returns the ids that changed. The author predicate keeps a
// reader from ever marking their own messages.
func (s *ChatService) MarkRead(ctx context.Context, roomID, author string) ([]models.StatusUpdate, error) {
	query := `UPDATE messages SET status = $1 WHERE room_id = $2 AND author = $3 AND status <> $1 RETURNING id`
	rows, err := db.Pool.Query(ctx, query, models.StatusRead, roomID, author)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var updates []models.StatusUpdate
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		updates = append(updates, models.StatusUpdate{ID: id, Status: models.StatusRead})
	}
	return updates, rows.Err()
}

// RecentPartners lists the usernames this user has private history with,
// most recent conversation first.
func (s *ChatService) RecentPartners(ctx context.Context, username string) ([]string, error) {
	head, tail := models.PrivateRoomPatterns(username)

	query := `SELECT room_id, MAX(id) AS last_id FROM messages WHERE room_id LIKE $1 OR room_id LIKE $2 GROUP BY room_id ORDER BY last_id DESC`
	rows, err := db.Pool.Query(ctx, query, head, tail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []string
	for rows.Next() {
		var roomID string
		var lastID int64
		if err := rows.Scan(&roomID, &lastID); err != nil {
			return nil, err
		}
		if peer, ok := models.PrivateRoomPeer(roomID, username); ok {
			partners = append(partners, peer)
		}
	}
	return partners, rows.Err()
}
