package services

import (
	"context"

	"chat-server/internal/db"
	"chat-server/internal/models"
)

type GroupService struct{}

func NewGroupService() *GroupService {
	return &GroupService{}
}

// CreateGroup persists a group with a fixed member set. Members are expected
// to be canonicalized (creator included, deduplicated) by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, name string, members []string) (*models.Group, error) {
	group := &models.Group{Name: name, Members: members}
	query := `INSERT INTO groups (name, members) VALUES ($1, $2) RETURNING id`
	if err := db.Pool.QueryRow(ctx, query, name, members).Scan(&group.ID); err != nil {
		return nil, err
	}
	return group, nil
}

// GroupsForUser returns every group whose member set contains username.
func (s *GroupService) GroupsForUser(ctx context.Context, username string) ([]models.Group, error) {
	query := `SELECT id, name, members FROM groups WHERE $1 = ANY(members) ORDER BY id ASC`
	rows, err := db.Pool.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Members); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
