package services

import (
	"context"
	"testing"

	"chat-server/internal/models"

	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsUnsafeUsernames(t *testing.T) {
	req := require.New(t)
	s := NewUserService()

	// Rejection happens before any storage access, so no pool is needed.
	for _, name := range []string{"bob--carol", "bob-carol", "%", "a_b%", "", "a b"} {
		_, err := s.Register(context.Background(), models.RegisterRequest{Username: name, Password: "secret"})
		req.ErrorIs(err, ErrInvalidUsername, name)
	}
}
