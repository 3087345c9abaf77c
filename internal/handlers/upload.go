package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"chat-server/internal/models"
	"chat-server/internal/services"
	"chat-server/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// UploadFileHandler accepts a multipart file (field name "file"), stores it
// under the upload dir, and returns its retrievable path. Image messages
// carry this path as their content.
func UploadFileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
		}

		uploadDir := utils.GetEnv("UPLOAD_DIR", "uploads")
		if err := os.MkdirAll(uploadDir, 0755); err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create upload dir"})
		}

		filename := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(fileHeader.Filename))
		destPath := filepath.Join(uploadDir, filename)

		if err := c.SaveFile(fileHeader, destPath); err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save file"})
		}

		return c.Status(http.StatusOK).JSON(fiber.Map{"filePath": "/uploads/" + filename})
	}
}

// UploadAvatarHandler stores an avatar image (field name "avatar"), records
// its URL on the user, and broadcasts the change to every session.
func UploadAvatarHandler(userService *services.UserService, hub *Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.Locals("username").(string)

		fileHeader, err := c.FormFile("avatar")
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
		}

		uploadDir := filepath.Join(utils.GetEnv("UPLOAD_DIR", "uploads"), "avatars")
		if err := os.MkdirAll(uploadDir, 0755); err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create upload dir"})
		}

		ext := filepath.Ext(fileHeader.Filename)
		filename := fmt.Sprintf("%s_%d%s", username, time.Now().UnixNano(), ext)
		destPath := filepath.Join(uploadDir, filename)

		if err := c.SaveFile(fileHeader, destPath); err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save file"})
		}

		avatarURL := "/uploads/avatars/" + filename
		if err := userService.SetAvatar(c.Context(), username, avatarURL); err != nil {
			_ = os.Remove(destPath)
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update avatar"})
		}

		hub.Sessions.BroadcastAll(models.EventAvatarUpdated, models.AvatarUpdatedPayload{
			Username:  username,
			AvatarURL: avatarURL,
		})

		return c.JSON(fiber.Map{"username": username, "avatarUrl": avatarURL})
	}
}
