package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chat-server/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestUploadFileReturnsRetrievablePath(t *testing.T) {
	req := require.New(t)
	t.Setenv("UPLOAD_DIR", t.TempDir())

	app := fiber.New()
	app.Post("/api/upload", UploadFileHandler())

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "cat.png")
	req.NoError(err)
	_, err = part.Write([]byte("png-bytes"))
	req.NoError(err)
	req.NoError(w.Close())

	httpReq := httptest.NewRequest("POST", "/api/upload", &body)
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(httpReq)
	req.NoError(err)
	req.Equal(fiber.StatusOK, resp.StatusCode)

	var out struct {
		FilePath string `json:"filePath"`
	}
	req.NoError(json.NewDecoder(resp.Body).Decode(&out))
	req.True(strings.HasPrefix(out.FilePath, "/uploads/"))
	req.True(strings.HasSuffix(out.FilePath, "cat.png"))

	stored := filepath.Join(os.Getenv("UPLOAD_DIR"), strings.TrimPrefix(out.FilePath, "/uploads/"))
	data, err := os.ReadFile(stored)
	req.NoError(err)
	req.Equal([]byte("png-bytes"), data)
}

func TestUploadWithoutFileIsRejected(t *testing.T) {
	req := require.New(t)
	t.Setenv("UPLOAD_DIR", t.TempDir())

	app := fiber.New()
	app.Post("/api/upload", UploadFileHandler())

	resp, err := app.Test(httptest.NewRequest("POST", "/api/upload", nil))
	req.NoError(err)
	req.Equal(fiber.StatusBadRequest, resp.StatusCode)
}

func TestConnectSendsConnectionID(t *testing.T) {
	req := require.New(t)
	h, _ := newTestHub()

	conn := &fakeConn{}
	s := NewSession("conn-9", "alice", conn)
	h.HandleConnect(s)

	greetings := conn.named(models.EventMe)
	req.Len(greetings, 1)
	req.Equal("conn-9", greetings[0].Data)
}
