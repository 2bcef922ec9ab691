package handler

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/newinfo363-byte/groupchat/internal/storage/s3"
)

// Object key prefixes per upload kind.
var uploadPrefixes = map[string]string{
	"avatar": "avatars",
	"image":  "images",
	"audio":  "audio",
}

type UploadHandler struct {
	store *s3.Storage
}

func NewUploadHandler(store *s3.Storage) *UploadHandler {
	return &UploadHandler{store: store}
}

// Upload stores a binary payload in the object store and returns its
// public URL. The key is sender id + timestamp + original extension, so
// concurrent uploads from the same user cannot collide.
// POST /api/v1/uploads/:kind (multipart field "file")
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	prefix, ok := uploadPrefixes[c.Params("kind")]
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "kind must be avatar, image or audio"})
	}
	userID, _ := c.Locals("user_id").(string)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "cannot read file"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "cannot read file"})
	}

	key := fmt.Sprintf("%s/%s-%d%s", prefix, userID, time.Now().UnixNano(), filepath.Ext(fileHeader.Filename))
	contentType := fileHeader.Header.Get("Content-Type")

	url, err := h.store.Put(c.Context(), key, contentType, data)
	if err != nil {
		log.Printf("[Upload] %s from %s failed: %v", key, userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "upload failed"})
	}

	return c.Status(201).JSON(fiber.Map{"url": url})
}
