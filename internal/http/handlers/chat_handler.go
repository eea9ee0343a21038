package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fashionstore/internal/services"
	"fashionstore/internal/validate"
)

type ChatHandler struct {
	Chat *services.ChatService
}

type chatPayload struct {
	Message string `json:"message"`
}

// Message handles POST /api/chatbot/message.
func (h *ChatHandler) Message(c *fiber.Ctx) error {
	var in chatPayload
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed payload"})
	}
	msg, ok := validate.Message(in.Message)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message must be 1-500 characters"})
	}
	return c.JSON(fiber.Map{
		"response":    h.Chat.Reply(msg),
		"suggestions": h.Chat.Suggestions(),
	})
}
