package handlers

import (
	"msgservice/internal/middleware"
	"msgservice/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// MessageHandler handles HTTP requests for messages.
type MessageHandler struct {
	service *services.MessageService
	auth    fiber.Handler
}

// NewMessageHandler creates a new MessageHandler. Every route requires a
// token issued by tokens.
func NewMessageHandler(service *services.MessageService, tokens *services.TokenService) *MessageHandler {
	return &MessageHandler{
		service: service,
		auth:    middleware.AuthRequired(tokens),
	}
}

// RegisterRoutes registers the message routes with the Fiber app.
func (h *MessageHandler) RegisterRoutes(router fiber.Router) {
	messageRoutes := router.Group("/messages", h.auth)
	messageRoutes.Get("/", h.HandleGetMessages)
	messageRoutes.Post("/:toUserId", h.HandleSendMessage)
	messageRoutes.Delete("/:id", h.HandleDeleteMessage)
}

// SendMessageRequest represents the request body for sending a message.
// Image is an optional base64 encoded attachment.
type SendMessageRequest struct {
	Message string `json:"message" validate:"required"`
	Image   string `json:"image"`
}

// HandleGetMessages lists the messages addressed to the caller.
func (h *MessageHandler) HandleGetMessages(c *fiber.Ctx) error {
	messages, err := h.service.ListForRecipient(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"ok":       true,
		"messages": messages,
	})
}

// HandleSendMessage sends a message from the caller to :toUserId.
func (h *MessageHandler) HandleSendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	message, err := h.service.Send(c.UserContext(), middleware.IdentityFrom(c), services.SendInput{
		To:      utils.CopyString(c.Params("toUserId")), // params alias the request buffer
		Message: req.Message,
		Image:   req.Image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"ok":         true,
		"newMessage": message,
	})
}

// HandleDeleteMessage deletes a message by id. Unknown ids succeed.
func (h *MessageHandler) HandleDeleteMessage(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.IdentityFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
