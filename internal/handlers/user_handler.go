package handlers

import (
	"log"
	"strings"

	"msgservice/internal/middleware"
	"msgservice/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for registration, login and the user
// directory.
type UserHandler struct {
	service *services.UserService
	auth    fiber.Handler
}

// NewUserHandler creates a new UserHandler. Directory routes are protected
// with tokens issued by tokens.
func NewUserHandler(service *services.UserService, tokens *services.TokenService) *UserHandler {
	return &UserHandler{
		service: service,
		auth:    middleware.AuthRequired(tokens),
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/login", h.HandleLogin)
	router.Post("/register", h.HandleRegister)

	userRoutes := router.Group("/users", h.auth)
	userRoutes.Get("/", h.HandleGetUsers)
	userRoutes.Put("/", h.HandleUpdateAvatar)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the request body for registration. Image is the
// base64 encoded avatar.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,alphanum"`
	Password string `json:"password" validate:"required"`
	Image    string `json:"image" validate:"required"`
}

func (r *RegisterRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// UpdateAvatarRequest represents the request body for PUT /users.
type UpdateAvatarRequest struct {
	Image string `json:"image" validate:"required"`
}

// HandleLogin checks credentials and issues a token.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	result, err := h.service.Login(c.UserContext(), req.Name, req.Password)
	if err != nil {
		log.Printf("Error during login for user %s: %v", req.Name, err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"ok":    true,
		"id":    result.ID,
		"name":  result.Name,
		"image": result.Image,
		"token": result.Token,
	})
}

// HandleRegister creates a new user. It does not log the user in.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	user, err := h.service.Register(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		Password: req.Password,
		Image:    req.Image,
	})
	if err != nil {
		log.Printf("Error registering user %s: %v", req.Name, err)
		return respondError(c, err)
	}

	log.Printf("User registered: %s (ID: %s)", user.Name, user.ID)
	return c.JSON(fiber.Map{"ok": true})
}

// HandleGetUsers lists every registered user.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"ok":    true,
		"users": users,
	})
}

// HandleUpdateAvatar replaces the caller's avatar.
func (h *UserHandler) HandleUpdateAvatar(c *fiber.Ctx) error {
	var req UpdateAvatarRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	if err := h.service.UpdateAvatar(c.UserContext(), middleware.IdentityFrom(c), req.Image); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}
