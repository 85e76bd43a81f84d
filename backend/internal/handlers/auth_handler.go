package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/user/tonpilot/backend/internal/auth"
	"github.com/user/tonpilot/backend/internal/models"
)

// AuthHandler serves gateway account signup and login.
type AuthHandler struct {
	accounts *auth.Accounts
	issuer   *auth.TokenIssuer
	log      *zap.Logger
}

// NewAuthHandler wires the account store and token issuer.
func NewAuthHandler(accounts *auth.Accounts, issuer *auth.TokenIssuer, log *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, issuer: issuer, log: log}
}

// SignupRequest defines the expected JSON body for signup.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest defines the expected JSON body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse defines the JSON response for successful auth.
type AuthResponse struct {
	Token    string          `json:"token"`
	User     *models.Account `json:"user"`
	IssuedAt time.Time       `json:"issued_at"`
}

// Signup handles account registration.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	req := new(SignupRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || strings.TrimSpace(req.Password) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password cannot be empty"})
	}

	acct, err := h.accounts.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username already taken"})
		}
		h.log.Error("signup failed", zap.String("username", req.Username), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create account"})
	}

	token, err := h.issuer.Generate(acct.ID, acct.Username)
	if err != nil {
		h.log.Error("token generation failed", zap.String("username", acct.Username), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Account created, but failed to generate token"})
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Token:    token,
		User:     acct,
		IssuedAt: time.Now(),
	})
}

// Login handles account authentication.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	req := new(LoginRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}

	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Password) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password cannot be empty"})
	}

	acct, err := h.accounts.Authenticate(req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid username or password"})
	}

	token, err := h.issuer.Generate(acct.ID, acct.Username)
	if err != nil {
		h.log.Error("token generation failed", zap.String("username", acct.Username), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.Status(fiber.StatusOK).JSON(AuthResponse{
		Token:    token,
		User:     acct,
		IssuedAt: time.Now(),
	})
}
