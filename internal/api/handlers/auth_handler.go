package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/crisphq/crisp-interview/internal/utils"
)

// AuthHandler issues reviewer tokens for the dashboard. The single
// reviewer credential is a bcrypt hash in the environment.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler { return &AuthHandler{} }

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	const op = "AuthHandler.Login"

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "password is required", err))
		return
	}

	hash := os.Getenv("REVIEWER_PASSWORD_HASH")
	secret := os.Getenv("JWT_SECRET")
	if hash == "" || secret == "" {
		writeError(c, utils.E(utils.CodeInternal, op, "reviewer login is not configured", nil))
		return
	}

	if err := utils.CheckPassword(hash, req.Password); err != nil {
		writeError(c, utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil))
		return
	}

	expires := time.Now().Add(12 * time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "reviewer",
		"role": "reviewer",
		"iat":  time.Now().Unix(),
		"exp":  expires.Unix(),
	})

	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to sign token", err))
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     signed,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
	})
}
