package handler

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/charity/internal/domain"
	"github.com/sumire/charity/internal/service"
)

const oauthStateCookie = "oauth_state"

type registerRequest struct {
	Email       string `json:"email" mod:"trim,lcase" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"displayName" mod:"trim" validate:"required,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" mod:"trim,lcase" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" mod:"trim" validate:"required"`
}

type sessionResponse struct {
	User   *domain.User       `json:"user"`
	Tokens *service.TokenPair `json:"tokens"`
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register creates a password account.
func (h *AuthHandler) Register(c echo.Context) error {
	body := Body[registerRequest](c)

	user, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Email:       body.Email,
		Password:    body.Password,
		DisplayName: body.DisplayName,
	})
	if err != nil {
		return err
	}
	return Created(c, "account created", user)
}

// Login exchanges credentials for a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	body := Body[loginRequest](c)

	user, tokens, err := h.auth.Login(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "signed in", sessionResponse{User: user, Tokens: tokens})
}

// Refresh generates a new token pair from a refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	body := Body[refreshRequest](c)

	tokens, err := h.auth.Refresh(c.Request().Context(), body.RefreshToken)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "token refreshed", tokens)
}

// GoogleRedirect redirects the user to Google's OAuth consent page.
func (h *AuthHandler) GoogleRedirect(c echo.Context) error {
	state, err := generateState()
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	return c.Redirect(http.StatusTemporaryRedirect, h.auth.GoogleAuthURL(state))
}

// GoogleCallback handles the OAuth callback from Google.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if err := validateOAuthState(c); err != nil {
		return err
	}

	code := c.QueryParam("code")
	if code == "" {
		return domain.NewAppError(domain.CodeMissingParam, "code is required",
			domain.WithDetails(map[string]any{"param": "code"}))
	}

	user, tokens, err := h.auth.GoogleCallback(c.Request().Context(), code)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "signed in", sessionResponse{User: user, Tokens: tokens})
}

// Me returns the currently authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	user, err := h.auth.GetUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "current user", user)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func validateOAuthState(c echo.Context) error {
	cookie, err := c.Cookie(oauthStateCookie)
	if err != nil {
		return domain.NewAppError(domain.CodeUnauthorized, "missing oauth state")
	}

	if state := c.QueryParam("state"); state == "" || state != cookie.Value {
		return domain.NewAppError(domain.CodeUnauthorized, "oauth state mismatch")
	}
	return nil
}
