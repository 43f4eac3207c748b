package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/listforge/listforge/configs"
	"github.com/listforge/listforge/internal/service"
	"github.com/listforge/listforge/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const sessionDuration = 24 * time.Hour

type AuthHandler struct {
	s   service.AuthService
	cfg config.Config
}

func NewAuthHandler(cfg config.Config, service service.AuthService) *AuthHandler {
	return &AuthHandler{s: service, cfg: cfg}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	oauthCfg := &oauth2.Config{
		ClientID:    h.cfg.GoogleClientID,
		RedirectURL: h.cfg.GoogleRedirectURI,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return c.Redirect(oauthCfg.AuthCodeURL("listforge-login", oauth2.AccessTypeOffline))
}

func (h *AuthHandler) LoginCallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")

	userID, err := h.s.LoginCallback(c.Context(), code)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to complete sign in",
		})
	}

	token, err := utils.GenerateToken(h.cfg.SecretKey, strconv.FormatInt(userID, 10), sessionDuration)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to complete sign in",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   false,
		SameSite: fiber.CookieSameSiteNoneMode,
		Path:     "/",
		Expires:  time.Now().Add(sessionDuration),
	})

	return c.Redirect(h.cfg.FrontendURL, fiber.StatusTemporaryRedirect)
}
