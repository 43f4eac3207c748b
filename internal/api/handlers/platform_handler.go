package handlers

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	config "github.com/listforge/listforge/configs"
	"github.com/listforge/listforge/internal/service"
)

type PlatformHandler struct {
	s   service.PlatformService
	cfg config.Config
}

func NewPlatformHandler(cfg config.Config, service service.PlatformService) *PlatformHandler {
	return &PlatformHandler{s: service, cfg: cfg}
}

func (h *PlatformHandler) ConnectListing(c *fiber.Ctx) error {
	params := url.Values{}
	params.Add("client_id", h.cfg.ListingClientID)
	params.Add("redirect_uri", h.cfg.ListingRedirectURI)
	params.Add("response_type", "code")
	params.Add("scope", "listings.publish")

	fullURL := fmt.Sprintf("%s/oauth/authorize?%s", h.cfg.ListingAPIURL, params.Encode())
	return c.Redirect(fullURL)
}

func (h *PlatformHandler) CallbackHandler(c *fiber.Ctx) error {
	userID := GetUserID(c)
	code := c.Query("code")

	err := h.s.ConnectCallback(c.Context(), code, userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to connect listing account",
		})
	}

	return c.Redirect(h.cfg.FrontendURL, fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) GetConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)

	conn, err := h.s.GetConnection(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to get listing connection",
		})
	}
	if conn == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No listing account connected",
		})
	}

	return c.Status(fiber.StatusOK).JSON(conn)
}

func (h *PlatformHandler) DeleteConnection(c *fiber.Ctx) error {
	userID := GetUserID(c)
	connID := c.QueryInt("id", 0)

	err := h.s.DeleteConnection(c.Context(), userID, int64(connID))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
