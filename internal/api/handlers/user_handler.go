package handlers

import (
	"github.com/gofiber/fiber/v2"
	config "github.com/listforge/listforge/configs"
	"github.com/listforge/listforge/internal/service"
)

type UserHandler struct {
	s   service.UserService
	cfg config.Config
}

func NewUserHandler(cfg config.Config, service service.UserService) *UserHandler {
	return &UserHandler{s: service, cfg: cfg}
}

func (h *UserHandler) GetUserInfo(c *fiber.Ctx) error {
	userID := GetUserID(c)

	userInfo, err := h.s.GetUserInfo(c.Context(), userID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(userInfo)
}

// DeleteAccount removes the user and, through the schema's cascades, their
// posts, keys, connections and coin account. The session cookie is cleared
// in the same response.
func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if err := h.s.RemoveUser(c.Context(), userID); err != nil {
		return errorJSON(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:   h.cfg.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	return c.SendStatus(fiber.StatusOK)
}
