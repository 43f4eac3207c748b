package handlers

import (
	"log/slog"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/listforge/listforge/internal/service"
	"github.com/listforge/listforge/internal/transfer"
)

type PostHandler struct {
	s service.WorkflowService
}

func NewPostHandler(service service.WorkflowService) *PostHandler {
	return &PostHandler{s: service}
}

func (h *PostHandler) GeneratePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	prompt := c.FormValue("prompt")
	if prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No prompt provided",
		})
	}

	var logo *multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		if files := form.File["logo"]; len(files) > 0 {
			logo = files[0]
		}
	}

	post, err := h.s.Generate(c.Context(), userID, prompt, logo)
	if err != nil {
		slog.Info(err.Error())
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)
	status := c.Query("status")

	if postID != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postID), userID)
		if err != nil {
			return errorJSON(c, err)
		}

		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.Context(), userID, status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) ApprovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	post, err := h.s.Approve(c.Context(), userID, req.PostID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) RejectPost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	post, err := h.s.Reject(c.Context(), userID, req.PostID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) SchedulePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	post, err := h.s.Schedule(c.Context(), userID, req.PostID, req.ScheduledAt, req.Targets)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) PublishPost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	post, err := h.s.PublishNow(c.Context(), userID, req.PostID, req.Targets)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) UpdateDescription(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.DescriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	post, err := h.s.EditDescription(c.Context(), userID, req.PostID, req.Description)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) PublishHistory(c *fiber.Ctx) error {
	userID := GetUserID(c)

	history, err := h.s.History(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list publish history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(history)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), userID, int64(postID))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}
