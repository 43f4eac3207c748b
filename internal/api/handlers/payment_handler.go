package handlers

import (
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	config "github.com/listforge/listforge/configs"
	"github.com/listforge/listforge/internal/queue"
	"github.com/listforge/listforge/internal/service"
	"github.com/listforge/listforge/internal/transfer"
	"github.com/listforge/listforge/pkg/utils"
)

type PaymentHandler struct {
	s      service.BillingService
	cfg    config.Config
	client *asynq.Client
}

func NewPaymentHandler(cfg config.Config, service service.BillingService, client *asynq.Client) *PaymentHandler {
	return &PaymentHandler{s: service, cfg: cfg, client: client}
}

// PaymentWebhook verifies the provider signature over the raw body, records
// the subscription, and queues the credit grant. The grant is applied by the
// worker keyed on the event id, so a redelivered webhook is harmless.
func (h *PaymentHandler) PaymentWebhook(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get("X-Signature")

	if !utils.VerifySignature(body, signature, h.cfg.PaymentWebhookKey) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid signature",
		})
	}

	var requestData transfer.PaymentEvent
	if err := json.Unmarshal(body, &requestData); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse webhook payload",
		})
	}

	grant, err := h.s.HandleSubscription(c.Context(), &requestData)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}

	if grant != nil {
		err = queue.EnqueueCredits(h.client, queue.ApplyCreditsPayload{
			EventID: grant.EventID,
			UserID:  grant.UserID,
			Credits: grant.Credits,
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}
	}

	return c.SendStatus(fiber.StatusOK)
}
