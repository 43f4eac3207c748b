package transfer

import "github.com/listforge/listforge/internal/models"

type UserInfo struct {
	User     *models.User `json:"user"`
	Balance  int64        `json:"balance"`
	PlanTier string       `json:"plan_tier"`
}
