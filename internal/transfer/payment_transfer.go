package transfer

import "time"

type PaymentEvent struct {
	ID        string `json:"id"`
	EventType string `json:"eventType"`
	CreatedAt int64  `json:"created_at"`
	Object    struct {
		ID      string `json:"id"`
		Product struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Credits int64  `json:"credits"`
		} `json:"product"`
		Customer struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"customer"`
		Status               string    `json:"status"`
		CurrentPeriodEndDate time.Time `json:"current_period_end_date"`
	} `json:"object"`
}
