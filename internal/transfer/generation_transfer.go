package transfer

// Wire types for the AI generation endpoint.

type GenerationAPIRequest struct {
	Prompt string `json:"prompt"`
	Logo   string `json:"logo,omitempty"` // base64, optional
}

type GenerationAPIResponse struct {
	Image       string `json:"image"` // base64 PNG
	Description string `json:"description"`
}
