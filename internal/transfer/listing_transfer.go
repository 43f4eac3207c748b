package transfer

// Wire types for the external listing platform. The publish endpoint takes
// one request per invocation and accepts no idempotency key.

type ListingPublishRequest struct {
	Locations   []string `json:"locations"`
	MediaURL    string   `json:"media_url"`
	Description string   `json:"description"`
}

type ListingPublishResponse struct {
	Ref     string `json:"ref"`
	Message string `json:"message"`
}

type PublishResult struct {
	ExternalRef string `json:"external_ref"`
}

type ListingTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	AccountID    string `json:"account_id"`
	AccountName  string `json:"account_name"`
}
