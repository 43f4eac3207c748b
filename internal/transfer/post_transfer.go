package transfer

type GenerationRequest struct {
	Prompt string `json:"prompt" form:"prompt"`
}

type GenerationResult struct {
	ArtifactURL string `json:"artifact_url"`
	Description string `json:"description"`
}

type ActionRequest struct {
	PostID int64 `json:"post_id"`
}

type ScheduleRequest struct {
	PostID      int64    `json:"post_id"`
	ScheduledAt string   `json:"scheduled_at"`
	Targets     []string `json:"targets"`
}

type PublishRequest struct {
	PostID  int64    `json:"post_id"`
	Targets []string `json:"targets"`
}

type DescriptionRequest struct {
	PostID      int64  `json:"post_id"`
	Description string `json:"description"`
}
