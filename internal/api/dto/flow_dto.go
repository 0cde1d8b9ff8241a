package dto

// ScoreRequest optionally overrides the caller's preferred language.
type ScoreRequest struct {
	Language string `json:"language"`
}

// BatchScoreRequest payload for POST /spokes/score.
type BatchScoreRequest struct {
	SpokeIDs []string `json:"spoke_ids"`
	Language string   `json:"language"`
}

// ErrorBody mirrors the error envelope for per-item failures.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// BatchScoreItem is one result of a batch scoring run.
type BatchScoreItem struct {
	SpokeID string     `json:"spoke_id"`
	Result  any        `json:"result,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// BatchScoreResponse summarizes a batch scoring run.
type BatchScoreResponse struct {
	Items     []BatchScoreItem `json:"items"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
}
