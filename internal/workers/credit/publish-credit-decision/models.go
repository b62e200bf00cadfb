// internal/workers/credit/publish-credit-decision/models.go
package publishcreditdecision

import "credit-decision-workers/internal/models"

type Input struct {
	DecisionID     string                  `json:"decisionId"`
	CreditDecision *models.AnalyzeResponse `json:"creditDecision"`
}

type Output struct {
	EventID       string `json:"eventId"`
	MessageID     string `json:"messageId,omitempty"`
	PublishStatus string `json:"publishStatus"`
	PublishedAt   string `json:"publishedAt"`
}

const (
	StatusSent     = models.PublishStatusSent
	StatusDisabled = models.PublishStatusDisabled
)
