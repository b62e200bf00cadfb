// internal/workers/credit/analyze-loan-application/models.go
package analyzeloanapplication

import "credit-decision-workers/internal/models"

// Input is the application payload, carried at the root of the job variables.
type Input = models.ApplicationRequest

type Output struct {
	DecisionID     string                  `json:"decisionId"`
	CreditDecision *models.AnalyzeResponse `json:"creditDecision"`

	KnockoutReason string `json:"-"` // empty when the application reached scoring
}
