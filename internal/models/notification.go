// internal/models/notification.go
package models

// DecisionEvent is what the lending platform receives when a decision is
// published. It carries the headline outcome only, never the raw bank data.
type DecisionEvent struct {
	EventID        string   `json:"eventId"`
	DecisionID     string   `json:"decisionId"`
	ApplicantID    string   `json:"applicantId"`
	Decision       string   `json:"decision"`
	Score          int      `json:"score"`
	ScoreBand      string   `json:"scoreBand"`
	ApprovedAmount *float64 `json:"approvedAmount,omitempty"`
	OfferedAmount  *float64 `json:"offeredAmount,omitempty"`
	Tenor          *int     `json:"tenor,omitempty"`
	PrimaryReason  string   `json:"primaryReason"`
	DecidedAt      string   `json:"decidedAt"`
	PublishedAt    string   `json:"publishedAt"`
}

// Publication statuses.
const (
	PublishStatusSent     = "sent"
	PublishStatusDisabled = "disabled"
)

// NewDecisionEvent derives the event body from a decision payload.
func NewDecisionEvent(eventID, decisionID string, resp *AnalyzeResponse, publishedAt string) DecisionEvent {
	ev := DecisionEvent{
		EventID:       eventID,
		DecisionID:    decisionID,
		ApplicantID:   resp.ApplicantID,
		Decision:      resp.Decision,
		Score:         resp.Score,
		ScoreBand:     resp.ScoreBand,
		PrimaryReason: resp.Explainability.PrimaryReason,
		DecidedAt:     resp.Timestamp,
		PublishedAt:   publishedAt,
	}
	if resp.ApprovalDetails != nil {
		amt, tenor := resp.ApprovalDetails.ApprovedAmount, resp.ApprovalDetails.ApprovedTenor
		ev.ApprovedAmount = &amt
		ev.Tenor = &tenor
	}
	if resp.CounterOffer != nil {
		amt, tenor := resp.CounterOffer.OfferedAmount, resp.CounterOffer.OfferedTenor
		ev.OfferedAmount = &amt
		ev.Tenor = &tenor
	}
	return ev
}
