// internal/workers/credit/publish-credit-decision/handler.go
package publishcreditdecision

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"credit-decision-workers/internal/common/errors"
	"credit-decision-workers/internal/common/logger"
	"credit-decision-workers/internal/common/metrics"
	"credit-decision-workers/internal/models"
)

const (
	TaskType = "publish-credit-decision"

	decisionAttribute = "decision"
)

// SNSService is the subset of the SNS client used here.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config       *Config
	logger       logger.Logger
	snsClient    SNSService
	limiter      *rate.Limiter
	errorHandler *errors.ErrorHandler
	newID        func() string
	now          func() time.Time
}

// NewHandler builds the handler. snsClient may be nil when publishing is
// disabled.
func NewHandler(config *Config, snsClient SNSService, log logger.Logger) (*Handler, error) {
	if config.Enabled {
		if snsClient == nil {
			return nil, fmt.Errorf("sns client is required when publishing is enabled")
		}
		if config.TopicARN == "" {
			return nil, fmt.Errorf("topic ARN is required when publishing is enabled")
		}
	}

	limit := rate.Inf
	if config.RatePerSecond > 0 {
		limit = rate.Limit(config.RatePerSecond)
	}
	burst := int(config.RatePerSecond)
	if burst < 1 {
		burst = 1
	}

	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       l,
		snsClient:    snsClient,
		limiter:      rate.NewLimiter(limit, burst),
		errorHandler: errors.NewErrorHandler(l),
		newID:        func() string { return uuid.New().String() },
		now:          time.Now,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, job.Variables)
	if err != nil {
		bpmnErr := h.errorHandler.HandleJobError(ctx, client, job, err)
		timer.Done(bpmnErr.Code)
		return
	}

	if err := h.completeJob(client, job, output); err != nil {
		timer.Done(string(errors.ErrCodeInternal))
		return
	}
	timer.Done("")
}

// Execute decodes the job variables and publishes the decision event.
func (h *Handler) Execute(ctx context.Context, variables string) (*Output, error) {
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewParseError(err)
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	return h.execute(ctx, &input)
}

func validateInput(input *Input) error {
	switch {
	case input.DecisionID == "":
		return errors.NewApplicationValidationFailedError("decisionId: is required")
	case input.CreditDecision == nil:
		return errors.NewApplicationValidationFailedError("creditDecision: is required")
	case input.CreditDecision.ApplicantID == "":
		return errors.NewApplicationValidationFailedError("creditDecision.applicant_id: is required")
	case input.CreditDecision.Decision == "":
		return errors.NewApplicationValidationFailedError("creditDecision.decision: is required")
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	publishedAt := h.now().UTC().Format(time.RFC3339)
	event := models.NewDecisionEvent(h.newID(), input.DecisionID, input.CreditDecision, publishedAt)

	if !h.config.Enabled {
		h.logger.Info("decision publishing disabled", map[string]interface{}{
			"decisionId": input.DecisionID,
		})
		metrics.DecisionEventsPublished.WithLabelValues(StatusDisabled).Inc()
		return &Output{
			EventID:       event.EventID,
			PublishStatus: StatusDisabled,
			PublishedAt:   publishedAt,
		}, nil
	}

	if err := h.limiter.Wait(ctx); err != nil {
		return nil, errors.NewPublishTimeoutError(input.DecisionID)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	result, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			decisionAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Decision),
			},
		},
	})
	if err != nil {
		h.logger.Error("decision publish failed", map[string]interface{}{
			"decisionId": input.DecisionID,
			"error":      err.Error(),
		})
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewPublishTimeoutError(input.DecisionID)
		}
		return nil, errors.NewDecisionPublishFailedError(input.DecisionID, err)
	}

	metrics.DecisionEventsPublished.WithLabelValues(StatusSent).Inc()
	return &Output{
		EventID:       event.EventID,
		MessageID:     aws.ToString(result.MessageId),
		PublishStatus: StatusSent,
		PublishedAt:   publishedAt,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":        job.Key,
		"eventId":       output.EventID,
		"publishStatus": output.PublishStatus,
	})
	return nil
}
