// internal/workers/credit/analyze-loan-application/handler.go
package analyzeloanapplication

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"credit-decision-workers/internal/common/errors"
	"credit-decision-workers/internal/common/logger"
	"credit-decision-workers/internal/common/metrics"
	"credit-decision-workers/internal/common/observability"
	"credit-decision-workers/internal/common/validation"
	"credit-decision-workers/internal/credit/pipeline"
	"credit-decision-workers/internal/models"
)

const (
	TaskType = "analyze-loan-application"
)

// Evaluator runs the credit pipeline for one application.
type Evaluator interface {
	Evaluate(req *models.ApplicationRequest) (*pipeline.Outcome, error)
}

type HandlerOptions struct {
	Config        *Config
	Evaluator     Evaluator
	Schema        *validation.Schema // inputSchema from the activity registry
	Tracer        *observability.Tracer
	Observability *observability.Observability
	Logger        logger.Logger
}

type Handler struct {
	config       *Config
	evaluator    Evaluator
	schema       *validation.Schema
	tracer       *observability.Tracer
	obs          *observability.Observability
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	newID        func() string
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if opts.Schema == nil {
		return nil, fmt.Errorf("input schema is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = LoadConfig()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = observability.NewNoopTracer()
	}

	log := opts.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       cfg,
		evaluator:    opts.Evaluator,
		schema:       opts.Schema,
		tracer:       tracer,
		obs:          opts.Observability,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
		newID:        func() string { return uuid.New().String() },
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	timer := metrics.StartJob(TaskType)
	start := time.Now()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	ctx, span := h.tracer.StartJobSpan(ctx, "credit.analyze", job.Key, job.ProcessInstanceKey)
	defer span.End()

	output, err := h.Execute(ctx, job.Variables)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		bpmnErr := h.errorHandler.HandleJobError(ctx, client, job, err)
		timer.Done(bpmnErr.Code)
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
		return
	}

	decision := output.CreditDecision
	span.SetAttributes(
		attribute.String("credit.decision_id", output.DecisionID),
		attribute.String("credit.decision", decision.Decision),
		attribute.Int("credit.score", decision.Score),
		attribute.String("credit.score_band", decision.ScoreBand),
	)
	if output.KnockoutReason != "" {
		span.SetAttributes(attribute.String("credit.knockout_reason", output.KnockoutReason))
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		timer.Done(string(errors.ErrCodeInternal))
		return
	}
	timer.Done("")
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}

// Execute validates the raw job variables, runs the pipeline and returns the
// job output. Errors are *errors.StandardError values.
func (h *Handler) Execute(ctx context.Context, variables string) (*Output, error) {
	result, err := h.schema.ValidateJSON(variables)
	if err != nil {
		return nil, errors.NewParseError(err)
	}

	var input Input
	if result.Valid {
		if err := json.Unmarshal([]byte(variables), &input); err != nil {
			return nil, errors.NewParseError(err)
		}
		checkSemantics(&input, result)
	}
	if !result.Valid {
		h.logger.Warn("application rejected by validation", map[string]interface{}{
			"errors": result.GetErrorMessages(),
		})
		return nil, errors.NewApplicationValidationFailedError(strings.Join(result.GetErrorMessages(), "; ")).
			WithMetadata("validationErrors", result.Errors)
	}

	outcome, err := h.evaluate(ctx, &input)
	if err != nil {
		h.logger.Error("credit evaluation failed", map[string]interface{}{
			"applicantId": input.ApplicantID,
			"error":       err.Error(),
		})
		return nil, errors.NewCreditEvaluationFailedError(input.ApplicantID, err).
			WithMetadata("applicantId", input.ApplicantID)
	}

	resp := outcome.Response
	metrics.RecordDecision(resp.Decision, resp.Score, outcome.Knockout.ReasonCode, len(resp.ManualReviewReasons))

	return &Output{
		DecisionID:     h.newID(),
		CreditDecision: resp,
		KnockoutReason: outcome.Knockout.ReasonCode,
	}, nil
}

// checkSemantics adds the range rules the schema does not carry.
func checkSemantics(in *Input, result *validation.ValidationResult) {
	for _, v := range in.CheckTerms() {
		result.Add(v.Field, v.Message, "SEMANTIC")
	}
}

type evaluation struct {
	outcome *pipeline.Outcome
	err     error
}

// evaluate runs the pipeline under EvaluationTimeout. The pipeline itself has
// no cancellation points, so a run that overstays is abandoned, not stopped.
func (h *Handler) evaluate(ctx context.Context, req *models.ApplicationRequest) (*pipeline.Outcome, error) {
	if h.config.EvaluationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.EvaluationTimeout)
		defer cancel()
	}

	done := make(chan evaluation, 1)
	go func() {
		out, err := h.evaluator.Evaluate(req)
		done <- evaluation{outcome: out, err: err}
	}()

	select {
	case res := <-done:
		return res.outcome, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("evaluation did not finish: %w", ctx.Err())
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		h.errorHandler.HandleJobError(ctx, client, job, errors.NewInternalError(err))
		return err
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":     job.Key,
		"decisionId": output.DecisionID,
		"decision":   output.CreditDecision.Decision,
	})
	return nil
}
