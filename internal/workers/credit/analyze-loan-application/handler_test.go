// internal/workers/credit/analyze-loan-application/handler_test.go
package analyzeloanapplication

import (
	"context"
	"fmt"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-decision-workers/internal/common/errors"
	"credit-decision-workers/internal/common/logger"
	"credit-decision-workers/internal/credit/pipeline"
	"credit-decision-workers/internal/credit/policy"
	"credit-decision-workers/internal/models"
	"credit-decision-workers/pkg/registry"
)

// ==========================
// Mock Implementations
// ==========================

type MockEvaluator struct {
	EvaluateFunc func(req *models.ApplicationRequest) (*pipeline.Outcome, error)
}

func (m *MockEvaluator) Evaluate(req *models.ApplicationRequest) (*pipeline.Outcome, error) {
	return m.EvaluateFunc(req)
}

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func createTestConfig() *Config {
	return &Config{
		Timeout:           5 * time.Second,
		EvaluationTimeout: 2 * time.Second,
	}
}

func createTestHandler(t *testing.T, evaluator Evaluator) *Handler {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	schema, err := reg.InputSchema(TaskType)
	require.NoError(t, err)

	h, err := NewHandler(HandlerOptions{
		Config:    createTestConfig(),
		Evaluator: evaluator,
		Schema:    schema,
		Logger:    &testLogger{t: t},
	})
	require.NoError(t, err)
	h.newID = func() string { return "dec-0001" }
	return h
}

func realPipeline(t *testing.T) Evaluator {
	fixed := time.Date(2024, 6, 30, 9, 0, 0, 0, time.UTC)
	return pipeline.New(policy.Default(), logger.NewTestLogger(t), pipeline.WithClock(func() time.Time { return fixed }))
}

func createTestInput() map[string]interface{} {
	txns := []map[string]interface{}{}
	balance := 40_000.0
	for m := 1; m <= 6; m++ {
		balance += 280_000
		txns = append(txns, map[string]interface{}{
			"date": fmt.Sprintf("2024-%02d-26", m), "amount": 280_000, "type": "credit", "balance": balance, "narration": "SALARY TECHCORP",
		})
		balance -= 150_000
		txns = append(txns, map[string]interface{}{
			"date": fmt.Sprintf("2024-%02d-10", m), "amount": 150_000, "type": "debit", "balance": balance, "narration": "RENT TRANSFER",
		})
	}
	return map[string]interface{}{
		"applicant_id":   "app-2001",
		"applicant_name": "Tunde Adebayo",
		"applicant_bvn":  "22233344455",
		"loan_amount":    200_000,
		"tenor_months":   6,
		"interest_rate":  30,
		"accounts": []map[string]interface{}{{
			"account_id":   "acc-9",
			"balance":      balance,
			"transactions": txns,
			"identity":     map[string]interface{}{"full_name": "ADEBAYO TUNDE", "bvn": "22233344455"},
			"statement_insights": map[string]interface{}{
				"start_date": "2023-01-01",
			},
		}},
	}
}

func variables(t *testing.T, input map[string]interface{}) string {
	t.Helper()
	raw, err := json.Marshal(input)
	require.NoError(t, err)
	return string(raw)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(in map[string]interface{})
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:   "fully scored application",
			mutate: func(in map[string]interface{}) {},
			validateOutput: func(t *testing.T, output *Output) {
				resp := output.CreditDecision
				assert.Equal(t, "dec-0001", output.DecisionID)
				assert.Equal(t, "app-2001", resp.ApplicantID)
				assert.GreaterOrEqual(t, resp.Score, 350)
				assert.LessOrEqual(t, resp.Score, 850)
				assert.Empty(t, output.KnockoutReason)
				assert.True(t, resp.RegulatoryCompliance.ThinFile)
				assert.Equal(t, "2024-06-30T09:00:00Z", resp.Timestamp)
			},
		},
		{
			name: "knockout on national ID mismatch",
			mutate: func(in map[string]interface{}) {
				in["applicant_bvn"] = "22299999999"
			},
			validateOutput: func(t *testing.T, output *Output) {
				resp := output.CreditDecision
				assert.Equal(t, models.DecisionRejected, resp.Decision)
				assert.Equal(t, 350, resp.Score)
				assert.Equal(t, "VERY_HIGH_RISK", resp.ScoreBand)
				assert.Equal(t, "IDENTITY_BVN_MISMATCH", output.KnockoutReason)
			},
		},
		{
			name: "zero interest is allowed",
			mutate: func(in map[string]interface{}) {
				in["interest_rate"] = 0
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.NotEmpty(t, output.CreditDecision.Decision)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, realPipeline(t))
			input := createTestInput()
			tt.mutate(input)

			output, err := h.Execute(context.Background(), variables(t, input))

			require.NoError(t, err)
			require.NotNil(t, output)
			tt.validateOutput(t, output)
		})
	}
}

func TestHandler_Execute_OutputShape(t *testing.T) {
	h := createTestHandler(t, realPipeline(t))

	output, err := h.Execute(context.Background(), variables(t, createTestInput()))
	require.NoError(t, err)

	raw, err := json.Marshal(output)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "decisionId")
	assert.Contains(t, decoded, "creditDecision")
	assert.NotContains(t, decoded, "KnockoutReason")

	decision := decoded["creditDecision"].(map[string]interface{})
	assert.IsType(t, []interface{}{}, decision["manual_review_reasons"])
	assert.IsType(t, []interface{}{}, decision["risk_factors"])
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		variables func(t *testing.T) string
		wantCode  errors.ErrorCode
		wantField string
	}{
		{
			name:      "not JSON",
			variables: func(t *testing.T) string { return `{"applicant_id": ` },
			wantCode:  errors.ErrCodeParseError,
		},
		{
			name: "missing applicant id",
			variables: func(t *testing.T) string {
				in := createTestInput()
				delete(in, "applicant_id")
				return variables(t, in)
			},
			wantCode:  errors.ErrCodeApplicationValidationFailed,
			wantField: "applicant_id",
		},
		{
			name: "amount is a string",
			variables: func(t *testing.T) string {
				in := createTestInput()
				in["loan_amount"] = "200000"
				return variables(t, in)
			},
			wantCode:  errors.ErrCodeApplicationValidationFailed,
			wantField: "loan_amount",
		},
		{
			name: "zero tenor",
			variables: func(t *testing.T) string {
				in := createTestInput()
				in["tenor_months"] = 0
				return variables(t, in)
			},
			wantCode:  errors.ErrCodeApplicationValidationFailed,
			wantField: "tenor_months",
		},
		{
			name: "negative amount",
			variables: func(t *testing.T) string {
				in := createTestInput()
				in["loan_amount"] = -5
				return variables(t, in)
			},
			wantCode:  errors.ErrCodeApplicationValidationFailed,
			wantField: "loan_amount",
		},
		{
			name: "negative rate",
			variables: func(t *testing.T) string {
				in := createTestInput()
				in["interest_rate"] = -1
				return variables(t, in)
			},
			wantCode:  errors.ErrCodeApplicationValidationFailed,
			wantField: "interest_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := createTestHandler(t, &MockEvaluator{EvaluateFunc: func(req *models.ApplicationRequest) (*pipeline.Outcome, error) {
				called = true
				return nil, nil
			}})

			output, err := h.Execute(context.Background(), tt.variables(t))

			assert.Nil(t, output)
			require.Error(t, err)
			assert.False(t, called, "pipeline must not run on invalid input")

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.False(t, stdErr.Retryable)
			if tt.wantField != "" {
				assert.Contains(t, stdErr.Details, tt.wantField)
			}
		})
	}
}

func TestHandler_Execute_EvaluationFailure(t *testing.T) {
	h := createTestHandler(t, &MockEvaluator{EvaluateFunc: func(req *models.ApplicationRequest) (*pipeline.Outcome, error) {
		return nil, fmt.Errorf("credit evaluation failed for applicant %s: index out of range", req.ApplicantID)
	}})

	output, err := h.Execute(context.Background(), variables(t, createTestInput()))

	assert.Nil(t, output)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeCreditEvaluationFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "app-2001")
	assert.Equal(t, "app-2001", stdErr.Metadata["applicantId"])
	assert.Equal(t, "CREDIT_EVALUATION_FAILED", errors.ConvertToBPMNError(stdErr).Code)
}

func TestHandler_Execute_EvaluationTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	h := createTestHandler(t, &MockEvaluator{EvaluateFunc: func(req *models.ApplicationRequest) (*pipeline.Outcome, error) {
		<-release
		return nil, nil
	}})
	h.config.EvaluationTimeout = 20 * time.Millisecond

	_, err := h.Execute(context.Background(), variables(t, createTestInput()))

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeCreditEvaluationFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "deadline exceeded")
}

func TestNewHandler_RequiresDependencies(t *testing.T) {
	_, err := NewHandler(HandlerOptions{Logger: &testLogger{t: t}})
	assert.Error(t, err)

	_, err = NewHandler(HandlerOptions{Evaluator: realPipeline(t), Logger: &testLogger{t: t}})
	assert.Error(t, err)
}
