// internal/workers/credit/publish-credit-decision/handler_test.go
package publishcreditdecision

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-decision-workers/internal/common/errors"
	"credit-decision-workers/internal/common/logger"
	"credit-decision-workers/internal/models"
)

// ==========================
// Mock Implementations
// ==========================

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
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
		Enabled:       true,
		TopicARN:      "arn:aws:sns:eu-west-1:123456789012:credit-decisions",
		RatePerSecond: 100,
		Timeout:       5 * time.Second,
	}
}

func createTestHandler(t *testing.T, cfg *Config, snsClient SNSService) *Handler {
	t.Helper()
	h, err := NewHandler(cfg, snsClient, &testLogger{t: t})
	require.NoError(t, err)
	h.newID = func() string { return "evt-0001" }
	h.now = func() time.Time { return time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC) }
	return h
}

func createTestInput() *Input {
	return &Input{
		DecisionID: "dec-0001",
		CreditDecision: &models.AnalyzeResponse{
			ApplicantID: "app-2001",
			Decision:    models.DecisionCounterOffer,
			Score:       642,
			ScoreBand:   "MEDIUM_RISK",
			CounterOffer: &models.CounterOffer{
				OfferedAmount:  420_000,
				OfferedTenor:   12,
				MonthlyPayment: 35_000,
			},
			Explainability: models.Explainability{PrimaryReason: "Requested amount exceeds repayment capacity"},
			Timestamp:      "2024-07-01T08:29:58Z",
		},
	}
}

func variables(t *testing.T, input interface{}) string {
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
		config         *Config
		publish        func(t *testing.T) func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:   "published to topic",
			config: createTestConfig(),
			publish: func(t *testing.T) func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
				return func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
					assert.Equal(t, "arn:aws:sns:eu-west-1:123456789012:credit-decisions", aws.ToString(params.TopicArn))
					assert.Equal(t, "COUNTER_OFFER", aws.ToString(params.MessageAttributes["decision"].StringValue))

					var event models.DecisionEvent
					require.NoError(t, json.Unmarshal([]byte(aws.ToString(params.Message)), &event))
					assert.Equal(t, "evt-0001", event.EventID)
					assert.Equal(t, "dec-0001", event.DecisionID)
					assert.Equal(t, "app-2001", event.ApplicantID)
					assert.Equal(t, 642, event.Score)
					require.NotNil(t, event.OfferedAmount)
					assert.Equal(t, 420_000.0, *event.OfferedAmount)
					assert.Nil(t, event.ApprovedAmount)
					assert.Equal(t, "2024-07-01T08:29:58Z", event.DecidedAt)
					return &sns.PublishOutput{MessageId: aws.String("msg-77")}, nil
				}
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, StatusSent, output.PublishStatus)
				assert.Equal(t, "msg-77", output.MessageID)
				assert.Equal(t, "evt-0001", output.EventID)
				assert.Equal(t, "2024-07-01T08:30:00Z", output.PublishedAt)
			},
		},
		{
			name:   "publishing disabled",
			config: &Config{Enabled: false, Timeout: time.Second},
			publish: func(t *testing.T) func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
				return func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
					t.Fatal("publish must not be called when disabled")
					return nil, nil
				}
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, StatusDisabled, output.PublishStatus)
				assert.Empty(t, output.MessageID)
				assert.Equal(t, "evt-0001", output.EventID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, tt.config, &MockSNSService{PublishFunc: tt.publish(t)})

			output, err := h.Execute(context.Background(), variables(t, createTestInput()))

			require.NoError(t, err)
			tt.validateOutput(t, output)
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_PublishFailureIsRetryable(t *testing.T) {
	h := createTestHandler(t, createTestConfig(), &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, fmt.Errorf("ThrottlingException: rate exceeded")
		},
	})

	_, err := h.Execute(context.Background(), variables(t, createTestInput()))

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDecisionPublishFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, 3, errors.ConvertToBPMNError(stdErr).Retries)
}

func TestHandler_Execute_PublishTimeout(t *testing.T) {
	h := createTestHandler(t, createTestConfig(), &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, fmt.Errorf("operation error SNS: Publish: %w", context.DeadlineExceeded)
		},
	})

	_, err := h.Execute(context.Background(), variables(t, createTestInput()))

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodePublishTimeout, stdErr.Code)
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantCode  errors.ErrorCode
	}{
		{name: "not JSON", variables: `nope`, wantCode: errors.ErrCodeParseError},
		{name: "missing decision id", variables: `{"creditDecision": {"applicant_id": "a", "decision": "APPROVED"}}`, wantCode: errors.ErrCodeApplicationValidationFailed},
		{name: "missing decision", variables: `{"decisionId": "d-1"}`, wantCode: errors.ErrCodeApplicationValidationFailed},
		{name: "decision without outcome", variables: `{"decisionId": "d-1", "creditDecision": {"applicant_id": "a"}}`, wantCode: errors.ErrCodeApplicationValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, createTestConfig(), &MockSNSService{
				PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
					t.Fatal("publish must not be called for invalid input")
					return nil, nil
				},
			})

			_, err := h.Execute(context.Background(), tt.variables)

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, stdErr.Code)
			assert.False(t, stdErr.Retryable)
		})
	}
}

func TestNewHandler_Validation(t *testing.T) {
	_, err := NewHandler(&Config{Enabled: true, TopicARN: "arn"}, nil, &testLogger{t: t})
	assert.Error(t, err)

	_, err = NewHandler(&Config{Enabled: true}, &MockSNSService{}, &testLogger{t: t})
	assert.Error(t, err)

	_, err = NewHandler(&Config{Enabled: false}, nil, &testLogger{t: t})
	assert.NoError(t, err)
}
