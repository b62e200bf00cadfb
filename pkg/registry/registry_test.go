package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	assert.Empty(t, reg.Validate())
	assert.Len(t, reg.Activities, 2)
}

func TestFind(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	act, ok := reg.Find("analyze-loan-application")
	require.True(t, ok)
	assert.Equal(t, "credit.application.analyze", act.ID)

	timeout, err := act.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)

	publish, ok := reg.Find("publish-credit-decision")
	require.True(t, ok)
	assert.Equal(t, 3, publish.Retries)

	_, ok = reg.Find("unknown-task")
	assert.False(t, ok)
}

func TestInputSchema_AnalyzeApplication(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	schema, err := reg.InputSchema("analyze-loan-application")
	require.NoError(t, err)

	valid := `{
		"applicant_id": "app-1",
		"applicant_name": "Amina Bello",
		"applicant_bvn": "22255566677",
		"loan_amount": 150000,
		"tenor_months": 6,
		"interest_rate": 24,
		"accounts": [{"account_id": "acc-1", "balance": 1000, "transactions": [
			{"date": "2024-06-01", "amount": 5000, "type": "credit", "balance": 6000, "narration": "SALARY"}
		]}]
	}`
	res, err := schema.ValidateJSON(valid)
	require.NoError(t, err)
	assert.True(t, res.Valid, res.GetErrorMessages())

	res, err = schema.ValidateJSON(`{"applicant_id": "app-1", "loan_amount": "lots", "accounts": []}`)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.True(t, res.HasErrors("applicant_name"))
	assert.True(t, res.HasErrors("loan_amount"))
	assert.True(t, res.HasErrors("tenor_months"))

	_, err = reg.InputSchema("unknown-task")
	assert.Error(t, err)
}

func TestValidate_ReportsProblems(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{
		{ID: "credit.application.analyze", TaskType: "analyze", Timeout: "30s", InputSchema: map[string]interface{}{"type": "object"}},
		{ID: "Bad-ID", TaskType: "analyze", Timeout: "soon", Retries: -1},
	}}

	errs := reg.Validate()

	var messages []string
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	assert.Len(t, errs, 5)
	assert.Contains(t, messages, `Bad-ID: duplicate taskType "analyze"`)
	assert.Contains(t, messages, `Bad-ID: invalid timeout "soon"`)
	assert.Contains(t, messages, "Bad-ID: retries must not be negative")
}
