package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())
	assert.True(t, p.Scoring.Normal.Sum().Equal(decimal.NewFromInt(1)))
	assert.True(t, p.Scoring.ThinFile.Sum().Equal(decimal.NewFromInt(1)))
	assert.Equal(t, []int{500, 600, 700}, p.Decision.Thresholds())
	assert.Equal(t, 500.0, p.Scoring.Span())
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Policy)
		wantErr string
	}{
		{
			name:    "normal weights off by a hundredth",
			mutate:  func(p *Policy) { p.Scoring.Normal.AccountBehavior = 0.11 },
			wantErr: "normal_weights must sum to 1",
		},
		{
			name: "thin-file credit weight not zero",
			mutate: func(p *Policy) {
				p.Scoring.ThinFile.CreditHistory = 0.05
				p.Scoring.ThinFile.IncomeStability = 0.30
			},
			wantErr: "credit_history must be 0",
		},
		{
			name:    "thresholds out of order",
			mutate:  func(p *Policy) { p.Decision.ManualFloor = 450 },
			wantErr: "thresholds must ascend",
		},
		{
			name:    "affordability cap above one",
			mutate:  func(p *Policy) { p.Decision.AffordabilityCap = 1.5 },
			wantErr: "affordability_cap",
		},
		{
			name:    "tenors not ascending",
			mutate:  func(p *Policy) { p.Decision.StandardTenors = []int{3, 12, 6} },
			wantErr: "strictly ascending",
		},
		{
			name:    "negative weight",
			mutate:  func(p *Policy) { p.Scoring.Normal.CreditHistory = -0.1; p.Scoring.Normal.IncomeStability = 0.65 },
			wantErr: "negative weight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_OverlaysYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
decision:
  high_value_threshold: 750000
  standard_tenors: [3, 6, 12]
knockout:
  min_monthly_income: 25000
`), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 750_000.0, p.Decision.HighValueThreshold)
	assert.Equal(t, []int{3, 6, 12}, p.Decision.StandardTenors)
	assert.Equal(t, 25_000.0, p.Knockout.MinMonthlyIncome)
	// untouched keys keep defaults
	assert.Equal(t, 0.35, p.Decision.AffordabilityCap)
	assert.Equal(t, 0.30, p.Scoring.Normal.CreditHistory)
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestLoad_InvalidOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scoring:\n  normal_weights:\n    credit_history: 0.5\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must sum to 1")
}
