package policy

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Load returns the default policy overlaid with the YAML file at path, if one
// is given. Keys absent from the file keep their default values.
func Load(path string) (*Policy, error) {
	p := Default()
	if path == "" {
		return p, p.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file %s: %w", path, err)
	}
	if err := Parse(data, p); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy %s: %w", path, err)
	}
	return p, nil
}

// Parse overlays YAML onto an existing policy.
func Parse(data []byte, p *Policy) error {
	return yaml.Unmarshal(data, p)
}

// Validate checks the invariants every engine relies on.
func (p *Policy) Validate() error {
	var errs []error

	if err := p.Scoring.Normal.validate("normal"); err != nil {
		errs = append(errs, err)
	}
	if err := p.Scoring.ThinFile.validate("thin_file"); err != nil {
		errs = append(errs, err)
	}
	if p.Scoring.ThinFile.CreditHistory != 0 {
		errs = append(errs, errors.New("scoring.thin_file_weights.credit_history must be 0"))
	}
	if p.Scoring.Baseline < 0 || p.Scoring.Ceiling <= p.Scoring.Baseline {
		errs = append(errs, fmt.Errorf("scoring range [%d, %d] is empty", p.Scoring.Baseline, p.Scoring.Ceiling))
	}

	d := p.Decision
	if !(d.RejectFloor < d.ManualFloor && d.ManualFloor < d.ApproveFloor) {
		errs = append(errs, fmt.Errorf("decision thresholds must ascend: reject %d, manual %d, approve %d",
			d.RejectFloor, d.ManualFloor, d.ApproveFloor))
	}
	if d.RejectFloor < p.Scoring.Baseline || d.ApproveFloor > p.Scoring.Ceiling {
		errs = append(errs, errors.New("decision thresholds must lie inside the scoring range"))
	}
	if d.AffordabilityCap <= 0 || d.AffordabilityCap > 1 {
		errs = append(errs, fmt.Errorf("decision.affordability_cap must be in (0, 1], got %v", d.AffordabilityCap))
	}
	if d.MinViableOfferRatio <= 0 || d.MinViableOfferRatio > 1 {
		errs = append(errs, fmt.Errorf("decision.min_viable_offer_ratio must be in (0, 1], got %v", d.MinViableOfferRatio))
	}
	if d.ThinFileIncomeMultiple <= 0 {
		errs = append(errs, errors.New("decision.thin_file_income_multiple must be positive"))
	}
	if d.ThinFileMaxTenor <= 0 {
		errs = append(errs, errors.New("decision.thin_file_max_tenor must be positive"))
	}
	if len(d.StandardTenors) == 0 {
		errs = append(errs, errors.New("decision.standard_tenors is empty"))
	} else if !strictlyAscending(d.StandardTenors) {
		errs = append(errs, errors.New("decision.standard_tenors must be positive and strictly ascending"))
	}

	k := p.Knockout
	if k.MinIdentityTokenOverlap < 1 {
		errs = append(errs, errors.New("knockout.min_identity_token_overlap must be at least 1"))
	}
	if k.MaxConsecutiveFailures < 1 {
		errs = append(errs, errors.New("knockout.max_consecutive_failures must be at least 1"))
	}
	for _, f := range k.FraudFindings {
		if f.Key == "" {
			errs = append(errs, errors.New("knockout.fraud_findings entries need a key"))
			break
		}
	}

	return errors.Join(errs...)
}

func (w Weights) validate(name string) error {
	for _, v := range w.values() {
		if v < 0 {
			return fmt.Errorf("scoring.%s_weights has a negative weight", name)
		}
	}
	if sum := w.Sum(); !sum.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("scoring.%s_weights must sum to 1, got %s", name, sum.String())
	}
	return nil
}

// Sum reports the exact decimal sum of a weight set.
func (w Weights) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, v := range w.values() {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum
}

func strictlyAscending(xs []int) bool {
	prev := 0
	for _, x := range xs {
		if x <= prev {
			return false
		}
		prev = x
	}
	return true
}
