// Package score maps classifier risk probabilities onto the 300-850 credit
// score scale and its categorical risk bands. Pure functions, no state.
package score

import (
	"fmt"
	"math"
)

const (
	// ScoreMin and ScoreMax bound the credit score scale.
	ScoreMin = 300
	ScoreMax = 850

	scoreRange = float64(ScoreMax - ScoreMin)
)

// Category is a credit risk band derived from the score.
type Category string

const (
	CategoryExcellent Category = "Excellent"
	CategoryGood      Category = "Good"
	CategoryFair      Category = "Fair"
	CategoryPoor      Category = "Poor"
	CategoryVeryPoor  Category = "Very Poor"
)

// Categories lists all bands from best to worst.
var Categories = []Category{
	CategoryExcellent,
	CategoryGood,
	CategoryFair,
	CategoryPoor,
	CategoryVeryPoor,
}

// InvalidProbabilityError indicates the classifier produced a value outside
// [0,1]. That is an upstream fault, so the input is rejected rather than
// clamped.
type InvalidProbabilityError struct {
	Probability float64
}

func (e *InvalidProbabilityError) Error() string {
	return fmt.Sprintf("risk probability %v outside [0,1]", e.Probability)
}

// Assessment is the complete human-facing scoring artifact.
type Assessment struct {
	RiskProbability float64  `json:"risk_probability" yaml:"riskProbability"`
	CreditScore     int      `json:"credit_score" yaml:"creditScore"`
	RiskCategory    Category `json:"risk_category" yaml:"riskCategory"`
	Interpretation  string   `json:"interpretation" yaml:"interpretation"`
}

// ToCreditScore converts a risk probability into a credit score.
// Monotonically decreasing in p: 0 maps to 850, 1 maps to 300.
// Rounding is half away from zero (math.Round).
func ToCreditScore(p float64) (int, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, &InvalidProbabilityError{Probability: p}
	}
	creditworthiness := 1 - p
	return ScoreMin + int(math.Round(creditworthiness*scoreRange)), nil
}

// ToRiskCategory buckets a credit score into its band. Intervals are
// left-closed: 750+ Excellent, 700-749 Good, 650-699 Fair, 600-649 Poor,
// below 600 Very Poor.
func ToRiskCategory(creditScore int) Category {
	switch {
	case creditScore >= 750:
		return CategoryExcellent
	case creditScore >= 700:
		return CategoryGood
	case creditScore >= 650:
		return CategoryFair
	case creditScore >= 600:
		return CategoryPoor
	default:
		return CategoryVeryPoor
	}
}

// Assess composes score and category into a full assessment.
func Assess(p float64) (*Assessment, error) {
	creditScore, err := ToCreditScore(p)
	if err != nil {
		return nil, err
	}

	category := ToRiskCategory(creditScore)
	return &Assessment{
		RiskProbability: p,
		CreditScore:     creditScore,
		RiskCategory:    category,
		Interpretation: fmt.Sprintf("Credit score of %d indicates %s creditworthiness",
			creditScore, category),
	}, nil
}
