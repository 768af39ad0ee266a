package scoring

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

const weightSumTolerance = 1e-9

// Weights are the per-category weights of the base score.
type Weights struct {
	Technical  float64 `mapstructure:"technical" json:"technical" validate:"gt=0,lte=1"`
	Experience float64 `mapstructure:"experience" json:"experience" validate:"gt=0,lte=1"`
	Complexity float64 `mapstructure:"complexity" json:"complexity" validate:"gt=0,lte=1"`
	Domain     float64 `mapstructure:"domain" json:"domain" validate:"gt=0,lte=1"`
}

// DefaultWeights returns the standard 0.40 / 0.25 / 0.20 / 0.15 split.
func DefaultWeights() Weights {
	return Weights{
		Technical:  0.40,
		Experience: 0.25,
		Complexity: 0.20,
		Domain:     0.15,
	}
}

// ConfigurationError reports invalid scoring configuration.
type ConfigurationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "scoring configuration: " + e.Message
	}
	return fmt.Sprintf("scoring configuration: %s: %s", e.Field, e.Message)
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every weight is in (0, 1] and that they sum to 1.
func (w Weights) Validate() error {
	if err := validate.Struct(w); err != nil {
		field := ""
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			field = verrs[0].Field()
		}
		return &ConfigurationError{Field: field, Message: "weight must be in (0, 1]", Cause: err}
	}

	if sum := w.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return &ConfigurationError{Message: fmt.Sprintf("weights must sum to 1, got %g", sum)}
	}

	return nil
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Technical + w.Experience + w.Complexity + w.Domain
}

func (w Weights) of(category Category) float64 {
	switch category {
	case CategoryTechnical:
		return w.Technical
	case CategoryExperience:
		return w.Experience
	case CategoryComplexity:
		return w.Complexity
	case CategoryDomain:
		return w.Domain
	default:
		return 0
	}
}
