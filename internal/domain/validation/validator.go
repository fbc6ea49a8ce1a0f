// Package validation applies the ordered consistency rules of the attrition
// model to a complete feature vector. Validation is pure: it performs no I/O
// and a Validator is safe for concurrent use.
package validation

import (
	"time"

	"github.com/okian/attrition/internal/domain/features"
)

// ValidationError is the rejection carried by an Outcome. It is the same type
// as the one produced by the feature contract so callers match a single type.
type ValidationError = features.ValidationError

// Rule groups in evaluation order.
const (
	GroupAge            = "age"
	GroupExperience     = "experience"
	GroupTenure         = "tenure"
	GroupPromotion      = "promotion"
	GroupResponsibility = "responsibility"
	GroupDemographics   = "demographics"
	GroupEmployment     = "employment"
	GroupCompensation   = "compensation"
	GroupTravel         = "travel"
	GroupOvertime       = "overtime"
	GroupEvaluations    = "evaluations"
	GroupSatisfaction   = "satisfaction"
	GroupVolatility     = "volatility"
	GroupRatios         = "ratios"
	GroupTraining       = "training"
	GroupStagnation     = "stagnation"
)

// Groups returns the rule groups in the order they are evaluated.
func Groups() []string {
	return []string{
		GroupAge, GroupExperience, GroupTenure, GroupPromotion, GroupResponsibility,
		GroupDemographics, GroupEmployment, GroupCompensation, GroupTravel, GroupOvertime,
		GroupEvaluations, GroupSatisfaction, GroupVolatility, GroupRatios, GroupTraining,
		GroupStagnation,
	}
}

// Env is the evaluation environment handed to every rule.
type Env struct {
	Year             int
	AgeMin           int
	AgeMax           int
	SalaryTolerance  float64
	MinPromotionYear int
}

// Rule is one check. Check returns ok=false and the rejection message when
// the vector violates the rule.
type Rule struct {
	Name    string
	Group   string
	Feature string
	Check   func(v *features.Vector, env Env) (reason string, ok bool)
}

// Outcome is either an accepted vector or a rejection.
type Outcome struct {
	vector    *features.Vector
	rejection *ValidationError
}

// Accepted reports whether every rule passed.
func (o Outcome) Accepted() bool { return o.rejection == nil }

// Vector returns the accepted vector, unchanged; nil when rejected.
func (o Outcome) Vector() *features.Vector {
	if o.rejection != nil {
		return nil
	}
	return o.vector
}

// Reason is the rejection message; empty when accepted.
func (o Outcome) Reason() string {
	if o.rejection == nil {
		return ""
	}
	return o.rejection.Message
}

// Rule is the name of the failing rule; empty when accepted.
func (o Outcome) Rule() string {
	if o.rejection == nil {
		return ""
	}
	return o.rejection.Rule
}

// Err returns the rejection as an error, or nil when accepted.
func (o Outcome) Err() error {
	if o.rejection == nil {
		return nil
	}
	return o.rejection
}

// Default bounds.
const (
	DefaultAgeMin           = 16
	DefaultAgeMax           = 70
	DefaultSalaryTolerance  = 0.5
	DefaultMinPromotionYear = 1900
)

// Validator evaluates the rule table.
type Validator struct {
	clock            func() time.Time
	ageMin           int
	ageMax           int
	salaryTolerance  float64
	minPromotionYear int
	rules            []Rule
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock sets the clock used to derive the current year.
func WithClock(clock func() time.Time) Option {
	return func(v *Validator) {
		if clock != nil {
			v.clock = clock
		}
	}
}

// WithAgeRange sets the accepted age interval, bounds included.
func WithAgeRange(minAge, maxAge int) Option {
	return func(v *Validator) {
		if minAge <= maxAge {
			v.ageMin, v.ageMax = minAge, maxAge
		}
	}
}

// WithSalaryTolerance sets the relative band allowed between twelve monthly
// incomes and the annual salary per experience year.
func WithSalaryTolerance(tol float64) Option {
	return func(v *Validator) {
		if tol >= 0 {
			v.salaryTolerance = tol
		}
	}
}

// WithMinPromotionYear sets the earliest accepted last-promotion year.
func WithMinPromotionYear(year int) Option {
	return func(v *Validator) {
		v.minPromotionYear = year
	}
}

// New creates a Validator with the default bounds and the UTC wall clock.
func New(opts ...Option) *Validator {
	v := &Validator{
		clock:            func() time.Time { return time.Now().UTC() },
		ageMin:           DefaultAgeMin,
		ageMax:           DefaultAgeMax,
		salaryTolerance:  DefaultSalaryTolerance,
		minPromotionYear: DefaultMinPromotionYear,
		rules:            ruleTable(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Rules returns the ordered rule table.
func (v *Validator) Rules() []Rule {
	out := make([]Rule, len(v.rules))
	copy(out, v.rules)
	return out
}

// Env returns the environment the next Validate call would use.
func (v *Validator) Env() Env {
	return Env{
		Year:             v.clock().Year(),
		AgeMin:           v.ageMin,
		AgeMax:           v.ageMax,
		SalaryTolerance:  v.salaryTolerance,
		MinPromotionYear: v.minPromotionYear,
	}
}

// Validate runs the rules in order and stops at the first failure.
func (v *Validator) Validate(vec *features.Vector) Outcome {
	if vec == nil {
		return Outcome{rejection: &ValidationError{
			Rule:    "vector_present",
			Group:   "contract",
			Message: "vecteur de features absent",
		}}
	}
	env := v.Env()
	for _, r := range v.rules {
		if reason, ok := r.Check(vec, env); !ok {
			return Outcome{rejection: &ValidationError{
				Rule:    r.Name,
				Group:   r.Group,
				Feature: r.Feature,
				Message: reason,
			}}
		}
	}
	return Outcome{vector: vec}
}

// ValidateMap runs the feature contract and then the rules. The returned
// error is a *features.MissingFeatureError or a *ValidationError.
func (v *Validator) ValidateMap(input map[string]any) (*features.Vector, error) {
	vec, err := features.CheckComplete(input)
	if err != nil {
		return nil, err
	}
	out := v.Validate(vec)
	if err := out.Err(); err != nil {
		return nil, err
	}
	return out.Vector(), nil
}
