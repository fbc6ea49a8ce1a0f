package scoring

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/okian/attrition/internal/domain/features"
)

//go:embed default_model.yaml
var defaultModelYAML []byte

// Column is one model input. Name is either a numeric feature name or
// "feature=value" for a one-hot indicator of a text feature.
type Column struct {
	Name   string  `yaml:"name" validate:"required,column"`
	Weight float64 `yaml:"weight"`
}

// Model is a logistic classifier artifact.
type Model struct {
	Name      string   `yaml:"name" validate:"required"`
	Version   string   `yaml:"version" validate:"required"`
	Intercept float64  `yaml:"intercept"`
	Threshold float64  `yaml:"threshold" validate:"gte=0,lte=1"`
	Columns   []Column `yaml:"columns" validate:"required,min=1,unique=Name,dive"`
}

var modelValidate *validator.Validate

func init() {
	modelValidate = validator.New()
	if err := modelValidate.RegisterValidation("column", validateColumn); err != nil {
		panic(fmt.Sprintf("register column validator: %v", err))
	}
}

// validateColumn accepts numeric feature names and feature=value indicators
// over text features.
func validateColumn(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	feature, value, indicator := strings.Cut(name, "=")
	kind, ok := features.KindOf(feature)
	if !ok {
		return false
	}
	if indicator {
		return kind == features.KindText && value != ""
	}
	return kind.Numeric()
}

// Validate checks the artifact.
func (m *Model) Validate() error {
	if err := modelValidate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return nil
}

// ParseModel decodes and validates a YAML artifact.
func ParseModel(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadModelFile reads and parses the artifact at path.
func LoadModelFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %q: %w", path, err)
	}
	m, err := ParseModel(data)
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", path, err)
	}
	return m, nil
}

// DefaultModel returns the model compiled into the binary.
func DefaultModel() *Model {
	m, err := ParseModel(defaultModelYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded model: %v", err))
	}
	return m
}

// Align reindexes v by the model's column names. A column whose feature is
// absent from v is a shape mismatch.
func Align(m *Model, v *features.Vector) ([]float64, error) {
	if m == nil {
		return nil, ErrNoModel
	}
	if v == nil {
		return nil, fmt.Errorf("%w: nil vector", ErrShapeMismatch)
	}
	x := make([]float64, len(m.Columns))
	for i, c := range m.Columns {
		if feature, value, indicator := strings.Cut(c.Name, "="); indicator {
			s, ok := v.Text(feature)
			if !ok {
				return nil, fmt.Errorf("%w: column %q has no value", ErrShapeMismatch, c.Name)
			}
			if s == value {
				x[i] = 1
			}
			continue
		}
		n, ok := v.Number(c.Name)
		if !ok {
			return nil, fmt.Errorf("%w: column %q has no value", ErrShapeMismatch, c.Name)
		}
		x[i] = n
	}
	return x, nil
}
