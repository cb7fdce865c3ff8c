package models

import "strings"

// ModelType selects the forecasting strategy.
type ModelType string

const (
	ModelLinear ModelType = "linear"
	ModelForest ModelType = "forest"
	ModelSVM    ModelType = "svm"
)

// IsValidModelType returns true if m is a supported model.
func IsValidModelType(m ModelType) bool {
	switch m {
	case ModelLinear, ModelForest, ModelSVM:
		return true
	default:
		return false
	}
}

// DefaultModelType returns the model used when none (or an unknown one) is requested.
func DefaultModelType() ModelType { return ModelLinear }

// NormalizeModelType converts a raw name to a valid model (or the default).
func NormalizeModelType(s string) ModelType {
	m := ModelType(strings.ToLower(strings.TrimSpace(s)))
	if IsValidModelType(m) {
		return m
	}
	return DefaultModelType()
}
