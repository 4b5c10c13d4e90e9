package prediction

import "errors"

// Sentinel error kinds for prediction. These allow errors.Is from callers.
var (
	// ErrModelUnavailable means the model artifact is missing or corrupt. Fatal.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrInvalidFeatures means the input failed range or level validation.
	ErrInvalidFeatures = errors.New("invalid features")
	// ErrInferenceFailure means the regressor call failed or returned no usable value.
	ErrInferenceFailure = errors.New("inference failure")
)
