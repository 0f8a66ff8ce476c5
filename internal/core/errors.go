package core

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every ConfigurationError
	ErrConfiguration = errors.New("configuration error")

	// ErrAnalysisUnavailable is returned by language, sentiment and vector
	// sub-routines that cannot produce a result for the given text
	ErrAnalysisUnavailable = errors.New("analysis unavailable")
)

// ConfigurationError reports an empty phrase bank, weight table or candidate
// list. It is fatal and carries the offending key.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("configuration error: %s", e.Key)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// Is lets errors.Is(err, ErrConfiguration) match any ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError builds a ConfigurationError for key.
func NewConfigurationError(key, reason string) error {
	return &ConfigurationError{Key: key, Reason: reason}
}
