package shared

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory classifies pipeline failures for logging and reporting.
type ErrorCategory string

const (
	ErrorCategoryConfiguration ErrorCategory = "configuration"
	ErrorCategoryNetwork       ErrorCategory = "network"
	ErrorCategoryProcessing    ErrorCategory = "processing"
	ErrorCategoryNotification  ErrorCategory = "notification"
	ErrorCategoryTimeout       ErrorCategory = "timeout"
)

// Error codes used across the digest pipeline.
const (
	CodeFetchFailed    = "FETCH_FAILED"
	CodeRenderFailed   = "RENDER_FAILED"
	CodeNormalization  = "NORMALIZATION_FAILED"
	CodeDeliveryFailed = "DELIVERY_FAILED"
	CodeBadConfig      = "BAD_CONFIG"
)

// ServiceError is a standardized error carrying classification context.
type ServiceError struct {
	Category  ErrorCategory `json:"category"`
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	Operation string        `json:"operation"`
	Timestamp time.Time     `json:"timestamp"`
	Retryable bool          `json:"retryable"`
	Cause     error         `json:"-"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a classified error.
func NewServiceError(category ErrorCategory, code, message, operation string, retryable bool, cause error) *ServiceError {
	return &ServiceError{
		Category:  category,
		Code:      code,
		Message:   message,
		Operation: operation,
		Timestamp: time.Now(),
		Retryable: retryable,
		Cause:     cause,
	}
}

// NewFetchError classifies a page-retrieval failure.
func NewFetchError(operation string, cause error) *ServiceError {
	return NewServiceError(ErrorCategoryNetwork, CodeFetchFailed,
		fmt.Sprintf("page fetch failed: %v", cause), operation, true, cause)
}

// NewNormalizationError classifies a structural failure of the run: the
// selected table could not be reduced to canonical records at all.
func NewNormalizationError(operation string, cause error) *ServiceError {
	return NewServiceError(ErrorCategoryProcessing, CodeNormalization,
		fmt.Sprintf("table normalization failed: %v", cause), operation, false, cause)
}

// IsNormalizationError reports whether err carries the normalization code.
func IsNormalizationError(err error) bool {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code == CodeNormalization
	}
	return false
}

// LogError emits the error with structured fields.
func (e *ServiceError) LogError() {
	logrus.WithFields(logrus.Fields{
		"error_category": e.Category,
		"error_code":     e.Code,
		"operation":      e.Operation,
		"retryable":      e.Retryable,
		"cause":          e.Cause,
	}).Error(e.Message)
}

// WrapError attaches classification to an existing error, updating the
// operation in place when it is already a ServiceError.
func WrapError(err error, category ErrorCategory, code, operation string, retryable bool) *ServiceError {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		se.Operation = operation
		return se
	}
	return NewServiceError(category, code, err.Error(), operation, retryable, err)
}
