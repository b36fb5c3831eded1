package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeTransport represents network/HTTP failures
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeParsing represents a response missing an expected field or tag
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting by the storefront
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypePersistence represents database write failures
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// CrawlError represents an error raised somewhere in the harvest pipeline,
// tagged with the category (or resource) it belongs to.
type CrawlError struct {
	Type     ErrorType
	Category string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *CrawlError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Category, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is worth retrying on a later run
func (e *CrawlError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeTransport:
		return true
	case ErrorTypeRateLimit:
		return false
	case ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// New creates a new CrawlError
func New(errType ErrorType, category, message string, err error) *CrawlError {
	return &CrawlError{
		Type:     errType,
		Category: category,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewTransport creates a new transport error
func NewTransport(category, message string, err error) *CrawlError {
	return New(ErrorTypeTransport, category, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(category, message string, err error) *CrawlError {
	return New(ErrorTypeParsing, category, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(category, retryAfter string) *CrawlError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, category, message, nil)
}

// NewPersistence creates a new persistence error
func NewPersistence(category, message string, err error) *CrawlError {
	return New(ErrorTypePersistence, category, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// IsType reports whether err is a CrawlError of the given type
func IsType(err error, errType ErrorType) bool {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.Type == errType
	}
	return false
}
