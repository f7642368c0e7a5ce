package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// SiteError carries the HTTP status a failure maps to and structured context
// for the log line.
type SiteError struct {
	Message    string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *SiteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SiteError) Unwrap() error {
	return e.Cause
}

func (e *SiteError) WithCause(cause error) *SiteError {
	e.Cause = cause
	return e
}

// APIError reports a non-2xx answer from an upstream HTTP service (CMS or mail relay).
type APIError struct {
	*SiteError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		SiteError: &SiteError{
			Message:    message,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type ValidationError struct {
	*SiteError
	Field string
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		SiteError: &SiteError{
			Message:    message,
			StatusCode: http.StatusBadRequest,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
	}
}

// InputError is a fatal problem with a navigation parameter or with authored
// content (e.g. a detail record without images). The page render is aborted.
type InputError struct {
	*SiteError
}

func NewInputError(message, param string, statusCode int) *InputError {
	return &InputError{
		SiteError: &SiteError{
			Message:    message,
			StatusCode: statusCode,
			Context:    map[string]any{"param": param},
		},
	}
}

type CacheError struct {
	*SiteError
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		SiteError: &SiteError{
			Message:    message,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
	}
}

type ServiceError struct {
	*SiteError
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		SiteError: &SiteError{
			Message:    message,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
	}
}

// StatusOf returns the HTTP status carried by the first site error in err's chain,
// or 500 when there is none.
func StatusOf(err error) int {
	var input *InputError
	if stderrors.As(err, &input) && input.StatusCode != 0 {
		return input.StatusCode
	}
	var api *APIError
	if stderrors.As(err, &api) && api.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	var validation *ValidationError
	if stderrors.As(err, &validation) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ContextOf merges the context of every site error in err's chain, outermost
// first wins.
func ContextOf(err error) map[string]any {
	var out map[string]any
	for err != nil {
		if site := siteErrorOf(err); site != nil {
			for k, v := range site.Context {
				if out == nil {
					out = map[string]any{}
				}
				if _, seen := out[k]; !seen {
					out[k] = v
				}
			}
		}
		err = stderrors.Unwrap(err)
	}
	return out
}

func siteErrorOf(err error) *SiteError {
	switch e := err.(type) {
	case *SiteError:
		return e
	case *APIError:
		return e.SiteError
	case *ValidationError:
		return e.SiteError
	case *InputError:
		return e.SiteError
	case *CacheError:
		return e.SiteError
	case *ServiceError:
		return e.SiteError
	}
	return nil
}
