package errors

import "fmt"

// Error codes
const (
	CodeAppError = "APP_ERROR"
	CodeConfig   = "CONFIG_ERROR"
	CodeProvider = "PROVIDER_ERROR"
	CodeParse    = "PARSE_ERROR"
	CodeStorage  = "STORAGE_ERROR"
	CodeCache    = "CACHE_ERROR"
	CodeJob      = "JOB_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// ConfigError marks a missing or invalid runtime configuration value, most
// commonly an absent provider API key.
type ConfigError struct {
	*AppError
	Integration string
	Key         string
}

func NewConfigError(message, integration, key string) *ConfigError {
	return &ConfigError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeConfig,
			StatusCode: 500,
			Context: map[string]any{
				"integration": integration,
				"key":         key,
			},
		},
		Integration: integration,
		Key:         key,
	}
}

func IsConfigError(err error) bool {
	_, ok := err.(*ConfigError)
	return ok
}

// ProviderError wraps a failed call to a generative-AI vendor.
type ProviderError struct {
	*AppError
	Provider  string
	Operation string
}

func NewProviderError(message, provider, operation string, cause error) *ProviderError {
	return &ProviderError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeProvider,
			StatusCode: 502,
			Context: map[string]any{
				"provider":  provider,
				"operation": operation,
			},
			Cause: cause,
		},
		Provider:  provider,
		Operation: operation,
	}
}

// ParseError marks provider output that could not be decoded as the expected
// JSON shape. Treated as a provider failure on structured-generation paths.
type ParseError struct {
	*AppError
	Provider string
}

func NewParseError(message, provider string, cause error) *ParseError {
	return &ParseError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeParse,
			StatusCode: 502,
			Context: map[string]any{
				"provider": provider,
			},
			Cause: cause,
		},
		Provider: provider,
	}
}

type StorageError struct {
	*AppError
	Key string
}

func NewStorageError(message, key string, cause error) *StorageError {
	return &StorageError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeStorage,
			StatusCode: 500,
			Context: map[string]any{
				"key": key,
			},
			Cause: cause,
		},
		Key: key,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

// JobError marks a cloning-pipeline step failure. Step identifies which step
// threw so operators can resume or diagnose from logs.
type JobError struct {
	*AppError
	JobID string
	Step  string
}

func NewJobError(message, jobID, step string, cause error) *JobError {
	return &JobError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeJob,
			StatusCode: 500,
			Context: map[string]any{
				"job_id": jobID,
				"step":   step,
			},
			Cause: cause,
		},
		JobID: jobID,
		Step:  step,
	}
}
