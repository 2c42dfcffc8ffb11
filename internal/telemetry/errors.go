package telemetry

import "codeberg.org/mutker/lhmoled/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig     = errors.ErrorCode("telemetry_invalid_config")
	ErrInvalidURL        = errors.ErrorCode("telemetry_invalid_url")
	ErrInvalidLoadSource = errors.ErrorCode("telemetry_invalid_load_source")

	// Fetch Errors
	ErrRequestFailed    = errors.ErrorCode("telemetry_request_failed")
	ErrUnexpectedStatus = errors.ErrorCode("telemetry_unexpected_status")
	ErrReadBody         = errors.ErrorCode("telemetry_read_body_failed")

	// Document Errors
	ErrDecodeFailed = errors.ErrorCode("telemetry_decode_failed")
)
