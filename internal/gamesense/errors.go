package gamesense

import "codeberg.org/mutker/lhmoled/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("gamesense_invalid_config")

	// Discovery Errors
	ErrDiscoveryFailed = errors.ErrorCode("gamesense_discovery_failed")
	ErrCorePropsRead   = errors.ErrorCode("gamesense_coreprops_read_failed")
	ErrCorePropsParse  = errors.ErrorCode("gamesense_coreprops_parse_failed")
	ErrNoEndpoint      = errors.ErrorCode("gamesense_no_endpoint")

	// Transport Errors
	ErrEncodePayload    = errors.ErrorCode("gamesense_encode_payload_failed")
	ErrRequestFailed    = errors.ErrorCode("gamesense_request_failed")
	ErrUnexpectedStatus = errors.ErrorCode("gamesense_unexpected_status")
)
