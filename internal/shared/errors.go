package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Stream errors
	ErrUnknownEvent     = fmt.Errorf("unknown event kind")
	ErrMalformedPayload = fmt.Errorf("malformed event payload")

	// Page errors
	ErrFragmentLoad    = fmt.Errorf("fragment load failed")
	ErrInvalidFragment = fmt.Errorf("invalid fragment")
	ErrNoSuchElement   = fmt.Errorf("element not found")
	ErrOutOfRange      = fmt.Errorf("index out of range")

	// Service and storage errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrStorage            = fmt.Errorf("session storage failure")
	ErrUnknownDriver      = fmt.Errorf("unknown storage driver")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
