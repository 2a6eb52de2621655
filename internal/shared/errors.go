package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Upstream API errors
	ErrAuthFailed      = fmt.Errorf("authentication failed")
	ErrAPIRequest      = fmt.Errorf("API request failed")
	ErrInvalidResponse = fmt.Errorf("invalid API response")

	// Storage errors
	ErrObjectNotFound = fmt.Errorf("object not found")
	ErrStorage        = fmt.Errorf("storage operation failed")

	// Job errors
	ErrJobNotFound = fmt.Errorf("job not found")
	ErrRunNotFound = fmt.Errorf("job run not found")
	ErrLeaseHeld   = fmt.Errorf("lease held by another run")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
