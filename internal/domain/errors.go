package domain

import "errors"

var (
	// ErrUnrecognizedLog is returned when a log does not match any tracked event
	ErrUnrecognizedLog = errors.New("unrecognized log")

	// ErrDecodeLog is returned when a log matches a tracked signature but its topics or data are malformed
	ErrDecodeLog = errors.New("failed to decode log")

	// ErrChainNotFound is returned when a chain has not been seeded in the store
	ErrChainNotFound = errors.New("chain not found")

	// ErrTokenNotFound is returned when a token is not found
	ErrTokenNotFound = errors.New("token not found")

	// ErrStandardMismatch is returned when an event implies a different standard than the token's stored one
	ErrStandardMismatch = errors.New("token standard mismatch")

	// ErrChainClientUnavailable is returned when a chain client cannot be constructed
	ErrChainClientUnavailable = errors.New("chain client unavailable")

	// ErrCursorConflict is returned when a block commit does not follow the stored cursor
	ErrCursorConflict = errors.New("block does not follow the stored cursor")

	// ErrInvalidArgument is returned for malformed caller input such as a bad address
	ErrInvalidArgument = errors.New("invalid argument")
)
