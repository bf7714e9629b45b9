package config

import "errors"

var (
	// ErrInvalidApiAddress is returned when the api listening address is invalid
	ErrInvalidApiAddress = errors.New("invalid api address")
	// ErrInvalidCorsOrigin is returned when an allowed cors origin is not a valid url
	ErrInvalidCorsOrigin = errors.New("invalid cors origin")
	// ErrInvalidUpstreamURL is returned when the upstream base url is invalid
	ErrInvalidUpstreamURL = errors.New("invalid upstream base url")
)
