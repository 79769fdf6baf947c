package domain

import "errors"

var (
	ErrSearchInputNotFound = errors.New("search input not found")
	ErrURLPatternMismatch  = errors.New("url does not match listing pattern")
	ErrSessionInit         = errors.New("browser session could not be created")
	ErrNavigationTimeout   = errors.New("navigation timed out")
	ErrParse               = errors.New("price text could not be parsed")
	ErrInvalidArgument     = errors.New("invalid argument")
)
