package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is returned when a required setting is missing or invalid
	ErrConfig = errors.New("invalid configuration")

	// ErrIO is returned when a reagent source cannot be opened or read
	ErrIO = errors.New("reagent source unreadable")

	// ErrParse is returned when a reagent line cannot be turned into a structure
	ErrParse = errors.New("reagent line could not be parsed")

	// ErrUnsupported is returned for well-formed structure text that uses a
	// feature the engine cannot represent
	ErrUnsupported = errors.New("unsupported structure feature")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrTooManyPairs is returned when a request would enumerate more pairs than allowed
	ErrTooManyPairs = errors.New("too many reagent pairs")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

// ParseError identifies the reagent line that failed to load.
type ParseError struct {
	Source string // file path or request field
	Line   int    // 1-based
	Token  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
	if e.Token != "" {
		msg += fmt.Sprintf(" %q", e.Token)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes every ParseError match ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
