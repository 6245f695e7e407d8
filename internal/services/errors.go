package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a request the service refuses before parsing.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyManifest is returned for a batch manifest without pairs.
	ErrEmptyManifest = errors.New("manifest lists no survey pairs")
)

// SurveyError is a failure to read or parse one side of a comparison.
type SurveyError struct {
	Side     string // "primary" or "secondary"
	Source   string
	Filename string
	Err      error
}

func (e *SurveyError) Error() string {
	return fmt.Sprintf("%s survey %q (%s): %v", e.Side, e.Filename, e.Source, e.Err)
}

func (e *SurveyError) Unwrap() error {
	return e.Err
}
