package dataprocessing

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFileType is returned for uploads that are neither CSV nor a spreadsheet.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrHeaderResolution marks a layout whose header cells are not exactly MD, INC and AZ.
	ErrHeaderResolution = errors.New("header resolution failed")

	// ErrRegionOutOfRange marks a layout whose header or data region lies outside the sheet.
	ErrRegionOutOfRange = errors.New("layout region out of range")
)

// LayoutError is a layout strategy rejecting the sheet. The cascade recovers
// from it and tries the next strategy; any other error aborts the parse.
type LayoutError struct {
	Strategy string
	Reason   string
	Err      error
}

func (e *LayoutError) Error() string {
	return e.Reason
}

func (e *LayoutError) Unwrap() error {
	return e.Err
}

func rejectf(strategy string, kind error, format string, args ...any) *LayoutError {
	return &LayoutError{Strategy: strategy, Reason: fmt.Sprintf(format, args...), Err: kind}
}

// ExhaustedError is returned when every layout strategy rejected the sheet.
type ExhaustedError struct {
	Source     string
	Rejections []*LayoutError
}

func (e *ExhaustedError) Error() string {
	last := e.Last()
	if last == nil {
		return "failed all parsing methods"
	}
	return "failed all parsing methods: " + last.Error()
}

// Last returns the final strategy's rejection.
func (e *ExhaustedError) Last() *LayoutError {
	if len(e.Rejections) == 0 {
		return nil
	}
	return e.Rejections[len(e.Rejections)-1]
}

func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, len(e.Rejections))
	for i, r := range e.Rejections {
		errs[i] = r
	}
	return errs
}
