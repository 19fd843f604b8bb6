// Package errors provides structured error handling for the CropGo pipeline.
// Every error type carries a stack trace via cockroachdb/errors and knows how
// to attach itself to zerolog events as structured fields.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Raster errors
//
// ===========================================================================

// MalformedRasterError indicates that a raster file's band count does not
// match the expected timestep/static layout of the band catalog.
type MalformedRasterError struct {
	Path     string
	Expected int
	Got      int
}

func (e *MalformedRasterError) Error() string {
	return fmt.Sprintf("cropgo: malformed raster %q: expected %d bands, got %d", e.Path, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *MalformedRasterError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Int("expected_bands", e.Expected).
		Int("got_bands", e.Got).
		Str("type", "MalformedRasterError")
}

// NewMalformedRasterError creates a new MalformedRasterError with a stack trace.
func NewMalformedRasterError(path string, expected, got int) error {
	err := &MalformedRasterError{Path: path, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// DimensionError indicates that an array's band axis does not have the width
// an operation expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("cropgo: %s: band axis mismatch. Expected %d, got %d", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "DimensionError")
}

// NewDimensionError creates a new DimensionError with a stack trace.
func NewDimensionError(op string, expected, got int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Label errors
//
// ===========================================================================

// LabelNotFoundError indicates that no label row exists for a raw file's
// (dataset, index) key. Well-formed exports always have a matching row.
type LabelNotFoundError struct {
	Dataset string
	Index   int
}

func (e *LabelNotFoundError) Error() string {
	return fmt.Sprintf("cropgo: no label row for dataset %q index %d", e.Dataset, e.Index)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *LabelNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("dataset", e.Dataset).
		Int("index", e.Index).
		Str("type", "LabelNotFoundError")
}

// NewLabelNotFoundError creates a new LabelNotFoundError with a stack trace.
func NewLabelNotFoundError(dataset string, index int) error {
	err := &LabelNotFoundError{Dataset: dataset, Index: index}
	return errors.WithStack(err)
}

// RegionNotFoundError indicates that a held-out identifier has no registered
// geographic bounding region.
type RegionNotFoundError struct {
	Identifier string
}

func (e *RegionNotFoundError) Error() string {
	return fmt.Sprintf("cropgo: no bounding region registered for %q", e.Identifier)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *RegionNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("identifier", e.Identifier).
		Str("type", "RegionNotFoundError")
}

// NewRegionNotFoundError creates a new RegionNotFoundError with a stack trace.
func NewRegionNotFoundError(identifier string) error {
	err := &RegionNotFoundError{Identifier: identifier}
	return errors.WithStack(err)
}

// ValueError indicates an argument whose value is invalid for an operation,
// such as an export filename that cannot be parsed.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("cropgo: %s: %s", e.Op, e.Message)
}

// NewValueError creates a new ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an existing error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an existing error with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}
