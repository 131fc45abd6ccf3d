// Package errs defines the sentinel errors returned across the module. Each
// sentinel represents one error Kind; call sites wrap it with fmt.Errorf's
// %w verb so callers can still classify the failure with errors.Is.
package errs

import "errors"

var (
	// ErrConfig marks a problem with how the caller configured an encode or
	// decode run (mutually exclusive options, out-of-range thread count, ...).
	ErrConfig = errors.New("gnzip: invalid configuration")

	// ErrInputFormat marks malformed or unrecognized source text: a line that
	// doesn't match its data type's framing contract, a header the segmenter
	// can't parse, a mid-file VCF sample-set change.
	ErrInputFormat = errors.New("gnzip: invalid input format")

	// ErrIO marks a failure reading or writing the underlying file or pipe,
	// including a killed external process (procstream).
	ErrIO = errors.New("gnzip: i/o failure")

	// ErrIntegrity marks a structurally valid but untrustworthy container:
	// a bad MD5, a magic mismatch, a section whose sizes don't reconcile, an
	// unsupported container version.
	ErrIntegrity = errors.New("gnzip: integrity check failed")

	// ErrResource marks exhaustion of a bounded resource: too many open
	// vblocks, a dictionary that exceeded its word_index space.
	ErrResource = errors.New("gnzip: resource exhausted")
)
