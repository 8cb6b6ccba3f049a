package types

import "fmt"

// ErrorKind classifies pipeline failures. It implements error so it can be
// matched with errors.Is through wrapping.
type ErrorKind string

const (
	ErrUnsupportedRetailer   ErrorKind = "unsupported_retailer"
	ErrAllProvidersExhausted ErrorKind = "all_providers_exhausted"
	ErrZeroItemsExtracted    ErrorKind = "zero_items_extracted"
	ErrNetworkFailure        ErrorKind = "network_failure"
	ErrParseFailure          ErrorKind = "parse_failure"
)

func (k ErrorKind) Error() string {
	return string(k)
}

// PipelineError attaches an ErrorKind to an underlying cause.
type PipelineError struct {
	Kind ErrorKind
	Err  error
}

// NewPipelineError wraps err with the given kind.
func NewPipelineError(kind ErrorKind, err error) *PipelineError {
	return &PipelineError{Kind: kind, Err: err}
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
