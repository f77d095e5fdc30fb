package rag

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrorKind classifies pipeline failures so callers can decide between
// aborting the run and returning to the prompt.
type ErrorKind string

const (
	// KindNoDocuments: nothing was loaded, the pipeline has no data.
	KindNoDocuments ErrorKind = "no_documents"
	// KindProviderUnreachable: the embedding or generation endpoint could
	// not be reached.
	KindProviderUnreachable ErrorKind = "provider_unreachable"
	// KindBadResponse: the provider answered with something unusable; the
	// raw payload rides along for diagnosis.
	KindBadResponse ErrorKind = "bad_response"
	// KindStore: the vector store failed to open, insert, or query.
	KindStore ErrorKind = "store"
)

// Error is a pipeline failure tagged with a kind.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewNoDocumentsError reports that a load batch produced zero pages.
func NewNoDocumentsError(message string) *Error {
	return newError(KindNoDocuments, message, nil)
}

// classifyProvider separates "the endpoint could not be reached" from "the
// endpoint answered with something unusable", per the query failure policy.
func classifyProvider(op string, err error) *Error {
	var netErr net.Error
	var opErr *net.OpError
	if errors.As(err, &opErr) || errors.As(err, &netErr) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, context.DeadlineExceeded) {
		return newError(KindProviderUnreachable, op, err)
	}
	return newError(KindBadResponse, op, err)
}

// KindOf extracts the error kind, or "" for untagged errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
